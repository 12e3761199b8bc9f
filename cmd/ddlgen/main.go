// cmd/ddlgen/main.go
//
// Postgres ミラー用の DDL を標準出力または指定ディレクトリへ出力します。
//
//	go run ./cmd/ddlgen            # stdout
//	go run ./cmd/ddlgen ./migrations  # migrations/deal_audit.sql に書き出し
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"leadportal/internal/domain/audit"
)

func main() {
	ddls := map[string]string{
		"deal_audit.sql": audit.DealAuditTableDDL,
	}

	if len(os.Args) < 2 {
		for name, ddl := range ddls {
			fmt.Printf("-- %s\n%s\n", name, ddl)
		}
		return
	}

	dir := os.Args[1]
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "ddlgen: %v\n", err)
		os.Exit(1)
	}
	for name, ddl := range ddls {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(ddl), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "ddlgen: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s\n", path)
	}
}
