// internal/adapters/in/http/handlers/helpers.go
package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

func methodNotAllowed(w http.ResponseWriter) {
	w.WriteHeader(http.StatusMethodNotAllowed)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "method_not_allowed"})
}

func notFound(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotFound)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "not_found"})
}

func badRequest(w http.ResponseWriter, msg string) {
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, v any) {
	_ = json.NewEncoder(w).Encode(v)
}

// clientIDParam はクライアント ID のクエリパラメータを読みます。
// 正式名は id、旧ポータルリンク互換のため c も受け付けます。
func clientIDParam(r *http.Request) string {
	q := r.URL.Query()
	if id := strings.TrimSpace(q.Get("id")); id != "" {
		return id
	}
	return strings.TrimSpace(q.Get("c"))
}
