// internal/infra/config/config.go
package config

import (
	"os"

	"leadportal/internal/domain/portal"
)

// Config はアプリケーション全体の環境変数設定を保持します。
type Config struct {
	Port                     string
	FirestoreProjectID       string
	FirestoreCredentialsFile string
	FirebaseProjectID        string

	// 修正依頼の添付ファイル置き場
	GCSBucket string

	// 任意: 監査ログの Postgres ミラー。未設定ならミラーは無効。
	DatabaseURL string

	// SendGrid。APIKey が空のときは SecretName（Secret Manager の
	// リソース名）から解決します。
	SendGridAPIKey     string
	SendGridSecretName string
	SendGridFrom       string
	SenderName         string

	// トリガー層が使う宛先/リンク
	OpsEmail      string
	AdminBaseURL  string
	PortalBaseURL string

	// クライアント個別の上書きが無いときに使うリンク既定値
	DefaultLinks portal.LinkSet
}

// Load は環境変数を読み込み Config を返します。
func Load() *Config {
	defaultProject := getenvDefault("GCP_PROJECT_ID", "leadportal-production")

	return &Config{
		Port:                     getenvDefault("PORT", "8080"),
		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		FirebaseProjectID:        getenvDefault("FIREBASE_PROJECT_ID", defaultProject),

		GCSBucket: os.Getenv("GCS_BUCKET"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		SendGridAPIKey:     os.Getenv("SENDGRID_API_KEY"),
		SendGridSecretName: os.Getenv("SENDGRID_API_KEY_SECRET"),
		SendGridFrom:       os.Getenv("SENDGRID_FROM"),
		SenderName:         getenvDefault("MAIL_SENDER_NAME", "Lead Portal"),

		OpsEmail:      os.Getenv("OPS_EMAIL"),
		AdminBaseURL:  getenvDefault("ADMIN_BASE_URL", "https://admin.example.com"),
		PortalBaseURL: getenvDefault("PORTAL_BASE_URL", "https://portal.example.com"),

		DefaultLinks: portal.LinkSet{
			DPA:             os.Getenv("LINK_DPA"),
			Service6:        os.Getenv("LINK_SERVICE_6"),
			Service12:       os.Getenv("LINK_SERVICE_12"),
			Stripe6Monthly:  os.Getenv("LINK_STRIPE_6_MONTHLY"),
			Stripe6Upfront:  os.Getenv("LINK_STRIPE_6_UPFRONT"),
			Stripe12Monthly: os.Getenv("LINK_STRIPE_12_MONTHLY"),
			Stripe12Upfront: os.Getenv("LINK_STRIPE_12_UPFRONT"),
			UploadFolder:    os.Getenv("LINK_UPLOAD_FOLDER"),
			Creative:        os.Getenv("LINK_CREATIVE"),
		},
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
