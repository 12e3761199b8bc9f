// internal/platform/di/container.go
package di

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	fsrepo "leadportal/internal/adapters/out/firestore"
	"leadportal/internal/adapters/out/gcs"
	"leadportal/internal/adapters/out/mail"

	httpin "leadportal/internal/adapters/in/http"
	"leadportal/internal/adapters/in/http/middleware"

	"leadportal/internal/application/trigger"
	"leadportal/internal/application/usecase"

	"leadportal/internal/infra/config"
	"leadportal/internal/infra/database"
	firestoreinfra "leadportal/internal/infra/firestore"
)

// Container は main.go から使う依存オブジェクトの束。
// main.go を薄く保つために、配線は全てここで済ませます。
type Container struct {
	Router http.Handler

	fs        *firestoreinfra.ClientWrapper
	db        *database.DB
	gcsClient *storage.Client
}

// Close は Cloud Run 終了時などに呼んで安全にリソースを閉じる。
func (c *Container) Close() {
	if c.fs != nil {
		_ = c.fs.Close()
	}
	if c.db != nil {
		_ = c.db.Close()
	}
	if c.gcsClient != nil {
		_ = c.gcsClient.Close()
	}
}

// Build は DI コンテナを初期化して返す。
//   - 外部クライアント（Firestore / Postgres / GCS / Firebase / SendGrid）を組み立てる
//   - Repository と Usecase と Handler を全部つなぐ
func Build(ctx context.Context, cfg *config.Config) (*Container, error) {
	// ------------------------------------------------------------
	// 1. 外部リソース初期化
	// ------------------------------------------------------------

	fs, err := firestoreinfra.NewClient(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("di: init firestore: %w", err)
	}

	c := &Container{fs: fs}

	// 任意: 監査ログの Postgres ミラー。DSN 未設定ならスキップ。
	if cfg.DatabaseURL != "" {
		db, dbErr := database.NewConnection(cfg.DatabaseURL)
		if dbErr != nil {
			log.Printf("[di] WARN: audit mirror disabled (db unavailable): %v", dbErr)
		} else {
			c.db = db
		}
	}

	gcsClient, err := newStorageClient(ctx, cfg.FirestoreCredentialsFile)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("di: init gcs: %w", err)
	}
	c.gcsClient = gcsClient

	// Firebase Auth（営業担当者の ID トークン検証に使用）
	fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("di: init firebase app: %w", err)
	}
	fbAuth, err := fbApp.Auth(ctx)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("di: init firebase auth: %w", err)
	}

	// SendGrid。キーが env に無ければ Secret Manager から解決。
	apiKey := cfg.SendGridAPIKey
	if apiKey == "" && cfg.SendGridSecretName != "" {
		apiKey, err = resolveSendGridKey(ctx, cfg.SendGridSecretName)
		if err != nil {
			log.Printf("[di] WARN: sendgrid key unresolved, mail disabled: %v", err)
			apiKey = ""
		}
	}
	var mailer trigger.MailerPort
	if apiKey != "" && cfg.SendGridFrom != "" {
		sg := mail.NewSendGridClient(apiKey, cfg.SenderName)
		mailer = mail.NewPortalMailer(sg, cfg.SendGridFrom)
	} else {
		log.Printf("[di] mail disabled (no SendGrid key or sender)")
	}

	// ------------------------------------------------------------
	// 2. Repository (outbound adapter)
	// ------------------------------------------------------------

	clientRepo := fsrepo.NewClientRepositoryFS(fs.Client)
	chatRepo := fsrepo.NewChatRepositoryFS(fs.Client)
	dealRepo := fsrepo.NewDealRepositoryFS(fs.Client)
	scorecardRepo := fsrepo.NewScorecardRepositoryFS(fs.Client)
	auditRepo := fsrepo.NewAuditRepositoryFS(fs.Client)
	notificationRepo := fsrepo.NewNotificationRepositoryFS(fs.Client)
	quoteRepo := fsrepo.NewQuoteRepositoryFS(fs.Client)
	revisionRepo := fsrepo.NewRevisionRepositoryFS(fs.Client)
	repRepo := fsrepo.NewRepRepositoryFS(fs.Client)

	assetStore := gcs.NewRevisionAssetStoreGCS(gcsClient, cfg.GCSBucket)

	// ------------------------------------------------------------
	// 3. トリガー層（ルール + ディスパッチャ）
	// ------------------------------------------------------------

	rules := trigger.Rules{
		AdminBaseURL:  cfg.AdminBaseURL,
		PortalBaseURL: cfg.PortalBaseURL,
		OpsEmail:      cfg.OpsEmail,
	}
	dispatcher := &trigger.Dispatcher{
		Scorecard:     scorecardRepo,
		Audit:         auditRepo,
		Notifications: notificationRepo,
		Deals:         dealRepo,
		Mailer:        mailer,
	}
	if c.db != nil {
		dispatcher.AuditMirror = fsrepo.NewAuditRepositoryPG(c.db.Client)
	}

	// ------------------------------------------------------------
	// 4. Usecase と Router
	// ------------------------------------------------------------

	deps := httpin.RouterDeps{
		PortalUC:       usecase.NewPortalUsecase(clientRepo, chatRepo, rules, dispatcher, cfg.DefaultLinks),
		ChatUC:         usecase.NewChatUsecase(chatRepo, rules, dispatcher),
		DealUC:         usecase.NewDealUsecase(dealRepo, clientRepo, scorecardRepo, repRepo, rules, dispatcher),
		QuoteUC:        usecase.NewQuoteUsecase(quoteRepo, rules, dispatcher),
		NotificationUC: usecase.NewNotificationUsecase(notificationRepo),
		RevisionUC:     usecase.NewRevisionUsecase(revisionRepo, assetStore, clientRepo, rules, dispatcher),
		RepAuth: &middleware.RepAuthMiddleware{
			FirebaseAuth: fbAuth,
			RepRepo:      repRepo,
		},
	}

	c.Router = httpin.NewRouter(deps)
	return c, nil
}

func newStorageClient(ctx context.Context, credentialsFile string) (*storage.Client, error) {
	if credentialsFile != "" {
		return storage.NewClient(ctx, option.WithCredentialsFile(credentialsFile))
	}
	return storage.NewClient(ctx)
}
