// internal/adapters/in/http/router.go
package httpin

import (
	"net/http"

	"leadportal/internal/adapters/in/http/handlers"
	"leadportal/internal/adapters/in/http/middleware"
	usecase "leadportal/internal/application/usecase"
)

// RouterDeps collects all usecases (and other dependencies) injected from main.go.
type RouterDeps struct {
	PortalUC       *usecase.PortalUsecase
	ChatUC         *usecase.ChatUsecase
	DealUC         *usecase.DealUsecase
	QuoteUC        *usecase.QuoteUsecase
	NotificationUC *usecase.NotificationUsecase
	RevisionUC     *usecase.RevisionUsecase

	// RepAuth が nil のときは管理系エンドポイントをマウントしません
	// （ローカル開発で Firebase 無しでもポータル側だけ動かせるように）。
	RepAuth *middleware.RepAuthMiddleware
}

// NewRouter sets up HTTP routing for all endpoints.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	// Health check (always on)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// ----------------------------------------
	// 公開（クライアントポータル / 見積フォーム）
	// ----------------------------------------

	if deps.PortalUC != nil {
		mux.Handle("/portal/", handlers.NewPortalHandler(deps.PortalUC))
	}
	if deps.ChatUC != nil {
		mux.Handle("/messages/", handlers.NewChatHandler(deps.ChatUC))
	}
	if deps.QuoteUC != nil {
		mux.Handle("/quotes/", handlers.NewQuoteHandler(deps.QuoteUC))
	}
	if deps.RevisionUC != nil {
		rh := handlers.NewRevisionHandler(deps.RevisionUC)
		mux.Handle("/revisions", rh)
		mux.Handle("/revisions/", rh)
	}

	// ----------------------------------------
	// 管理（営業担当者の Firebase 認証必須）
	// ----------------------------------------

	if deps.RepAuth != nil {
		if deps.DealUC != nil {
			dh := deps.RepAuth.Handler(handlers.NewDealHandler(deps.DealUC))
			mux.Handle("/deals", dh)
			mux.Handle("/deals/", dh)
			mux.Handle("/scorecard", dh)
		}
		if deps.NotificationUC != nil {
			mux.Handle("/notifications/", deps.RepAuth.Handler(handlers.NewNotificationHandler(deps.NotificationUC)))
		}
	}

	// チェーン順: Recover を最内、CORS を最外に。
	return middleware.CORS(middleware.Recover(mux))
}
