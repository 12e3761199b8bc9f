// internal/adapters/in/http/handlers/notification_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"leadportal/internal/adapters/in/http/middleware"
	usecase "leadportal/internal/application/usecase"
	"leadportal/internal/domain/notification"
)

// NotificationHandler は /notifications 関連のエンドポイントを担当します。
// リアルタイム購読はフロントが Firestore を直接リッスンするため、
// ここは未読数の取得と既読化のみです。
type NotificationHandler struct {
	uc *usecase.NotificationUsecase
}

// NewNotificationHandler はHTTPハンドラを初期化します。
func NewNotificationHandler(uc *usecase.NotificationUsecase) http.Handler {
	return &NotificationHandler{uc: uc}
}

// ServeHTTP はHTTPルーティングの入口です。
func (h *NotificationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/notifications/unread":
		h.unread(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/notifications/read":
		h.markRead(w, r)
	default:
		notFound(w)
	}
}

// GET /notifications/unread?recipientId=&recipientType=
// 担当者自身の分は認証コンテキストから補完します。
func (h *NotificationHandler) unread(w http.ResponseWriter, r *http.Request) {
	recipientID := strings.TrimSpace(r.URL.Query().Get("recipientId"))
	rt := notification.RecipientType(strings.TrimSpace(r.URL.Query().Get("recipientType")))

	if recipientID == "" {
		if rep, ok := middleware.RepFromContext(r.Context()); ok {
			recipientID = rep.ID
			rt = notification.RecipientSalesRep
		}
	}
	if recipientID == "" {
		badRequest(w, "missing recipientId")
		return
	}

	n, err := h.uc.UnreadCount(r.Context(), recipientID, rt)
	if err != nil {
		writeNotificationErr(w, err)
		return
	}
	writeJSON(w, map[string]int{"unread": n})
}

// POST /notifications/read
func (h *NotificationHandler) markRead(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid json")
		return
	}

	if err := h.uc.MarkRead(r.Context(), body.IDs); err != nil {
		writeNotificationErr(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "read"})
}

// エラーハンドリング
func writeNotificationErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, notification.ErrValidation):
		code = http.StatusBadRequest
	case errors.Is(err, notification.ErrNotFound):
		code = http.StatusNotFound
	}
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
