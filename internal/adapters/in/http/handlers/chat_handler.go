// internal/adapters/in/http/handlers/chat_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	usecase "leadportal/internal/application/usecase"
	"leadportal/internal/domain/chat"
)

// ChatHandler は /messages 関連のエンドポイントを担当します。
type ChatHandler struct {
	uc *usecase.ChatUsecase
}

// NewChatHandler はHTTPハンドラを初期化します。
func NewChatHandler(uc *usecase.ChatUsecase) http.Handler {
	return &ChatHandler{uc: uc}
}

// ServeHTTP はHTTPルーティングの入口です。
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	rest := strings.TrimPrefix(r.URL.Path, "/messages/")
	clientID, sub, _ := strings.Cut(rest, "/")
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		badRequest(w, "missing client id")
		return
	}

	switch {
	case r.Method == http.MethodGet && sub == "":
		h.list(w, r, clientID)
	case r.Method == http.MethodGet && sub == "summary":
		h.summary(w, r, clientID)
	case r.Method == http.MethodPost && sub == "":
		h.post(w, r, clientID)
	case r.Method == http.MethodPost && sub == "read":
		h.markRead(w, r, clientID)
	default:
		notFound(w)
	}
}

// GET /messages/{clientId}
func (h *ChatHandler) list(w http.ResponseWriter, r *http.Request, clientID string) {
	msgs, err := h.uc.List(r.Context(), clientID)
	if err != nil {
		writeChatErr(w, err)
		return
	}
	if msgs == nil {
		msgs = []chat.Message{}
	}
	writeJSON(w, msgs)
}

// GET /messages/{clientId}/summary
func (h *ChatHandler) summary(w http.ResponseWriter, r *http.Request, clientID string) {
	s, err := h.uc.Summary(r.Context(), clientID)
	if err != nil {
		writeChatErr(w, err)
		return
	}
	writeJSON(w, s)
}

// POST /messages/{clientId}
func (h *ChatHandler) post(w http.ResponseWriter, r *http.Request, clientID string) {
	var body struct {
		Text       string `json:"text"`
		Sender     string `json:"sender"`
		SenderName string `json:"senderName"`
		ClientName string `json:"clientName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid json")
		return
	}

	m, err := h.uc.Post(r.Context(), clientID, body.ClientName, body.Text, chat.Sender(body.Sender), body.SenderName)
	if err != nil {
		writeChatErr(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, m)
}

// POST /messages/{clientId}/read
func (h *ChatHandler) markRead(w http.ResponseWriter, r *http.Request, clientID string) {
	var body struct {
		Reader string `json:"reader"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid json")
		return
	}

	if err := h.uc.MarkRead(r.Context(), clientID, chat.Sender(body.Reader)); err != nil {
		writeChatErr(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "read"})
}

// エラーハンドリング
func writeChatErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, chat.ErrEmptyText),
		errors.Is(err, chat.ErrInvalidSender),
		errors.Is(err, chat.ErrInvalidClient):
		code = http.StatusBadRequest
	case errors.Is(err, chat.ErrNotFound):
		code = http.StatusNotFound
	}
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
