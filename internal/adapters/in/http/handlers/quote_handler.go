// internal/adapters/in/http/handlers/quote_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	usecase "leadportal/internal/application/usecase"
	"leadportal/internal/domain/quote"
)

// QuoteHandler は /quotes 関連のエンドポイントを担当します。
// 見積ウィザード（公開フォーム）から呼ばれるため認証はありません。
type QuoteHandler struct {
	uc *usecase.QuoteUsecase
}

// NewQuoteHandler はHTTPハンドラを初期化します。
func NewQuoteHandler(uc *usecase.QuoteUsecase) http.Handler {
	return &QuoteHandler{uc: uc}
}

// ServeHTTP はHTTPルーティングの入口です。
func (h *QuoteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	rest := strings.TrimPrefix(r.URL.Path, "/quotes/")
	id, sub, _ := strings.Cut(rest, "/")
	id = strings.TrimSpace(id)
	if id == "" {
		badRequest(w, "missing quote id")
		return
	}

	switch {
	case r.Method == http.MethodGet && sub == "":
		h.load(w, r, id)
	case r.Method == http.MethodPatch && sub == "draft",
		r.Method == http.MethodPost && sub == "draft":
		h.saveDraft(w, r, id)
	case r.Method == http.MethodPost && sub == "complete":
		h.complete(w, r, id)
	default:
		notFound(w)
	}
}

// GET /quotes/{id} — 無ければ作って返す（フォーム初回表示）
func (h *QuoteHandler) load(w http.ResponseWriter, r *http.Request, id string) {
	q, err := h.uc.LoadOrCreate(r.Context(), id)
	if err != nil {
		writeQuoteErr(w, err)
		return
	}
	writeJSON(w, q)
}

// PATCH /quotes/{id}/draft
func (h *QuoteHandler) saveDraft(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Fields            map[string]any `json:"fields"`
		CompletionPercent int            `json:"completionPercent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid json")
		return
	}

	if err := h.uc.SaveDraft(r.Context(), id, body.Fields, body.CompletionPercent); err != nil {
		writeQuoteErr(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "saved"})
}

// POST /quotes/{id}/complete
func (h *QuoteHandler) complete(w http.ResponseWriter, r *http.Request, id string) {
	q, err := h.uc.Complete(r.Context(), id)
	if err != nil {
		writeQuoteErr(w, err)
		return
	}
	writeJSON(w, q)
}

// エラーハンドリング
func writeQuoteErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, quote.ErrInvalidID):
		code = http.StatusBadRequest
	case errors.Is(err, quote.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, quote.ErrAlreadyCompleted):
		code = http.StatusConflict
	}
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
