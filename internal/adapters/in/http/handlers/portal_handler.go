// internal/adapters/in/http/handlers/portal_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	usecase "leadportal/internal/application/usecase"
	"leadportal/internal/domain/portal"
)

// PortalHandler は /portal 関連のエンドポイントを担当します。
// クライアント側ポータルの入口で、認証はリンク内のクライアント ID です
// （id クエリ、旧リンク互換で c も可）。
type PortalHandler struct {
	uc *usecase.PortalUsecase
}

// NewPortalHandler はHTTPハンドラを初期化します。
func NewPortalHandler(uc *usecase.PortalUsecase) http.Handler {
	return &PortalHandler{uc: uc}
}

// ServeHTTP はHTTPルーティングの入口です。
func (h *PortalHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.TrimPrefix(r.URL.Path, "/portal")
	switch {
	case r.Method == http.MethodGet && path == "/state":
		h.state(w, r)
	case r.Method == http.MethodPost && strings.HasPrefix(path, "/steps/") && strings.HasSuffix(path, "/complete"):
		h.completeStep(w, r, strings.TrimSuffix(strings.TrimPrefix(path, "/steps/"), "/complete"))
	case r.Method == http.MethodPost && path == "/reset":
		h.reset(w, r)
	case r.Method == http.MethodPost && path == "/website-access":
		h.websiteAccess(w, r)
	case r.Method == http.MethodPost && path == "/clients":
		h.createClient(w, r)
	default:
		notFound(w)
	}
}

// GET /portal/state?id={clientId}&term=service12&pay=monthly
func (h *PortalHandler) state(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := clientIDParam(r)
	if id == "" {
		badRequest(w, "missing client id")
		return
	}

	s, err := h.uc.Open(ctx, id)
	if err != nil {
		writePortalErr(w, err)
		return
	}
	defer s.Close()

	c := s.Client()
	term := portal.ServiceTerm(r.URL.Query().Get("term"))
	if term == "" {
		term = portal.Term6
	}
	pay := portal.PaymentType(r.URL.Query().Get("pay"))
	if pay == "" {
		pay = portal.PayMonthly
	}

	writeJSON(w, map[string]any{
		"client":   c,
		"progress": s.Progress(),
		"links":    h.uc.ResolveLinks(c, term, pay),
	})
}

// POST /portal/steps/{n}/complete?id={clientId}
func (h *PortalHandler) completeStep(w http.ResponseWriter, r *http.Request, stepStr string) {
	ctx := r.Context()

	id := clientIDParam(r)
	if id == "" {
		badRequest(w, "missing client id")
		return
	}
	step, err := strconv.Atoi(strings.TrimSpace(stepStr))
	if err != nil {
		badRequest(w, "invalid step")
		return
	}

	res, err := h.uc.CompleteStep(ctx, id, step)
	if err != nil {
		writePortalErr(w, err)
		return
	}
	writeJSON(w, res)
}

// POST /portal/reset?id={clientId}
func (h *PortalHandler) reset(w http.ResponseWriter, r *http.Request) {
	id := clientIDParam(r)
	if id == "" {
		badRequest(w, "missing client id")
		return
	}
	if err := h.uc.Reset(r.Context(), id); err != nil {
		writePortalErr(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "reset"})
}

// POST /portal/website-access?id={clientId}
func (h *PortalHandler) websiteAccess(w http.ResponseWriter, r *http.Request) {
	id := clientIDParam(r)
	if id == "" {
		badRequest(w, "missing client id")
		return
	}

	var body struct {
		Details string `json:"details"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid json")
		return
	}

	if err := h.uc.SubmitWebsiteAccess(r.Context(), id, body.Details); err != nil {
		writePortalErr(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "submitted"})
}

// POST /portal/clients
func (h *PortalHandler) createClient(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID         string `json:"id"`
		ClientName string `json:"clientName"`
		Variant    string `json:"variant"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid json")
		return
	}

	id, err := h.uc.CreateClient(r.Context(), body.ID, body.ClientName, portal.Variant(body.Variant))
	if err != nil {
		writePortalErr(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]string{"id": id})
}

// エラーハンドリング
func writePortalErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, portal.ErrInvalidID),
		errors.Is(err, portal.ErrStepOutOfRange):
		code = http.StatusBadRequest
	case errors.Is(err, portal.ErrStepLocked):
		code = http.StatusConflict
	case errors.Is(err, portal.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, portal.ErrInactive):
		code = http.StatusGone
	}
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
