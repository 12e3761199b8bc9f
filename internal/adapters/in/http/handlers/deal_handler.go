// internal/adapters/in/http/handlers/deal_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"leadportal/internal/adapters/in/http/middleware"
	usecase "leadportal/internal/application/usecase"
	dealdom "leadportal/internal/domain/deal"
	"leadportal/internal/domain/portal"
	"leadportal/internal/domain/scorecard"
)

// DealHandler は /deals と /scorecard のエンドポイントを担当します。
// RepAuthMiddleware の内側でマウントされる前提です。
type DealHandler struct {
	uc *usecase.DealUsecase
}

// NewDealHandler はHTTPハンドラを初期化します。
func NewDealHandler(uc *usecase.DealUsecase) http.Handler {
	return &DealHandler{uc: uc}
}

// ServeHTTP はHTTPルーティングの入口です。
func (h *DealHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/scorecard":
		h.scorecard(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/deals":
		h.listMine(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/deals":
		h.create(w, r)
	default:
		rest := strings.TrimPrefix(r.URL.Path, "/deals/")
		id, sub, _ := strings.Cut(rest, "/")
		id = strings.TrimSpace(id)
		if id == "" {
			badRequest(w, "missing deal id")
			return
		}
		switch {
		case r.Method == http.MethodGet && sub == "":
			h.get(w, r, id)
		case r.Method == http.MethodPut && sub == "":
			h.save(w, r, id)
		case r.Method == http.MethodPost && sub == "portal":
			h.createPortal(w, r, id)
		default:
			notFound(w)
		}
	}
}

// GET /deals/{id}
func (h *DealHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	d, err := h.uc.Get(r.Context(), id)
	if err != nil {
		writeDealErr(w, err)
		return
	}
	writeJSON(w, d)
}

// GET /deals — 認証済み担当者の案件一覧
func (h *DealHandler) listMine(w http.ResponseWriter, r *http.Request) {
	rep, ok := middleware.RepFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		writeJSON(w, map[string]string{"error": "unauthorized"})
		return
	}

	repID := rep.ID
	// 管理者は rep クエリで他の担当者を見られます。
	if q := strings.TrimSpace(r.URL.Query().Get("rep")); q != "" && rep.IsAdmin() {
		repID = q
	}

	deals, err := h.uc.ListByRep(r.Context(), repID)
	if err != nil {
		writeDealErr(w, err)
		return
	}
	if deals == nil {
		deals = []dealdom.Deal{}
	}
	writeJSON(w, deals)
}

// POST /deals
func (h *DealHandler) create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CompanyName string `json:"companyName"`
		Stage       string `json:"stage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid json")
		return
	}
	if body.Stage == "" {
		body.Stage = string(dealdom.StageLead)
	}

	id, err := h.uc.Create(r.Context(), body.CompanyName, dealdom.Stage(body.Stage))
	if err != nil {
		writeDealErr(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]string{"id": id})
}

// PUT /deals/{id}
// 部分更新を許すため、既存レコードに上書きデコードします。
// ボディに無いフィールドは現在の値のまま残ります。
func (h *DealHandler) save(w http.ResponseWriter, r *http.Request, id string) {
	d, err := h.uc.Get(r.Context(), id)
	if err != nil {
		writeDealErr(w, err)
		return
	}
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		badRequest(w, "invalid json")
		return
	}
	d.ID = id

	if rep, ok := middleware.RepFromContext(r.Context()); ok {
		d.LastUpdatedBy = rep.ID
	}

	if err := h.uc.Save(r.Context(), d); err != nil {
		writeDealErr(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "saved"})
}

// POST /deals/{id}/portal
func (h *DealHandler) createPortal(w http.ResponseWriter, r *http.Request, id string) {
	var body struct {
		Variant string `json:"variant"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid json")
		return
	}

	portalID, err := h.uc.CreatePortalForDeal(r.Context(), id, portal.Variant(body.Variant))
	if err != nil {
		writeDealErr(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, map[string]string{"portalId": portalID})
}

// GET /scorecard?rep={repId}&at=2026-09-01T00:00:00Z
// rep 省略時は認証済み担当者自身、rep=all は管理者のみ全員分。
func (h *DealHandler) scorecard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	rep, ok := middleware.RepFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		writeJSON(w, map[string]string{"error": "unauthorized"})
		return
	}

	at := time.Now().UTC()
	if s := strings.TrimSpace(r.URL.Query().Get("at")); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			badRequest(w, "invalid at timestamp")
			return
		}
		at = t.UTC()
	}

	target := strings.TrimSpace(r.URL.Query().Get("rep"))
	if target == "all" {
		if !rep.IsAdmin() {
			w.WriteHeader(http.StatusForbidden)
			writeJSON(w, map[string]string{"error": "forbidden"})
			return
		}
		perf, err := h.uc.TeamPerformance(r.Context(), at)
		if err != nil {
			writeDealErr(w, err)
			return
		}
		if perf == nil {
			perf = []usecase.RepPerformance{}
		}
		writeJSON(w, perf)
		return
	}

	repID := rep.ID
	if target != "" && rep.IsAdmin() {
		repID = target
	}

	entry, err := h.uc.WeekScorecard(r.Context(), repID, at)
	if errors.Is(err, scorecard.ErrNotFound) {
		// 今週まだ動きが無い担当者はゼロ値を返します。
		entry = scorecard.Entry{RepID: repID, WeekID: scorecard.WeekID(at)}
	} else if err != nil {
		writeDealErr(w, err)
		return
	}
	writeJSON(w, entry)
}

// エラーハンドリング
func writeDealErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, dealdom.ErrInvalidID),
		errors.Is(err, dealdom.ErrInvalidStage),
		errors.Is(err, dealdom.ErrEmptyCompany):
		code = http.StatusBadRequest
	case errors.Is(err, dealdom.ErrNotFound):
		code = http.StatusNotFound
	}
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
