// internal/adapters/in/http/handlers/revision_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	usecase "leadportal/internal/application/usecase"
	"leadportal/internal/domain/portal"
	"leadportal/internal/domain/revision"
)

// 1 依頼あたりの添付合計上限。
const maxRevisionUploadBytes = 32 << 20 // 32 MiB

// RevisionHandler は /revisions 関連のエンドポイントを担当します。
type RevisionHandler struct {
	uc *usecase.RevisionUsecase
}

// NewRevisionHandler はHTTPハンドラを初期化します。
func NewRevisionHandler(uc *usecase.RevisionUsecase) http.Handler {
	return &RevisionHandler{uc: uc}
}

// ServeHTTP はHTTPルーティングの入口です。
func (h *RevisionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/revisions":
		h.list(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/revisions":
		h.submit(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/revisions/resolve":
		h.resolve(w, r)
	default:
		notFound(w)
	}
}

// GET /revisions?id={clientId}
func (h *RevisionHandler) list(w http.ResponseWriter, r *http.Request) {
	clientID := clientIDParam(r)
	if clientID == "" {
		badRequest(w, "missing client id")
		return
	}

	reqs, err := h.uc.ListByClient(r.Context(), clientID)
	if err != nil {
		writeRevisionErr(w, err)
		return
	}
	if reqs == nil {
		reqs = []revision.Request{}
	}
	writeJSON(w, reqs)
}

// POST /revisions?id={clientId} — multipart/form-data
// フィールド: notes（必須）、files（複数可）
func (h *RevisionHandler) submit(w http.ResponseWriter, r *http.Request) {
	clientID := clientIDParam(r)
	if clientID == "" {
		badRequest(w, "missing client id")
		return
	}

	if err := r.ParseMultipartForm(maxRevisionUploadBytes); err != nil {
		badRequest(w, "invalid multipart form")
		return
	}

	notes := r.FormValue("notes")

	var uploads []usecase.RevisionUpload
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["files"] {
			f, err := fh.Open()
			if err != nil {
				badRequest(w, "unreadable upload")
				return
			}
			data, err := io.ReadAll(io.LimitReader(f, maxRevisionUploadBytes))
			_ = f.Close()
			if err != nil {
				badRequest(w, "unreadable upload")
				return
			}
			uploads = append(uploads, usecase.RevisionUpload{
				FileName:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}

	req, err := h.uc.Submit(r.Context(), clientID, notes, uploads)
	if err != nil {
		writeRevisionErr(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, req)
}

// POST /revisions/resolve?id={clientId} — 管理側が対応済みにする
func (h *RevisionHandler) resolve(w http.ResponseWriter, r *http.Request) {
	clientID := clientIDParam(r)
	if clientID == "" {
		badRequest(w, "missing client id")
		return
	}
	if err := h.uc.Resolve(r.Context(), clientID); err != nil {
		writeRevisionErr(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "resolved"})
}

// エラーハンドリング
func writeRevisionErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, revision.ErrEmptyNotes),
		errors.Is(err, revision.ErrInvalidClient),
		errors.Is(err, revision.ErrInvalidAsset):
		code = http.StatusBadRequest
	case errors.Is(err, portal.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, portal.ErrInactive):
		code = http.StatusGone
	}
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
