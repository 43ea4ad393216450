package document

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/dcalliari/appe/internal"
	"github.com/dcalliari/appe/internal/transport"
	"github.com/dcalliari/appe/pkg/logger"
	"github.com/go-chi/chi"
)

// multipart overhead allowed on top of the file limit
const formSlack = 1 << 20

type Handler struct {
	*transport.BaseHandler
	Service   ServiceAPI
	MaxUpload int64
}

func NewHandler(svc ServiceAPI, maxUpload int64) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
		MaxUpload:   maxUpload,
	}
}

// ListCategories handles GET /documents/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, CategoriesResponse{Categories: h.Service.Categories()})
}

// ListDocuments handles GET /documents?category=&search=
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	docs, err := h.Service.List(r.Context(), Filter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
	})
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, docs)
}

// GetDocument handles GET /documents/{id}
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, d)
}

// CreateDocument handles POST /documents. JSON bodies register an existing
// file; multipart bodies upload one.
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	id := internal.IdentityFromContext(r.Context())

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		h.upload(w, r, id)
		return
	}

	var dto CreateDocumentDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	d, err := h.Service.Create(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteMessage(w, http.StatusCreated, "document created", d)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request, id *internal.Identity) {
	// role check before reading a potentially large body
	if err := internal.RequireRole(id, internal.RoleAdmin); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if h.MaxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUpload+formSlack)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.HandleServiceError(w, r, ErrFileTooLarge)
			return
		}
		h.HandleServiceError(w, r, internal.NewValidationError("invalid multipart body", internal.ErrCodeValidationFailed))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.HandleServiceError(w, r, ErrFileRequired)
		return
	}
	defer file.Close()

	d, err := h.Service.Upload(r.Context(), id, UploadDTO{
		Title:    r.FormValue("title"),
		Category: r.FormValue("category"),
		Filename: header.Filename,
	}, file)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteMessage(w, http.StatusCreated, "document uploaded", d)
}

// UpdateDocument handles PUT /documents/{id}
func (h *Handler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	var dto UpdateDocumentDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	d, err := h.Service.Update(r.Context(), internal.IdentityFromContext(r.Context()), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "document updated", d)
}

// DeleteDocument handles DELETE /documents/{id}
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), internal.IdentityFromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteMessage(w, http.StatusOK, "document deleted", nil)
}

// DownloadDocument handles GET /documents/{id}/download
func (h *Handler) DownloadDocument(w http.ResponseWriter, r *http.Request) {
	dl, err := h.Service.Download(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	defer dl.Close()

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.Name}))
	http.ServeContent(w, r, dl.Name, dl.ModTime, dl.Content)
}
