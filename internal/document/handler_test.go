package document_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/dcalliari/appe/internal"
	"github.com/dcalliari/appe/internal/document"
	"github.com/dcalliari/appe/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/afero"
)

var _ = Describe("Document Handler", func() {
	var (
		repo   *MockRepository
		router chi.Router
		as     *internal.Identity
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		svc := document.NewService(repo, document.NewFileStore(afero.NewMemMapFs()), 1<<20, logger.Discard())
		h := document.NewHandler(svc, 1<<20)
		as = &internal.Identity{UserID: "u-adm", Role: internal.RoleAdmin}

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(internal.ContextWithIdentity(r.Context(), as)))
			})
		})
		router.Get("/documents/categories", h.ListCategories)
		router.Get("/documents", h.ListDocuments)
		router.Post("/documents", h.CreateDocument)
		router.Get("/documents/{id}", h.GetDocument)
		router.Get("/documents/{id}/download", h.DownloadDocument)
	})

	uploadRequest := func(title, category, filename string, content []byte) *http.Request {
		body := &bytes.Buffer{}
		mw := multipart.NewWriter(body)
		Expect(mw.WriteField("title", title)).To(Succeed())
		Expect(mw.WriteField("category", category)).To(Succeed())
		part, err := mw.CreateFormFile("file", filename)
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write(content)
		Expect(err).NotTo(HaveOccurred())
		Expect(mw.Close()).To(Succeed())

		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req
	}

	It("returns the category labels", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents/categories", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))

		var resp document.CategoriesResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Categories[0]).To(Equal(document.CategoryOption{Value: "meeting_minutes", Label: "Atas de Reuniões"}))
	})

	It("uploads through multipart and downloads the bytes", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, uploadRequest("Regimento", "regulations", "regimento.pdf", []byte(pdfBytes)))
		Expect(rec.Code).To(Equal(http.StatusCreated))

		var created struct {
			Success bool              `json:"success"`
			Data    document.Document `json:"data"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &created)).To(Succeed())
		Expect(created.Success).To(BeTrue())
		Expect(created.Data.Category).To(Equal("regulations"))

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents/"+created.Data.ID+"/download", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Content-Type")).To(Equal("application/pdf"))
		Expect(rec.Header().Get("Content-Disposition")).To(HavePrefix("attachment;"))
		Expect(rec.Header().Get("Content-Disposition")).To(ContainSubstring("regimento.pdf"))
		body, _ := io.ReadAll(rec.Body)
		Expect(string(body)).To(Equal(pdfBytes))
	})

	It("registers a document from JSON", func() {
		payload := `{"title":"Comunicado","file_path":"comunicado.txt","category":"announcements"}`
		req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(repo.docs).To(HaveLen(1))
	})

	It("refuses uploads from residents before reading the file", func() {
		as = &internal.Identity{UserID: "u-101", Role: internal.RoleResident}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, uploadRequest("x", "bills", "x.txt", []byte("x")))
		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	It("requires the file part", func() {
		body := &bytes.Buffer{}
		mw := multipart.NewWriter(body)
		Expect(mw.WriteField("title", "x")).To(Succeed())
		Expect(mw.WriteField("category", "bills")).To(Succeed())
		Expect(mw.Close()).To(Succeed())
		req := httptest.NewRequest(http.MethodPost, "/documents", body)
		req.Header.Set("Content-Type", mw.FormDataContentType())

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("returns 404 for unknown documents", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents/missing", nil))
		Expect(rec.Code).To(Equal(http.StatusNotFound))

		var resp internal.Response
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Success).To(BeFalse())
		Expect(resp.Code).To(Equal(internal.ErrCodeDocumentNotFound))
	})

	It("passes query filters through", func() {
		ctx := context.Background()
		svcDocs := []*document.Document{
			{Title: "Boleto", FilePath: "a", Category: "bills"},
			{Title: "Ata", FilePath: "b", Category: "meeting_minutes"},
		}
		for _, d := range svcDocs {
			Expect(repo.Create(ctx, d)).To(Succeed())
		}

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/documents?category=bills", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
		var resp struct {
			Data []document.Document `json:"data"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Data).To(HaveLen(1))
		Expect(resp.Data[0].Title).To(Equal("Boleto"))
	})
})
