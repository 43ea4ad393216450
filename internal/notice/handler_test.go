package notice_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/dcalliari/appe/internal"
	"github.com/dcalliari/appe/internal/auth"
	"github.com/dcalliari/appe/internal/notice"
	"github.com/dcalliari/appe/internal/transport/rest"
	"github.com/dcalliari/appe/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Notice Handler", func() {
	var (
		repo     *MockRepository
		router   *chi.Mux
		tokens   *auth.JWTTokenGenerator
		admin    *internal.Identity
		resident *internal.Identity
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		today := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
		svc := notice.NewService(repo, logger.Discard()).WithClock(func() time.Time { return today })
		tokens = auth.NewJWTTokenGenerator("0123456789abcdef0123456789abcdef", time.Hour)

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, nil, rest.Handlers{
			Auth:   auth.NewHandler(auth.NewService(nil, tokens, logger.Discard()), false),
			Notice: notice.NewHandler(svc),
		}, rest.Options{LoginRequests: 5, LoginWindow: time.Minute}, logger.Discard())

		admin = &internal.Identity{UserID: "u-adm", Apartment: "ADM", Role: internal.RoleAdmin}
		resident = &internal.Identity{UserID: "u-101", Apartment: "101", Role: internal.RoleResident}
	})

	do := func(as *internal.Identity, method, path, body string) *httptest.ResponseRecorder {
		GinkgoHelper()
		var reader io.Reader
		if body != "" {
			reader = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, path, reader)
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		if as != nil {
			token, _, err := tokens.GenerateToken(*as)
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	elevator := `{"title":"Elevador","content":"Parado das 8h às 12h","type":"maintenance"}`

	It("lets an admin post a notice", func() {
		rec := do(admin, http.MethodPost, "/api/notices", elevator)
		Expect(rec.Code).To(Equal(http.StatusCreated))

		var resp struct {
			Success bool          `json:"success"`
			Message string        `json:"message"`
			Data    notice.Notice `json:"data"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Success).To(BeTrue())
		Expect(resp.Data.Priority).To(Equal(notice.PriorityMedium))
		Expect(*resp.Data.CreatedBy).To(Equal("u-adm"))
		Expect(repo.notices).To(HaveLen(1))
	})

	It("refuses posting and deleting from a resident", func() {
		rec := do(resident, http.MethodPost, "/api/notices", elevator)
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		var resp internal.Response
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Success).To(BeFalse())
		Expect(resp.Code).To(Equal(internal.ErrCodeAdminRequired))
		Expect(repo.notices).To(BeEmpty())

		Expect(do(admin, http.MethodPost, "/api/notices", elevator).Code).To(Equal(http.StatusCreated))
		for id := range repo.notices {
			Expect(do(resident, http.MethodDelete, "/api/notices/"+id, "").Code).To(Equal(http.StatusForbidden))
		}
		Expect(repo.notices).To(HaveLen(1))
	})

	It("rejects an unknown notice type", func() {
		rec := do(admin, http.MethodPost, "/api/notices", `{"title":"x","content":"y","type":"party"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("lists only notices that have not expired", func() {
		expired := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
		repo.notices["old"] = &notice.Notice{ID: "old", Title: "Antigo", ExpiresAt: &expired}
		Expect(do(admin, http.MethodPost, "/api/notices",
			`{"title":"Assembleia","content":"Dia 10","type":"meeting","expires_at":"2024-02-01"}`).Code).
			To(Equal(http.StatusCreated))

		rec := do(resident, http.MethodGet, "/api/notices", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		var resp struct {
			Data []notice.Notice `json:"data"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Data).To(HaveLen(1))
		Expect(resp.Data[0].Title).To(Equal("Assembleia"))
	})

	It("answers 404 when deleting a missing notice", func() {
		rec := do(admin, http.MethodDelete, "/api/notices/missing", "")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		var resp internal.Response
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Code).To(Equal(internal.ErrCodeNoticeNotFound))
	})
})
