package visitor_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/dcalliari/appe/internal"
	"github.com/dcalliari/appe/internal/auth"
	"github.com/dcalliari/appe/internal/transport/rest"
	"github.com/dcalliari/appe/internal/visitor"
	"github.com/dcalliari/appe/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Visitor Handler", func() {
	var (
		repo     *MockRepository
		router   *chi.Mux
		tokens   *auth.JWTTokenGenerator
		admin    *internal.Identity
		resident *internal.Identity
		other    *internal.Identity
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		svc := visitor.NewService(repo, &recordingPublisher{}, logger.Discard())
		tokens = auth.NewJWTTokenGenerator("0123456789abcdef0123456789abcdef", time.Hour)

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, nil, rest.Handlers{
			Auth:    auth.NewHandler(auth.NewService(nil, tokens, logger.Discard()), false),
			Visitor: visitor.NewHandler(svc),
		}, rest.Options{LoginRequests: 5, LoginWindow: time.Minute}, logger.Discard())

		admin = &internal.Identity{UserID: "u-adm", Apartment: "ADM", Role: internal.RoleAdmin}
		resident = &internal.Identity{UserID: "u-101", Apartment: "101", Role: internal.RoleResident}
		other = &internal.Identity{UserID: "u-102", Apartment: "102", Role: internal.RoleResident}
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

	create := func() visitor.Request {
		GinkgoHelper()
		rec := do(resident, http.MethodPost, "/api/visitors",
			`{"visitorName":"Maria Souza","visitDate":"2024-03-10","status":"approved"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		var resp struct {
			Success bool            `json:"success"`
			Data    visitor.Request `json:"data"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Success).To(BeTrue())
		return resp.Data
	}

	errorBody := func(rec *httptest.ResponseRecorder) internal.Response {
		GinkgoHelper()
		var resp internal.Response
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		return resp
	}

	It("forces new requests to pending with a midnight visit time", func() {
		v := create()
		Expect(v.Status).To(Equal(visitor.StatusPending))
		Expect(v.VisitTime).To(Equal(visitor.DefaultVisitTime))
		Expect(v.RequesterID).To(Equal("u-101"))
	})

	It("refuses approval from a non-admin even when they own the request", func() {
		v := create()

		rec := do(resident, http.MethodPatch, "/api/visitors/"+v.ID+"/approve", "")
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		resp := errorBody(rec)
		Expect(resp.Success).To(BeFalse())
		Expect(resp.Code).To(Equal(internal.ErrCodeAdminRequired))
		Expect(repo.requests[v.ID].Status).To(Equal(visitor.StatusPending))

		rec = do(admin, http.MethodPatch, "/api/visitors/"+v.ID+"/approve", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(repo.requests[v.ID].Status).To(Equal(visitor.StatusApproved))
	})

	It("lets the requester reject but not a stranger", func() {
		v := create()
		Expect(do(other, http.MethodPatch, "/api/visitors/"+v.ID+"/reject", "").Code).To(Equal(http.StatusForbidden))
		Expect(do(resident, http.MethodPatch, "/api/visitors/"+v.ID+"/reject", "").Code).To(Equal(http.StatusOK))
		Expect(repo.requests[v.ID].Status).To(Equal(visitor.StatusRejected))
	})

	It("refuses a status patch from the requester", func() {
		v := create()
		rec := do(resident, http.MethodPut, "/api/visitors/"+v.ID, `{"status":"approved"}`)
		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})

	It("answers a blanked visit date with 400", func() {
		v := create()
		rec := do(resident, http.MethodPut, "/api/visitors/"+v.ID, `{"visitDate":""}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(errorBody(rec).Success).To(BeFalse())
	})

	It("rejects a malformed visitor document", func() {
		rec := do(resident, http.MethodPost, "/api/visitors",
			`{"visitorName":"Maria","visitDate":"2024-03-10","visitorDocument":"123"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("scopes the list to the caller unless admin", func() {
		create()

		var resp struct {
			Data []visitor.Request `json:"data"`
		}
		rec := do(other, http.MethodGet, "/api/visitors", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Data).To(BeEmpty())

		rec = do(admin, http.MethodGet, "/api/visitors", "")
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Data).To(HaveLen(1))
	})

	It("lets the owner delete and returns 404 afterwards", func() {
		v := create()
		Expect(do(other, http.MethodDelete, "/api/visitors/"+v.ID, "").Code).To(Equal(http.StatusForbidden))
		Expect(do(resident, http.MethodDelete, "/api/visitors/"+v.ID, "").Code).To(Equal(http.StatusOK))
		Expect(do(resident, http.MethodGet, "/api/visitors/"+v.ID, "").Code).To(Equal(http.StatusNotFound))
	})
})
