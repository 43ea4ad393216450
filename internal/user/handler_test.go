package user_test

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
	"github.com/dcalliari/appe/internal/user"
	"github.com/dcalliari/appe/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = Describe("Profile Handler", func() {
	var (
		repo     *MockRepository
		router   *chi.Mux
		tokens   *auth.JWTTokenGenerator
		resident *internal.Identity
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		repo.users["u-101"] = &user.User{ID: "u-101", Apartment: "101", Name: "Ana", Role: internal.RoleResident, PasswordHash: "secret-hash"}
		repo.users["u-102"] = &user.User{ID: "u-102", Apartment: "102", Name: "Bruno", Role: internal.RoleResident, Email: strPtr("bruno@example.com")}
		svc := user.NewService(repo, bcrypt.MinCost, logger.Discard())
		tokens = auth.NewJWTTokenGenerator("0123456789abcdef0123456789abcdef", time.Hour)

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, nil, rest.Handlers{
			Auth:    auth.NewHandler(auth.NewService(nil, tokens, logger.Discard()), false),
			Profile: user.NewHandler(svc),
		}, rest.Options{LoginRequests: 5, LoginWindow: time.Minute}, logger.Discard())

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

	It("requires a token", func() {
		Expect(do(nil, http.MethodGet, "/api/auth/profile", "").Code).To(Equal(http.StatusUnauthorized))
	})

	It("wraps the caller's record in a user envelope without the password hash", func() {
		rec := do(resident, http.MethodGet, "/api/auth/profile", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).NotTo(ContainSubstring("secret-hash"))

		var resp user.ProfileResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.User).NotTo(BeNil())
		Expect(resp.User.Name).To(Equal("Ana"))
		Expect(resp.User.Apartment).To(Equal("101"))
	})

	It("answers 404 when the caller's record is gone", func() {
		ghost := &internal.Identity{UserID: "ghost", Apartment: "999", Role: internal.RoleResident}
		rec := do(ghost, http.MethodGet, "/api/auth/profile", "")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("applies a partial update", func() {
		rec := do(resident, http.MethodPut, "/api/auth/profile", `{"phone":" +55 11 99999-0000 "}`)
		Expect(rec.Code).To(Equal(http.StatusOK))

		var resp user.UpdateProfileResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Message).To(Equal("profile updated"))
		Expect(*resp.User.Phone).To(Equal("+55 11 99999-0000"))
		Expect(resp.User.Name).To(Equal("Ana"))
	})

	It("answers a taken email with 409", func() {
		rec := do(resident, http.MethodPut, "/api/auth/profile", `{"email":"BRUNO@example.com"}`)
		Expect(rec.Code).To(Equal(http.StatusConflict))

		var resp internal.Response
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Success).To(BeFalse())
		Expect(resp.Code).To(Equal(internal.ErrCodeEmailTaken))
		Expect(repo.users["u-101"].Email).To(BeNil())
	})

	It("rejects a blank name", func() {
		rec := do(resident, http.MethodPut, "/api/auth/profile", `{"name":"  "}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(repo.users["u-101"].Name).To(Equal("Ana"))
	})

	It("rejects a malformed body", func() {
		rec := do(resident, http.MethodPut, "/api/auth/profile", `{"name":`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})
})
