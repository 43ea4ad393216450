package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/dcalliari/appe/internal"
	"github.com/dcalliari/appe/pkg/logger"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Auth handler", func() {
	var (
		handler  *Handler
		tokenGen *JWTTokenGenerator
		echo     http.Handler
	)

	ginkgo.BeforeEach(func() {
		tokenGen = NewJWTTokenGenerator(testSecret, 0)
		handler = NewHandler(NewService(newMockCredentialStore(), tokenGen, logger.Discard()), false)
		echo = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := internal.IdentityFromContext(r.Context())
			if id == nil {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			_, _ = w.Write([]byte(id.UserID))
		})
	})

	ginkgo.Describe("Login", func() {
		ginkgo.It("returns token and user", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"apartment":"101","password":"correct_password"}`))
			rec := httptest.NewRecorder()
			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			var body LoginResponse
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(gomega.Succeed())
			gomega.Expect(body.Token).ToNot(gomega.BeEmpty())
			gomega.Expect(body.User.Apartment).To(gomega.Equal("101"))
		})

		ginkgo.It("rejects a body without apartment", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"password":"x"}`))
			rec := httptest.NewRecorder()
			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(`"success":false`))
		})

		ginkgo.It("answers 401 on bad credentials", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"apartment":"101","password":"wrong"}`))
			rec := httptest.NewRecorder()
			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(string(internal.ErrCodeInvalidCredentials)))
		})
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.It("answers 401 when the token is missing", func() {
			rec := httptest.NewRecorder()
			handler.Authenticate(echo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/bookings", nil))
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("answers 403 when the token is invalid", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
			req.Header.Set("Authorization", "Bearer garbage")
			rec := httptest.NewRecorder()
			handler.Authenticate(echo).ServeHTTP(rec, req)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("attaches the identity for a valid token", func() {
			token, _, _ := tokenGen.GenerateToken(internal.Identity{UserID: "u-101", Apartment: "101", Role: internal.RoleResident})
			req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			handler.Authenticate(echo).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(rec.Body.String()).To(gomega.Equal("u-101"))
		})

		ginkgo.It("lets anonymous requests through when relaxed", func() {
			handler.AllowAnonymous = true
			rec := httptest.NewRecorder()
			handler.Authenticate(echo).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/notices", nil))
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
		})

		ginkgo.It("still rejects bad tokens when relaxed", func() {
			handler.AllowAnonymous = true
			req := httptest.NewRequest(http.MethodGet, "/api/notices", nil)
			req.Header.Set("Authorization", "Bearer garbage")
			rec := httptest.NewRecorder()
			handler.Authenticate(echo).ServeHTTP(rec, req)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		})
	})

	ginkgo.Describe("Verify", func() {
		ginkgo.It("echoes the identity", func() {
			token, _, _ := tokenGen.GenerateToken(internal.Identity{UserID: "u-adm", Apartment: "ADM", Role: internal.RoleAdmin})
			req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			handler.Authenticate(http.HandlerFunc(handler.Verify)).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			var body VerifyResponse
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(gomega.Succeed())
			gomega.Expect(body.Valid).To(gomega.BeTrue())
			gomega.Expect(body.User.Role).To(gomega.Equal(internal.RoleAdmin))
		})
	})

	ginkgo.Describe("RoleAuthorization", func() {
		ginkgo.It("blocks callers without the role", func() {
			ra := NewRoleAuthorization(logger.Discard())
			req := httptest.NewRequest(http.MethodPatch, "/api/bookings/1/confirm", nil)
			req = req.WithContext(internal.ContextWithIdentity(req.Context(), &internal.Identity{UserID: "u-101", Role: internal.RoleResident}))
			rec := httptest.NewRecorder()
			ra.RequireAdmin()(echo).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("passes callers with the role", func() {
			ra := NewRoleAuthorization(logger.Discard())
			req := httptest.NewRequest(http.MethodPatch, "/api/bookings/1/confirm", nil)
			req = req.WithContext(internal.ContextWithIdentity(req.Context(), &internal.Identity{UserID: "u-adm", Role: internal.RoleAdmin}))
			rec := httptest.NewRecorder()
			ra.Require(internal.RoleAdmin, internal.RoleDoorman)(echo).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})
	})
})
