package rest

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/dcalliari/appe/internal/auth"
	"github.com/dcalliari/appe/internal/notice"
	"github.com/dcalliari/appe/internal/transport/middleware"
	"github.com/dcalliari/appe/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
)

var _ = ginkgo.Describe("RegisterAllRoutes", func() {
	var router *chi.Mux

	ginkgo.BeforeEach(func() {
		tokens := auth.NewJWTTokenGenerator("0123456789abcdef0123456789abcdef", time.Hour)
		authHandler := auth.NewHandler(auth.NewService(nil, tokens, logger.Discard()), false)

		router = chi.NewRouter()
		RegisterAllRoutes(router, nil, Handlers{
			Auth:   authHandler,
			Notice: notice.NewHandler(nil),
		}, Options{
			AllowedOrigins: []string{"*"},
			LoginRequests:  5,
			LoginWindow:    time.Minute,
			Metrics:        middleware.NewMetrics(prometheus.NewRegistry()),
			MetricsPath:    "/metrics",
		}, logger.Discard())
	})

	serve := func(method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
		return rec
	}

	ginkgo.It("serves ping and the request id header", func() {
		rec := serve(http.MethodGet, "/api/ping")
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(rec.Header().Get(middleware.RequestIDHeader)).ToNot(gomega.BeEmpty())
	})

	ginkgo.It("requires a token on protected routes", func() {
		gomega.Expect(serve(http.MethodGet, "/api/notices").Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(serve(http.MethodGet, "/api/auth/verify").Code).To(gomega.Equal(http.StatusUnauthorized))
	})

	ginkgo.It("answers 403 for a malformed token", func() {
		req := httptest.NewRequest(http.MethodGet, "/api/notices", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
	})

	ginkgo.It("serves the OpenAPI document and metrics", func() {
		rec := serve(http.MethodGet, "/openapi.yml")
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("openapi:"))

		serve(http.MethodGet, "/api/ping")
		metrics := serve(http.MethodGet, "/metrics")
		gomega.Expect(metrics.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(metrics.Body.String()).To(gomega.ContainSubstring(`route="/api/ping"`))
	})

	ginkgo.It("leaves unmounted domains out", func() {
		gomega.Expect(serve(http.MethodGet, "/api/bookings").Code).To(gomega.Equal(http.StatusNotFound))
	})
})
