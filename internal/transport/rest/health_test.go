package rest

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("HealthHandler", func() {
	var (
		db      *sql.DB
		mock    sqlmock.Sqlmock
		handler *HealthHandler
	)

	ginkgo.BeforeEach(func() {
		var err error
		db, mock, err = sqlmock.New(sqlmock.MonitorPingsOption(true))
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		handler = NewHealthHandler(db)
	})

	ginkgo.AfterEach(func() {
		gomega.Expect(mock.ExpectationsWereMet()).To(gomega.Succeed())
		_ = db.Close()
	})

	ginkgo.It("reports healthy when the database answers", func() {
		mock.ExpectPing()

		rec := httptest.NewRecorder()
		handler.healthCheckHandler(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		var body HealthResponse
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(gomega.Succeed())
		gomega.Expect(body.Status).To(gomega.Equal(HealthHealthy))
		gomega.Expect(body.Components).To(gomega.HaveKey("database"))
	})

	ginkgo.It("answers 503 when the ping fails", func() {
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))

		rec := httptest.NewRecorder()
		handler.healthCheckHandler(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusServiceUnavailable))
		var body HealthResponse
		gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(gomega.Succeed())
		gomega.Expect(body.Status).To(gomega.Equal(HealthUnhealthy))
		gomega.Expect(body.Components["database"].Message).To(gomega.ContainSubstring("connection refused"))
	})

	ginkgo.It("answers ping without touching the database", func() {
		rec := httptest.NewRecorder()
		handler.pingHandler(rec, httptest.NewRequest(http.MethodGet, "/api/ping", nil))

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(`"OK"`))
	})
})

var _ = ginkgo.Describe("HealthHandler without a database", func() {
	ginkgo.It("is unhealthy", func() {
		rec := httptest.NewRecorder()
		NewHealthHandler(nil).healthCheckHandler(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusServiceUnavailable))
	})
})
