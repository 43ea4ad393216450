package rest

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/dcalliari/appe/api"
	"github.com/dcalliari/appe/internal/auth"
	"github.com/dcalliari/appe/internal/booking"
	"github.com/dcalliari/appe/internal/chat"
	"github.com/dcalliari/appe/internal/document"
	"github.com/dcalliari/appe/internal/notice"
	"github.com/dcalliari/appe/internal/transport/middleware"
	"github.com/dcalliari/appe/internal/transport/swagger"
	"github.com/dcalliari/appe/internal/user"
	"github.com/dcalliari/appe/internal/visitor"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups the per-domain HTTP handlers. A nil entry leaves its
// routes unmounted.
type Handlers struct {
	Auth     *auth.Handler
	Profile  *user.Handler
	Notice   *notice.Handler
	Chat     *chat.Handler
	ChatHub  *chat.Hub
	Visitor  *visitor.Handler
	Booking  *booking.Handler
	Document *document.Handler
}

type Options struct {
	AllowedOrigins []string
	LoginRequests  int
	LoginWindow    time.Duration
	Metrics        *middleware.Metrics
	MetricsPath    string
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, opts Options, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	roles := auth.NewRoleAuthorization(logger)

	// Apply global middleware
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestLogger)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(opts.Metrics.Instrument)
	router.Use(middleware.LoggingMiddleware(logger))

	if opts.Metrics != nil && opts.MetricsPath != "" {
		router.Method(http.MethodGet, opts.MetricsPath, opts.Metrics.Handler())
	}

	router.Get(swagger.SpecURL, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.OpenAPISpec)
	})
	router.Handle("/swagger/*", swagger.Handler(swagger.SpecURL))

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(ar chi.Router) {
			ar.With(middleware.LoginRateLimit(opts.LoginRequests, opts.LoginWindow)).Post("/login", h.Auth.Login)
			ar.With(h.Auth.Authenticate).Get("/verify", h.Auth.Verify)
			if h.Profile != nil {
				ar.Group(func(pr chi.Router) {
					pr.Use(h.Auth.Authenticate)
					pr.Get("/profile", h.Profile.GetProfile)
					pr.Put("/profile", h.Profile.UpdateProfile)
				})
			}
		})

		// Browsers cannot set headers on a websocket handshake, so the hub
		// authenticates the token itself.
		if h.ChatHub != nil {
			r.Get("/chat/ws", h.ChatHub.ServeWS)
		}

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.Authenticate)

			if h.Notice != nil {
				pr.Route("/notices", func(nr chi.Router) {
					nr.Get("/", h.Notice.ListNotices)
					nr.Group(func(ar chi.Router) {
						ar.Use(roles.RequireAdmin())
						ar.Post("/", h.Notice.CreateNotice)
						ar.Delete("/{id}", h.Notice.DeleteNotice)
					})
				})
			}

			if h.Chat != nil {
				pr.Route("/chat", func(cr chi.Router) {
					cr.Get("/users", h.Chat.ListContacts)
					cr.Get("/conversations", h.Chat.ListConversations)
					cr.Get("/messages/{userId}", h.Chat.GetThread)
					cr.Post("/send", h.Chat.SendMessage)
				})
			}

			if h.Visitor != nil {
				pr.Route("/visitors", func(vr chi.Router) {
					vr.Get("/", h.Visitor.ListVisitors)
					vr.Post("/", h.Visitor.CreateVisitor)
					vr.Get("/{id}", h.Visitor.GetVisitor)
					vr.Put("/{id}", h.Visitor.UpdateVisitor)
					vr.Delete("/{id}", h.Visitor.DeleteVisitor)
					vr.Patch("/{id}/reject", h.Visitor.RejectVisitor)
					vr.With(roles.RequireAdmin()).Patch("/{id}/approve", h.Visitor.ApproveVisitor)
				})
			}

			if h.Booking != nil {
				pr.Route("/bookings", func(br chi.Router) {
					br.Get("/", h.Booking.ListBookings)
					br.Post("/", h.Booking.CreateBooking)
					br.Get("/spaces", h.Booking.ListSpaces)
					br.Get("/availability/{spaceName}", h.Booking.Availability)
					br.Get("/{id}", h.Booking.GetBooking)
					br.Put("/{id}", h.Booking.UpdateBooking)
					br.Delete("/{id}", h.Booking.DeleteBooking)
					br.Patch("/{id}/cancel", h.Booking.CancelBooking)
					br.With(roles.RequireAdmin()).Patch("/{id}/confirm", h.Booking.ConfirmBooking)
				})
			}

			if h.Document != nil {
				pr.Route("/documents", func(dr chi.Router) {
					dr.Get("/", h.Document.ListDocuments)
					dr.Get("/categories", h.Document.ListCategories)
					dr.Get("/{id}", h.Document.GetDocument)
					dr.Get("/{id}/download", h.Document.DownloadDocument)
					dr.Group(func(ar chi.Router) {
						ar.Use(roles.RequireAdmin())
						ar.Post("/", h.Document.CreateDocument)
						ar.Put("/{id}", h.Document.UpdateDocument)
						ar.Delete("/{id}", h.Document.DeleteDocument)
					})
				})
			}
		})
	})
}
