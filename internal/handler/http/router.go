package http

import (
	"io"
	"log/slog"

	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	AllowedOrigins []string
	Logger         *slog.Logger
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, attendanceHandler AttendanceHandler) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1/attendance", func(r chi.Router) {
		// Stream token travels in the query string
		r.Get("/events", attendanceHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Get("/events/token", attendanceHandler.GetSSEToken)

			r.Get("/status", attendanceHandler.Status)
			r.Post("/clock-in", attendanceHandler.ClockIn)
			r.Post("/clock-out", attendanceHandler.ClockOut)

			r.Route("/me", func(r chi.Router) {
				r.Get("/", attendanceHandler.GetMyAttendance)
				r.Get("/today", attendanceHandler.GetMyToday)
				r.Get("/days/{date}", attendanceHandler.GetMyDay)
			})

			// Manager or admin
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)

				r.Get("/", attendanceHandler.List)
				r.Post("/", attendanceHandler.Create)
				r.Post("/auto-close", attendanceHandler.AutoClose)
				r.Post("/bulk-status/{employeeID}", attendanceHandler.BulkStatus)
				r.Get("/employees/{employeeID}/days/{date}", attendanceHandler.GetEmployeeDay)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", attendanceHandler.Get)
					r.Put("/", attendanceHandler.Update)
					r.Patch("/ot-status", attendanceHandler.UpdateOTStatus)

					// Admin only
					r.With(middleware.RequireAdmin).Delete("/", attendanceHandler.Delete)
				})
			})
		})
	})

	return r
}

// NewLogger builds the ECS-formatted JSON logger shared by the request logger
// and the application.
func NewLogger(app, env string, level slog.Level, w io.Writer) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", app),
		slog.String("env", env),
	)
}
