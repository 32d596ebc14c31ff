// Package router builds the application's HTTP handler: middleware, the
// JSON API under /api, the health probe, and the embedded front-end.
//
// Route table:
//
//	GET    /api/students            → list students
//	POST   /api/students            → create a student
//	GET    /api/students/{id}       → get one student
//	PUT    /api/students/{id}       → partially update a student
//	DELETE /api/students/{id}       → delete a student (and its enrollments)
//
// /api/courses and /api/enrollments follow the same shape.
//
//	GET    /healthz                 → database ping
//	GET    /*                       → static front-end
package router

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-mgmt/internal/config"
	"github.com/aanand-mishra/student-mgmt/internal/http/handlers/course"
	"github.com/aanand-mishra/student-mgmt/internal/http/handlers/enrollment"
	"github.com/aanand-mishra/student-mgmt/internal/http/handlers/health"
	"github.com/aanand-mishra/student-mgmt/internal/http/handlers/student"
	"github.com/aanand-mishra/student-mgmt/internal/storage"
	"github.com/aanand-mishra/student-mgmt/internal/utils/response"
	"github.com/aanand-mishra/student-mgmt/internal/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// New returns the root handler. log receives one access-log line per
// request.
func New(cfg *config.Config, store storage.Storage, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.RequestLogger(&middleware.DefaultLogFormatter{
			Logger:  slog.NewLogLogger(log.Handler(), slog.LevelInfo),
			NoColor: true,
		}),
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			MaxAge:         300,
		}),
	)

	r.Get("/healthz", health.Check(store))

	r.Route("/api", func(r chi.Router) {
		r.NotFound(apiNotFound)
		r.MethodNotAllowed(apiMethodNotAllowed)

		r.Route("/students", func(r chi.Router) {
			r.Get("/", student.GetList(store))
			r.Post("/", student.New(store))
			r.Get("/{id}", student.GetByID(store))
			r.Put("/{id}", student.Update(store))
			r.Delete("/{id}", student.Delete(store))
		})

		r.Route("/courses", func(r chi.Router) {
			r.Get("/", course.GetList(store))
			r.Post("/", course.New(store))
			r.Get("/{id}", course.GetByID(store))
			r.Put("/{id}", course.Update(store))
			r.Delete("/{id}", course.Delete(store))
		})

		r.Route("/enrollments", func(r chi.Router) {
			r.Get("/", enrollment.GetList(store))
			r.Post("/", enrollment.New(store))
			r.Get("/{id}", enrollment.GetByID(store))
			r.Put("/{id}", enrollment.Update(store))
			r.Delete("/{id}", enrollment.Delete(store))
		})
	})

	if !cfg.Static.Disable {
		r.Handle("/*", web.Handler())
	}

	return r
}

func apiNotFound(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusNotFound,
		response.GeneralError(errors.New("route not found")))
}

func apiMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusMethodNotAllowed,
		response.GeneralError(errors.New("method not allowed")))
}
