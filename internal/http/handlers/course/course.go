// Package course contains the HTTP handlers for the Course resource.
package course

import (
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-mgmt/internal/storage"
	"github.com/aanand-mishra/student-mgmt/internal/types"
	"github.com/aanand-mishra/student-mgmt/internal/utils/request"
	"github.com/aanand-mishra/student-mgmt/internal/utils/response"
	"github.com/aanand-mishra/student-mgmt/internal/validation"
)

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /api/courses
//
// Request body:
//
//	{ "code": "CS101", "title": "Intro", "credits": 3 }
//
// credits may be omitted; the course is then stored with 3 credits.
// A code that is already taken is rejected with 400.
// ─────────────────────────────────────────────────────────────────────────────
func New(storage storage.CourseStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a course")

		var in types.CourseCreate
		if err := request.DecodeJSON(w, r, &in); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := validation.Struct(in); err != nil {
			response.Error(w, err)
			return
		}

		course, err := storage.CreateCourse(r.Context(), in)
		if err != nil {
			slog.Error("error creating course", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		slog.Info("course created", slog.Int64("id", course.ID), slog.String("code", course.Code))
		response.WriteJSON(w, http.StatusCreated, course)
	}
}

// GetByID handles GET /api/courses/{id}.
func GetByID(storage storage.CourseStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.ParseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		slog.Info("getting a course", slog.Int64("id", id))

		course, err := storage.GetCourseByID(r.Context(), id)
		if err != nil {
			slog.Error("error getting course",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, course)
	}
}

// GetList handles GET /api/courses.
func GetList(storage storage.CourseStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all courses")

		courses, err := storage.GetCourses(r.Context())
		if err != nil {
			slog.Error("error getting courses", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, courses)
	}
}

// Update handles PUT /api/courses/{id}. Only the keys present in the body
// change.
func Update(storage storage.CourseStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.ParseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		slog.Info("updating a course", slog.Int64("id", id))

		var in types.CourseUpdate
		if err := request.DecodeJSON(w, r, &in); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := validation.Struct(in); err != nil {
			response.Error(w, err)
			return
		}

		updated, err := storage.UpdateCourseByID(r.Context(), id, in)
		if err != nil {
			slog.Error("error updating course",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		slog.Info("course updated", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Delete handles DELETE /api/courses/{id}. Enrollments in the course go
// with it.
func Delete(storage storage.CourseStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.ParseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		slog.Info("deleting a course", slog.Int64("id", id))

		if err := storage.DeleteCourseByID(r.Context(), id); err != nil {
			slog.Error("error deleting course",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		slog.Info("course deleted", slog.Int64("id", id))
		response.NoContent(w)
	}
}
