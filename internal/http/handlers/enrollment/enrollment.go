// Package enrollment contains the HTTP handlers for the Enrollment
// resource. An enrollment links one student to one course and carries an
// optional grade.
package enrollment

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
// New handles POST /api/enrollments
//
// Request body:
//
//	{ "student_id": 1, "course_id": 2, "grade": "A" }
//
// Error responses:
//
//	404 Not Found   — the student or the course does not exist
//	400 Bad Request — the student is already enrolled in the course
//
// ─────────────────────────────────────────────────────────────────────────────
func New(storage storage.EnrollmentStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating an enrollment")

		var in types.EnrollmentCreate
		if err := request.DecodeJSON(w, r, &in); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := validation.Struct(in); err != nil {
			response.Error(w, err)
			return
		}

		enrollment, err := storage.CreateEnrollment(r.Context(), in)
		if err != nil {
			slog.Error("error creating enrollment",
				slog.Int64("student_id", in.StudentID),
				slog.Int64("course_id", in.CourseID),
				slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		slog.Info("enrollment created", slog.Int64("id", enrollment.ID))
		response.WriteJSON(w, http.StatusCreated, enrollment)
	}
}

// GetByID handles GET /api/enrollments/{id}.
func GetByID(storage storage.EnrollmentStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.ParseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		slog.Info("getting an enrollment", slog.Int64("id", id))

		enrollment, err := storage.GetEnrollmentByID(r.Context(), id)
		if err != nil {
			slog.Error("error getting enrollment",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, enrollment)
	}
}

// GetList handles GET /api/enrollments.
func GetList(storage storage.EnrollmentStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all enrollments")

		enrollments, err := storage.GetEnrollments(r.Context())
		if err != nil {
			slog.Error("error getting enrollments", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, enrollments)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /api/enrollments/{id}
//
// Only the grade can change:
//
//	{ "grade": "B+" }  → sets the grade
//	{ "grade": null }  → clears it
//
// A body that names student_id or course_id is rejected with 422.
// ─────────────────────────────────────────────────────────────────────────────
func Update(storage storage.EnrollmentStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.ParseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		slog.Info("updating an enrollment", slog.Int64("id", id))

		var in types.EnrollmentUpdate
		if err := request.DecodeJSON(w, r, &in); err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		if err := validation.Struct(in); err != nil {
			response.Error(w, err)
			return
		}

		updated, err := storage.UpdateEnrollmentByID(r.Context(), id, in)
		if err != nil {
			slog.Error("error updating enrollment",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		slog.Info("enrollment updated", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// Delete handles DELETE /api/enrollments/{id}.
func Delete(storage storage.EnrollmentStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := request.ParseID(r)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		slog.Info("deleting an enrollment", slog.Int64("id", id))

		if err := storage.DeleteEnrollmentByID(r.Context(), id); err != nil {
			slog.Error("error deleting enrollment",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		slog.Info("enrollment deleted", slog.Int64("id", id))
		response.NoContent(w)
	}
}
