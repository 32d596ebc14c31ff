package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aanand-mishra/student-mgmt/internal/apperrors"
	"github.com/aanand-mishra/student-mgmt/internal/config"
	"github.com/aanand-mishra/student-mgmt/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLite {
	t.Helper()

	cfg := &config.Config{StoragePath: filepath.Join(t.TempDir(), "data", "test.db")}
	store, err := New(cfg)
	require.NoError(t, err, "failed to open store")
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func mustCreateStudent(t *testing.T, s *SQLite, name, email string) types.Student {
	t.Helper()
	student, err := s.CreateStudent(context.Background(), types.StudentCreate{Name: name, Email: email})
	require.NoError(t, err)
	return student
}

func mustCreateCourse(t *testing.T, s *SQLite, code, title string) types.Course {
	t.Helper()
	course, err := s.CreateCourse(context.Background(), types.CourseCreate{Code: code, Title: title})
	require.NoError(t, err)
	return course
}

func mustEnroll(t *testing.T, s *SQLite, studentID, courseID int64) types.Enrollment {
	t.Helper()
	enrollment, err := s.CreateEnrollment(context.Background(), types.EnrollmentCreate{StudentID: studentID, CourseID: courseID})
	require.NoError(t, err)
	return enrollment
}

func countRows(t *testing.T, s *SQLite, table string) int {
	t.Helper()
	var n int
	require.NoError(t, s.Db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

// --- Schema ---

func TestSQLite_Migrate(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.MigrationVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	// A second run is a no-op.
	require.NoError(t, store.Migrate())

	for _, table := range []string{"students", "courses", "enrollments"} {
		assert.Equal(t, 0, countRows(t, store, table), "table %s", table)
	}
}

func TestSQLite_ForeignKeysEnabled(t *testing.T) {
	store := setupTestStore(t)

	var enabled int
	require.NoError(t, store.Db.QueryRow("PRAGMA foreign_keys").Scan(&enabled))
	assert.Equal(t, 1, enabled)
}

func TestSQLite_InMemory(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Migrate())

	ctx := context.Background()
	student := mustCreateStudent(t, store, "Ada", "ada@example.com")
	course := mustCreateCourse(t, store, "CS101", "Intro")
	mustEnroll(t, store, student.ID, course.ID)

	require.NoError(t, store.DeleteStudentByID(ctx, student.ID))
	assert.Equal(t, 0, countRows(t, store, "enrollments"))
}

func TestSQLite_Ping(t *testing.T) {
	store := setupTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}

// --- Students ---

func TestSQLite_CreateStudent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, err := store.CreateStudent(ctx, types.StudentCreate{Name: "Ada", Email: "ada@example.com", Age: intPtr(36)})
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, "Ada", created.Name)
	assert.Equal(t, "ada@example.com", created.Email)
	require.NotNil(t, created.Age)
	assert.Equal(t, 36, *created.Age)
	assert.False(t, created.CreatedAt.IsZero(), "created_at should be set by the store")

	got, err := store.GetStudentByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestSQLite_CreateStudent_DuplicateEmail(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	mustCreateStudent(t, store, "Ada", "ada@example.com")

	_, err := store.CreateStudent(ctx, types.StudentCreate{Name: "Other Ada", Email: "ada@example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConstraintViolation)
	assert.Equal(t, "email already exists", err.Error())

	var cerr *apperrors.ConstraintError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "students.email", cerr.Constraint)

	assert.Equal(t, 1, countRows(t, store, "students"))
}

func TestSQLite_StudentNotFound(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		op   func() error
	}{
		{"get", func() error { _, err := store.GetStudentByID(ctx, 99); return err }},
		{"update", func() error {
			_, err := store.UpdateStudentByID(ctx, 99, types.StudentUpdate{Name: strPtr("x")})
			return err
		}},
		{"delete", func() error { return store.DeleteStudentByID(ctx, 99) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrNotFound)

			var nf *apperrors.NotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, apperrors.EntityStudent, nf.Entity)
		})
	}
}

func TestSQLite_GetStudents_OrderedByID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	empty, err := store.GetStudents(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	a := mustCreateStudent(t, store, "Zed", "zed@example.com")
	b := mustCreateStudent(t, store, "Amy", "amy@example.com")

	students, err := store.GetStudents(ctx)
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, a.ID, students[0].ID)
	assert.Equal(t, b.ID, students[1].ID)
	assert.Less(t, students[0].ID, students[1].ID)
}

func TestSQLite_UpdateStudent(t *testing.T) {
	tests := []struct {
		name   string
		update types.StudentUpdate
		verify func(t *testing.T, before, after types.Student)
	}{
		{
			name:   "name only",
			update: types.StudentUpdate{Name: strPtr("Ada L.")},
			verify: func(t *testing.T, before, after types.Student) {
				assert.Equal(t, "Ada L.", after.Name)
				assert.Equal(t, before.Email, after.Email)
				assert.Equal(t, before.Age, after.Age)
			},
		},
		{
			name:   "set age",
			update: types.StudentUpdate{Age: types.Of(40)},
			verify: func(t *testing.T, before, after types.Student) {
				require.NotNil(t, after.Age)
				assert.Equal(t, 40, *after.Age)
				assert.Equal(t, before.Name, after.Name)
			},
		},
		{
			name:   "clear age",
			update: types.StudentUpdate{Age: types.Null[int]()},
			verify: func(t *testing.T, before, after types.Student) {
				assert.Nil(t, after.Age)
			},
		},
		{
			name:   "empty payload keeps everything",
			update: types.StudentUpdate{},
			verify: func(t *testing.T, before, after types.Student) {
				assert.Equal(t, before, after)
			},
		},
		{
			name:   "created_at never changes",
			update: types.StudentUpdate{Email: strPtr("new@example.com")},
			verify: func(t *testing.T, before, after types.Student) {
				assert.Equal(t, "new@example.com", after.Email)
				assert.True(t, before.CreatedAt.Equal(after.CreatedAt))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupTestStore(t)
			ctx := context.Background()

			before, err := store.CreateStudent(ctx, types.StudentCreate{Name: "Ada", Email: "ada@example.com", Age: intPtr(36)})
			require.NoError(t, err)

			after, err := store.UpdateStudentByID(ctx, before.ID, tt.update)
			require.NoError(t, err)
			tt.verify(t, before, after)

			got, err := store.GetStudentByID(ctx, before.ID)
			require.NoError(t, err)
			assert.Equal(t, after, got)
		})
	}
}

func TestSQLite_UpdateStudent_DuplicateEmailRollsBack(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	mustCreateStudent(t, store, "Ada", "ada@example.com")
	bob := mustCreateStudent(t, store, "Bob", "bob@example.com")

	_, err := store.UpdateStudentByID(ctx, bob.ID, types.StudentUpdate{
		Name:  strPtr("Robert"),
		Email: strPtr("ada@example.com"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConstraintViolation)

	got, err := store.GetStudentByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, bob, got, "failed update must leave the row untouched")
}

func TestSQLite_DeleteStudent_CascadesEnrollments(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	ada := mustCreateStudent(t, store, "Ada", "ada@example.com")
	bob := mustCreateStudent(t, store, "Bob", "bob@example.com")
	cs101 := mustCreateCourse(t, store, "CS101", "Intro")
	cs102 := mustCreateCourse(t, store, "CS102", "Data Structures")

	e1 := mustEnroll(t, store, ada.ID, cs101.ID)
	e2 := mustEnroll(t, store, ada.ID, cs102.ID)
	kept := mustEnroll(t, store, bob.ID, cs101.ID)

	require.NoError(t, store.DeleteStudentByID(ctx, ada.ID))

	for _, id := range []int64{e1.ID, e2.ID} {
		_, err := store.GetEnrollmentByID(ctx, id)
		assert.ErrorIs(t, err, apperrors.ErrNotFound, "enrollment %d should be gone", id)
	}

	got, err := store.GetEnrollmentByID(ctx, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, kept, got)

	// Courses are not owned by students.
	assert.Equal(t, 2, countRows(t, store, "courses"))
}

// --- Courses ---

func TestSQLite_CreateCourse(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, err := store.CreateCourse(ctx, types.CourseCreate{Code: "CS101", Title: "Intro", Credits: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, types.Course{ID: 1, Code: "CS101", Title: "Intro", Credits: 3}, created)

	_, err = store.CreateCourse(ctx, types.CourseCreate{Code: "CS101", Title: "Other", Credits: intPtr(4)})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConstraintViolation)
	assert.Equal(t, "course code already exists", err.Error())

	got, err := store.GetCourseByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestSQLite_CreateCourse_DefaultCredits(t *testing.T) {
	store := setupTestStore(t)

	course := mustCreateCourse(t, store, "MATH1", "Calculus")
	assert.Equal(t, types.DefaultCredits, course.Credits)
}

func TestSQLite_CreateCourse_CreditsCheck(t *testing.T) {
	store := setupTestStore(t)

	// Bypasses validation; the schema's CHECK constraint still applies.
	_, err := store.CreateCourse(context.Background(), types.CourseCreate{Code: "BAD", Title: "Bad", Credits: intPtr(31)})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConstraintViolation)
	assert.Equal(t, 0, countRows(t, store, "courses"))
}

func TestSQLite_UpdateCourse_Partial(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	course, err := store.CreateCourse(ctx, types.CourseCreate{Code: "CS101", Title: "Intro", Credits: intPtr(4)})
	require.NoError(t, err)

	updated, err := store.UpdateCourseByID(ctx, course.ID, types.CourseUpdate{Title: strPtr("New Title")})
	require.NoError(t, err)
	assert.Equal(t, types.Course{ID: course.ID, Code: "CS101", Title: "New Title", Credits: 4}, updated)

	got, err := store.GetCourseByID(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestSQLite_UpdateCourse_DuplicateCode(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	mustCreateCourse(t, store, "CS101", "Intro")
	other := mustCreateCourse(t, store, "CS102", "Data Structures")

	_, err := store.UpdateCourseByID(ctx, other.ID, types.CourseUpdate{Code: strPtr("CS101")})
	assert.ErrorIs(t, err, apperrors.ErrConstraintViolation)

	got, err := store.GetCourseByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, "CS102", got.Code)
}

func TestSQLite_DeleteCourse_CascadesEnrollments(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	ada := mustCreateStudent(t, store, "Ada", "ada@example.com")
	cs101 := mustCreateCourse(t, store, "CS101", "Intro")
	cs102 := mustCreateCourse(t, store, "CS102", "Data Structures")
	gone := mustEnroll(t, store, ada.ID, cs101.ID)
	kept := mustEnroll(t, store, ada.ID, cs102.ID)

	require.NoError(t, store.DeleteCourseByID(ctx, cs101.ID))

	_, err := store.GetEnrollmentByID(ctx, gone.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = store.GetEnrollmentByID(ctx, kept.ID)
	assert.NoError(t, err)

	_, err = store.GetStudentByID(ctx, ada.ID)
	assert.NoError(t, err, "deleting a course must not delete students")

	err = store.DeleteCourseByID(ctx, cs101.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// --- Enrollments ---

func TestSQLite_CreateEnrollment_MissingReferences(t *testing.T) {
	tests := []struct {
		name       string
		student    bool
		course     bool
		wantEntity string
	}{
		{name: "missing student", student: false, course: true, wantEntity: apperrors.EntityStudent},
		{name: "missing course", student: true, course: false, wantEntity: apperrors.EntityCourse},
		{name: "both missing reports student first", student: false, course: false, wantEntity: apperrors.EntityStudent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupTestStore(t)

			in := types.EnrollmentCreate{StudentID: 404, CourseID: 404}
			if tt.student {
				in.StudentID = mustCreateStudent(t, store, "Ada", "ada@example.com").ID
			}
			if tt.course {
				in.CourseID = mustCreateCourse(t, store, "CS101", "Intro").ID
			}

			_, err := store.CreateEnrollment(context.Background(), in)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrNotFound)
			assert.NotErrorIs(t, err, apperrors.ErrConstraintViolation)

			var nf *apperrors.NotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, tt.wantEntity, nf.Entity)

			assert.Equal(t, 0, countRows(t, store, "enrollments"))
		})
	}
}

func TestSQLite_CreateEnrollment_Duplicate(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	ada := mustCreateStudent(t, store, "Ada", "ada@example.com")
	cs101 := mustCreateCourse(t, store, "CS101", "Intro")

	first, err := store.CreateEnrollment(ctx, types.EnrollmentCreate{StudentID: ada.ID, CourseID: cs101.ID, Grade: strPtr("A")})
	require.NoError(t, err)
	assert.Equal(t, ada.ID, first.StudentID)
	assert.Equal(t, cs101.ID, first.CourseID)
	require.NotNil(t, first.Grade)
	assert.Equal(t, "A", *first.Grade)

	got, err := store.GetEnrollmentByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	_, err = store.CreateEnrollment(ctx, types.EnrollmentCreate{StudentID: ada.ID, CourseID: cs101.ID})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConstraintViolation)
	assert.Equal(t, "enrollment already exists", err.Error())

	assert.Equal(t, 1, countRows(t, store, "enrollments"))
}

func TestSQLite_UpdateEnrollment_Grade(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	ada := mustCreateStudent(t, store, "Ada", "ada@example.com")
	cs101 := mustCreateCourse(t, store, "CS101", "Intro")
	enrollment := mustEnroll(t, store, ada.ID, cs101.ID)
	assert.Nil(t, enrollment.Grade)

	graded, err := store.UpdateEnrollmentByID(ctx, enrollment.ID, types.EnrollmentUpdate{Grade: types.Of("B+")})
	require.NoError(t, err)
	require.NotNil(t, graded.Grade)
	assert.Equal(t, "B+", *graded.Grade)
	assert.Equal(t, ada.ID, graded.StudentID)
	assert.Equal(t, cs101.ID, graded.CourseID)

	cleared, err := store.UpdateEnrollmentByID(ctx, enrollment.ID, types.EnrollmentUpdate{Grade: types.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, cleared.Grade)

	_, err = store.UpdateEnrollmentByID(ctx, 999, types.EnrollmentUpdate{Grade: types.Of("A")})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSQLite_DeleteEnrollment(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	ada := mustCreateStudent(t, store, "Ada", "ada@example.com")
	cs101 := mustCreateCourse(t, store, "CS101", "Intro")
	enrollment := mustEnroll(t, store, ada.ID, cs101.ID)

	require.NoError(t, store.DeleteEnrollmentByID(ctx, enrollment.ID))

	enrollments, err := store.GetEnrollments(ctx)
	require.NoError(t, err)
	assert.Empty(t, enrollments)

	// Plain delete: owners stay.
	assert.Equal(t, 1, countRows(t, store, "students"))
	assert.Equal(t, 1, countRows(t, store, "courses"))

	err = store.DeleteEnrollmentByID(ctx, enrollment.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSQLite_ConcurrentDuplicateCreates(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.CreateStudent(ctx, types.StudentCreate{Name: "Ada", Email: "ada@example.com"})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, apperrors.ErrConstraintViolation):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicts)
	assert.Equal(t, 1, countRows(t, store, "students"))
}
