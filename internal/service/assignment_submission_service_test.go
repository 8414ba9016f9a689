package service

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/orchid-lms/orchid-go-api/internal/dto"
	"github.com/orchid-lms/orchid-go-api/internal/models"
)

type memoryAssignmentRepo struct {
	assignments map[uint]models.Assignment
	nextID      uint
}

func newMemoryAssignmentRepo() *memoryAssignmentRepo {
	return &memoryAssignmentRepo{
		assignments: make(map[uint]models.Assignment),
		nextID:      1,
	}
}

func (m *memoryAssignmentRepo) GetByID(ctx context.Context, id uint) (models.Assignment, error) {
	assignment, ok := m.assignments[id]
	if !ok {
		return models.Assignment{}, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (m *memoryAssignmentRepo) ListByCourse(ctx context.Context, courseID uint) ([]models.Assignment, error) {
	results := make([]models.Assignment, 0, len(m.assignments))
	for _, assignment := range m.assignments {
		if assignment.CourseID == courseID {
			results = append(results, assignment)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].DueDate.Before(results[j].DueDate)
	})
	return results, nil
}

func (m *memoryAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	assignment.ID = m.nextID
	m.assignments[m.nextID] = *assignment
	m.nextID++
	return nil
}

type memoryAssignmentSubmissionRepo struct {
	submissions map[uint]models.AssignmentSubmission
	nextID      uint
}

func newMemoryAssignmentSubmissionRepo() *memoryAssignmentSubmissionRepo {
	return &memoryAssignmentSubmissionRepo{
		submissions: make(map[uint]models.AssignmentSubmission),
		nextID:      1,
	}
}

func (m *memoryAssignmentSubmissionRepo) GetByID(ctx context.Context, id uint) (models.AssignmentSubmission, error) {
	submission, ok := m.submissions[id]
	if !ok {
		return models.AssignmentSubmission{}, gorm.ErrRecordNotFound
	}
	return submission, nil
}

func (m *memoryAssignmentSubmissionRepo) ListByAssignment(ctx context.Context, assignmentID uint) ([]models.AssignmentSubmission, error) {
	results := make([]models.AssignmentSubmission, 0)
	for _, submission := range m.submissions {
		if submission.AssignmentID == assignmentID {
			results = append(results, submission)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].SubmittedAt.After(results[j].SubmittedAt)
	})
	return results, nil
}

func (m *memoryAssignmentSubmissionRepo) ListCohort(ctx context.Context, assignmentID, excludeStudentID uint) ([]models.AssignmentSubmission, error) {
	results := make([]models.AssignmentSubmission, 0)
	for _, submission := range m.submissions {
		if submission.AssignmentID == assignmentID && submission.StudentID != excludeStudentID {
			results = append(results, submission)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].ID < results[j].ID
	})
	return results, nil
}

func (m *memoryAssignmentSubmissionRepo) Create(ctx context.Context, submission *models.AssignmentSubmission) error {
	submission.ID = m.nextID
	m.submissions[m.nextID] = *submission
	m.nextID++
	return nil
}

func (m *memoryAssignmentSubmissionRepo) Update(ctx context.Context, submission *models.AssignmentSubmission) error {
	if _, ok := m.submissions[submission.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.submissions[submission.ID] = *submission
	return nil
}

type stubUploader struct {
	uploads int
	fail    error
}

func (s *stubUploader) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	if s.fail != nil {
		return "", s.fail
	}
	s.uploads++
	return "https://files.example.test/" + name, nil
}

func buildFileHeader(t *testing.T, field, name, content string) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	request := httptest.NewRequest("POST", "/", body)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, request.ParseMultipartForm(1<<20))

	_, header, err := request.FormFile(field)
	require.NoError(t, err)
	return header
}

func newTestAssignmentSubmissionService(assignments *memoryAssignmentRepo, submissions *memoryAssignmentSubmissionRepo, uploader FileUploader) AssignmentSubmissionService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewAssignmentSubmissionService(submissions, assignments, validate, uploader, nil, zerolog.Nop())
}

func seedAssignment(repo *memoryAssignmentRepo, dueDate time.Time, requireContent bool) models.Assignment {
	assignment := models.Assignment{
		CourseID:       1,
		Title:          "Essay",
		DueDate:        dueDate,
		RequireContent: requireContent,
		CreatedBy:      1,
	}
	_ = repo.Create(context.Background(), &assignment)
	return assignment
}

func TestAssignmentSubmitTextOnly(t *testing.T) {
	assignments := newMemoryAssignmentRepo()
	submissions := newMemoryAssignmentSubmissionRepo()
	assignment := seedAssignment(assignments, time.Now().Add(24*time.Hour), true)
	svc := newTestAssignmentSubmissionService(assignments, submissions, &stubUploader{})

	response, err := svc.Submit(context.Background(), 10, dto.AssignmentSubmissionCreateRequest{
		AssignmentID: assignment.ID,
		Text:         "My answer to the essay question.",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "My answer to the essay question.", response.Text)
	require.False(t, response.Late)
	require.Empty(t, response.FileURL)
}

func TestAssignmentSubmitFlagsLate(t *testing.T) {
	assignments := newMemoryAssignmentRepo()
	submissions := newMemoryAssignmentSubmissionRepo()
	assignment := seedAssignment(assignments, time.Now().Add(-time.Hour), true)
	svc := newTestAssignmentSubmissionService(assignments, submissions, &stubUploader{})

	response, err := svc.Submit(context.Background(), 10, dto.AssignmentSubmissionCreateRequest{
		AssignmentID: assignment.ID,
		Text:         "Better late than never.",
	}, nil)
	require.NoError(t, err)
	require.True(t, response.Late)
}

func TestAssignmentSubmitSanitizesText(t *testing.T) {
	assignments := newMemoryAssignmentRepo()
	submissions := newMemoryAssignmentSubmissionRepo()
	assignment := seedAssignment(assignments, time.Now().Add(time.Hour), true)
	svc := newTestAssignmentSubmissionService(assignments, submissions, &stubUploader{})

	response, err := svc.Submit(context.Background(), 10, dto.AssignmentSubmissionCreateRequest{
		AssignmentID: assignment.ID,
		Text:         `<script>alert("x")</script>plain content`,
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "plain content", response.Text)
}

func TestAssignmentSubmitRejectsEmpty(t *testing.T) {
	assignments := newMemoryAssignmentRepo()
	submissions := newMemoryAssignmentSubmissionRepo()
	assignment := seedAssignment(assignments, time.Now().Add(time.Hour), true)
	svc := newTestAssignmentSubmissionService(assignments, submissions, &stubUploader{})

	_, err := svc.Submit(context.Background(), 10, dto.AssignmentSubmissionCreateRequest{
		AssignmentID: assignment.ID,
		Text:         "   ",
	}, nil)
	require.ErrorIs(t, err, ErrEmptySubmission)
}

func TestAssignmentSubmitAllowsEmptyWhenContentOptional(t *testing.T) {
	assignments := newMemoryAssignmentRepo()
	submissions := newMemoryAssignmentSubmissionRepo()
	assignment := seedAssignment(assignments, time.Now().Add(time.Hour), false)
	svc := newTestAssignmentSubmissionService(assignments, submissions, &stubUploader{})

	_, err := svc.Submit(context.Background(), 10, dto.AssignmentSubmissionCreateRequest{
		AssignmentID: assignment.ID,
	}, nil)
	require.NoError(t, err)
}

func TestAssignmentSubmitWithFile(t *testing.T) {
	assignments := newMemoryAssignmentRepo()
	submissions := newMemoryAssignmentSubmissionRepo()
	assignment := seedAssignment(assignments, time.Now().Add(time.Hour), true)
	uploader := &stubUploader{}
	svc := newTestAssignmentSubmissionService(assignments, submissions, uploader)

	file := buildFileHeader(t, "file", "essay.txt", "essay body")
	response, err := svc.Submit(context.Background(), 10, dto.AssignmentSubmissionCreateRequest{
		AssignmentID: assignment.ID,
	}, file)
	require.NoError(t, err)
	require.Equal(t, 1, uploader.uploads)
	require.Contains(t, response.FileURL, "essay.txt")
}

func TestAssignmentSubmitUnknownAssignment(t *testing.T) {
	svc := newTestAssignmentSubmissionService(newMemoryAssignmentRepo(), newMemoryAssignmentSubmissionRepo(), &stubUploader{})

	_, err := svc.Submit(context.Background(), 10, dto.AssignmentSubmissionCreateRequest{
		AssignmentID: 404,
		Text:         "text",
	}, nil)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestGradeUpdatesGradeAndFeedback(t *testing.T) {
	assignments := newMemoryAssignmentRepo()
	submissions := newMemoryAssignmentSubmissionRepo()
	assignment := seedAssignment(assignments, time.Now().Add(time.Hour), true)
	svc := newTestAssignmentSubmissionService(assignments, submissions, &stubUploader{})

	created, err := svc.Submit(context.Background(), 10, dto.AssignmentSubmissionCreateRequest{
		AssignmentID: assignment.ID,
		Text:         "submission",
	}, nil)
	require.NoError(t, err)

	grade := 87.5
	feedback := "<b>Good</b> structure"
	graded, err := svc.Grade(context.Background(), created.ID, dto.AssignmentGradeRequest{
		Grade:    &grade,
		Feedback: &feedback,
	}, 1)
	require.NoError(t, err)
	require.NotNil(t, graded.Grade)
	require.InDelta(t, 87.5, *graded.Grade, 1e-9)
	require.Equal(t, "Good structure", graded.Feedback)
}

func TestGradeRequiresSomething(t *testing.T) {
	svc := newTestAssignmentSubmissionService(newMemoryAssignmentRepo(), newMemoryAssignmentSubmissionRepo(), &stubUploader{})

	_, err := svc.Grade(context.Background(), 1, dto.AssignmentGradeRequest{}, 1)
	require.ErrorIs(t, err, ErrNothingToUpdate)
}

func TestGradeRejectsOutOfRange(t *testing.T) {
	svc := newTestAssignmentSubmissionService(newMemoryAssignmentRepo(), newMemoryAssignmentSubmissionRepo(), &stubUploader{})

	grade := 120.0
	_, err := svc.Grade(context.Background(), 1, dto.AssignmentGradeRequest{Grade: &grade}, 1)
	require.ErrorIs(t, err, ErrGradeOutOfRange)

	grade = -5
	_, err = svc.Grade(context.Background(), 1, dto.AssignmentGradeRequest{Grade: &grade}, 1)
	require.ErrorIs(t, err, ErrGradeOutOfRange)
}

func TestGradeUnknownSubmission(t *testing.T) {
	svc := newTestAssignmentSubmissionService(newMemoryAssignmentRepo(), newMemoryAssignmentSubmissionRepo(), &stubUploader{})

	grade := 50.0
	_, err := svc.Grade(context.Background(), 404, dto.AssignmentGradeRequest{Grade: &grade}, 1)
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}
