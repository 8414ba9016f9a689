package service

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/orchid-lms/orchid-go-api/internal/dto"
	"github.com/orchid-lms/orchid-go-api/internal/models"
	"github.com/orchid-lms/orchid-go-api/pkg/ai"
)

type memoryQuizRepo struct {
	quizzes map[uint]models.Quiz
	nextID  uint
}

func newMemoryQuizRepo() *memoryQuizRepo {
	return &memoryQuizRepo{
		quizzes: make(map[uint]models.Quiz),
		nextID:  1,
	}
}

func (m *memoryQuizRepo) ListByCourse(ctx context.Context, courseID uint) ([]models.Quiz, error) {
	results := make([]models.Quiz, 0, len(m.quizzes))
	for _, quiz := range m.quizzes {
		if quiz.CourseID == courseID {
			results = append(results, quiz)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].WeekLabel < results[j].WeekLabel
	})
	return results, nil
}

func (m *memoryQuizRepo) GetByID(ctx context.Context, id uint) (models.Quiz, error) {
	quiz, ok := m.quizzes[id]
	if !ok {
		return models.Quiz{}, gorm.ErrRecordNotFound
	}
	quiz.Questions = nil
	return quiz, nil
}

func (m *memoryQuizRepo) GetWithQuestions(ctx context.Context, id uint) (models.Quiz, error) {
	quiz, ok := m.quizzes[id]
	if !ok {
		return models.Quiz{}, gorm.ErrRecordNotFound
	}
	return quiz, nil
}

func (m *memoryQuizRepo) Create(ctx context.Context, quiz *models.Quiz) error {
	quiz.ID = m.nextID
	quiz.CreatedAt = time.Now()
	for i := range quiz.Questions {
		quiz.Questions[i].ID = m.nextID*100 + uint(i) + 1
		quiz.Questions[i].QuizID = quiz.ID
	}
	m.quizzes[m.nextID] = *quiz
	m.nextID++
	return nil
}

type stubGenerator struct {
	questions []ai.GeneratedQuestion
	err       error
}

func (s *stubGenerator) Generate(_ context.Context, _ ai.GenerationInput) ([]ai.GeneratedQuestion, error) {
	return s.questions, s.err
}

func strPtr(s string) *string {
	return &s
}

func newTestQuizService(t *testing.T, repo *memoryQuizRepo, generator ai.Generator) QuizService {
	t.Helper()
	validate := validator.New(validator.WithRequiredStructEnabled())
	svc, err := NewQuizService(repo, generator, validate, zerolog.Nop())
	require.NoError(t, err)
	return svc
}

func TestQuizCreateAssignsPositions(t *testing.T) {
	repo := newMemoryQuizRepo()
	svc := newTestQuizService(t, repo, nil)

	response, err := svc.Create(context.Background(), dto.QuizCreateRequest{
		CourseID: 7,
		Title:    "Week 3 checkpoint",
		Questions: []dto.QuestionCreateRequest{
			{Text: "2+2?", Type: models.QuestionTypeSingleChoice, Options: []string{"3", "4"}, CorrectAnswer: strPtr("4"), Points: 5},
			{Text: "Explain recursion.", Type: models.QuestionTypeFreeText, Points: 10},
		},
	}, 42)
	require.NoError(t, err)
	require.Equal(t, uint(42), response.CreatedBy)
	require.Len(t, response.Questions, 2)
	require.Equal(t, 1, response.Questions[0].Position)
	require.Equal(t, 2, response.Questions[1].Position)
}

func TestQuizCreateRejectsFreeTextWithAnswer(t *testing.T) {
	svc := newTestQuizService(t, newMemoryQuizRepo(), nil)

	_, err := svc.Create(context.Background(), dto.QuizCreateRequest{
		CourseID: 1,
		Title:    "Invalid quiz",
		Questions: []dto.QuestionCreateRequest{
			{Text: "Describe X.", Type: models.QuestionTypeFreeText, CorrectAnswer: strPtr("anything")},
		},
	}, 1)
	require.ErrorIs(t, err, ErrInvalidQuestion)
}

func TestQuizCreateRejectsSingleChoiceWithoutOptions(t *testing.T) {
	svc := newTestQuizService(t, newMemoryQuizRepo(), nil)

	_, err := svc.Create(context.Background(), dto.QuizCreateRequest{
		CourseID: 1,
		Title:    "Invalid quiz",
		Questions: []dto.QuestionCreateRequest{
			{Text: "Pick one.", Type: models.QuestionTypeSingleChoice, CorrectAnswer: strPtr("a")},
		},
	}, 1)
	require.ErrorIs(t, err, ErrInvalidQuestion)
}

func TestQuizCreateRejectsAnswerOutsideOptions(t *testing.T) {
	svc := newTestQuizService(t, newMemoryQuizRepo(), nil)

	_, err := svc.Create(context.Background(), dto.QuizCreateRequest{
		CourseID: 1,
		Title:    "Invalid quiz",
		Questions: []dto.QuestionCreateRequest{
			{Text: "Pick one.", Type: models.QuestionTypeSingleChoice, Options: []string{"a", "b"}, CorrectAnswer: strPtr("c")},
		},
	}, 1)
	require.ErrorIs(t, err, ErrInvalidQuestion)
}

func TestQuizCreateValidatesPayload(t *testing.T) {
	svc := newTestQuizService(t, newMemoryQuizRepo(), nil)

	_, err := svc.Create(context.Background(), dto.QuizCreateRequest{Title: "No course"}, 1)

	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
}

func TestQuizGetWithQuestionsNotFound(t *testing.T) {
	svc := newTestQuizService(t, newMemoryQuizRepo(), nil)

	_, err := svc.GetWithQuestions(context.Background(), 99)
	require.ErrorIs(t, err, ErrQuizNotFound)
}

func TestQuizGetHidesCorrectAnswers(t *testing.T) {
	repo := newMemoryQuizRepo()
	svc := newTestQuizService(t, repo, nil)

	created, err := svc.Create(context.Background(), dto.QuizCreateRequest{
		CourseID: 1,
		Title:    "Answer hiding",
		Questions: []dto.QuestionCreateRequest{
			{Text: "Pick.", Type: models.QuestionTypeSingleChoice, Options: []string{"a", "b"}, CorrectAnswer: strPtr("b"), Points: 1},
		},
	}, 1)
	require.NoError(t, err)

	response, err := svc.GetWithQuestions(context.Background(), created.ID)
	require.NoError(t, err)
	require.Len(t, response.Questions, 1)
	require.Equal(t, []string{"a", "b"}, response.Questions[0].Options)
}

func TestGenerateQuestionsValidatesResult(t *testing.T) {
	generator := &stubGenerator{questions: []ai.GeneratedQuestion{
		{Text: "Pick the capital.", Type: models.QuestionTypeSingleChoice, Options: []string{"Oslo", "Bergen"}, CorrectAnswer: strPtr("Oslo"), Points: 5},
		{Text: "Explain why.", Type: models.QuestionTypeFreeText, Points: 10},
	}}
	svc := newTestQuizService(t, newMemoryQuizRepo(), generator)

	questions, err := svc.GenerateQuestions(context.Background(), ai.GenerationInput{Topic: "geography", QuestionCount: 2})
	require.NoError(t, err)
	require.Len(t, questions, 2)
}

func TestGenerateQuestionsRejectsInvalidShape(t *testing.T) {
	generator := &stubGenerator{questions: []ai.GeneratedQuestion{
		{Text: "", Type: "unknown_type", Points: -1},
	}}
	svc := newTestQuizService(t, newMemoryQuizRepo(), generator)

	_, err := svc.GenerateQuestions(context.Background(), ai.GenerationInput{Topic: "anything", QuestionCount: 1})
	require.ErrorIs(t, err, ErrInvalidQuestion)
}

func TestGenerateQuestionsPropagatesProviderError(t *testing.T) {
	generator := &stubGenerator{err: errors.New("provider unavailable")}
	svc := newTestQuizService(t, newMemoryQuizRepo(), generator)

	_, err := svc.GenerateQuestions(context.Background(), ai.GenerationInput{Topic: "anything", QuestionCount: 1})
	require.Error(t, err)
}

func TestGenerateQuestionsWithoutProvider(t *testing.T) {
	svc := newTestQuizService(t, newMemoryQuizRepo(), nil)

	_, err := svc.GenerateQuestions(context.Background(), ai.GenerationInput{Topic: "anything", QuestionCount: 1})
	require.Error(t, err)
}
