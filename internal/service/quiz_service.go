package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/gorm"

	"github.com/orchid-lms/orchid-go-api/internal/dto"
	"github.com/orchid-lms/orchid-go-api/internal/models"
	"github.com/orchid-lms/orchid-go-api/internal/repository"
	"github.com/orchid-lms/orchid-go-api/pkg/ai"
)

// ErrQuizNotFound indicates a quiz could not be found.
var ErrQuizNotFound = errors.New("quiz not found")

// ErrInvalidQuestion indicates a question payload violates the question
// shape: free-text questions must not carry a correct answer, single-choice
// questions need options including the correct one.
var ErrInvalidQuestion = errors.New("invalid question")

// generatedQuestionSchema guards payloads coming back from the question
// generation provider before they become Question records.
const generatedQuestionSchema = `{
	"type": "object",
	"required": ["questions"],
	"properties": {
		"questions": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["text", "type", "points"],
				"properties": {
					"text": {"type": "string", "minLength": 1},
					"type": {"enum": ["single_choice", "free_text"]},
					"options": {"type": "array", "items": {"type": "string"}},
					"correct_answer": {"type": ["string", "null"]},
					"points": {"type": "integer", "minimum": 0}
				}
			}
		}
	}
}`

// QuizService manages quiz and question lifecycles.
type QuizService interface {
	Create(ctx context.Context, payload dto.QuizCreateRequest, creatorID uint) (dto.QuizResponse, error)
	ListByCourse(ctx context.Context, courseID uint) ([]dto.QuizResponse, error)
	GetWithQuestions(ctx context.Context, id uint) (dto.QuizResponse, error)
	GenerateQuestions(ctx context.Context, input ai.GenerationInput) ([]dto.QuestionCreateRequest, error)
}

type quizService struct {
	quizzes   repository.QuizRepository
	generator ai.Generator
	validator *validator.Validate
	schema    *jsonschema.Schema
	logger    zerolog.Logger
}

// NewQuizService constructs a QuizService instance. generator may be nil
// when no provider is configured.
func NewQuizService(quizRepo repository.QuizRepository, generator ai.Generator, validate *validator.Validate, logger zerolog.Logger) (QuizService, error) {
	schema, err := jsonschema.CompileString("generated_questions.json", generatedQuestionSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile question schema: %w", err)
	}

	return &quizService{
		quizzes:   quizRepo,
		generator: generator,
		validator: validate,
		schema:    schema,
		logger:    logger.With().Str("component", "quiz_service").Logger(),
	}, nil
}

func (s *quizService) Create(ctx context.Context, payload dto.QuizCreateRequest, creatorID uint) (dto.QuizResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.QuizResponse{}, err
	}

	questions := make([]models.QuizQuestion, 0, len(payload.Questions))
	for i, question := range payload.Questions {
		if err := validateQuestion(question); err != nil {
			return dto.QuizResponse{}, err
		}

		questions = append(questions, models.QuizQuestion{
			Position:      i + 1,
			Text:          question.Text,
			Type:          question.Type,
			Options:       question.Options,
			CorrectAnswer: question.CorrectAnswer,
			Points:        question.Points,
		})
	}

	quiz := models.Quiz{
		CourseID:              payload.CourseID,
		Title:                 payload.Title,
		Description:           payload.Description,
		WeekLabel:             payload.WeekLabel,
		DueDate:               payload.DueDate,
		TimeLimitMinutes:      payload.TimeLimitMinutes,
		AllowMultipleAttempts: payload.AllowMultipleAttempts,
		CreatedBy:             creatorID,
		Questions:             questions,
	}

	if err := s.quizzes.Create(ctx, &quiz); err != nil {
		return dto.QuizResponse{}, err
	}

	s.logger.Info().Uint("quiz_id", quiz.ID).Int("questions", len(questions)).Msg("quiz created")

	return dto.NewQuizResponse(quiz), nil
}

func (s *quizService) ListByCourse(ctx context.Context, courseID uint) ([]dto.QuizResponse, error) {
	quizzes, err := s.quizzes.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	return dto.NewQuizResponseSlice(quizzes), nil
}

func (s *quizService) GetWithQuestions(ctx context.Context, id uint) (dto.QuizResponse, error) {
	quiz, err := s.quizzes.GetWithQuestions(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.QuizResponse{}, ErrQuizNotFound
		}
		return dto.QuizResponse{}, err
	}

	return dto.NewQuizResponse(quiz), nil
}

// GenerateQuestions asks the configured provider for a question set and
// validates the result against the question schema before exposing it.
func (s *quizService) GenerateQuestions(ctx context.Context, input ai.GenerationInput) ([]dto.QuestionCreateRequest, error) {
	if s.generator == nil {
		return nil, fmt.Errorf("question generation is not configured")
	}

	generated, err := s.generator.Generate(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := s.validateGenerated(generated); err != nil {
		return nil, err
	}

	questions := make([]dto.QuestionCreateRequest, 0, len(generated))
	for _, question := range generated {
		request := dto.QuestionCreateRequest{
			Text:          question.Text,
			Type:          question.Type,
			Options:       question.Options,
			CorrectAnswer: question.CorrectAnswer,
			Points:        question.Points,
		}
		if err := validateQuestion(request); err != nil {
			return nil, err
		}
		questions = append(questions, request)
	}

	return questions, nil
}

func (s *quizService) validateGenerated(questions []ai.GeneratedQuestion) error {
	raw, err := json.Marshal(map[string]interface{}{"questions": questions})
	if err != nil {
		return fmt.Errorf("failed to encode generated questions: %w", err)
	}

	var document interface{}
	if err := json.Unmarshal(raw, &document); err != nil {
		return fmt.Errorf("failed to decode generated questions: %w", err)
	}

	if err := s.schema.Validate(document); err != nil {
		return fmt.Errorf("%w: generated payload failed schema validation", ErrInvalidQuestion)
	}

	return nil
}

func validateQuestion(question dto.QuestionCreateRequest) error {
	switch question.Type {
	case models.QuestionTypeFreeText:
		if question.CorrectAnswer != nil {
			return fmt.Errorf("%w: free-text questions must not carry a correct answer", ErrInvalidQuestion)
		}
	case models.QuestionTypeSingleChoice:
		if len(question.Options) < 2 {
			return fmt.Errorf("%w: single-choice questions need at least two options", ErrInvalidQuestion)
		}
		if question.CorrectAnswer == nil {
			return fmt.Errorf("%w: single-choice questions need a correct answer", ErrInvalidQuestion)
		}
		found := false
		for _, option := range question.Options {
			if option == *question.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: correct answer must be one of the options", ErrInvalidQuestion)
		}
	default:
		return fmt.Errorf("%w: unknown question type %q", ErrInvalidQuestion, question.Type)
	}

	return nil
}
