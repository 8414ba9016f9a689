package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/orchid-lms/orchid-go-api/internal/dto"
	"github.com/orchid-lms/orchid-go-api/internal/middleware"
	"github.com/orchid-lms/orchid-go-api/internal/service"
	"github.com/orchid-lms/orchid-go-api/internal/utils"
	"github.com/orchid-lms/orchid-go-api/pkg/ai"
)

// QuizHandler manages quiz lifecycle endpoints.
type QuizHandler struct {
	service   service.QuizService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewQuizHandler builds a quiz handler instance.
func NewQuizHandler(service service.QuizService, validate *validator.Validate, logger zerolog.Logger) *QuizHandler {
	return &QuizHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "quiz_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *QuizHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", middleware.RequireRole(middleware.RoleTeacher, middleware.RoleAdmin), h.create)
	router.Post("/generate-questions", middleware.RequireRole(middleware.RoleTeacher, middleware.RoleAdmin), h.generateQuestions)
	router.Get("/:id", h.get)
}

func (h *QuizHandler) list(c *fiber.Ctx) error {
	courseID, err := parseQueryUint(c, "course_id")
	if err != nil || courseID == nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.ErrKindValidation, "course_id is required")
	}

	quizzes, err := h.service.ListByCourse(c.Context(), *courseID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "quizzes retrieved", quizzes)
}

func (h *QuizHandler) create(c *fiber.Ctx) error {
	var payload dto.QuizCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.ErrKindValidation, "invalid request body")
	}

	quiz, err := h.service.Create(c.Context(), payload, middleware.UserID(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "quiz created", quiz)
}

func (h *QuizHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.ErrKindValidation, err.Error())
	}

	quiz, err := h.service.GetWithQuestions(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "quiz retrieved", quiz)
}

func (h *QuizHandler) generateQuestions(c *fiber.Ctx) error {
	var payload dto.QuestionGenerationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.ErrKindValidation, "invalid request body")
	}
	if err := h.validator.Struct(payload); err != nil {
		return h.handleError(c, err)
	}

	questions, err := h.service.GenerateQuestions(c.Context(), ai.GenerationInput{
		Topic:           payload.Topic,
		Difficulty:      payload.Difficulty,
		QuestionCount:   payload.QuestionCount,
		PointsPer:       payload.PointsPer,
		AdditionalNotes: payload.AdditionalNotes,
	})
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "questions generated", questions)
}

func (h *QuizHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrQuizNotFound):
		return utils.SendError(c, fiber.StatusNotFound, utils.ErrKindNotFound, "quiz not found")
	case errors.Is(err, service.ErrInvalidQuestion):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, utils.ErrKindValidation, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, utils.ErrKindValidation, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.ErrKindInternal, "internal server error")
	}
}
