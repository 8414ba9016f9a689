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
)

// QuizSubmissionHandler manages quiz attempt endpoints.
type QuizSubmissionHandler struct {
	service service.QuizSubmissionService
	logger  zerolog.Logger
}

// NewQuizSubmissionHandler builds a quiz submission handler instance.
func NewQuizSubmissionHandler(service service.QuizSubmissionService, logger zerolog.Logger) *QuizSubmissionHandler {
	return &QuizSubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "quiz_submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. The group is
// mounted under /quizzes.
func (h *QuizSubmissionHandler) Register(router fiber.Router) {
	router.Post("/submit", middleware.RequireRole(middleware.RoleStudent), h.submit)
	router.Get("/:quizId/submissions", middleware.RequireRole(middleware.RoleTeacher, middleware.RoleAdmin), h.listByQuiz)
	router.Get("/:quizId/my-submission", middleware.RequireRole(middleware.RoleStudent), h.getOwn)
	router.Get("/submissions/:id", middleware.RequireRole(middleware.RoleTeacher, middleware.RoleAdmin), h.get)
}

func (h *QuizSubmissionHandler) submit(c *fiber.Ctx) error {
	var payload dto.QuizSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.ErrKindValidation, "invalid request body")
	}

	submission, err := h.service.Submit(c.Context(), middleware.UserID(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "quiz submitted", submission)
}

func (h *QuizSubmissionHandler) listByQuiz(c *fiber.Ctx) error {
	quizID, err := parseUintParam(c, "quizId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.ErrKindValidation, err.Error())
	}

	submissions, err := h.service.ListByQuiz(c.Context(), quizID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *QuizSubmissionHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.ErrKindValidation, err.Error())
	}

	submission, err := h.service.GetWithAnswers(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *QuizSubmissionHandler) getOwn(c *fiber.Ctx) error {
	quizID, err := parseUintParam(c, "quizId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.ErrKindValidation, err.Error())
	}

	submission, err := h.service.GetOwn(c.Context(), quizID, middleware.UserID(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *QuizSubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrQuizNotFound):
		return utils.SendError(c, fiber.StatusNotFound, utils.ErrKindNotFound, "quiz not found")
	case errors.Is(err, service.ErrQuizSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, utils.ErrKindNotFound, "submission not found")
	case errors.Is(err, service.ErrAttemptLimitExceeded):
		return utils.SendError(c, fiber.StatusForbidden, utils.ErrKindPolicy, "quiz attempt limit exceeded")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, utils.ErrKindValidation, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.ErrKindInternal, "internal server error")
	}
}
