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

// AssignmentSubmissionHandler manages assignment hand-in and grading endpoints.
type AssignmentSubmissionHandler struct {
	service service.AssignmentSubmissionService
	logger  zerolog.Logger
}

// NewAssignmentSubmissionHandler builds an assignment submission handler instance.
func NewAssignmentSubmissionHandler(service service.AssignmentSubmissionService, logger zerolog.Logger) *AssignmentSubmissionHandler {
	return &AssignmentSubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "assignment_submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. The group is
// mounted under /assignments.
func (h *AssignmentSubmissionHandler) Register(router fiber.Router) {
	router.Post("/submissions", middleware.RequireRole(middleware.RoleStudent), h.submit)
	router.Get("/:assignmentId/submissions", middleware.RequireRole(middleware.RoleTeacher, middleware.RoleAdmin), h.listByAssignment)
	router.Get("/submissions/:id", middleware.RequireRole(middleware.RoleTeacher, middleware.RoleAdmin), h.get)
	router.Patch("/submissions/:id/grade", middleware.RequireRole(middleware.RoleTeacher, middleware.RoleAdmin), h.grade)
}

func (h *AssignmentSubmissionHandler) submit(c *fiber.Ctx) error {
	assignmentID, err := parseFormUint(c, "assignment_id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.ErrKindValidation, err.Error())
	}

	payload := dto.AssignmentSubmissionCreateRequest{
		AssignmentID: *assignmentID,
		Text:         c.FormValue("text"),
	}

	// The file part is optional; text-only hand-ins are valid.
	file, err := c.FormFile("file")
	if err != nil {
		file = nil
	}

	submission, err := h.service.Submit(c.Context(), middleware.UserID(c), payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission created", submission)
}

func (h *AssignmentSubmissionHandler) listByAssignment(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "assignmentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.ErrKindValidation, err.Error())
	}

	submissions, err := h.service.ListByAssignment(c.Context(), assignmentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *AssignmentSubmissionHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.ErrKindValidation, err.Error())
	}

	submission, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *AssignmentSubmissionHandler) grade(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.ErrKindValidation, err.Error())
	}

	var payload dto.AssignmentGradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.ErrKindValidation, "invalid request body")
	}

	submission, err := h.service.Grade(c.Context(), id, payload, middleware.UserID(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission graded", submission)
}

func (h *AssignmentSubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, utils.ErrKindNotFound, "assignment not found")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, utils.ErrKindNotFound, "submission not found")
	case errors.Is(err, service.ErrEmptySubmission):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, utils.ErrKindPolicy, "submission needs text or a file")
	case errors.Is(err, service.ErrNothingToUpdate):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, utils.ErrKindPolicy, "provide a grade or feedback")
	case errors.Is(err, service.ErrGradeOutOfRange):
		return utils.SendError(c, fiber.StatusUnprocessableEntity, utils.ErrKindPolicy, "grade must be between 0 and 100")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, utils.ErrKindValidation, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.ErrKindInternal, "internal server error")
	}
}
