package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/orchid-lms/orchid-go-api/internal/service"
	"github.com/orchid-lms/orchid-go-api/internal/utils"
)

// PlagiarismHandler exposes the on-demand similarity check.
type PlagiarismHandler struct {
	service service.PlagiarismService
	logger  zerolog.Logger
}

// NewPlagiarismHandler builds a plagiarism handler instance.
func NewPlagiarismHandler(service service.PlagiarismService, logger zerolog.Logger) *PlagiarismHandler {
	return &PlagiarismHandler{
		service: service,
		logger:  logger.With().Str("component", "plagiarism_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *PlagiarismHandler) Register(router fiber.Router) {
	router.Post("/check/:submissionId", h.check)
}

func (h *PlagiarismHandler) check(c *fiber.Ctx) error {
	submissionID, err := parseUintParam(c, "submissionId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, utils.ErrKindValidation, err.Error())
	}

	report, err := h.service.Check(c.Context(), submissionID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "plagiarism check completed", report)
}

func (h *PlagiarismHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, utils.ErrKindNotFound, "submission not found")
	case errors.Is(err, service.ErrNoExtractableText):
		return utils.SendError(c, fiber.StatusBadGateway, utils.ErrKindExternal, "target submission has no extractable text")
	case errors.Is(err, service.ErrScoringTimeout):
		return utils.SendError(c, fiber.StatusBadGateway, utils.ErrKindExternal, "similarity scoring timed out, retry later")
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, utils.ErrKindInternal, "internal server error")
	}
}
