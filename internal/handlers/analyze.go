package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/cwhuang-tw/studynotes/internal/analyze"
)

// AnalyzeHandler turns transcripts into structured notes.
type AnalyzeHandler struct {
	svc *analyze.Service
}

// NewAnalyzeHandler creates an analyze handler.
func NewAnalyzeHandler(svc *analyze.Service) *AnalyzeHandler {
	return &AnalyzeHandler{svc: svc}
}

type analyzeRequest struct {
	Provider string `json:"provider" validate:"required"`
	Text     string `json:"text" validate:"required"`
}

// Handle validates the provider name before any adapter is touched,
// then forwards the transcript for summarization.
func (h *AnalyzeHandler) Handle(c *fiber.Ctx) error {
	var req analyzeRequest
	if !parseBody(c, &req) {
		return nil
	}

	if !h.svc.Known(req.Provider) {
		return errorJSON(c, fiber.StatusBadRequest, "Unknown provider", "ERR_UNKNOWN_PROVIDER")
	}

	result, err := h.svc.Analyze(c.Context(), req.Provider, req.Text)
	if err != nil {
		if errors.Is(err, analyze.ErrNoCredential) {
			return errorJSON(c, fiber.StatusInternalServerError, "No API key configured for provider", "ERR_NO_CREDENTIAL")
		}
		log.Error().Err(err).Str("provider", req.Provider).Msg("analysis failed")
		return errorJSON(c, fiber.StatusInternalServerError, err.Error(), "ERR_ANALYZE")
	}

	return c.JSON(fiber.Map{"result": result})
}
