package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/cwhuang-tw/studynotes/internal/storage"
)

// HistoryHandler lists finished transcriptions.
type HistoryHandler struct {
	history *storage.History
}

// NewHistoryHandler creates a history handler.
func NewHistoryHandler(history *storage.History) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List returns the most recent transcription records.
func (h *HistoryHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)

	records, err := h.history.List(limit)
	if err != nil {
		log.Error().Err(err).Msg("history list failed")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to list history", "ERR_HISTORY")
	}
	return c.JSON(records)
}
