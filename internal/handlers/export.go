package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/cwhuang-tw/studynotes/internal/analyze"
	"github.com/cwhuang-tw/studynotes/internal/storage"
)

// ExportHandler hands the client the fixed notes prompt alongside the
// transcript, and optionally mirrors the transcript to Google Drive.
type ExportHandler struct {
	drive *storage.DriveClient // nil when Drive is not configured
}

// NewExportHandler creates an export handler.
func NewExportHandler(drive *storage.DriveClient) *ExportHandler {
	return &ExportHandler{drive: drive}
}

type exportRequest struct {
	Text string `json:"text" validate:"required"`
}

// Handle returns the prompt/text pair for manual pasting into an LLM.
func (h *ExportHandler) Handle(c *fiber.Ctx) error {
	var req exportRequest
	if !parseBody(c, &req) {
		return nil
	}

	resp := fiber.Map{
		"prompt": analyze.NotesPrompt,
		"text":   req.Text,
	}

	if h.drive != nil {
		url, err := h.drive.UploadText("transcript_export", req.Text)
		if err != nil {
			// Drive mirroring is best-effort; the export itself succeeded.
			log.Warn().Err(err).Msg("drive export failed")
		} else {
			resp["driveUrl"] = url
		}
	}

	return c.JSON(resp)
}
