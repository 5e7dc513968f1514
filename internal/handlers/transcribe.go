package handlers

import (
	"errors"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/cwhuang-tw/studynotes/internal/jobs"
	"github.com/cwhuang-tw/studynotes/internal/transcribe"
	"github.com/cwhuang-tw/studynotes/internal/types"
)

// TranscribeHandler accepts audio uploads and exposes the job endpoints.
type TranscribeHandler struct {
	svc      *transcribe.Service
	registry *jobs.Registry
}

// NewTranscribeHandler creates a transcribe handler.
func NewTranscribeHandler(svc *transcribe.Service, registry *jobs.Registry) *TranscribeHandler {
	return &TranscribeHandler{svc: svc, registry: registry}
}

// Upload validates the multipart audio field and dispatches to the
// configured transcription mode. Remote mode answers synchronously with
// the transcript; local mode answers with a job id to poll.
func (h *TranscribeHandler) Upload(c *fiber.Ctx) error {
	file, err := c.FormFile("audio")
	if err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "No audio file uploaded", "ERR_NO_FILE")
	}

	if !acceptableAudio(file.Header.Get("Content-Type"), file.Filename) {
		return errorJSON(c, fiber.StatusBadRequest, "Unsupported audio format (mp3/wav only)", "ERR_INVALID_FORMAT")
	}

	src, err := file.Open()
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to read upload", "ERR_READ_UPLOAD")
	}
	defer src.Close()

	audio, err := io.ReadAll(src)
	if err != nil {
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to read upload", "ERR_READ_UPLOAD")
	}

	if h.svc.Mode() == types.ModeAPI {
		text, err := h.svc.TranscribeRemote(c.Context(), audio, file.Filename)
		if err != nil {
			log.Error().Err(err).Msg("remote transcription failed")
			return errorJSON(c, fiber.StatusInternalServerError, err.Error(), "ERR_TRANSCRIBE")
		}
		return c.JSON(fiber.Map{
			"text": text,
			"mode": types.ModeAPI,
			"done": true,
		})
	}

	jobID, err := h.svc.StartJob(audio, file.Filename)
	if err != nil {
		log.Error().Err(err).Msg("failed to start transcription job")
		return errorJSON(c, fiber.StatusInternalServerError, err.Error(), "ERR_TRANSCRIBE")
	}
	return c.JSON(fiber.Map{
		"jobId": jobID,
		"mode":  types.ModeLocal,
		"done":  false,
	})
}

// Status returns the job snapshot for polling clients.
func (h *TranscribeHandler) Status(c *fiber.Ctx) error {
	snap, err := h.registry.Get(c.Params("jobId"))
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Job not found", "ERR_JOB_NOT_FOUND")
		}
		return errorJSON(c, fiber.StatusInternalServerError, err.Error(), "ERR_JOBS")
	}
	return c.JSON(snap)
}

// Cancel stops a job's subprocess (if still running) and removes the entry.
func (h *TranscribeHandler) Cancel(c *fiber.Ctx) error {
	if err := h.registry.Remove(c.Params("jobId")); err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return errorJSON(c, fiber.StatusNotFound, "Job not found", "ERR_JOB_NOT_FOUND")
		}
		return errorJSON(c, fiber.StatusInternalServerError, err.Error(), "ERR_JOBS")
	}
	return c.JSON(fiber.Map{"ok": true})
}

// acceptableAudio checks the declared MIME type, falling back to the
// filename extension when the client sent none.
func acceptableAudio(contentType, filename string) bool {
	if contentType != "" {
		if mt, _, err := mime.ParseMediaType(contentType); err == nil {
			return allowedAudioMIME[strings.ToLower(mt)]
		}
		return false
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp3", ".wav":
		return true
	}
	return false
}
