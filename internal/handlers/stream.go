package handlers

import (
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog/log"

	"github.com/cwhuang-tw/studynotes/internal/jobs"
	"github.com/cwhuang-tw/studynotes/internal/types"
)

// StreamHandler pushes job snapshots over a WebSocket so clients can
// watch local transcription progress without polling.
type StreamHandler struct {
	registry *jobs.Registry
}

// NewStreamHandler creates a stream handler.
func NewStreamHandler(registry *jobs.Registry) *StreamHandler {
	return &StreamHandler{registry: registry}
}

// Handle streams snapshots for the job in the path until it reaches a
// terminal state or the peer goes away.
func (h *StreamHandler) Handle(c *websocket.Conn) {
	defer c.Close()

	jobID := c.Params("jobId")
	lastProgress := -1

	for {
		snap, err := h.registry.Get(jobID)
		if err != nil {
			c.WriteJSON(map[string]string{"error": "job not found"})
			return
		}

		// Only push when something changed, plus the terminal snapshot.
		if snap.Progress != lastProgress || snap.Status != types.StatusProcessing {
			if err := c.WriteJSON(snap); err != nil {
				log.Debug().Err(err).Str("job_id", jobID).Msg("websocket peer gone")
				return
			}
			lastProgress = snap.Progress
		}

		if snap.Status != types.StatusProcessing {
			return
		}
		time.Sleep(500 * time.Millisecond)
	}
}
