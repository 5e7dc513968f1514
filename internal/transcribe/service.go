package transcribe

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cwhuang-tw/studynotes/internal/jobs"
	"github.com/cwhuang-tw/studynotes/internal/storage"
	"github.com/cwhuang-tw/studynotes/internal/types"
)

// Remoter is the remote-mode transcription dependency of the service.
type Remoter interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// Service selects the transcription strategy and owns the async local
// job path. History and archive are optional; a nil value disables them.
type Service struct {
	mode     string
	remote   Remoter
	local    *Local
	registry *jobs.Registry
	history  *storage.History
	archive  *storage.Archive
}

// NewService wires a transcription service for the configured mode.
func NewService(mode string, remote Remoter, local *Local, registry *jobs.Registry, history *storage.History, archive *storage.Archive) *Service {
	return &Service{
		mode:     mode,
		remote:   remote,
		local:    local,
		registry: registry,
		history:  history,
		archive:  archive,
	}
}

// Mode reports the configured transcription mode ("api" or "local").
func (s *Service) Mode() string { return s.mode }

// TranscribeRemote runs the synchronous remote path and records history.
func (s *Service) TranscribeRemote(ctx context.Context, audio []byte, filename string) (string, error) {
	start := time.Now()
	text, err := s.remote.Transcribe(ctx, audio, filename)
	if err != nil {
		return "", err
	}
	s.record("", types.ModeAPI, text, time.Since(start))
	return text, nil
}

// StartJob registers a job and spawns the local subprocess in the
// background. The caller polls the registry for progress and result.
func (s *Service) StartJob(audio []byte, filename string) (string, error) {
	inputPath, err := s.local.SaveTemp(audio, filename)
	if err != nil {
		return "", err
	}

	id := s.registry.Create()
	ctx, cancel := context.WithCancel(context.Background())
	s.registry.SetCancel(id, cancel)

	go s.runJob(ctx, cancel, id, inputPath)
	return id, nil
}

func (s *Service) runJob(ctx context.Context, cancel context.CancelFunc, id, inputPath string) {
	defer cancel()
	start := time.Now()

	text, err := s.local.Run(ctx, inputPath, func(pct int) {
		s.registry.UpdateProgress(id, pct)
	})
	s.local.cleanupTempFile(inputPath)

	if err != nil {
		log.Error().Err(err).Str("job_id", id).Msg("local transcription failed")
		s.registry.Fail(id, err.Error())
		return
	}

	s.registry.Complete(id, text)
	s.record(id, types.ModeLocal, text, time.Since(start))
	log.Info().Str("job_id", id).Int("characters", len(text)).Msg("local transcription completed")
}

// record archives the transcript and stores a history row, best-effort.
func (s *Service) record(jobID, mode, text string, elapsed time.Duration) {
	var localPath string
	if s.archive != nil {
		path, err := s.archive.SaveTranscript(jobID, text)
		if err != nil {
			log.Warn().Err(err).Msg("transcript archive failed")
		} else {
			localPath = path
		}
	}
	if s.history != nil {
		rec := types.HistoryRecord{
			JobID:      jobID,
			Mode:       mode,
			Characters: len([]rune(text)),
			Duration:   elapsed.Seconds(),
			LocalPath:  localPath,
			CreatedAt:  time.Now(),
		}
		if err := s.history.Save(rec); err != nil {
			log.Warn().Err(err).Msg("history save failed")
		}
	}
}
