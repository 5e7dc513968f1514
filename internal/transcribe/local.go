package transcribe

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// progressPattern matches the subprocess's "PROGRESS <int>" stdout lines.
var progressPattern = regexp.MustCompile(`^PROGRESS\s+(-?\d+)`)

const killGracePeriod = 5 * time.Second

// Local drives the faster-whisper inference script as a subprocess.
// The script contract is: <python> <script> <in_audio> <out_txt> <model>
// <device> <compute>; transcript lines go to the output file and
// incremental "PROGRESS <int>" lines to stdout.
type Local struct {
	pythonBin  string
	scriptPath string
	model      string
	device     string
	compute    string
	tempDir    string
}

// NewLocal creates a local transcriber.
func NewLocal(pythonBin, scriptPath, model, device, compute, tempDir string) *Local {
	return &Local{
		pythonBin:  pythonBin,
		scriptPath: scriptPath,
		model:      model,
		device:     device,
		compute:    compute,
		tempDir:    tempDir,
	}
}

// Transcribe is the synchronous variant: it writes audio to a temp file,
// runs the subprocess to completion, and returns the trimmed transcript.
// Both temp files are removed best-effort.
func (l *Local) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	inputPath, err := l.SaveTemp(audio, filename)
	if err != nil {
		return "", err
	}
	defer l.cleanupTempFile(inputPath)

	return l.Run(ctx, inputPath, nil)
}

// SaveTemp writes uploaded audio into the temp directory, keeping the
// original extension so the model can sniff the container format.
func (l *Local) SaveTemp(audio []byte, filename string) (string, error) {
	if err := os.MkdirAll(l.tempDir, 0755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	path := filepath.Join(l.tempDir, uuid.New().String()+filepath.Ext(filename))
	if err := os.WriteFile(path, audio, 0644); err != nil {
		return "", fmt.Errorf("save audio: %w", err)
	}
	return path, nil
}

// Run executes the subprocess against inputPath, streaming progress
// percentages to onProgress (which may be nil), and returns the trimmed
// transcript read from the output file. The output file is removed
// best-effort; inputPath is the caller's to clean up. Cancelling ctx
// sends SIGTERM to the process group, then SIGKILL after a grace period.
func (l *Local) Run(ctx context.Context, inputPath string, onProgress func(int)) (string, error) {
	outputPath := strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + ".txt"
	defer l.cleanupTempFile(outputPath)

	cmd := exec.CommandContext(ctx, l.pythonBin, l.scriptPath,
		inputPath,
		outputPath,
		l.model,
		l.device,
		l.compute,
	)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
	}
	cmd.WaitDelay = killGracePeriod

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("attach stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("start transcription process: %w", err)
	}
	log.Debug().Str("input", inputPath).Str("model", l.model).Msg("local transcription started")

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		pct, ok := parseProgress(scanner.Text())
		if ok && onProgress != nil {
			onProgress(pct)
		}
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("transcription cancelled: %w", ctx.Err())
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", fmt.Errorf("transcription process failed: %s", msg)
	}

	text, err := os.ReadFile(outputPath)
	if err != nil {
		return "", fmt.Errorf("read transcript output: %w", err)
	}
	return strings.TrimSpace(string(text)), nil
}

// parseProgress extracts a clamped percentage from a PROGRESS line.
func parseProgress(line string) (int, bool) {
	m := progressPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0, false
	}
	pct, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	if pct < 0 {
		pct = 0
	} else if pct > 100 {
		pct = 100
	}
	return pct, true
}

func (l *Local) cleanupTempFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", path).Msg("failed to cleanup temp file")
	}
}
