package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Archive saves finished transcripts to the local filesystem under a
// dated directory structure: outputs/2025/01/23/.
type Archive struct {
	outputDir string
}

// NewArchive creates a transcript archive rooted at outputDir.
func NewArchive(outputDir string) *Archive {
	return &Archive{outputDir: outputDir}
}

// SaveTranscript writes the transcript text and returns its path.
func (a *Archive) SaveTranscript(jobID, text string) (string, error) {
	now := time.Now()
	dateDir := filepath.Join(a.outputDir,
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		fmt.Sprintf("%02d", now.Day()))

	if err := os.MkdirAll(dateDir, 0755); err != nil {
		return "", fmt.Errorf("create date directory: %w", err)
	}

	name := now.Format("20060102_150405")
	if jobID != "" {
		name += "_" + jobID
	}
	path := filepath.Join(dateDir, name+".txt")

	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("save transcript: %w", err)
	}
	return path, nil
}
