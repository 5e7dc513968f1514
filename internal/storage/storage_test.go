package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cwhuang-tw/studynotes/internal/types"
)

func TestHistorySaveAndList(t *testing.T) {
	h, err := NewHistory(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("new history: %v", err)
	}
	defer h.Close()

	recs := []types.HistoryRecord{
		{JobID: "job-1", Mode: types.ModeLocal, Characters: 120, Duration: 5.5, LocalPath: "/tmp/a.txt", CreatedAt: time.Now().Add(-time.Minute)},
		{JobID: "", Mode: types.ModeAPI, Characters: 42, Duration: 1.2, CreatedAt: time.Now()},
	}
	for _, rec := range recs {
		if err := h.Save(rec); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	got, err := h.List(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// Newest first.
	if got[0].Mode != types.ModeAPI {
		t.Errorf("first record mode = %s, want api", got[0].Mode)
	}
	if got[1].JobID != "job-1" || got[1].Characters != 120 {
		t.Errorf("second record = %+v", got[1])
	}
}

func TestHistoryListLimit(t *testing.T) {
	h, err := NewHistory(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("new history: %v", err)
	}
	defer h.Close()

	for i := 0; i < 5; i++ {
		if err := h.Save(types.HistoryRecord{Mode: types.ModeAPI, CreatedAt: time.Now()}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	got, err := h.List(3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}
}

func TestArchiveSaveTranscript(t *testing.T) {
	dir := t.TempDir()
	a := NewArchive(dir)

	path, err := a.SaveTranscript("job-9", "transcript body")
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(raw) != "transcript body" {
		t.Errorf("content = %q", raw)
	}

	rel, err := filepath.Rel(dir, path)
	if err != nil {
		t.Fatalf("path %q not under archive root", path)
	}
	// Dated layout: year/month/day/file.
	if got := len(strings.Split(rel, string(filepath.Separator))); got != 4 {
		t.Errorf("path %q should have year/month/day segments", rel)
	}
	if !strings.Contains(filepath.Base(path), "job-9") {
		t.Errorf("filename %q missing job id", filepath.Base(path))
	}
}
