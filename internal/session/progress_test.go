package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/MikeSquared-Agency/annotator/internal/dataset"
)

func TestLoadProgress_Missing(t *testing.T) {
	p := loadProgress(filepath.Join(t.TempDir(), "progress.json"), discardLogger)
	if p.LastRow != 0 {
		t.Errorf("expected 0 for missing sidecar, got %d", p.LastRow)
	}
}

func TestLoadProgress_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	writeFile(t, path, `{"last_row": "seven"}`)

	p := loadProgress(path, discardLogger)
	if p.LastRow != 0 {
		t.Errorf("expected 0 for malformed sidecar, got %d", p.LastRow)
	}
}

func TestProgressFile_SaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "progress.json")

	p := loadProgress(path, discardLogger)
	if err := p.save(7); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if p.LastRow != 7 {
		t.Errorf("expected LastRow 7 after save, got %d", p.LastRow)
	}

	reloaded := loadProgress(path, discardLogger)
	if reloaded.LastRow != 7 {
		t.Errorf("expected 7 after reload, got %d", reloaded.LastRow)
	}
}

func TestProgressFile_SaveFailureKeepsValue(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	p := &progressFile{LastRow: 2, path: filepath.Join(blocker, "progress.json")}
	err := p.save(3)
	if !errors.Is(err, dataset.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if p.LastRow != 2 {
		t.Errorf("failed save changed LastRow to %d", p.LastRow)
	}
}
