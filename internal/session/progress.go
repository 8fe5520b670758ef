package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/MikeSquared-Agency/annotator/internal/dataset"
)

// progressFile is the resume sidecar.
type progressFile struct {
	LastRow int `json:"last_row"`

	path string // not serialized
}

// loadProgress reads the sidecar. A missing or unreadable sidecar starts
// the session at row 0.
func loadProgress(path string, logger *slog.Logger) *progressFile {
	p := &progressFile{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("progress sidecar unreadable, starting at row 0", "path", path, "error", err)
		}
		return p
	}

	if err := json.Unmarshal(data, p); err != nil {
		logger.Warn("progress sidecar malformed, starting at row 0", "path", path, "error", err)
		p.LastRow = 0
	}
	return p
}

// save persists row atomically. LastRow only changes once the write lands.
func (p *progressFile) save(row int) error {
	data, err := json.Marshal(progressFile{LastRow: row})
	if err != nil {
		return fmt.Errorf("%w: marshal progress: %w", dataset.ErrStorage, err)
	}
	if err := dataset.WriteFileAtomic(p.path, data); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	p.LastRow = row
	return nil
}
