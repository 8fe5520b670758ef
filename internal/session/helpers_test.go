package session

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MikeSquared-Agency/annotator/internal/dataset"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fixture struct {
	dir     string
	input   string
	output  string
	catalog string
}

func newFixture(t *testing.T, lines ...string) fixture {
	t.Helper()
	if len(lines) == 0 {
		lines = []string{`{"input":"A"}`, `{"input":"B"}`, `{"input":"C"}`}
	}
	dir := t.TempDir()
	f := fixture{
		dir:     dir,
		input:   filepath.Join(dir, "input.jsonl"),
		output:  filepath.Join(dir, "output.jsonl"),
		catalog: filepath.Join(dir, "emotions.json"),
	}
	writeFile(t, f.input, strings.Join(lines, "\n")+"\n")
	writeFile(t, f.catalog, `{"food":{"positive":["tasty"]}}`)
	return f
}

func (f fixture) split(p Policy) Options {
	return Options{InputPath: f.input, OutputPath: f.output, CatalogPath: f.catalog, Policy: p}
}

func (f fixture) inPlace() Options {
	return Options{InputPath: f.input, CatalogPath: f.catalog}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	trimmed := strings.TrimSuffix(string(data), "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

func mustOpen(t *testing.T, opts Options) *Session {
	t.Helper()
	s, err := Open(opts, discardLogger)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func mustSave(t *testing.T, s *Session, row int, labels ...dataset.Label) SaveResult {
	t.Helper()
	res, err := s.Save(row, labels)
	if err != nil {
		t.Fatalf("Save(%d) failed: %v", row, err)
	}
	return res
}

var tasty = dataset.Label{Aspect: "food", Polarity: "positive", Emotion: "tasty"}
