package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/annotator/internal/dataset"
)

// Session holds one operator's dataset, catalog and resume position.
// All methods are safe for concurrent use, but two sessions opened on the
// same output file do not coordinate with each other.
type Session struct {
	mu sync.Mutex

	id       uuid.UUID
	opts     Options
	openedAt time.Time
	logger   *slog.Logger

	inputs   []dataset.Record
	outputs  []dataset.Record
	latest   map[int]dataset.Record // append policy: row -> last saved record
	catalog  dataset.Catalog
	globals  map[string][]string
	progress int
	sidecar  *progressFile
}

// Open loads the dataset, the emotion catalog and any prior output, then
// computes the resume position according to opts.Policy.
func Open(opts Options, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	inputs, err := dataset.ReadJSONL(opts.InputPath)
	if err != nil {
		if errors.Is(err, dataset.ErrNotFound) {
			return nil, fmt.Errorf("load input %s: %w", opts.InputPath, err)
		}
		return nil, fmt.Errorf("load input %s: %w: %w", opts.InputPath, dataset.ErrNotFound, err)
	}

	catalog, err := dataset.LoadCatalog(opts.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	s := &Session{
		id:       uuid.New(),
		opts:     opts,
		openedAt: time.Now().UTC(),
		logger:   logger,
		inputs:   inputs,
		catalog:  catalog,
		globals:  catalog.GlobalLists(),
	}

	if opts.inPlace() {
		s.outputs = make([]dataset.Record, len(inputs))
		for i, r := range inputs {
			s.outputs[i] = r.Clone()
		}
	} else {
		outputs, err := dataset.ReadJSONL(opts.OutputPath)
		if err != nil && !errors.Is(err, dataset.ErrNotFound) {
			return nil, fmt.Errorf("load output %s: %w", opts.OutputPath, err)
		}
		s.outputs = outputs
	}
	if opts.Policy.Write == WriteAppend {
		s.latest = indexByPosition(s.outputs, len(inputs))
	}

	progress, err := s.initialProgress()
	if err != nil {
		return nil, err
	}
	s.progress = clamp(progress, 0, len(inputs))

	logger.Info("session opened",
		"session_id", s.id,
		"input", opts.InputPath,
		"output", opts.outputPath(),
		"rows", len(inputs),
		"progress", s.progress,
		"progress_source", opts.Policy.Progress,
		"write_policy", opts.Policy.Write,
	)
	return s, nil
}

func (s *Session) initialProgress() (int, error) {
	switch s.opts.Policy.Progress {
	case ProgressSidecar:
		s.sidecar = loadProgress(s.opts.progressPath(), s.logger)
		return s.sidecar.LastRow, nil
	case ProgressOutputLines:
		n, err := dataset.CountLines(s.opts.OutputPath)
		if err != nil {
			return 0, fmt.Errorf("count output lines: %w: %w", dataset.ErrNotFound, err)
		}
		return n, nil
	case ProgressOutputLength:
		return len(s.outputs), nil
	}
	return 0, fmt.Errorf("%w: unknown progress source %s", dataset.ErrConfig, s.opts.Policy.Progress)
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Progress returns the index of the first row not yet labeled.
func (s *Session) Progress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// Summary describes the session for listings.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked()
}

func (s *Session) summaryLocked() Summary {
	return Summary{
		ID:             s.id,
		InputPath:      s.opts.InputPath,
		OutputPath:     s.opts.outputPath(),
		Total:          len(s.inputs),
		Progress:       s.progress,
		Complete:       s.progress >= len(s.inputs),
		ProgressSource: s.opts.Policy.Progress.String(),
		WritePolicy:    s.opts.Policy.Write.String(),
		OpenedAt:       s.openedAt,
	}
}

// ServeCurrent serves the row at the current resume position.
func (s *Session) ServeCurrent() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(s.progress)
}

// Serve returns what to display for row. Rows at or past the end of the
// dataset yield a View with Complete set.
func (s *Session) Serve(row int) (View, error) {
	if row < 0 {
		return View{}, fmt.Errorf("%w: row %d", dataset.ErrOutOfRange, row)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(row), nil
}

func (s *Session) viewLocked(row int) View {
	v := View{
		Row:        row,
		Total:      len(s.inputs),
		Progress:   s.progress,
		Aspects:    dataset.Aspects,
		Polarities: dataset.Polarities,
		Catalog:    s.catalog,
		Global:     s.globals,
	}
	if row >= len(s.inputs) {
		v.Complete = true
		return v
	}
	rec := s.resolveLocked(row)
	v.Input = rec.Input
	v.Labels = rec.Output
	if v.Labels == nil {
		v.Labels = []dataset.Label{}
	}
	v.Labeled = rec.Labeled()
	return v
}

// resolveLocked prefers the saved output for row over the raw input.
func (s *Session) resolveLocked(row int) dataset.Record {
	if s.latest != nil {
		if rec, ok := s.latest[row]; ok {
			return rec.Clone()
		}
		return s.inputs[row].Clone()
	}
	if row < len(s.outputs) && s.outputs[row].Labeled() {
		return s.outputs[row].Clone()
	}
	return s.inputs[row].Clone()
}

// indexByPosition maps each labeled output line to the row at the same
// position. Lines past the end of the dataset are ignored. An appended file
// carries no row numbers, so a file written out of order resumes
// misaligned; saves made while the session is open are tracked exactly.
func indexByPosition(outputs []dataset.Record, rows int) map[int]dataset.Record {
	idx := make(map[int]dataset.Record)
	for i := 0; i < len(outputs) && i < rows; i++ {
		if outputs[i].Labeled() {
			idx[i] = outputs[i]
		}
	}
	return idx
}

// Records returns the resolved record for every row.
func (s *Session) Records() []dataset.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]dataset.Record, len(s.inputs))
	for i := range s.inputs {
		out[i] = s.resolveLocked(i)
	}
	return out
}

// Save stores labels as the output of row and returns the next row to show.
// A failed output write changes nothing. A failed sidecar write leaves the
// record saved but the resume position where it was.
func (s *Session) Save(row int, labels []dataset.Label) (SaveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if row < 0 || row >= len(s.inputs) {
		return SaveResult{}, fmt.Errorf("%w: row %d of %d", dataset.ErrOutOfRange, row, len(s.inputs))
	}

	rec := dataset.Record{Input: s.inputs[row].Input, Output: make([]dataset.Label, len(labels))}
	copy(rec.Output, labels)

	var next []dataset.Record
	switch s.opts.Policy.Write {
	case WriteAppend:
		if err := dataset.AppendJSONL(s.opts.outputPath(), rec); err != nil {
			return SaveResult{}, fmt.Errorf("append row %d: %w", row, err)
		}
		next = append(s.outputs, rec)
		s.latest[row] = rec
	default:
		next = s.upsertLocked(row, rec)
		if err := dataset.WriteJSONL(s.opts.outputPath(), next); err != nil {
			return SaveResult{}, fmt.Errorf("rewrite output for row %d: %w", row, err)
		}
	}
	s.outputs = next

	progress := max(s.progress, row+1)
	if s.sidecar != nil && progress != s.sidecar.LastRow {
		if err := s.sidecar.save(progress); err != nil {
			return SaveResult{}, fmt.Errorf("row %d saved but progress not advanced: %w", row, err)
		}
	}
	advanced := progress > s.progress
	s.progress = progress

	s.logger.Debug("row saved", "session_id", s.id, "row", row, "labels", len(labels), "progress", s.progress)

	return SaveResult{
		Row:      row,
		NextRow:  row + 1,
		Progress: s.progress,
		Total:    len(s.inputs),
		Complete: s.progress >= len(s.inputs),
		Advanced: advanced,
		Record:   rec.Clone(),
	}, nil
}

// upsertLocked returns a copy of the outputs with rec at row. Rows between
// the current end and row are filled with their unlabeled inputs so the
// file stays aligned by index.
func (s *Session) upsertLocked(row int, rec dataset.Record) []dataset.Record {
	size := max(len(s.outputs), row+1)
	next := make([]dataset.Record, size)
	copy(next, s.outputs)
	for i := len(s.outputs); i < row; i++ {
		next[i] = s.inputs[i].Clone()
	}
	next[row] = rec
	return next
}

// Navigate moves the display pointer to target without saving anything.
// With AdvanceOnNavigate a forward jump also raises the resume position.
func (s *Session) Navigate(target int) (NavigateResult, error) {
	if target < 0 {
		return NavigateResult{}, fmt.Errorf("%w: row %d", dataset.ErrOutOfRange, target)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res := NavigateResult{Row: target, Total: len(s.inputs)}

	if s.opts.Policy.AdvanceOnNavigate {
		progress := max(s.progress, min(target, len(s.inputs)))
		if progress != s.progress {
			if s.sidecar != nil {
				if err := s.sidecar.save(progress); err != nil {
					return NavigateResult{}, fmt.Errorf("navigate to %d: %w", target, err)
				}
			}
			s.progress = progress
			res.Advanced = true
		}
	}

	res.Progress = s.progress
	res.Complete = target >= len(s.inputs)
	return res, nil
}

// OutputLen returns the number of records in the output store.
func (s *Session) OutputLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.outputs)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
