package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/annotator/internal/bus"
	"github.com/MikeSquared-Agency/annotator/internal/dataset"
	"github.com/MikeSquared-Agency/annotator/internal/metrics"
)

// ErrUnknownSession is returned for ids not present in the registry.
var ErrUnknownSession = errors.New("unknown session")

// Publisher sends lifecycle events. *bus.Client satisfies it.
type Publisher interface {
	Publish(subject string, data any) error
}

// Archive mirrors saved records elsewhere. *store.Store satisfies it.
type Archive interface {
	ArchiveRecord(ctx context.Context, sessionID uuid.UUID, datasetPath string, row int, rec dataset.Record) error
}

// ManagerConfig holds the deployment-wide settings applied to every session.
type ManagerConfig struct {
	CatalogPath  string
	ProgressPath string
	Policy       Policy
}

// Manager opens sessions and runs every operation against them, reporting
// to the optional metrics, publisher and archive. Failures of those side
// channels are logged and never fail the operation.
type Manager struct {
	cfg       ManagerConfig
	registry  *Registry
	metrics   *metrics.Metrics
	publisher Publisher
	archive   Archive
	logger    *slog.Logger
}

// ManagerOption customises a Manager.
type ManagerOption func(*Manager)

// WithMetrics records operations on m.
func WithMetrics(m *metrics.Metrics) ManagerOption {
	return func(mg *Manager) { mg.metrics = m }
}

// WithPublisher emits lifecycle events through p.
func WithPublisher(p Publisher) ManagerOption {
	return func(mg *Manager) { mg.publisher = p }
}

// WithArchive mirrors every save into a.
func WithArchive(a Archive) ManagerOption {
	return func(mg *Manager) { mg.archive = a }
}

func NewManager(cfg ManagerConfig, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		cfg:      cfg,
		registry: NewRegistry(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Policy returns the policy applied to new sessions.
func (m *Manager) Policy() Policy {
	return m.cfg.Policy
}

// Open starts a session over inputPath. outputPath may be empty to rewrite
// the input in place.
func (m *Manager) Open(inputPath, outputPath string) (*Session, error) {
	s, err := Open(Options{
		InputPath:    inputPath,
		OutputPath:   outputPath,
		ProgressPath: m.cfg.ProgressPath,
		CatalogPath:  m.cfg.CatalogPath,
		Policy:       m.cfg.Policy,
	}, m.logger)
	m.metrics.SessionOpened(err)
	if err != nil {
		return nil, err
	}
	if err := m.registry.Add(s); err != nil {
		return nil, err
	}

	sum := s.Summary()
	m.metrics.SetProgress(s.ID().String(), sum.Progress, sum.Total)
	m.publish(bus.SubjectSessionOpened, sessionEvent(sum))
	return s, nil
}

// Get returns an open session.
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	s, ok := m.registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	return s, nil
}

// List returns summaries of every open session.
func (m *Manager) List() []Summary {
	sessions := m.registry.List()
	out := make([]Summary, len(sessions))
	for i, s := range sessions {
		out[i] = s.Summary()
	}
	return out
}

// Close forgets a session. Its files stay as they are.
func (m *Manager) Close(id uuid.UUID) error {
	s, ok := m.registry.Remove(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSession, id)
	}
	m.metrics.ForgetSession(id.String())
	m.publish(bus.SubjectSessionClosed, sessionEvent(s.Summary()))
	m.logger.Info("session closed", "session_id", id)
	return nil
}

// Serve returns the view for row, or for the resume position when row is nil.
func (m *Manager) Serve(id uuid.UUID, row *int) (View, error) {
	s, err := m.Get(id)
	if err != nil {
		return View{}, err
	}
	if row == nil {
		return s.ServeCurrent(), nil
	}
	return s.Serve(*row)
}

// Save persists labels for row and reports the next row.
func (m *Manager) Save(ctx context.Context, id uuid.UUID, row int, labels []dataset.Label) (SaveResult, error) {
	s, err := m.Get(id)
	if err != nil {
		return SaveResult{}, err
	}

	res, err := s.Save(row, labels)
	m.metrics.Saved(m.cfg.Policy.Write.String(), err)
	if err != nil {
		m.logger.Error("save failed", "session_id", id, "row", row, "error", err)
		return SaveResult{}, err
	}
	m.metrics.SetProgress(id.String(), res.Progress, res.Total)

	if m.archive != nil {
		err := m.archive.ArchiveRecord(ctx, id, s.opts.outputPath(), row, res.Record)
		m.metrics.SideEffect("archive", err)
		if err != nil {
			m.logger.Warn("failed to archive record", "session_id", id, "row", row, "error", err)
		}
	}

	now := time.Now().UTC()
	m.publish(bus.SubjectRecordSaved, bus.RecordSavedEvent{
		SessionID: id.String(),
		Row:       row,
		Labels:    res.Record.Output,
		Progress:  res.Progress,
		Total:     res.Total,
		Timestamp: now,
	})
	if res.Complete && res.Advanced {
		m.publish(bus.SubjectSessionCompleted, sessionEvent(s.Summary()))
	}
	return res, nil
}

// Navigate moves the display pointer of a session.
func (m *Manager) Navigate(id uuid.UUID, target int) (NavigateResult, error) {
	s, err := m.Get(id)
	if err != nil {
		return NavigateResult{}, err
	}

	before := s.Progress()
	res, err := s.Navigate(target)
	if err != nil {
		return NavigateResult{}, err
	}
	m.metrics.Navigated(before, target)
	m.metrics.SetProgress(id.String(), res.Progress, res.Total)
	m.publish(bus.SubjectNavigated, bus.NavigatedEvent{
		SessionID: id.String(),
		Row:       res.Row,
		Progress:  res.Progress,
		Advanced:  res.Advanced,
		Timestamp: time.Now().UTC(),
	})
	return res, nil
}

func (m *Manager) publish(subject string, data any) {
	if m.publisher == nil {
		return
	}
	err := m.publisher.Publish(subject, data)
	m.metrics.SideEffect("bus", err)
	if err != nil {
		m.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

func sessionEvent(sum Summary) bus.SessionEvent {
	return bus.SessionEvent{
		SessionID: sum.ID.String(),
		InputPath: sum.InputPath,
		Output:    sum.OutputPath,
		Total:     sum.Total,
		Progress:  sum.Progress,
		Timestamp: time.Now().UTC(),
	}
}
