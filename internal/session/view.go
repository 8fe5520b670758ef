package session

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/annotator/internal/dataset"
)

// View is everything a presentation layer needs to render one row.
type View struct {
	Row      int  `json:"row"`
	Total    int  `json:"total"`
	Progress int  `json:"progress"`
	Complete bool `json:"complete"`

	Input   json.RawMessage `json:"input,omitempty"`
	Labels  []dataset.Label `json:"labels,omitempty"`
	Labeled bool            `json:"labeled"`

	Aspects    []string            `json:"aspects"`
	Polarities []string            `json:"polarities"`
	Catalog    dataset.Catalog     `json:"emotions"`
	Global     map[string][]string `json:"global_emotions"`
}

// SaveResult reports the outcome of a save.
type SaveResult struct {
	Row      int            `json:"row"`
	NextRow  int            `json:"next_row"`
	Progress int            `json:"progress"`
	Total    int            `json:"total"`
	Complete bool           `json:"complete"`
	Advanced bool           `json:"advanced"`
	Record   dataset.Record `json:"-"`
}

// NavigateResult reports where a navigation landed.
type NavigateResult struct {
	Row      int  `json:"next_row"`
	Progress int  `json:"progress"`
	Total    int  `json:"total"`
	Complete bool `json:"complete"`
	Advanced bool `json:"advanced"`
}

// Summary describes an open session.
type Summary struct {
	ID             uuid.UUID `json:"id"`
	InputPath      string    `json:"input_path"`
	OutputPath     string    `json:"output_path"`
	Total          int       `json:"total"`
	Progress       int       `json:"progress"`
	Complete       bool      `json:"complete"`
	ProgressSource string    `json:"progress_source"`
	WritePolicy    string    `json:"write_policy"`
	OpenedAt       time.Time `json:"opened_at"`
}
