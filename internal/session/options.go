package session

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MikeSquared-Agency/annotator/internal/dataset"
)

// ProgressSource selects where the resume position comes from.
type ProgressSource int

const (
	// ProgressSidecar reads {"last_row": N} from a sidecar file.
	ProgressSidecar ProgressSource = iota
	// ProgressOutputLines counts the non-blank lines of the output file.
	ProgressOutputLines
	// ProgressOutputLength uses the number of output records loaded in memory.
	ProgressOutputLength
)

func (p ProgressSource) String() string {
	switch p {
	case ProgressSidecar:
		return "sidecar"
	case ProgressOutputLines:
		return "output_lines"
	case ProgressOutputLength:
		return "output_length"
	default:
		return fmt.Sprintf("progress_source(%d)", int(p))
	}
}

// ParseProgressSource maps a config value to a ProgressSource.
func ParseProgressSource(s string) (ProgressSource, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sidecar":
		return ProgressSidecar, nil
	case "output_lines":
		return ProgressOutputLines, nil
	case "output_length":
		return ProgressOutputLength, nil
	}
	return 0, fmt.Errorf("%w: unknown progress source %q", dataset.ErrConfig, s)
}

// WritePolicy selects how a saved record reaches the output file.
type WritePolicy int

const (
	// WriteUpsert replaces the row's entry and rewrites the whole output file.
	WriteUpsert WritePolicy = iota
	// WriteAppend appends one line per save. Re-saving a row duplicates it.
	WriteAppend
)

func (w WritePolicy) String() string {
	switch w {
	case WriteUpsert:
		return "upsert"
	case WriteAppend:
		return "append"
	default:
		return fmt.Sprintf("write_policy(%d)", int(w))
	}
}

// ParseWritePolicy maps a config value to a WritePolicy.
func ParseWritePolicy(s string) (WritePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "upsert":
		return WriteUpsert, nil
	case "append":
		return WriteAppend, nil
	}
	return 0, fmt.Errorf("%w: unknown write policy %q", dataset.ErrConfig, s)
}

// Policy is chosen once per deployment and applied to every session.
type Policy struct {
	Progress          ProgressSource
	Write             WritePolicy
	AdvanceOnNavigate bool
}

// Options describes one session to open.
type Options struct {
	InputPath string
	// OutputPath empty (or equal to InputPath) rewrites the input in place.
	OutputPath string
	// ProgressPath overrides the sidecar location.
	ProgressPath string
	CatalogPath  string
	Policy       Policy
}

func (o Options) inPlace() bool {
	if o.OutputPath == "" {
		return true
	}
	return filepath.Clean(o.OutputPath) == filepath.Clean(o.InputPath)
}

func (o Options) outputPath() string {
	if o.inPlace() {
		return o.InputPath
	}
	return o.OutputPath
}

func (o Options) progressPath() string {
	if o.ProgressPath != "" {
		return o.ProgressPath
	}
	return o.outputPath() + ".progress.json"
}

func (o Options) validate() error {
	if o.InputPath == "" {
		return fmt.Errorf("%w: input path is required", dataset.ErrNotFound)
	}
	if o.CatalogPath == "" {
		return fmt.Errorf("%w: emotion catalog path is required", dataset.ErrConfig)
	}
	if o.inPlace() {
		if o.Policy.Progress != ProgressSidecar {
			return fmt.Errorf("%w: in-place sessions need the sidecar progress source, got %s", dataset.ErrConfig, o.Policy.Progress)
		}
		if o.Policy.Write != WriteUpsert {
			return fmt.Errorf("%w: in-place sessions need the upsert write policy, got %s", dataset.ErrConfig, o.Policy.Write)
		}
	}
	return nil
}
