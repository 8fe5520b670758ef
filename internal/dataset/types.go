package dataset

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Aspects is the closed vocabulary offered to the operator. Stored data is
// not checked against it.
var Aspects = []string{"food", "place", "staff", "service", "miscellaneous", "price", "ambience", "menu"}

// Polarities is the closed polarity vocabulary offered to the operator.
var Polarities = []string{"positive", "negative", "neutral"}

// Label is one (aspect, polarity, emotion) assignment. A field submitted as
// null or left out decodes to "" and is written back as null.
type Label struct {
	Aspect   string
	Polarity string
	Emotion  string

	absent labelFields
}

type labelFields uint8

const (
	absentAspect labelFields = 1 << iota
	absentPolarity
	absentEmotion
)

type labelJSON struct {
	Aspect   *string `json:"aspect"`
	Polarity *string `json:"polarity"`
	Emotion  *string `json:"emotion"`
}

func (l Label) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	err := enc.Encode(labelJSON{
		Aspect:   l.field(l.Aspect, absentAspect),
		Polarity: l.field(l.Polarity, absentPolarity),
		Emotion:  l.field(l.Emotion, absentEmotion),
	})
	if err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (l Label) field(v string, bit labelFields) *string {
	if l.absent&bit != 0 {
		return nil
	}
	return &v
}

func (l *Label) UnmarshalJSON(data []byte) error {
	var raw labelJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = Label{}
	l.Aspect = l.take(raw.Aspect, absentAspect)
	l.Polarity = l.take(raw.Polarity, absentPolarity)
	l.Emotion = l.take(raw.Emotion, absentEmotion)
	return nil
}

func (l *Label) take(v *string, bit labelFields) string {
	if v == nil {
		l.absent |= bit
		return ""
	}
	return *v
}

// Record is one dataset item. Input is kept as raw JSON so that whatever the
// source file carries is written back unchanged. A nil Output means the row
// has never been labeled; an empty non-nil Output is a saved empty label set.
type Record struct {
	Input  json.RawMessage
	Output []Label
}

// Labeled reports whether the record carries a saved label set.
func (r Record) Labeled() bool {
	return r.Output != nil
}

// InputText renders the input for display. JSON strings are unquoted,
// anything else is returned as compact JSON.
func (r Record) InputText() string {
	var s string
	if err := json.Unmarshal(r.Input, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(r.Input))
}

// Clone returns a copy that shares no label storage with r.
func (r Record) Clone() Record {
	c := Record{Input: r.Input}
	if r.Output != nil {
		c.Output = make([]Label, len(r.Output))
		copy(c.Output, r.Output)
	}
	return c
}

// recordLine is the on-disk shape of a Record.
type recordLine struct {
	Input  json.RawMessage `json:"input"`
	Output *[]Label        `json:"output,omitempty"`
}

func (r Record) line() recordLine {
	l := recordLine{Input: r.Input}
	if l.Input == nil {
		l.Input = json.RawMessage("null")
	}
	if r.Output != nil {
		out := r.Output
		l.Output = &out
	}
	return l
}

func (l recordLine) record() Record {
	r := Record{Input: l.Input}
	if l.Output != nil {
		r.Output = *l.Output
		if r.Output == nil {
			r.Output = []Label{}
		}
	}
	return r
}
