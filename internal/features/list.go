// Package features provides the feature list schema, validation, and
// persistence for a harness tracking directory.
package features

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// FileName is the feature list file inside a tracking directory.
const FileName = "feature_list.json"

// Priorities accepted by Add.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// ErrNotFound is returned when a feature id is not in the list.
var ErrNotFound = errors.New("feature not found")

// List is the content of feature_list.json.
type List struct {
	Project  Project   `json:"project"`
	Features []Feature `json:"features"`
	Metadata Metadata  `json:"metadata"`
}

// Project identifies the harness the list belongs to.
type Project struct {
	Name        string `json:"name"`
	Feature     string `json:"feature"`
	Description string `json:"description"`
	Created     string `json:"created"`
	HarnessID   string `json:"harness_id,omitempty"`
}

// Feature is one end-to-end behaviour the agent must make pass.
// Everything except Passes is write-once.
type Feature struct {
	ID          int      `json:"id"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
	Priority    string   `json:"priority"`
	Passes      bool     `json:"passes"`
}

// Metadata is derived from Features on every save.
type Metadata struct {
	TotalFeatures     int    `json:"total_features"`
	CompletedFeatures int    `json:"completed_features"`
	LastUpdated       string `json:"last_updated"`
}

// ValidationError is returned when a feature or list fails validation.
type ValidationError struct {
	Fields  []string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, ", "))
}

// Parse decodes a feature list. Unknown fields are rejected so a typo in a
// hand-edited file is reported instead of silently dropped.
func Parse(data []byte) (*List, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("empty feature list")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var list List
	if err := dec.Decode(&list); err != nil {
		return nil, fmt.Errorf("parsing feature list: %w", err)
	}
	if err := list.Validate(); err != nil {
		return nil, err
	}
	return &list, nil
}

// ToJSON serializes the list with two-space indentation and a trailing newline.
func (l *List) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing feature list: %w", err)
	}
	return append(data, '\n'), nil
}

// Validate checks that ids are unique and every feature is complete.
func (l *List) Validate() error {
	var problems []string
	seen := make(map[int]bool, len(l.Features))
	for i, f := range l.Features {
		if seen[f.ID] {
			problems = append(problems, fmt.Sprintf("features[%d].id duplicate %d", i, f.ID))
		}
		seen[f.ID] = true
		for _, field := range f.missing() {
			problems = append(problems, fmt.Sprintf("features[%d].%s", i, field))
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Fields: problems, Message: "invalid feature list"}
	}
	return nil
}

func (f *Feature) missing() []string {
	var missing []string
	if f.ID <= 0 {
		missing = append(missing, "id")
	}
	if strings.TrimSpace(f.Category) == "" {
		missing = append(missing, "category")
	}
	if strings.TrimSpace(f.Description) == "" {
		missing = append(missing, "description")
	}
	if len(f.Steps) == 0 {
		missing = append(missing, "steps")
	}
	return missing
}

// Find returns the feature with the given id.
func (l *List) Find(id int) (*Feature, error) {
	for i := range l.Features {
		if l.Features[i].ID == id {
			return &l.Features[i], nil
		}
	}
	return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
}

// MarkPassing flips passes to true for id. It reports whether anything
// changed; marking an already passing feature is a no-op.
func (l *List) MarkPassing(id int) (bool, error) {
	f, err := l.Find(id)
	if err != nil {
		return false, err
	}
	if f.Passes {
		return false, nil
	}
	f.Passes = true
	return true, nil
}

// Add appends a new failing feature with the next free id and returns it.
func (l *List) Add(f Feature) (Feature, error) {
	f.ID = l.nextID()
	f.Passes = false
	if f.Priority == "" {
		f.Priority = PriorityMedium
	}
	if missing := f.missing(); len(missing) > 0 {
		return Feature{}, &ValidationError{Fields: missing, Message: "missing required fields"}
	}
	switch f.Priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
	default:
		return Feature{}, &ValidationError{
			Fields:  []string{"priority"},
			Message: "priority must be high, medium or low",
		}
	}
	l.Features = append(l.Features, f)
	return f, nil
}

func (l *List) nextID() int {
	maxID := 0
	for _, f := range l.Features {
		maxID = max(maxID, f.ID)
	}
	return maxID + 1
}

// Touch recomputes Metadata from Features.
func (l *List) Touch(now time.Time) {
	completed := 0
	for _, f := range l.Features {
		if f.Passes {
			completed++
		}
	}
	l.Metadata = Metadata{
		TotalFeatures:     len(l.Features),
		CompletedFeatures: completed,
		LastUpdated:       now.UTC().Format(time.RFC3339),
	}
}

// Summary is a progress snapshot of a list.
type Summary struct {
	Total   int      `json:"total"`
	Passing int      `json:"passing"`
	Next    *Feature `json:"next,omitempty"`
}

// Summary counts passing features and picks the next failing one, the
// lowest id with passes=false.
func (l *List) Summary() Summary {
	s := Summary{Total: len(l.Features)}
	for i := range l.Features {
		f := &l.Features[i]
		if f.Passes {
			s.Passing++
			continue
		}
		if s.Next == nil || f.ID < s.Next.ID {
			next := *f
			s.Next = &next
		}
	}
	return s
}
