package harness

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gorewood/longrun/internal/features"
	"github.com/gorewood/longrun/internal/git"
	"github.com/gorewood/longrun/internal/progress"
)

// FeatureStatus summarizes one tracking directory.
type FeatureStatus struct {
	Feature     string            `json:"feature"`
	Dir         string            `json:"dir"`
	Project     features.Project  `json:"project"`
	Summary     features.Summary  `json:"summary"`
	Sessions    int               `json:"sessions"`
	LastSession *progress.Header  `json:"last_session,omitempty"`
	Metadata    features.Metadata `json:"metadata"`
}

// Status reads the feature list and progress log of feature.
func Status(layout Layout, feature string) (*FeatureStatus, error) {
	if err := layout.RequireFeature(feature); err != nil {
		return nil, err
	}
	list, err := features.Load(layout.FeatureListPath(feature))
	if err != nil {
		return nil, err
	}

	st := &FeatureStatus{
		Feature:  feature,
		Dir:      layout.RelPath(layout.FeatureDir(feature)),
		Project:  list.Project,
		Summary:  list.Summary(),
		Metadata: list.Metadata,
	}

	journal, err := progress.Open(layout.ProgressPath(feature))
	if err != nil {
		return nil, err
	}
	headers, err := journal.Sessions()
	if err != nil {
		return nil, err
	}
	st.Sessions = len(headers)
	if len(headers) > 0 {
		last := headers[len(headers)-1]
		st.LastSession = &last
	}
	return st, nil
}

// StatusAll returns the status of every initialized feature.
func StatusAll(layout Layout) ([]*FeatureStatus, error) {
	names, err := layout.Features()
	if err != nil {
		return nil, err
	}
	statuses := make([]*FeatureStatus, 0, len(names))
	for _, name := range names {
		st, err := Status(layout, name)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, st)
	}
	return statuses, nil
}

// MarkPassing flips one feature to passing and saves the list. It reports
// whether the flag changed.
func MarkPassing(layout Layout, feature string, id int, now time.Time) (bool, *features.Feature, error) {
	if err := layout.RequireFeature(feature); err != nil {
		return false, nil, err
	}
	path := layout.FeatureListPath(feature)
	list, err := features.Load(path)
	if err != nil {
		return false, nil, err
	}

	changed, err := list.MarkPassing(id)
	if err != nil {
		if errors.Is(err, features.ErrNotFound) {
			return false, nil, errNotFound(fmt.Sprintf("feature %s has no entry with id %d", feature, id), err)
		}
		return false, nil, err
	}
	f, _ := list.Find(id)
	if !changed {
		return false, f, nil
	}
	if err := features.Save(path, list, now); err != nil {
		return false, nil, err
	}
	return true, f, nil
}

// AddFeature appends a new failing entry to feature's list.
func AddFeature(layout Layout, feature string, f features.Feature, now time.Time) (features.Feature, error) {
	if err := layout.RequireFeature(feature); err != nil {
		return features.Feature{}, err
	}
	path := layout.FeatureListPath(feature)
	list, err := features.Load(path)
	if err != nil {
		return features.Feature{}, err
	}

	added, err := list.Add(f)
	if err != nil {
		return features.Feature{}, errInvalidInput(err.Error())
	}
	if err := features.Save(path, list, now); err != nil {
		return features.Feature{}, err
	}
	return added, nil
}

// LogSession appends a session record to feature's progress log.
func LogSession(layout Layout, feature string, s progress.Session) error {
	if err := layout.RequireFeature(feature); err != nil {
		return err
	}
	journal, err := progress.Open(layout.ProgressPath(feature))
	if err != nil {
		return err
	}
	return journal.Append(s)
}

// ParseID parses a feature id argument.
func ParseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, errInvalidInput("feature id must be a positive integer: " + raw)
	}
	return id, nil
}

// History returns up to limit commits that touched feature's tracking
// directory, newest first. A project outside any repository has no history.
func History(ctx context.Context, layout Layout, feature string, repo *git.Runner, limit int) ([]git.Commit, error) {
	if err := layout.RequireFeature(feature); err != nil {
		return nil, err
	}
	if repo == nil {
		repo = git.New(layout.ProjectRoot)
	}
	if !repo.IsWorkTree(ctx) {
		return nil, nil
	}
	return repo.Log(ctx, limit, layout.RelPath(layout.FeatureDir(feature)))
}
