package git

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// Commit represents a git commit with its metadata.
type Commit struct {
	SHA     string    // Full 40-character SHA
	Short   string    // Abbreviated SHA
	Subject string    // First line of commit message
	Author  string    // Author name
	Date    time.Time // Author date
}

// commitSeparator is used to delimit commits in log output.
const commitSeparator = "---COMMIT-BOUNDARY---"

// fieldSeparator is used to delimit fields within a commit.
const fieldSeparator = "---FIELD---"

var logFormat = strings.Join([]string{
	"%H",  // Full SHA
	"%h",  // Short SHA
	"%s",  // Subject
	"%an", // Author name
	"%at", // Unix timestamp
}, fieldSeparator) + commitSeparator

// Log returns up to limit commits reachable from HEAD, newest first,
// optionally restricted to commits touching paths (relative to r.Dir).
// A repository without commits yields an empty slice.
func (r *Runner) Log(ctx context.Context, limit int, paths ...string) ([]Commit, error) {
	if _, err := r.Run(ctx, "rev-parse", "--verify", "-q", "HEAD"); err != nil {
		return nil, nil
	}

	args := []string{"log", "--pretty=format:" + logFormat}
	if limit > 0 {
		args = append(args, "-n", strconv.Itoa(limit))
	}
	if len(paths) > 0 {
		args = append(args, "--")
		args = append(args, paths...)
	}

	out, err := r.Run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return parseCommits(out), nil
}

// parseCommits parses the custom log format; malformed records are skipped.
func parseCommits(out string) []Commit {
	if out == "" {
		return []Commit{}
	}

	var commits []Commit
	for record := range strings.SplitSeq(out, commitSeparator) {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}
		fields := strings.Split(record, fieldSeparator)
		if len(fields) != 5 {
			continue
		}
		commit := Commit{
			SHA:     fields[0],
			Short:   fields[1],
			Subject: fields[2],
			Author:  fields[3],
		}
		if ts, err := strconv.ParseInt(fields[4], 10, 64); err == nil {
			commit.Date = time.Unix(ts, 0)
		}
		commits = append(commits, commit)
	}
	return commits
}
