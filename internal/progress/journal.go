// Package progress appends session records to a harness progress log.
//
// The log is append-only: after the initializer creates it, it is only
// ever opened with O_APPEND, so earlier sessions are never rewritten.
package progress

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gorewood/longrun/internal/output"
)

// FileName is the progress log inside a tracking directory.
const FileName = "progress.txt"

// TimeLayout is the timestamp format used in session headers.
const TimeLayout = "2006-01-02 15:04"

const sessionPrefix = "## Session: "

var headerPattern = regexp.MustCompile(`^## Session: (\d{4}-\d{2}-\d{2} \d{2}:\d{2}) \((.*)\)\s*$`)

// Session is one working session to record.
type Session struct {
	Time  time.Time `json:"time"`
	Title string    `json:"title"`
	Done  []string  `json:"done"`
	State []string  `json:"state,omitempty"`
	Next  []string  `json:"next,omitempty"`
}

// Validate requires a single-line title and at least one item of work done.
// Every item must also fit on one line.
func (s Session) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return output.NewKindError(output.ExitUserError, output.KindInvalidInput, "session title is required", nil)
	}
	if strings.ContainsAny(s.Title, "\r\n") {
		return output.NewKindError(output.ExitUserError, output.KindInvalidInput, "session title must be a single line", nil)
	}
	if len(s.Done) == 0 {
		return output.NewKindError(output.ExitUserError, output.KindInvalidInput, "session needs at least one item of work done", nil)
	}
	for _, items := range [][]string{s.Done, s.State, s.Next} {
		for _, item := range items {
			if strings.ContainsAny(item, "\r\n") {
				return output.NewKindError(output.ExitUserError, output.KindInvalidInput,
					fmt.Sprintf("session item %q must be a single line", item), nil)
			}
		}
	}
	return nil
}

// Render formats s as a Markdown session block, preceded by a blank line.
func (s Session) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s%s (%s)\n", sessionPrefix, s.Time.Format(TimeLayout), strings.TrimSpace(s.Title))
	writeSection(&b, "What was done", s.Done)
	writeSection(&b, "Current State", s.State)
	writeSection(&b, "Next Steps", s.Next)
	b.WriteString("\n---\n")
	return b.String()
}

func writeSection(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n### %s:\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", strings.TrimSpace(item))
	}
}

// Header identifies a session already in the log.
type Header struct {
	Time  string `json:"time"`
	Title string `json:"title"`
	Line  int    `json:"line"`
}

// Journal is a progress log on disk.
type Journal struct {
	path string
	mu   sync.Mutex
}

// Open returns the journal at path. The file must already exist; the
// journal never creates or truncates it.
func Open(path string) (*Journal, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, output.NewKindError(output.ExitUserError, output.KindNotFound, "progress log not found: "+path, err)
		}
		return nil, output.NewSystemErrorWithCause("failed to stat progress log", err)
	}
	if info.IsDir() {
		return nil, output.NewUserError("progress log is a directory: " + path)
	}
	return &Journal{path: path}, nil
}

// Path returns the file backing this journal.
func (j *Journal) Path() string {
	return j.path
}

// Append writes s to the end of the log and syncs it to disk.
func (j *Journal) Append(s Session) error {
	if err := s.Validate(); err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	file, err := os.OpenFile(j.path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return output.NewSystemErrorWithCause("failed to open progress log", err)
	}
	if _, err := file.WriteString(s.Render()); err != nil {
		_ = file.Close()
		return output.NewSystemErrorWithCause("failed to append session", err)
	}
	if err := file.Sync(); err != nil {
		_ = file.Close()
		return output.NewSystemErrorWithCause("failed to sync progress log", err)
	}
	if err := file.Close(); err != nil {
		return output.NewSystemErrorWithCause("failed to close progress log", err)
	}
	return nil
}

// Sessions returns the session headers in file order.
func (j *Journal) Sessions() ([]Header, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	file, err := os.Open(j.path)
	if err != nil {
		return nil, output.NewSystemErrorWithCause("failed to open progress log", err)
	}
	defer file.Close()

	var headers []Header
	reader := bufio.NewReader(file)
	line := 0
	for {
		text, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, output.NewSystemErrorWithCause("failed to read progress log", readErr)
		}
		if text == "" && readErr != nil {
			break
		}
		line++
		text = strings.TrimRight(text, "\r\n")
		if strings.HasPrefix(text, sessionPrefix) {
			if m := headerPattern.FindStringSubmatch(text); m != nil {
				headers = append(headers, Header{Time: m[1], Title: m[2], Line: line})
			}
		}
		if readErr != nil {
			break
		}
	}
	return headers, nil
}
