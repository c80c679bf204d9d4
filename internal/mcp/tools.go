package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/longrun/internal/features"
	"github.com/gorewood/longrun/internal/harness"
	"github.com/gorewood/longrun/internal/progress"
)

// --- init_harness tool ---

// InitInput is the input for the init_harness tool.
type InitInput struct {
	ProjectPath string `json:"project_path,omitempty" jsonschema:"project root; defaults to the served project"`
	Feature     string `json:"feature"                jsonschema:"feature name, used as the tracking directory name"`
	Description string `json:"description"            jsonschema:"free-text description written into the progress log header"`
	NoCommit    bool   `json:"no_commit,omitempty"    jsonschema:"write the files but skip git init/add/commit"`
	DryRun      bool   `json:"dry_run,omitempty"      jsonschema:"report what would happen without writing"`
}

// InitOutput is the output for the init_harness tool.
type InitOutput struct {
	TrackingDir     string               `json:"tracking_dir"         jsonschema:"absolute path of the tracking directory"`
	Files           []string             `json:"files"                jsonschema:"artifact paths"`
	HarnessID       string               `json:"harness_id"           jsonschema:"identifier of this initialization"`
	RepoInitialized bool                 `json:"repo_initialized"     jsonschema:"true if git init was run"`
	Committed       bool                 `json:"committed"            jsonschema:"true if the artifacts were committed"`
	CommitSHA       string               `json:"commit_sha,omitempty" jsonschema:"commit created for the artifacts"`
	Steps           []harness.StepResult `json:"steps"                jsonschema:"per-step outcome"`
	Warning         string               `json:"warning,omitempty"    jsonschema:"set when the files were written but version control failed"`
}

func handleInit(deps *Deps) mcp.ToolHandlerFor[InitInput, InitOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input InitInput) (*mcp.CallToolResult, InitOutput, error) {
		project := input.ProjectPath
		if project == "" {
			project = deps.Layout.ProjectRoot
		}
		result, err := harness.Initialize(ctx, harness.Options{
			ProjectPath:   project,
			FeatureName:   input.Feature,
			Description:   input.Description,
			TrackingRoot:  deps.Layout.TrackingRoot,
			CommitMessage: deps.CommitMessage,
			NoCommit:      input.NoCommit,
			DryRun:        input.DryRun,
			Resolver:      deps.Resolver,
			Logger:        deps.Logger,
			Now:           deps.Now,
		})
		if result == nil {
			return nil, InitOutput{}, err
		}

		out := InitOutput{
			TrackingDir:     result.TrackingDir,
			Files:           result.Files,
			HarnessID:       result.HarnessID,
			RepoInitialized: result.RepoInitialized,
			Committed:       result.Committed,
			CommitSHA:       result.CommitSHA,
			Steps:           result.Steps,
		}
		if err != nil {
			// VcsFailure: the files exist, so report success with a warning.
			out.Warning = err.Error()
		}
		return nil, out, nil
	}
}

// --- status tool ---

// StatusInput is the input for the status tool.
type StatusInput struct {
	Feature string `json:"feature,omitempty" jsonschema:"feature name; omit to list every feature"`
}

// StatusOutput is the output for the status tool.
type StatusOutput struct {
	Features []*harness.FeatureStatus `json:"features" jsonschema:"status of each requested feature"`
}

func handleStatus(deps *Deps) mcp.ToolHandlerFor[StatusInput, StatusOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input StatusInput) (*mcp.CallToolResult, StatusOutput, error) {
		if input.Feature != "" {
			st, err := harness.Status(deps.Layout, input.Feature)
			if err != nil {
				return nil, StatusOutput{}, err
			}
			return nil, StatusOutput{Features: []*harness.FeatureStatus{st}}, nil
		}
		all, err := harness.StatusAll(deps.Layout)
		if err != nil {
			return nil, StatusOutput{}, err
		}
		return nil, StatusOutput{Features: all}, nil
	}
}

// --- add_feature tool ---

// AddFeatureInput is the input for the add_feature tool.
type AddFeatureInput struct {
	Feature     string   `json:"feature"            jsonschema:"feature (tracking directory) to add to"`
	Category    string   `json:"category"           jsonschema:"entry category, e.g. functional or ui"`
	Description string   `json:"description"        jsonschema:"behaviour the entry verifies"`
	Steps       []string `json:"steps"              jsonschema:"verification steps, at least one"`
	Priority    string   `json:"priority,omitempty" jsonschema:"high, medium (default) or low"`
}

// AddFeatureOutput is the output for the add_feature tool.
type AddFeatureOutput struct {
	Entry features.Feature `json:"entry" jsonschema:"the appended entry with its assigned id"`
}

func handleAddFeature(deps *Deps) mcp.ToolHandlerFor[AddFeatureInput, AddFeatureOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input AddFeatureInput) (*mcp.CallToolResult, AddFeatureOutput, error) {
		added, err := harness.AddFeature(deps.Layout, input.Feature, features.Feature{
			Category:    input.Category,
			Description: input.Description,
			Steps:       input.Steps,
			Priority:    input.Priority,
		}, deps.now())
		if err != nil {
			return nil, AddFeatureOutput{}, err
		}
		deps.logger().Info("feature entry added", "feature", input.Feature, "id", added.ID)
		return nil, AddFeatureOutput{Entry: added}, nil
	}
}

// --- mark_passing tool ---

// MarkPassingInput is the input for the mark_passing tool.
type MarkPassingInput struct {
	Feature string `json:"feature" jsonschema:"feature (tracking directory) containing the entry"`
	ID      int    `json:"id"      jsonschema:"entry id to mark as passing"`
}

// MarkPassingOutput is the output for the mark_passing tool.
type MarkPassingOutput struct {
	Changed bool             `json:"changed" jsonschema:"false if the entry was already passing"`
	Entry   features.Feature `json:"entry"   jsonschema:"the entry after the update"`
}

func handleMarkPassing(deps *Deps) mcp.ToolHandlerFor[MarkPassingInput, MarkPassingOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input MarkPassingInput) (*mcp.CallToolResult, MarkPassingOutput, error) {
		if input.ID <= 0 {
			return nil, MarkPassingOutput{}, errors.New("id must be a positive integer")
		}
		changed, f, err := harness.MarkPassing(deps.Layout, input.Feature, input.ID, deps.now())
		if err != nil {
			return nil, MarkPassingOutput{}, err
		}
		return nil, MarkPassingOutput{Changed: changed, Entry: *f}, nil
	}
}

// --- log_session tool ---

// LogSessionInput is the input for the log_session tool.
type LogSessionInput struct {
	Feature string   `json:"feature"         jsonschema:"feature (tracking directory) whose progress log to append to"`
	Title   string   `json:"title"           jsonschema:"one-line session title"`
	Done    []string `json:"done"            jsonschema:"what was done, at least one item"`
	State   []string `json:"state,omitempty" jsonschema:"current state of the project"`
	Next    []string `json:"next,omitempty"  jsonschema:"next steps for the following session"`
}

// LogSessionOutput is the output for the log_session tool.
type LogSessionOutput struct {
	Sessions int    `json:"sessions" jsonschema:"number of sessions now in the log"`
	Path     string `json:"path"     jsonschema:"progress log path"`
}

func handleLogSession(deps *Deps) mcp.ToolHandlerFor[LogSessionInput, LogSessionOutput] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input LogSessionInput) (*mcp.CallToolResult, LogSessionOutput, error) {
		err := harness.LogSession(deps.Layout, input.Feature, progress.Session{
			Time:  deps.now(),
			Title: input.Title,
			Done:  input.Done,
			State: input.State,
			Next:  input.Next,
		})
		if err != nil {
			return nil, LogSessionOutput{}, err
		}

		journal, err := progress.Open(deps.Layout.ProgressPath(input.Feature))
		if err != nil {
			return nil, LogSessionOutput{}, err
		}
		headers, err := journal.Sessions()
		if err != nil {
			return nil, LogSessionOutput{}, err
		}
		return nil, LogSessionOutput{Sessions: len(headers), Path: journal.Path()}, nil
	}
}
