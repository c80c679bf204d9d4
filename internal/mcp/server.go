// Package mcp provides a Model Context Protocol server for longrun.
// It exposes harness operations as MCP tools so an agent can initialize a
// feature, read its state, and record progress without a shell.
package mcp

import (
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/longrun/internal/harness"
	"github.com/gorewood/longrun/internal/logging"
	"github.com/gorewood/longrun/internal/templates"
)

// Deps is what the tools operate on.
type Deps struct {
	// Layout locates tracking directories in the served project.
	Layout harness.Layout
	// Resolver finds templates for init_harness; nil means built-ins only.
	Resolver      *templates.Resolver
	CommitMessage string
	Logger        logging.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *Deps) logger() logging.Logger {
	return logging.OrDiscard(d.Logger)
}

// NewServer creates an MCP server with all longrun tools registered.
func NewServer(version string, deps *Deps) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "longrun",
		Version: version,
	}, nil)
	registerTools(server, deps)
	return server
}

// boolPtr returns a pointer to a bool value.
func boolPtr(b bool) *bool {
	return &b
}

// readOnlyAnnotations returns annotations for read-only tools.
func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

// writeAnnotations returns annotations for write tools (additive, not destructive).
func writeAnnotations(idempotent bool) *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		DestructiveHint: boolPtr(false),
		IdempotentHint:  idempotent,
		OpenWorldHint:   boolPtr(false),
	}
}

// registerTools adds all longrun tools to the server.
func registerTools(server *mcp.Server, deps *Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name: "init_harness",
		Description: "Create the tracking directory for a feature (feature_list.json, progress.txt, init.sh) " +
			"and commit it. Refuses to touch a feature that is already initialized.",
		Annotations: writeAnnotations(false),
	}, handleInit(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "status",
		Description: "Show progress for one feature, or every initialized feature when none is given: totals, next failing feature, last session.",
		Annotations: readOnlyAnnotations(),
	}, handleStatus(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_feature",
		Description: "Append a new failing entry to a feature list. Existing entries are never modified.",
		Annotations: writeAnnotations(false),
	}, handleAddFeature(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "mark_passing",
		Description: "Mark one feature list entry as passing after verifying it end to end. Only the passes flag changes.",
		Annotations: writeAnnotations(true),
	}, handleMarkPassing(deps))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "log_session",
		Description: "Append a session record (what was done, current state, next steps) to progress.txt.",
		Annotations: writeAnnotations(false),
	}, handleLogSession(deps))
}
