package mcp

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/gorewood/longrun/internal/harness"
)

// --- Test helpers ---

var testNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func makeTestDeps(t *testing.T) *Deps {
	t.Helper()
	return &Deps{
		Layout: harness.NewLayout(t.TempDir(), ""),
		Now:    func() time.Time { return testNow },
	}
}

func initFeature(t *testing.T, deps *Deps, feature string) {
	t.Helper()
	_, out, err := handleInit(deps)(context.Background(), &mcp.CallToolRequest{}, InitInput{
		Feature:     feature,
		Description: "Add OAuth login",
		NoCommit:    true,
	})
	if err != nil {
		t.Fatalf("init_harness: %v", err)
	}
	if out.Warning != "" {
		t.Fatalf("init_harness warning: %s", out.Warning)
	}
}

// --- init_harness tests ---

func TestHandleInit(t *testing.T) {
	deps := makeTestDeps(t)
	handler := handleInit(deps)

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, InitInput{
		Feature:     "login-flow",
		Description: "Add OAuth login",
		NoCommit:    true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.TrackingDir != deps.Layout.FeatureDir("login-flow") {
		t.Errorf("TrackingDir = %q", out.TrackingDir)
	}
	if len(out.Files) != 3 {
		t.Errorf("len(Files) = %d, want 3", len(out.Files))
	}
	if out.Committed {
		t.Error("Committed = true with no_commit")
	}

	_, _, err = handler(context.Background(), &mcp.CallToolRequest{}, InitInput{Feature: "login-flow", Description: "again", NoCommit: true})
	if harness.KindOf(err) != harness.KindAlreadyInitialized {
		t.Errorf("second init error = %v, want AlreadyInitialized", err)
	}
}

func TestHandleInit_DryRun(t *testing.T) {
	deps := makeTestDeps(t)

	_, out, err := handleInit(deps)(context.Background(), &mcp.CallToolRequest{}, InitInput{
		Feature: "login-flow", Description: "d", NoCommit: true, DryRun: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, statErr := os.Stat(out.TrackingDir); !os.IsNotExist(statErr) {
		t.Error("dry run should not create the tracking directory")
	}
}

// --- status tests ---

func TestHandleStatus(t *testing.T) {
	deps := makeTestDeps(t)
	initFeature(t, deps, "login-flow")
	initFeature(t, deps, "billing")
	handler := handleStatus(deps)

	_, out, err := handler(context.Background(), &mcp.CallToolRequest{}, StatusInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Features) != 2 {
		t.Fatalf("len(Features) = %d, want 2", len(out.Features))
	}

	_, out, err = handler(context.Background(), &mcp.CallToolRequest{}, StatusInput{Feature: "login-flow"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Features) != 1 || out.Features[0].Summary.Total != 2 {
		t.Errorf("status = %+v", out.Features)
	}

	_, _, err = handler(context.Background(), &mcp.CallToolRequest{}, StatusInput{Feature: "missing"})
	if harness.KindOf(err) != harness.KindNotFound {
		t.Errorf("missing feature error = %v, want NotFound", err)
	}
}

// --- add_feature / mark_passing tests ---

func TestHandleAddFeatureAndMarkPassing(t *testing.T) {
	deps := makeTestDeps(t)
	initFeature(t, deps, "login-flow")

	_, added, err := handleAddFeature(deps)(context.Background(), &mcp.CallToolRequest{}, AddFeatureInput{
		Feature:     "login-flow",
		Category:    "functional",
		Description: "User can log out",
		Steps:       []string{"Click logout", "Login page is shown"},
	})
	if err != nil {
		t.Fatalf("add_feature: %v", err)
	}
	if added.Entry.ID != 3 || added.Entry.Passes {
		t.Errorf("added = %+v", added.Entry)
	}

	markPassing := handleMarkPassing(deps)
	_, out, err := markPassing(context.Background(), &mcp.CallToolRequest{}, MarkPassingInput{Feature: "login-flow", ID: 3})
	if err != nil {
		t.Fatalf("mark_passing: %v", err)
	}
	if !out.Changed || !out.Entry.Passes {
		t.Errorf("mark_passing = %+v", out)
	}

	_, out, err = markPassing(context.Background(), &mcp.CallToolRequest{}, MarkPassingInput{Feature: "login-flow", ID: 3})
	if err != nil || out.Changed {
		t.Errorf("second mark_passing = (%+v, %v), want unchanged", out, err)
	}

	if _, _, err := markPassing(context.Background(), &mcp.CallToolRequest{}, MarkPassingInput{Feature: "login-flow"}); err == nil {
		t.Error("mark_passing without id should fail")
	}
}

func TestHandleAddFeature_MissingFields(t *testing.T) {
	deps := makeTestDeps(t)
	initFeature(t, deps, "login-flow")

	_, _, err := handleAddFeature(deps)(context.Background(), &mcp.CallToolRequest{}, AddFeatureInput{Feature: "login-flow", Category: "x"})
	if harness.KindOf(err) != harness.KindInvalidInput {
		t.Errorf("error = %v, want InvalidInput", err)
	}
}

// --- log_session tests ---

func TestHandleLogSession(t *testing.T) {
	deps := makeTestDeps(t)
	initFeature(t, deps, "login-flow")

	_, out, err := handleLogSession(deps)(context.Background(), &mcp.CallToolRequest{}, LogSessionInput{
		Feature: "login-flow",
		Title:   "Login form",
		Done:    []string{"Implemented feature 2"},
		Next:    []string{"Feature 3"},
	})
	if err != nil {
		t.Fatalf("log_session: %v", err)
	}
	if out.Sessions != 2 {
		t.Errorf("Sessions = %d, want 2", out.Sessions)
	}
	data, err := os.ReadFile(out.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "## Session: 2026-10-18 09:30 (Login form)") {
		t.Errorf("progress log missing session header:\n%s", data)
	}
}

// --- Server registration test ---

func TestNewServer_ListsTools(t *testing.T) {
	deps := makeTestDeps(t)
	server := NewServer("test-version", deps)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ctx := context.Background()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	res, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	got := map[string]bool{}
	for _, tool := range res.Tools {
		got[tool.Name] = true
	}
	for _, name := range []string{"init_harness", "status", "add_feature", "mark_passing", "log_session"} {
		if !got[name] {
			t.Errorf("tool %q not registered", name)
		}
	}
}
