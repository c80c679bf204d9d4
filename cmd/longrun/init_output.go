package main

import (
	"path/filepath"

	"github.com/charmbracelet/lipgloss"

	"github.com/gorewood/longrun/internal/harness"
	"github.com/gorewood/longrun/internal/output"
)

// initStyleSet holds lipgloss styles for init output.
type initStyleSet struct {
	heading lipgloss.Style
	pass    lipgloss.Style
	skip    lipgloss.Style
	fail    lipgloss.Style
	dim     lipgloss.Style
	accent  lipgloss.Style
}

// initStyles returns a TTY-aware style set.
func initStyles(isTTY bool) initStyleSet {
	if !isTTY {
		return initStyleSet{}
	}
	return initStyleSet{
		heading: lipgloss.NewStyle().Bold(true),
		pass:    lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "10", Dark: "10"}),
		skip:    lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "8", Dark: "7"}),
		fail:    lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "9", Dark: "9"}),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "8", Dark: "7"}),
		accent:  lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "12", Dark: "12"}),
	}
}

// outputInitHuman prints the step list, then either next steps or the error.
func outputInitHuman(printer *output.Printer, env *projectEnv, feature string, result *harness.Result, err error) {
	styles := initStyles(printer.IsTTY())

	title := "Initializing harness"
	if result.DryRun {
		title = "Dry run: longrun init"
	}
	printer.Println()
	printer.Print("%s %s %s\n", styles.heading.Render(title), styles.accent.Render(feature),
		styles.dim.Render("in "+result.ProjectPath))
	printer.Println()

	for _, step := range result.Steps {
		printStepResult(printer, styles, step)
	}

	if err != nil {
		printer.Println()
		printer.Error(err)
		return
	}
	if !result.DryRun {
		printNextSteps(printer, styles, env.layout, feature)
	}
}

// printNextSteps outputs the next steps message.
func printNextSteps(printer *output.Printer, styles initStyleSet, layout harness.Layout, feature string) {
	listPath := layout.RelPath(layout.FeatureListPath(feature))
	initPath := "./" + layout.RelPath(layout.InitScriptPath(feature))

	printer.Println()
	printer.Print("%s\n", styles.heading.Render(styles.pass.Render("Harness initialized!")))
	printer.Println()
	printer.Print("Next steps:\n")
	printer.Print("  1. %s\n", styles.dim.Render("Replace the seed entries with the real feature list:"))
	printer.Print("     %s\n", styles.accent.Render(filepath.ToSlash(listPath)))
	printer.Println()
	printer.Print("  2. %s\n", styles.dim.Render("Start every session from the project root with:"))
	printer.Print("     %s\n", styles.accent.Render(initPath))
	printer.Println()
	printer.Print("  3. %s\n", styles.dim.Render("Record what each session did:"))
	printer.Print("     %s\n", styles.accent.Render("longrun session "+feature+" --title \"...\" --done \"...\""))
}

// printStepResult prints a single step result in human format.
func printStepResult(printer *output.Printer, styles initStyleSet, step harness.StepResult) {
	icon := styledStepIcon(styles, step.Status)
	name := formatStepName(step.Name)
	printer.Print("  %s %s", icon, name)
	if step.Message != "" {
		printer.Print(" %s", styles.dim.Render("("+step.Message+")"))
	}
	printer.Println()
}

// styledStepIcon returns a styled icon for a step status.
func styledStepIcon(styles initStyleSet, status string) string {
	switch status {
	case harness.StatusOK:
		return styles.pass.Render("ok")
	case harness.StatusSkipped:
		return styles.skip.Render("--")
	case harness.StatusFailed:
		return styles.fail.Render("XX")
	case harness.StatusDryRun:
		return styles.accent.Render(" >")
	default:
		return "??"
	}
}

// formatStepName converts internal step names to display names.
func formatStepName(name string) string {
	switch name {
	case harness.StepTemplates:
		return "Templates"
	case harness.StepTrackingDir:
		return "Tracking directory"
	case harness.StepGitInit:
		return "Git repository"
	case harness.StepGitCommit:
		return "Commit"
	default:
		return name
	}
}
