package main

import (
	"github.com/spf13/cobra"

	"github.com/gorewood/longrun/internal/templates"
)

// newTemplatesCmd creates the templates command.
func newTemplatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the templates init would use",
		Long: `List every template with the source it resolves from.

Lookup order for each name:
  1. templates_dir from .longrun.yaml or .longrun.toml (or $LONGRUN_TEMPLATES_DIR)
  2. ~/.config/longrun/templates/
  3. built-in

Examples:
  longrun templates
  longrun templates -C ~/src/shop --json`,
		Args: cobra.NoArgs,
		RunE: runTemplates,
	}
}

// runTemplates executes the templates command.
func runTemplates(cmd *cobra.Command, _ []string) error {
	printer := newPrinter(cmd)

	env, err := loadCurrentProject(cmd)
	if err != nil {
		printer.Error(err)
		return err
	}

	infos := env.resolver.List()
	if printer.IsJSON() {
		return printer.WriteJSON(map[string]any{"templates": infos})
	}

	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		source := info.Source
		if info.Overrides != "" {
			source += " (overrides " + info.Overrides + ")"
		}
		rows = append(rows, []string{info.Name, info.File, source, info.Description})
	}
	printer.Table([]string{"NAME", "FILE", "SOURCE", "DESCRIPTION"}, rows)

	missing := missingRequired(infos)
	for _, name := range missing {
		printer.Warn("required template %q is not available", name)
	}
	return nil
}

// missingRequired lists required templates absent from infos.
func missingRequired(infos []templates.Info) []string {
	have := make(map[string]bool, len(infos))
	for _, info := range infos {
		have[info.Name] = true
	}
	var missing []string
	for _, name := range templates.Required {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	return missing
}
