// Package output provides structured output handling for the longrun CLI.
//
// Every command writes through a Printer, which switches between
// human-readable and JSON output based on the --json flag:
//
//	printer := output.NewPrinter(cmd.OutOrStdout(), jsonMode, colorOn)
//	printer.Success(map[string]any{"message": "Harness initialized"})
//	printer.Error(err)
//
// # Exit Codes
//
//	output.ExitSuccess     // 0
//	output.ExitUserError   // 1: bad arguments, unknown feature or id
//	output.ExitSystemError // 2: templates, filesystem, git missing
//	output.ExitConflict    // 3: harness already initialized
//	output.ExitPartial     // 4: files written but the commit failed
//
// Errors carry a Kind alongside the code. JSON errors look like
//
//	{"error": "message", "code": 3, "kind": "AlreadyInitialized"}
package output
