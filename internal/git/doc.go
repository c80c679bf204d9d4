// Package git provides Git operations via exec for the longrun CLI.
//
// All operations go through a Runner bound to a working directory, so the
// CLI never depends on the process's current directory:
//
//	repo := git.New(projectRoot)
//	if !repo.IsWorkTree(ctx) {
//	    err := repo.Init(ctx)
//	}
//	err := repo.AddAll(ctx)
//	err = repo.Commit(ctx, "longrun: initialize login-flow harness")
//
// # Error Handling
//
// Failures are *output.ExitError values with ExitSystemError. When the git
// binary itself is missing the error wraps ErrNotInstalled:
//
//	if errors.Is(err, git.ErrNotInstalled) { ... }
package git
