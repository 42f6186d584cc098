// Package cmd provides helpers for executing external programs with proper error handling.
//
// Every git, gh and glab invocation in wtctl goes through a [Runner]. The
// production implementation, [Exec], wraps [os/exec.CommandContext], echoes
// the command line through the verbose logger and turns stderr into the
// error message so failures recorded against a plan item are readable.
//
// # Usage
//
//	out, err := cmd.OutputContext(ctx, repoDir, "git", "stash", "list")
//	if err != nil {
//	    // err contains stderr output if available
//	}
//
// # Testing
//
// [Fake] returns canned output keyed by "dir:name args..." and records the
// calls it received, which lets parser and collector tests run without git.
package cmd
