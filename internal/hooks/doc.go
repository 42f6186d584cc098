// Package hooks runs user-defined shell commands after cleanup actions.
//
// Hooks are declared in the config file and fire after each successful
// REMOVE, DROP or DELETE:
//
//	[hooks.notify]
//	command = "echo 'cleaned {kind} {target}' >> ~/.wtctl.log"
//	on = ["cleanup"]  # or any of "remove", "drop", "delete"
//
// Hooks without "on" never run. Hooks run through `sh -c` from the
// repository root, one item at a time, in name order.
//
// # Placeholder Substitution
//
//   - {kind}: worktree, stash or branch
//   - {target}: worktree path, stash ref or branch name
//   - {action}: REMOVE, DROP or DELETE
//   - {branch}: associated branch, empty for detached worktrees
//   - {path}: worktree path, empty for stashes and branches
//   - {repo}: repository root
//
// Custom variables via --arg key=value:
//
//   - {key}: value from --arg key=value
//   - {key:raw}: value without shell quoting
//   - {key:-default}: value with fallback if not provided
//
// All values are shell-quoted. Hook failures are logged as warnings and
// never change an item's outcome.
package hooks
