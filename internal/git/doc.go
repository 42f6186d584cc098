// Package git provides the git queries and mutations the audit needs, plus
// pure parsers for their output.
//
// Commands run through a [cmd.Runner] so collectors can be tested against
// canned output. The git CLI is used rather than a Go git library for
// anything touching worktrees, because it honours user configuration and
// git's own locking. Repository discovery ([Open]) uses go-git since it only
// reads metadata.
//
// # Parsers
//
//   - [ParseWorktreePorcelain]: state machine over `git worktree list --porcelain`
//   - [ParseStatusPorcelain]: modified/untracked counts
//   - [ParseBranchVV]: `git branch -vv` with upstream annotations
//   - [ParseStashList], [ParseStashStat], [ParseStashMeta]
//
// Parsers never fail as a whole: lines they can't use are returned as
// [LineError] values and parsing continues.
//
// # Mutations
//
//   - [Repo.RemoveWorktree]: forced `git worktree remove`
//   - [Repo.DropStash]: `git stash drop stash@{i}`
//   - [Repo.DeleteBranch]: forced `git branch -D`
//   - [Repo.PruneWorktrees]
package git
