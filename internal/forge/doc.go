// Package forge looks up pull/merge requests on git hosting services.
//
// GitHub is queried via the gh CLI and GitLab via the glab CLI, both run
// through a [cmd.Runner]. Lookups are best effort: callers treat any error
// as "no PR" and carry on.
//
// # Platform Detection
//
// Use [Detect] to determine the forge from a repository's origin URL.
// Detection checks:
//
//  1. Custom host mappings from config (for self-hosted instances)
//  2. URL patterns (gitlab.* hosts, /gitlab/ paths)
//  3. Falls back to GitHub (most common)
//
// # Usage
//
//	f := forge.Detect(originURL, cfg.Hosts, runner)
//	pr, err := f.GetPRForBranch(ctx, originURL, branch)
//
// PR states are normalized to [PRStateOpen], [PRStateMerged] and
// [PRStateClosed]; GitLab's opened/merged/closed map onto them.
package forge
