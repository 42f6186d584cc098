package git

import (
	"fmt"
	"strings"
)

// WorktreeEntry is one worktree from `git worktree list --porcelain`.
type WorktreeEntry struct {
	Path     string
	Head     string // full commit hash
	Branch   string // short branch name, empty when detached
	Detached bool
	Locked   bool
	Prunable bool
	// Primary marks the main worktree, always listed first. A bare
	// repository's entry is dropped, so no entry is primary then.
	Primary bool
}

// LineError describes a line or entry a parser skipped.
type LineError struct {
	Line   int // 1-based line number in the parsed output
	Text   string
	Reason string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

type tokenKind int

const (
	tokUnknown tokenKind = iota
	tokBlank
	tokWorktree
	tokHead
	tokBranch
	tokDetached
	tokBare
	tokLocked
	tokPrunable
)

type token struct {
	kind  tokenKind
	value string
	line  int
	text  string
}

// lexPorcelainLine turns one porcelain line into a typed token.
func lexPorcelainLine(n int, line string) token {
	tok := token{line: n, text: line}
	if strings.TrimSpace(line) == "" {
		tok.kind = tokBlank
		return tok
	}
	key, value, _ := strings.Cut(line, " ")
	tok.value = value
	switch key {
	case "worktree":
		tok.kind = tokWorktree
	case "HEAD":
		tok.kind = tokHead
	case "branch":
		tok.kind = tokBranch
	case "detached":
		tok.kind = tokDetached
	case "bare":
		tok.kind = tokBare
	case "locked":
		tok.kind = tokLocked
	case "prunable":
		tok.kind = tokPrunable
	default:
		tok.kind = tokUnknown
	}
	return tok
}

// entryBuilder accumulates the attributes of one porcelain entry.
type entryBuilder struct {
	entry     WorktreeEntry
	startLine int
	hasBranch bool
	discard   bool
}

func (b *entryBuilder) validate() error {
	switch {
	case b.entry.Head == "":
		return fmt.Errorf("missing HEAD")
	case !b.hasBranch && !b.entry.Detached:
		return fmt.Errorf("missing branch or detached marker")
	case b.hasBranch && b.entry.Branch == "":
		return fmt.Errorf("empty branch ref")
	}
	return nil
}

type parseState int

const (
	stateIdle    parseState = iota // between entries
	stateEntry                     // inside an entry
	stateSkipped                   // inside an entry that will not be emitted
)

type porcelainParser struct {
	state    parseState
	cur      *entryBuilder
	entries  []WorktreeEntry
	problems []*LineError
	seen     int // worktree lines read so far
}

type tokenHandler func(p *porcelainParser, tok token)

var porcelainHandlers = map[tokenKind]tokenHandler{
	tokBlank:    (*porcelainParser).onBlank,
	tokWorktree: (*porcelainParser).onWorktree,
	tokHead:     (*porcelainParser).onHead,
	tokBranch:   (*porcelainParser).onBranch,
	tokDetached: (*porcelainParser).onDetached,
	tokBare:     (*porcelainParser).onBare,
	tokLocked:   (*porcelainParser).onLocked,
	tokPrunable: (*porcelainParser).onPrunable,
	tokUnknown:  (*porcelainParser).onUnknown,
}

// ParseWorktreePorcelain parses `git worktree list --porcelain` output.
// Bare entries are dropped. Malformed entries are skipped and reported as
// LineErrors; parsing always continues with the next entry.
func ParseWorktreePorcelain(out string) ([]WorktreeEntry, []*LineError) {
	p := &porcelainParser{}
	for i, line := range splitLines(out) {
		tok := lexPorcelainLine(i+1, line)
		porcelainHandlers[tok.kind](p, tok)
	}
	p.finish()
	return p.entries, p.problems
}

func (p *porcelainParser) problem(tok token, reason string) {
	p.problems = append(p.problems, &LineError{Line: tok.line, Text: tok.text, Reason: reason})
}

// attribute returns the in-progress entry for an attribute line, or nil
// when the line has nothing to attach to.
func (p *porcelainParser) attribute(tok token) *entryBuilder {
	switch p.state {
	case stateEntry:
		return p.cur
	case stateSkipped:
		return nil
	}
	p.problem(tok, "attribute outside of a worktree entry")
	return nil
}

func (p *porcelainParser) onBlank(token) {
	p.finish()
}

func (p *porcelainParser) onWorktree(tok token) {
	if p.state != stateIdle {
		// Entry not terminated by a blank line.
		p.finish()
	}
	first := p.seen == 0
	p.seen++
	if tok.value == "" {
		p.problem(tok, "empty worktree path")
		p.state = stateSkipped
		return
	}
	p.cur = &entryBuilder{entry: WorktreeEntry{Path: tok.value, Primary: first}, startLine: tok.line}
	p.state = stateEntry
}

func (p *porcelainParser) onHead(tok token) {
	if b := p.attribute(tok); b != nil {
		b.entry.Head = tok.value
	}
}

func (p *porcelainParser) onBranch(tok token) {
	if b := p.attribute(tok); b != nil {
		b.hasBranch = true
		b.entry.Branch = strings.TrimPrefix(tok.value, "refs/heads/")
	}
}

func (p *porcelainParser) onDetached(tok token) {
	if b := p.attribute(tok); b != nil {
		b.entry.Detached = true
	}
}

func (p *porcelainParser) onBare(tok token) {
	if b := p.attribute(tok); b != nil {
		b.discard = true
	}
}

func (p *porcelainParser) onLocked(tok token) {
	if b := p.attribute(tok); b != nil {
		b.entry.Locked = true
	}
}

func (p *porcelainParser) onPrunable(tok token) {
	if b := p.attribute(tok); b != nil {
		b.entry.Prunable = true
	}
}

// onUnknown ignores attributes added by newer git versions.
func (p *porcelainParser) onUnknown(tok token) {
	p.attribute(tok)
}

// finish emits the in-progress entry if it is valid and resets the parser.
func (p *porcelainParser) finish() {
	defer func() {
		p.cur = nil
		p.state = stateIdle
	}()
	if p.state != stateEntry || p.cur.discard {
		return
	}
	if err := p.cur.validate(); err != nil {
		p.problems = append(p.problems, &LineError{
			Line:   p.cur.startLine,
			Text:   "worktree " + p.cur.entry.Path,
			Reason: err.Error(),
		})
		return
	}
	p.entries = append(p.entries, p.cur.entry)
}
