package fsm

import (
	"regexp"
	"strings"

	"github.com/crossplc/crossplc/internal/ir"
	"github.com/crossplc/crossplc/internal/tagscan"
)

// Evidence records extracted from routine content. Unlike the def/use
// passes, FSM extraction considers lowercase identifiers too: state
// variables in embedded C++ control code are typically lowercase.
type assignment struct {
	Variable string
	Value    string // raw right-hand side, quotes intact
	Line     string
}

type guardKind string

const (
	guardIf    guardKind = "if"
	guardCase  guardKind = "case"
	guardWhile guardKind = "while"
)

type guard struct {
	Kind      guardKind
	Condition string
	Line      string
	Variables []string // identifiers in the condition, in order
}

type output struct {
	Variable string
	Value    string
	Line     string
}

// evidence aggregates one project's control-flow facts in encounter
// order. Encounter order matters: candidate ranking ties are broken by
// first appearance, and the sort is stable, so identical input always
// selects the same state variable.
type evidence struct {
	assignments []assignment
	guards      []guard
	outputs     []output
}

var (
	ifRe     = regexp.MustCompile(`(?i)^(?:ELSIF|IF)\s+(.+?)\s+THEN\b`)
	whileRe  = regexp.MustCompile(`(?i)^WHILE\s+(.+?)\s+DO\b`)
	caseRe   = regexp.MustCompile(`(?i)^CASE\s+(\w+)\s+OF\b`)
	assignRe = regexp.MustCompile(`(\w+)\s*:=\s*([^;]+)`)
	// eqAssignRe handles C-style "var = value;" lines from embedded
	// control code. The value must not open with '=' so comparisons
	// ("==") are never treated as assignments.
	eqAssignRe = regexp.MustCompile(`^(\w+)\s*=\s*([^=][^;]*)`)
	wordRe     = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
	identRe    = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	stateValRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// outputValues are the boolean-like right-hand sides that mark an
// assignment as output-controlling.
var outputValues = map[string]bool{
	"TRUE": true, "FALSE": true, "1": true, "0": true,
	"ON": true, "OFF": true, "OPEN": true, "CLOSE": true,
}

// literals are value names that can never be state-variable candidates.
var literals = map[string]bool{
	"TRUE": true, "FALSE": true, "ON": true, "OFF": true,
	"OPEN": true, "CLOSE": true, "IDLE": true, "FAULT": true,
}

// stateLikeValues is the fixed vocabulary that boosts a candidate when
// it is ever assigned one of these.
var stateLikeValues = map[string]bool{
	"idle": true, "fault": true, "running": true, "stopped": true,
	"error": true, "init": true, "fill": true, "drain": true,
	"heat": true, "cool": true, "open": true, "close": true,
	"on": true, "off": true,
}

// collectEvidence scans every routine of a project line by line.
// Heuristic misses skip the line; nothing here can fail.
func collectEvidence(p *ir.Project) *evidence {
	ev := &evidence{}
	p.Routines(func(_ *ir.Program, r *ir.Routine) {
		for _, raw := range strings.Split(r.Content, "\n") {
			line := strings.TrimSpace(raw)
			if tagscan.SkipLine(line) {
				continue
			}
			ev.scanLine(line)
		}
	})
	return ev
}

func (ev *evidence) scanLine(line string) {
	isGuard := false

	if m := ifRe.FindStringSubmatch(line); m != nil {
		cond := strings.TrimSpace(m[1])
		ev.guards = append(ev.guards, guard{
			Kind:      guardIf,
			Condition: cond,
			Line:      line,
			Variables: identifiersIn(cond),
		})
		isGuard = true
	} else if m := whileRe.FindStringSubmatch(line); m != nil {
		cond := strings.TrimSpace(m[1])
		ev.guards = append(ev.guards, guard{
			Kind:      guardWhile,
			Condition: cond,
			Line:      line,
			Variables: identifiersIn(cond),
		})
		isGuard = true
	} else if m := caseRe.FindStringSubmatch(line); m != nil {
		ev.guards = append(ev.guards, guard{
			Kind:      guardCase,
			Condition: m[1],
			Line:      line,
			Variables: []string{m[1]},
		})
		isGuard = true
	}

	// ":=" assignments are collected anywhere on the line, including
	// after THEN on a one-line IF. The C-style "=" fallback applies only
	// to plain lines, where "=" cannot be a comparison inside a guard.
	matches := assignRe.FindAllStringSubmatch(line, -1)
	if len(matches) == 0 && !isGuard {
		if m := eqAssignRe.FindStringSubmatch(line); m != nil {
			matches = [][]string{m}
		}
	}

	for _, m := range matches {
		a := assignment{
			Variable: m[1],
			Value:    strings.TrimSpace(m[2]),
			Line:     line,
		}
		ev.assignments = append(ev.assignments, a)
		if outputValues[strings.ToUpper(trimQuotes(a.Value))] {
			ev.outputs = append(ev.outputs, output{
				Variable: a.Variable,
				Value:    a.Value,
				Line:     line,
			})
		}
	}
}

// candidates returns possible state variables in first-seen order:
// guard variables, then assignment targets, then output targets.
// Literals and non-identifier strings are excluded.
func (ev *evidence) candidates() []string {
	var order []string
	seen := make(map[string]bool)
	add := func(name string) {
		name = trimQuotes(name)
		if seen[name] || !isCandidate(name) {
			return
		}
		seen[name] = true
		order = append(order, name)
	}

	for _, g := range ev.guards {
		for _, v := range g.Variables {
			add(v)
		}
	}
	for _, a := range ev.assignments {
		add(a.Variable)
	}
	for _, o := range ev.outputs {
		add(o.Variable)
	}
	return order
}

// score rates a candidate on structural evidence: guard occurrences
// weigh 2, assignments 1, output-controlling assignments 3, and one
// bonus of 2 when any assigned value comes from the state-like
// vocabulary.
func (ev *evidence) score(candidate string) int {
	score := 0

	for _, g := range ev.guards {
		for _, v := range g.Variables {
			if v == candidate {
				score += 2
				break
			}
		}
	}

	stateLike := false
	for _, a := range ev.assignments {
		if a.Variable != candidate {
			continue
		}
		score++
		if stateLikeValues[strings.ToLower(trimQuotes(a.Value))] {
			stateLike = true
		}
	}
	if stateLike {
		score += 2
	}

	for _, o := range ev.outputs {
		if o.Variable == candidate {
			score += 3
		}
	}

	return score
}

func identifiersIn(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, w := range wordRe.FindAllString(s, -1) {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}

func isCandidate(name string) bool {
	if literals[strings.ToUpper(name)] {
		return false
	}
	return identRe.MatchString(name)
}

// isStateValue reports whether an assigned value can name a state:
// identifier-shaped after quote stripping, and not a bare number.
func isStateValue(value string) bool {
	v := trimQuotes(value)
	if v == "" || isAllDigits(v) {
		return false
	}
	return stateValRe.MatchString(v)
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func trimQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}
