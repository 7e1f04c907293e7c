// Package tagscan extracts identifier-like tag references from lines of
// control-logic text.
//
// This is a lexical heuristic, not a grammar. A tag reference is an
// identifier whose leading character is uppercase (which excludes ST
// keywords written in mixed case and lowercase locals), optionally
// followed by dotted member access and an array index. Array indices are
// stripped: an array reference and its base are the same def/use target.
//
// Every analysis pass shares this one extractor so that def/use sets,
// interaction sets and cross-PLC attribution all agree on what counts as
// a tag.
package tagscan

import (
	"regexp"
	"strings"
)

// tagRe matches TAG, TAG.MEMBER, TAG.MEMBER.SUB and so on. The leading
// character must be uppercase; subsequent characters are uppercase,
// digits or underscore. Array indices are handled by Base, not the
// pattern, so TANK[3].LEVEL yields TANK.
var tagRe = regexp.MustCompile(`\b[A-Z][A-Z0-9_]*(?:\.[A-Z][A-Z0-9_]*)*`)

// Base strips an array index from a tag reference: "TANK[3]" -> "TANK".
func Base(tag string) string {
	if i := strings.IndexByte(tag, '['); i >= 0 {
		return tag[:i]
	}
	return tag
}

// First returns the first tag reference in expr, or "" if none.
func First(expr string) string {
	return Base(tagRe.FindString(expr))
}

// All returns the set of tag references in expr.
func All(expr string) map[string]bool {
	tags := make(map[string]bool)
	for _, m := range tagRe.FindAllString(expr, -1) {
		tags[Base(m)] = true
	}
	return tags
}

// SplitAssignment splits a line on the first ":=" into trimmed left- and
// right-hand sides. The trailing ";" is dropped from the right side.
// ok is false when the line holds no assignment.
func SplitAssignment(line string) (lhs, rhs string, ok bool) {
	i := strings.Index(line, ":=")
	if i < 0 {
		return "", "", false
	}
	lhs = strings.TrimSpace(line[:i])
	rhs = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line[i+2:]), ";"))
	return lhs, rhs, true
}

// IfCondition extracts the condition from an IF line, dropping the
// trailing THEN when present. ok is false for any other line. ELSIF
// branches are not conditions here: the line scanners read only IF
// guards, so an ELSIF condition contributes no uses.
func IfCondition(line string) (cond string, ok bool) {
	if !strings.HasPrefix(strings.ToUpper(line), "IF ") {
		return "", false
	}
	cond = strings.TrimSpace(line[3:])
	if upper := strings.ToUpper(cond); strings.HasSuffix(upper, "THEN") {
		cond = strings.TrimSpace(cond[:len(cond)-4])
	}
	return cond, true
}

// SkipLine reports whether a line is blank or a single-line comment and
// should be ignored by every scanning pass.
func SkipLine(line string) bool {
	return line == "" || strings.HasPrefix(line, "//")
}
