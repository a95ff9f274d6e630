// Package query builds OR-combined person lookups (substring or exact) and compiles them
// into PostgreSQL WHERE fragments with positional arguments.
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind tags the variant of a Predicate.
type Kind int

const (
	// KindSubstring matches when the column contains the value, ignoring case.
	KindSubstring Kind = iota + 1
	// KindExact matches when the column equals the value.
	KindExact
)

// Field is a searchable person attribute.
type Field string

const (
	FieldFirstName Field = "first_name"
	FieldLastName  Field = "last_name"
	FieldEmail     Field = "email"
	FieldPhone     Field = "phone"
)

// columns whitelists the SQL columns a Field may compile to.
var columns = map[Field]string{
	FieldFirstName: "first_name",
	FieldLastName:  "last_name",
	FieldEmail:     "email",
	FieldPhone:     "phone",
}

// ErrUnknownField is returned when a predicate references a field outside the whitelist.
var ErrUnknownField = errors.New("query: unknown field")

// Predicate is a single match condition on one field.
type Predicate struct {
	Kind     Kind
	Field    Field
	Value    string
	FoldCase bool // exact matches only; substring matches always ignore case
}

// Substring matches rows whose field contains value, ignoring case.
func Substring(field Field, value string) Predicate {
	return Predicate{Kind: KindSubstring, Field: field, Value: value, FoldCase: true}
}

// Exact matches rows whose field equals value byte for byte.
func Exact(field Field, value string) Predicate {
	return Predicate{Kind: KindExact, Field: field, Value: value}
}

// ExactFold matches rows whose field equals value, ignoring case.
func ExactFold(field Field, value string) Predicate {
	return Predicate{Kind: KindExact, Field: field, Value: value, FoldCase: true}
}

// Group is a disjunction of predicates.
type Group struct {
	preds []Predicate
}

// Any combines predicates with OR. Predicates with blank values are dropped.
func Any(preds ...Predicate) Group {
	g := Group{preds: make([]Predicate, 0, len(preds))}
	for _, p := range preds {
		p.Value = strings.TrimSpace(p.Value)
		if p.Value == "" {
			continue
		}
		g.preds = append(g.preds, p)
	}
	return g
}

// Empty reports whether the group has nothing to match on.
func (g Group) Empty() bool {
	return len(g.preds) == 0
}

// Predicates returns a copy of the group members.
func (g Group) Predicates() []Predicate {
	out := make([]Predicate, len(g.preds))
	copy(out, g.preds)
	return out
}

// Compile renders the group as a parenthesised SQL boolean expression. Placeholders are
// numbered from startArg. An empty group compiles to FALSE.
func (g Group) Compile(startArg int) (string, []any, error) {
	if g.Empty() {
		return "FALSE", nil, nil
	}

	parts := make([]string, 0, len(g.preds))
	args := make([]any, 0, len(g.preds))
	n := startArg

	for _, p := range g.preds {
		col, ok := columns[p.Field]
		if !ok {
			return "", nil, fmt.Errorf("%w: %q", ErrUnknownField, p.Field)
		}
		ph := "$" + strconv.Itoa(n)

		switch p.Kind {
		case KindSubstring:
			parts = append(parts, col+` ILIKE `+ph+` ESCAPE '\'`)
			args = append(args, "%"+EscapeLike(p.Value)+"%")
		case KindExact:
			if p.FoldCase {
				parts = append(parts, "lower("+col+") = lower("+ph+")")
			} else {
				parts = append(parts, col+" = "+ph)
			}
			args = append(args, p.Value)
		default:
			return "", nil, fmt.Errorf("query: unsupported predicate kind %d", p.Kind)
		}
		n++
	}

	return "(" + strings.Join(parts, " OR ") + ")", args, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards so the value matches literally.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
