package gateway

import (
	"fmt"

	"gorm.io/gorm/clause"
)

// Row is an inserted row decoded from an insert event, keyed by column.
type Row map[string]any

// Filter is a predicate usable both as a SQL WHERE condition for selects and
// as an in-process check on subscription rows.
type Filter interface {
	// Expr returns nil when the filter matches everything.
	Expr() clause.Expression
	Match(row Row) bool
}

// Eq matches column == value.
func Eq(column string, value any) Filter {
	return eqFilter{column: column, value: value}
}

// In matches column IN values. An empty set matches nothing.
func In[T any](column string, values []T) Filter {
	return inFilter{column: column, values: toAny(values)}
}

// NotIn matches column NOT IN values. An empty set matches everything.
func NotIn[T any](column string, values []T) Filter {
	return notInFilter{column: column, values: toAny(values)}
}

// And matches when every filter matches.
func And(filters ...Filter) Filter {
	return andFilter(filters)
}

// Or matches when any filter matches.
func Or(filters ...Filter) Filter {
	return orFilter(filters)
}

type eqFilter struct {
	column string
	value  any
}

func (f eqFilter) Expr() clause.Expression {
	return clause.Eq{Column: clause.Column{Name: f.column}, Value: f.value}
}

func (f eqFilter) Match(row Row) bool {
	v, ok := row[f.column]
	return ok && same(v, f.value)
}

type inFilter struct {
	column string
	values []any
}

func (f inFilter) Expr() clause.Expression {
	return clause.IN{Column: clause.Column{Name: f.column}, Values: f.values}
}

func (f inFilter) Match(row Row) bool {
	v, ok := row[f.column]
	if !ok {
		return false
	}
	for _, want := range f.values {
		if same(v, want) {
			return true
		}
	}
	return false
}

type notInFilter struct {
	column string
	values []any
}

func (f notInFilter) Expr() clause.Expression {
	// NOT IN (NULL) would exclude every row
	if len(f.values) == 0 {
		return nil
	}
	return clause.Not(clause.IN{Column: clause.Column{Name: f.column}, Values: f.values})
}

func (f notInFilter) Match(row Row) bool {
	return !inFilter(f).Match(row)
}

type andFilter []Filter

func (f andFilter) Expr() clause.Expression {
	exprs := collect(f)
	if len(exprs) == 0 {
		return nil
	}
	return clause.And(exprs...)
}

func (f andFilter) Match(row Row) bool {
	for _, sub := range f {
		if !sub.Match(row) {
			return false
		}
	}
	return true
}

type orFilter []Filter

func (f orFilter) Expr() clause.Expression {
	exprs := make([]clause.Expression, 0, len(f))
	for _, sub := range f {
		e := sub.Expr()
		if e == nil {
			// one branch matches everything
			return nil
		}
		exprs = append(exprs, e)
	}
	if len(exprs) == 0 {
		return nil
	}
	return clause.Or(exprs...)
}

func (f orFilter) Match(row Row) bool {
	for _, sub := range f {
		if sub.Match(row) {
			return true
		}
	}
	return len(f) == 0
}

func collect(filters []Filter) []clause.Expression {
	exprs := make([]clause.Expression, 0, len(filters))
	for _, f := range filters {
		if e := f.Expr(); e != nil {
			exprs = append(exprs, e)
		}
	}
	return exprs
}

func toAny[T any](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// same compares a decoded JSON value with a Go value by their text form, so
// json.Number("12") equals uint64(12) and "male" equals db.Gender("male").
func same(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}
