package store

import (
	"fmt"
	"strings"

	"github.com/01moynul/taptoeat-golang/internal/apperr"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Op string

const (
	OpEq    Op = "="
	OpGte   Op = ">="
	OpLte   Op = "<="
	OpILike Op = "ILIKE"
)

// Cond is a single column predicate.
type Cond struct {
	Column string
	Op     Op
	Value  any
}

func Eq(col string, v any) Cond          { return Cond{col, OpEq, v} }
func Gte(col string, v any) Cond         { return Cond{col, OpGte, v} }
func Lte(col string, v any) Cond         { return Cond{col, OpLte, v} }
func ILike(col string, text string) Cond { return Cond{col, OpILike, text} }

// Filter collects AND-ed predicates over a fixed set of columns. An Or group
// counts as one predicate. Using a column outside the set is recorded and
// reported by Where, so callers can chain freely.
type Filter struct {
	columns map[string]bool
	groups  [][]Cond
	err     error
}

// NewFilter returns a filter that accepts only the given columns.
func NewFilter(columns ...string) *Filter {
	f := &Filter{columns: make(map[string]bool, len(columns))}
	for _, c := range columns {
		f.columns[c] = true
	}
	return f
}

func (f *Filter) Eq(col string, v any) *Filter  { return f.add(Eq(col, v)) }
func (f *Filter) Gte(col string, v any) *Filter { return f.add(Gte(col, v)) }
func (f *Filter) Lte(col string, v any) *Filter { return f.add(Lte(col, v)) }

// ILike matches text anywhere in the column, ignoring case.
func (f *Filter) ILike(col, text string) *Filter { return f.add(ILike(col, text)) }

// Or adds a group that matches when any of conds does.
func (f *Filter) Or(conds ...Cond) *Filter {
	if len(conds) == 0 {
		return f
	}
	for _, c := range conds {
		if !f.columns[c.Column] {
			f.fail(c.Column)
			return f
		}
	}
	f.groups = append(f.groups, conds)
	return f
}

func (f *Filter) add(c Cond) *Filter {
	return f.Or(c)
}

func (f *Filter) fail(col string) {
	if f.err == nil {
		f.err = apperr.Validationf("Cannot filter by %q", col)
	}
}

// Where renders the predicates as a WHERE clause (empty when there are none)
// and its placeholder arguments.
func (f *Filter) Where() (string, []any, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	if len(f.groups) == 0 {
		return "", nil, nil
	}

	var (
		parts []string
		args  []any
	)
	for _, g := range f.groups {
		var ors []string
		for _, c := range g {
			sql, arg := c.render()
			ors = append(ors, sql)
			if arg != nil {
				args = append(args, arg...)
			}
		}
		if len(ors) == 1 {
			parts = append(parts, ors[0])
		} else {
			parts = append(parts, "("+strings.Join(ors, " OR ")+")")
		}
	}
	return " WHERE " + strings.Join(parts, " AND "), args, nil
}

func (c Cond) render() (string, []any) {
	switch c.Op {
	case OpILike:
		text, _ := c.Value.(string)
		return fmt.Sprintf("LOWER(%s) LIKE ?", c.Column), []any{"%" + escapeLike(strings.ToLower(text)) + "%"}
	case OpEq:
		if c.Value == nil {
			return c.Column + " IS NULL", nil
		}
	}
	return fmt.Sprintf("%s %s ?", c.Column, c.Op), []any{c.Value}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Page is limit/offset pagination. Results are newest first unless Ascending.
type Page struct {
	Limit     int  `form:"limit"`
	Offset    int  `form:"offset"`
	Ascending bool `form:"asc"`
}

func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// tail renders ORDER BY and LIMIT/OFFSET for the page.
func (p Page) tail(orderCol string) (string, []any) {
	p = p.Normalize()
	dir := "DESC"
	if p.Ascending {
		dir = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id %s LIMIT ? OFFSET ?", orderCol, dir, dir), []any{p.Limit, p.Offset}
}

// selectPage builds the list and count queries for a filtered page.
func selectPage(columns, from string, f *Filter, p Page) (list string, listArgs []any, count string, countArgs []any, err error) {
	where, args, err := f.Where()
	if err != nil {
		return "", nil, "", nil, err
	}
	tail, tailArgs := p.tail("created_at")
	list = "SELECT " + columns + " FROM " + from + where + tail
	listArgs = append(append([]any{}, args...), tailArgs...)
	count = "SELECT COUNT(*) FROM " + from + where
	return list, listArgs, count, args, nil
}
