// Package filter selects generated values with predicate expressions such as
//
//	Gt("age", 18) && HasPrefix("name", "A") || !Has("details")
//
// Values are compared in their JSON form. Paths are dotted, with numeric
// segments indexing arrays; the empty path is the value itself.
package filter

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/vulcand/predicate"
)

// valuePredicate is the type every expression compiles to.
type valuePredicate func(any) bool

// ExpressionError is returned for expressions that cannot be compiled.
type ExpressionError struct {
	Expr string
	Err  error
}

func (e *ExpressionError) Error() string {
	return fmt.Sprintf("invalid filter expression %q: %v", e.Expr, e.Err)
}

func (e *ExpressionError) Unwrap() error {
	return e.Err
}

// Matcher is a compiled filter expression.
type Matcher struct {
	expr string
	pred valuePredicate
}

// Compile parses expr. Negative number arguments such as Ge("", -10) are
// accepted and compared numerically.
func Compile(expr string) (*Matcher, error) {
	parser, err := predicate.NewParser(predicate.Def{
		Functions: functions(),
		Operators: predicate.Operators{
			AND: func(a, b valuePredicate) valuePredicate {
				return func(v any) bool { return a(v) && b(v) }
			},
			OR: func(a, b valuePredicate) valuePredicate {
				return func(v any) bool { return a(v) || b(v) }
			},
			NOT: func(a valuePredicate) valuePredicate {
				return func(v any) bool { return !a(v) }
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create parser: %w", err)
	}

	pred, err := parser.Parse(quoteNegatives(expr))
	if err != nil {
		return nil, &ExpressionError{Expr: expr, Err: err}
	}

	fn, ok := pred.(valuePredicate)
	if !ok {
		return nil, &ExpressionError{Expr: expr, Err: fmt.Errorf("expression must evaluate to a boolean, got %T", pred)}
	}

	return &Matcher{expr: expr, pred: fn}, nil
}

// MustCompile is Compile for expressions known to be valid.
func MustCompile(expr string) *Matcher {
	m, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return m
}

// String returns the source expression.
func (m *Matcher) String() string {
	return m.expr
}

// Match reports whether v satisfies the expression.
func (m *Matcher) Match(v any) (bool, error) {
	norm, err := Normalize(v)
	if err != nil {
		return false, err
	}
	return m.pred(norm), nil
}

// Normalize converts v to its JSON form: nil, bool, float64, string, []any
// or map[string]any.
func Normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to normalize value: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to normalize value: %w", err)
	}
	return out, nil
}

// Functions lists the names usable in expressions, for help text.
func Functions() []string {
	return []string{
		"Eq", "Ne", "Gt", "Ge", "Lt", "Le",
		"Contains", "HasPrefix", "HasSuffix", "Matches",
		"LenEq", "LenGt", "LenLt", "Has", "IsNull",
	}
}

func functions() map[string]any {
	return map[string]any{
		"Eq":        compare(func(c int) bool { return c == 0 }),
		"Ne":        compare(func(c int) bool { return c != 0 }),
		"Gt":        numeric(func(a, b float64) bool { return a > b }),
		"Ge":        numeric(func(a, b float64) bool { return a >= b }),
		"Lt":        numeric(func(a, b float64) bool { return a < b }),
		"Le":        numeric(func(a, b float64) bool { return a <= b }),
		"Contains":  containsPredicate,
		"HasPrefix": text(strings.HasPrefix),
		"HasSuffix": text(strings.HasSuffix),
		"Matches":   matchesPredicate,
		"LenEq":     length(func(n, want int) bool { return n == want }),
		"LenGt":     length(func(n, want int) bool { return n > want }),
		"LenLt":     length(func(n, want int) bool { return n < want }),
		"Has": func(path string) valuePredicate {
			return func(v any) bool {
				got, ok := lookup(v, path)
				return ok && got != nil
			}
		},
		"IsNull": func(path string) valuePredicate {
			return func(v any) bool {
				got, ok := lookup(v, path)
				return ok && got == nil
			}
		},
	}
}

// compare matches numbers numerically and everything else by its string form.
func compare(ok func(int) bool) func(string, any) valuePredicate {
	return func(path string, want any) valuePredicate {
		return func(v any) bool {
			got, found := lookup(v, path)
			if !found {
				return false
			}
			if a, isNum := got.(float64); isNum {
				if b, err := toFloat(want); err == nil {
					return ok(cmpFloat(a, b))
				}
			}
			return ok(strings.Compare(stringOf(got), stringOf(want)))
		}
	}
}

func numeric(ok func(a, b float64) bool) func(string, any) valuePredicate {
	return func(path string, want any) valuePredicate {
		b, wantErr := toFloat(want)
		return func(v any) bool {
			if wantErr != nil {
				return false
			}
			got, found := lookup(v, path)
			a, isNum := got.(float64)
			return found && isNum && ok(a, b)
		}
	}
}

func text(ok func(s, part string) bool) func(string, string) valuePredicate {
	return func(path, part string) valuePredicate {
		return func(v any) bool {
			got, found := lookup(v, path)
			s, isString := got.(string)
			return found && isString && ok(s, part)
		}
	}
}

func containsPredicate(path string, part any) valuePredicate {
	return func(v any) bool {
		got, found := lookup(v, path)
		if !found {
			return false
		}
		switch got := got.(type) {
		case string:
			return strings.Contains(got, stringOf(part))
		case []any:
			for _, el := range got {
				if stringOf(el) == stringOf(part) {
					return true
				}
			}
		}
		return false
	}
}

func matchesPredicate(path, pattern string) valuePredicate {
	re, err := regexp.Compile(pattern)
	return func(v any) bool {
		if err != nil {
			return false
		}
		got, found := lookup(v, path)
		s, isString := got.(string)
		return found && isString && re.MatchString(s)
	}
}

func length(ok func(n, want int) bool) func(string, any) valuePredicate {
	return func(path string, want any) valuePredicate {
		w, wantErr := toFloat(want)
		return func(v any) bool {
			if wantErr != nil {
				return false
			}
			got, found := lookup(v, path)
			if !found {
				return false
			}
			switch got := got.(type) {
			case string:
				return ok(utf8.RuneCountInString(got), int(w))
			case []any:
				return ok(len(got), int(w))
			case map[string]any:
				return ok(len(got), int(w))
			}
			return false
		}
	}
}

// lookup walks a dotted path through a normalized value.
func lookup(v any, path string) (any, bool) {
	if path == "" {
		return v, true
	}
	cur := v
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// toFloat accepts the literal kinds the parser produces, plus numeric strings
// such as the "-5" quoteNegatives emits.
func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
}

func stringOf(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case nil:
		return "null"
	default:
		return fmt.Sprint(v)
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

var negativeNumber = regexp.MustCompile(`^-(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// quoteNegatives rewrites negative number arguments into numeric strings,
// since the expression parser has no unary minus. String literals are copied
// unchanged.
func quoteNegatives(expr string) string {
	var b strings.Builder
	var quote byte
	prev := byte(0)
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		if quote != 0 {
			b.WriteByte(c)
			switch {
			case c == '\\' && quote != '`' && i+1 < len(expr):
				i++
				b.WriteByte(expr[i])
			case c == quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '`', '\'':
			quote = c
		case '-':
			if prev == '(' || prev == ',' {
				if lit := negativeNumber.FindString(expr[i:]); lit != "" {
					b.WriteString(strconv.Quote(lit))
					i += len(lit) - 1
					prev = '"'
					continue
				}
			}
		}
		b.WriteByte(c)
		if c != ' ' && c != '\t' {
			prev = c
		}
	}
	return b.String()
}
