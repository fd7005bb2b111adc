package xdb

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Placeholder selects the parameter style a command is rewritten to.
//
// Common choices:
//   - PlaceholderQuestion   → "?"           (MySQL, SQLite, DuckDB, ClickHouse)
//   - PlaceholderDollar     → "$1, $2, …"  (PostgreSQL)
//   - PlaceholderAtP        → "@p1, @p2…"  (SQL Server)
//   - PlaceholderColonNum   → ":1, :2, …"  (Oracle)
//   - PlaceholderNamed      → "@name"       (drivers taking sql.NamedArg)
type Placeholder int

const (
	PlaceholderQuestion Placeholder = iota
	PlaceholderDollar
	PlaceholderAtP
	PlaceholderColonNum
	PlaceholderNamed
)

// PlaceholderFor picks a Placeholder based on a driver name string.
//
// Examples:
//
//	ph := xdb.PlaceholderFor("pgx")       // => PlaceholderDollar
//	ph := xdb.PlaceholderFor("sqlserver") // => PlaceholderAtP
//	ph := xdb.PlaceholderFor("mysql")     // => PlaceholderQuestion
func PlaceholderFor(driverName string) Placeholder {
	switch strings.ToLower(driverName) {
	case "pgx", "postgres", "postgresql", "lib/pq", "pg":
		return PlaceholderDollar
	case "sqlserver", "mssql":
		return PlaceholderAtP
	case "godror", "oracle", "goracle":
		return PlaceholderColonNum
	default:
		return PlaceholderQuestion
	}
}

// Command is SQL text plus its parameters.
//
// The text refers to parameters either by name (@name or :name) or
// positionally with ?, never both. Bind rewrites it for a target driver.
//
// Example:
//
//	cmd := xdb.NewCommand(`UPDATE items SET price = @price WHERE id = @id`).
//	    AddValue("price", decimal.RequireFromString("9.99")).
//	    AddValue("id", 7)
//	_, err := cmd.Exec(ctx, db, xdb.PlaceholderDollar)
type Command struct {
	Text   string
	Params []Parameter
}

func NewCommand(text string, params ...Parameter) *Command {
	return &Command{Text: text, Params: params}
}

// Add appends p and returns c for chaining.
func (c *Command) Add(p Parameter) *Command {
	c.Params = append(c.Params, p)
	return c
}

// AddValue appends NewParameter(name, v) and returns c for chaining.
func (c *Command) AddValue(name string, v any) *Command {
	return c.Add(NewParameter(name, v))
}

// Lookup finds a parameter by name, ignoring case and any @ or : prefix.
func (c *Command) Lookup(name string) (Parameter, bool) {
	name = bareName(name)
	for _, p := range c.Params {
		if strings.EqualFold(bareName(p.Name), name) {
			return p, true
		}
	}
	return Parameter{}, false
}

// Bind renders the command for placeholder style ph and returns the
// rewritten text with its arguments.
//
// Named references become positional placeholders in order of appearance,
// repeating the argument for a repeated name; with PlaceholderNamed they
// stay @name and each parameter is passed once as an sql.NamedArg, so every
// parameter needs a name. A reference without a parameter is
// ErrArgumentInvalid. Text without any reference passes every parameter,
// in order.
//
// A named reference to an untyped slice or array parameter expands to one
// placeholder per element, and to NULL when it is empty:
//
//	cmd := xdb.NewCommand(`SELECT * FROM items WHERE id IN (@ids)`).
//	    AddValue("ids", []int{4, 8})
//	q, args, _ := cmd.Bind(xdb.PlaceholderDollar) // IN ($1,$2), [4 8]
//
// Quoted strings, comments, PostgreSQL :: casts and $tag$ blocks are left
// untouched, as is a colon inside square brackets (arr[1:n]).
func (c *Command) Bind(ph Placeholder) (string, []any, error) {
	toks, err := findParamTokens(c.Text)
	if err != nil {
		return "", nil, err
	}
	if len(toks) == 0 {
		args, err := c.allArgs(ph)
		return c.Text, args, err
	}

	var b strings.Builder
	b.Grow(len(c.Text) + 8*len(toks))
	args := make([]any, 0, len(toks))
	seen := make(map[string]bool)
	named := toks[0].name != ""
	last, pos := 0, 0

	for _, t := range toks {
		if (t.name != "") != named {
			return "", nil, fmt.Errorf("%w: command mixes named and positional parameters", ErrArgumentInvalid)
		}
		b.WriteString(c.Text[last:t.start])
		last = t.end

		var p Parameter
		if t.name != "" {
			var ok bool
			if p, ok = c.Lookup(t.name); !ok {
				return "", nil, fmt.Errorf("%w: missing value for parameter %q", ErrArgumentInvalid, t.name)
			}
		} else {
			if pos >= len(c.Params) {
				return "", nil, fmt.Errorf("%w: placeholder %d has no parameter", ErrArgumentInvalid, pos+1)
			}
			p = c.Params[pos]
		}
		pos++

		if ph == PlaceholderNamed {
			name := bareName(p.Name)
			if name == "" {
				return "", nil, fmt.Errorf("%w: placeholder %d: named style needs a parameter name", ErrArgumentInvalid, pos)
			}
			key := strings.ToLower(name)
			b.WriteByte('@')
			b.WriteString(name)
			if seen[key] {
				continue
			}
			seen[key] = true
			na, err := p.NamedArg()
			if err != nil {
				return "", nil, err
			}
			args = append(args, na)
			continue
		}

		if list, ok := expandable(p); ok && t.name != "" {
			if list.Len() == 0 {
				b.WriteString("NULL")
				continue
			}
			for i := 0; i < list.Len(); i++ {
				if i > 0 {
					b.WriteByte(',')
				}
				writePlaceholder(&b, ph, len(args)+1)
				v, err := NewParameter(p.Name, list.Index(i).Interface()).DriverValue()
				if err != nil {
					return "", nil, err
				}
				args = append(args, v)
			}
			continue
		}

		writePlaceholder(&b, ph, len(args)+1)
		v, err := p.arg()
		if err != nil {
			return "", nil, err
		}
		args = append(args, v)
	}
	b.WriteString(c.Text[last:])
	return b.String(), args, nil
}

// expandable reports whether p is an untyped input list, which a named
// reference spreads into one placeholder per element for IN (...) lists.
// []byte is Binary and []rune is String, so neither is a list.
func expandable(p Parameter) (reflect.Value, bool) {
	if p.Direction != Input || p.DbType != TypeObject {
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(p.Value)
	switch rv.Kind() {
	case reflect.Slice:
		return rv, rv.Type().Elem().Kind() != reflect.Uint8
	case reflect.Array:
		return rv, true
	}
	return reflect.Value{}, false
}

func (c *Command) allArgs(ph Placeholder) ([]any, error) {
	if len(c.Params) == 0 {
		return nil, nil
	}
	args := make([]any, 0, len(c.Params))
	for _, p := range c.Params {
		var (
			v   any
			err error
		)
		if ph == PlaceholderNamed {
			v, err = p.NamedArg()
		} else {
			v, err = p.arg()
		}
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

func writePlaceholder(b *strings.Builder, ph Placeholder, n int) {
	switch ph {
	case PlaceholderDollar:
		b.WriteByte('$')
	case PlaceholderAtP:
		b.WriteString("@p")
	case PlaceholderColonNum:
		b.WriteByte(':')
	default:
		b.WriteByte('?')
		return
	}
	b.WriteString(strconv.Itoa(n))
}

// Exec binds the command and runs it on e (INSERT, UPDATE, DELETE, DDL).
//
// Not all drivers support LastInsertId on the result; prefer RETURNING with
// Query or Scalar where available.
func (c *Command) Exec(ctx context.Context, e Execer, ph Placeholder) (sql.Result, error) {
	query, args, err := c.Bind(ph)
	if err != nil {
		return nil, err
	}
	return e.ExecContext(ctx, query, args...)
}

// Query binds the command and buffers its result into a Table.
func (c *Command) Query(ctx context.Context, q Querier, ph Placeholder) (*Table, error) {
	query, args, err := c.Bind(ph)
	if err != nil {
		return nil, err
	}
	return LoadTable(ctx, q, query, args...)
}

// Scalar binds the command and returns the first column of the first row.
// It returns sql.ErrNoRows when the result is empty; extra rows are ignored.
func (c *Command) Scalar(ctx context.Context, q Querier, ph Placeholder) (v any, err error) {
	query, args, err := c.Bind(ph)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil && err == nil {
			v, err = nil, cerr
		}
	}()

	if !rows.Next() {
		if ne := rows.Err(); ne != nil {
			return nil, ne
		}
		return nil, sql.ErrNoRows
	}
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	vals, err := scanValues(rows, len(cols))
	if err != nil {
		return nil, err
	}
	return vals[0], nil
}

// Exec runs a statement that does not return rows with positional args,
// forwarding to e unchanged.
func Exec(ctx context.Context, e Execer, query string, args ...any) (sql.Result, error) {
	return e.ExecContext(ctx, query, args...)
}

// paramToken is one parameter reference in command text. name is empty for
// a positional ?.
type paramToken struct {
	name       string
	start, end int
}

func findParamTokens(q string) ([]paramToken, error) {
	var out []paramToken
	depth := 0 // square brackets: array slices, SQL Server identifiers
	for i := 0; i < len(q); {
		switch c := q[i]; {
		case c == '[':
			depth++
			i++
		case c == ']':
			if depth > 0 {
				depth--
			}
			i++
		case c == ':' && depth > 0:
			i++
		case c == '\'' || c == '"' || c == '`':
			j, err := skipQuoted(q, i+1, c)
			if err != nil {
				return nil, err
			}
			i = j
		case strings.HasPrefix(q[i:], "--"):
			i = skipLineComment(q, i+2)
		case strings.HasPrefix(q[i:], "/*"):
			j, err := skipBlockComment(q, i+2)
			if err != nil {
				return nil, err
			}
			i = j
		case c == '$':
			j, ok, err := skipDollarQuoted(q, i)
			if err != nil {
				return nil, err
			}
			if !ok {
				j = i + 1
			}
			i = j
		case strings.HasPrefix(q[i:], "::"):
			i += 2
		case strings.HasPrefix(q[i:], "@@"):
			// SQL Server system variable such as @@ROWCOUNT.
			_, i = parseIdent(q, i+2)
		case c == '?':
			out = append(out, paramToken{start: i, end: i + 1})
			i++
		case c == '@' || c == ':':
			name, end := parseIdent(q, i+1)
			if name != "" && !('0' <= name[0] && name[0] <= '9') {
				out = append(out, paramToken{name: name, start: i, end: end})
			}
			i = max(end, i+1)
		default:
			i++
		}
	}
	return out, nil
}

// skipQuoted returns the index just past the closing quote; a doubled quote
// is an escaped one.
func skipQuoted(s string, i int, quote byte) (int, error) {
	for i < len(s) {
		if s[i] == quote {
			if i+1 < len(s) && s[i+1] == quote {
				i += 2
				continue
			}
			return i + 1, nil
		}
		i++
	}
	return 0, fmt.Errorf("xdb: unterminated %c-quoted text", quote)
}

func skipLineComment(s string, i int) int {
	if j := strings.IndexByte(s[i:], '\n'); j >= 0 {
		return i + j + 1
	}
	return len(s)
}

func skipBlockComment(s string, i int) (int, error) {
	if j := strings.Index(s[i:], "*/"); j >= 0 {
		return i + j + 2, nil
	}
	return 0, fmt.Errorf("xdb: unterminated block comment")
}

// skipDollarQuoted handles $$...$$ and $tag$...$tag$ (PostgreSQL). ok is
// false when s[i:] does not open such a block, e.g. for $1.
func skipDollarQuoted(s string, i int) (int, bool, error) {
	j := i + 1
	for j < len(s) && isIdentByte(s[j]) {
		j++
	}
	if j >= len(s) || s[j] != '$' || (j > i+1 && s[i+1] >= '0' && s[i+1] <= '9') {
		return 0, false, nil
	}
	tag := s[i : j+1]
	k := strings.Index(s[j+1:], tag)
	if k < 0 {
		return 0, true, fmt.Errorf("xdb: unterminated dollar-quoted string")
	}
	return j + 1 + k + len(tag), true, nil
}

func isIdentByte(c byte) bool {
	return c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

func parseIdent(s string, i int) (string, int) {
	start := i
	for i < len(s) {
		r, w := utf8.DecodeRuneInString(s[i:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		i += w
	}
	return s[start:i], i
}
