// Package sqldump reads product records out of a WooCommerce/WordPress
// SQL dump. Only INSERT ... VALUES tuple lists are understood; the rest of
// the dump grammar (DDL, locks, comments) is skipped line by line.
// Statements need an explicit column list, so dumps must be taken with
// mysqldump --complete-insert.
package sqldump

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/catalogbridge/reconciler/internal/domain"
)

// Source is a SQL-dump backed record source.
type Source struct {
	name  domain.SourceID
	path  string
	table string
}

// New creates a SQL dump source that extracts rows inserted into table.
func New(name domain.SourceID, path, table string) *Source {
	return &Source{name: name, path: path, table: table}
}

// Name returns the source identity.
func (s *Source) Name() domain.SourceID {
	return s.name
}

// Records scans the dump for INSERT statements targeting the configured
// table and converts each VALUES tuple into a record keyed by the
// statement's column list.
func (s *Source) Records(ctx context.Context) ([]*domain.RawRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSourceUnavailable, s.path, err)
	}
	defer f.Close()

	var records []*domain.RawRecord

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024) // dump lines hold whole tuple lists
	var statement strings.Builder
	collecting := false

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line := scanner.Text()
		if !collecting {
			if !s.opensInsert(line) {
				continue
			}
			collecting = true
			statement.Reset()
		}
		statement.WriteString(line)
		statement.WriteString("\n")

		// Statements end at an unquoted semicolon, which mysqldump always
		// places at end of line.
		if strings.HasSuffix(strings.TrimRight(line, " \t"), ";") {
			collecting = false
			recs, err := s.parseInsert(statement.String())
			if err != nil {
				return nil, fmt.Errorf("parsing insert for %s: %w", s.table, err)
			}
			records = append(records, recs...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSourceUnavailable, s.path, err)
	}

	return records, nil
}

// opensInsert reports whether a line begins an INSERT for our table.
func (s *Source) opensInsert(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(strings.ToUpper(trimmed), "INSERT INTO") {
		return false
	}
	rest := trimmed[len("INSERT INTO"):]
	rest = strings.TrimLeft(rest, " `\"")
	return strings.HasPrefix(rest, s.table)
}

// parseInsert splits one INSERT statement into records. The statement must
// carry an explicit column list; plain mysqldump output omits it unless the
// dump was taken with --complete-insert.
func (s *Source) parseInsert(stmt string) ([]*domain.RawRecord, error) {
	open := strings.Index(stmt, "(")
	bareValues := strings.Index(strings.ToUpper(stmt), "VALUES")
	if open < 0 || (bareValues >= 0 && bareValues < open) {
		return nil, fmt.Errorf("insert has no column list; re-export with mysqldump --complete-insert")
	}
	closeIdx := strings.Index(stmt[open:], ")")
	if closeIdx < 0 {
		return nil, fmt.Errorf("unterminated column list")
	}
	columns := splitColumns(stmt[open+1 : open+closeIdx])

	valuesIdx := strings.Index(strings.ToUpper(stmt[open+closeIdx:]), "VALUES")
	if valuesIdx < 0 {
		return nil, fmt.Errorf("no VALUES clause")
	}
	tuples, err := parseTuples(stmt[open+closeIdx+valuesIdx+len("VALUES"):])
	if err != nil {
		return nil, err
	}

	records := make([]*domain.RawRecord, 0, len(tuples))
	for _, tuple := range tuples {
		fields := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(tuple) {
				fields[col] = tuple[i]
			}
		}
		records = append(records, &domain.RawRecord{Source: s.name, Fields: fields})
	}
	return records, nil
}

// splitColumns parses the backtick-quoted column list of an INSERT.
func splitColumns(list string) []string {
	parts := strings.Split(list, ",")
	columns := make([]string, 0, len(parts))
	for _, p := range parts {
		columns = append(columns, domain.NormalizeFieldName(strings.Trim(strings.TrimSpace(p), "`\"")))
	}
	return columns
}

// parseTuples walks the VALUES tuple list: (v, v, ...), (v, v, ...), ... ;
// Single-quoted strings honor backslash escapes and doubled quotes; NULL
// becomes the empty string.
func parseTuples(s string) ([][]string, error) {
	var tuples [][]string
	var tuple []string
	var value strings.Builder

	const (
		stateOutside = iota // between tuples
		stateInTuple        // between values
		stateBare           // unquoted value (number, NULL)
		stateQuoted         // inside single quotes
	)
	state := stateOutside

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch state {
		case stateOutside:
			switch c {
			case '(':
				tuple = nil
				state = stateInTuple
			case ';':
				return tuples, nil
			}
		case stateInTuple:
			switch {
			case c == '\'':
				value.Reset()
				state = stateQuoted
			case c == ')':
				tuples = append(tuples, tuple)
				state = stateOutside
			case c == ',' || c == ' ' || c == '\t' || c == '\n' || c == '\r':
				// separator noise
			default:
				value.Reset()
				value.WriteRune(c)
				state = stateBare
			}
		case stateBare:
			switch c {
			case ',', ')':
				tuple = append(tuple, bareValue(value.String()))
				if c == ')' {
					tuples = append(tuples, tuple)
					state = stateOutside
				} else {
					state = stateInTuple
				}
			default:
				value.WriteRune(c)
			}
		case stateQuoted:
			switch c {
			case '\\':
				if i+1 < len(runes) {
					value.WriteRune(unescape(runes[i+1]))
					i++
				}
			case '\'':
				// doubled quote is an escaped quote, not a terminator
				if i+1 < len(runes) && runes[i+1] == '\'' {
					value.WriteRune('\'')
					i++
					continue
				}
				tuple = append(tuple, value.String())
				state = stateInTuple
			default:
				value.WriteRune(c)
			}
		}
	}

	if state != stateOutside {
		return nil, fmt.Errorf("unterminated tuple list")
	}
	return tuples, nil
}

// bareValue normalizes an unquoted SQL literal.
func bareValue(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "NULL") {
		return ""
	}
	return v
}

// unescape maps a backslash escape to its character.
func unescape(c rune) rune {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return c
	}
}
