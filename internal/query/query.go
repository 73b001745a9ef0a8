// Package query defines the line-oriented text format shared by the
// CLI, batch files, and the network protocol.
//
// A query line is FLAG followed by the sequence, separated by
// whitespace and/or commas:
//
//	2 21 21 22
//	0, 1, 1, 1, 2, 3
//	0/3 1 2 2 9        explicit size: only the first 3 values count
//
// Blank lines and lines starting with '#' carry no query.
package query

import (
	"strconv"
	"strings"

	"modefind/finder"
	"modefind/internal/errors"
)

// Query is one (flag, sequence, size) triple.
type Query struct {
	Flag int32
	Seq  []int32
	Size int32
}

// Values returns the slice of Seq the query actually counts.
func (q Query) Values() []int32 {
	if q.Size <= 0 {
		return nil
	}
	return q.Seq[:q.Size]
}

// String renders the canonical line form.  The size prefix is only
// written when it differs from len(Seq).
func (q Query) String() string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(int64(q.Flag), 10))
	if int(q.Size) != len(q.Seq) {
		b.WriteByte('/')
		b.WriteString(strconv.FormatInt(int64(q.Size), 10))
	}
	for _, v := range q.Seq {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatInt(int64(v), 10))
	}
	return b.String()
}

// Skip reports whether a line is blank or a comment.
func Skip(line string) bool {
	line = strings.TrimSpace(line)
	return line == "" || line[0] == '#'
}

// Parse decodes one query line.
func Parse(line string) (Query, error) {
	return ParseInto(line, nil)
}

// ParseInto decodes one query line, appending the sequence to buf[:0]
// so callers can reuse a scratch slice across lines.
func ParseInto(line string, buf []int32) (Query, error) {
	fields := strings.FieldsFunc(line, isSep)
	if len(fields) == 0 {
		return Query{}, &errors.ParseError{Err: errors.ErrEmptyQuery}
	}

	head, sizeText, explicit := strings.Cut(fields[0], "/")
	flag, err := parseInt32(head)
	if err != nil {
		return Query{}, err
	}

	if buf == nil {
		buf = make([]int32, 0, len(fields)-1)
	}
	seq := buf[:0]
	for _, f := range fields[1:] {
		v, err := parseInt32(f)
		if err != nil {
			return Query{}, err
		}
		seq = append(seq, v)
	}

	size := int32(len(seq))
	if explicit {
		n, err := parseInt32(sizeText)
		if err != nil {
			return Query{}, err
		}
		if n < 0 || int(n) > len(seq) {
			return Query{}, &errors.ParseError{Field: fields[0], Err: errors.Invalid("parse", "size", n)}
		}
		size = n
	}

	return Query{Flag: flag, Seq: seq, Size: size}, nil
}

func isSep(r rune) bool {
	return r == ',' || r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

func parseInt32(s string) (int32, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, &errors.ParseError{Field: s, Err: errors.ErrSyntax}
	}
	return int32(v), nil
}

// Evaluate runs q through f.
func Evaluate(f *finder.Finder, q Query) finder.Result {
	return f.Evaluate(q.Flag, q.Seq, q.Size)
}
