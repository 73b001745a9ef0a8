package query

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"modefind/finder"
	"modefind/internal/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want Query
	}{
		{"2 21 21 22", Query{Flag: 2, Seq: []int32{21, 21, 22}, Size: 3}},
		{"0, 1, 1, 1, 2, 3", Query{Flag: 0, Seq: []int32{1, 1, 1, 2, 3}, Size: 5}},
		{"  -1\t-9,-9  ", Query{Flag: -1, Seq: []int32{-9, -9}, Size: 2}},
		{"0/2 1 2 2", Query{Flag: 0, Seq: []int32{1, 2, 2}, Size: 2}},
		{"5", Query{Flag: 5, Seq: []int32{}, Size: 0}},
		{"2147483647 -2147483648", Query{Flag: 2147483647, Seq: []int32{-2147483648}, Size: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Parse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		line string
		is   error
	}{
		{"", errors.ErrEmptyQuery},
		{" , ", errors.ErrEmptyQuery},
		{"x 1 2", errors.ErrSyntax},
		{"1 2 three", errors.ErrSyntax},
		{"1 2147483648", errors.ErrSyntax},
		{"1/x 2", errors.ErrSyntax},
		{"1/4 2 3", errors.ErrInvalidArgument},
		{"1/-1 2", errors.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := Parse(tt.line)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.is), "got %v", err)
			var pe *errors.ParseError
			assert.True(t, errors.As(err, &pe))
		})
	}
}

func TestParseInto_ReusesBuffer(t *testing.T) {
	buf := make([]int32, 0, 8)
	q, err := ParseInto("0 1 2 3", buf)
	require.NoError(t, err)
	assert.Equal(t, 8, cap(q.Seq))
	assert.Equal(t, []int32{1, 2, 3}, q.Seq)
}

func TestQuery_StringRoundTrip(t *testing.T) {
	for _, line := range []string{"2 21 21 22", "0/2 1 2 2", "-4", "7/0 1"} {
		q, err := Parse(line)
		require.NoError(t, err)
		assert.Equal(t, line, q.String())

		again, err := Parse(q.String())
		require.NoError(t, err)
		assert.Equal(t, q, again)
	}
}

func TestSkip(t *testing.T) {
	assert.True(t, Skip(""))
	assert.True(t, Skip("   \t"))
	assert.True(t, Skip("# comment"))
	assert.True(t, Skip("  # indented comment"))
	assert.False(t, Skip("0 1 2"))
}

func TestEvaluateAndFormat(t *testing.T) {
	f := finder.New(nil)

	q, err := Parse("2 21 21 22")
	require.NoError(t, err)
	r := Evaluate(f, q)
	assert.Equal(t, "21", FormatText(q, r))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(FormatJSON(q, r)), &decoded))
	assert.Equal(t, float64(21), decoded["mode"])
	assert.Equal(t, false, decoded["tie"])
	assert.Equal(t, []interface{}{2.0, 1.0, 0.0, 0.0, 0.0, 0.0}, decoded["counts"])

	q, err = Parse("0/2 1 2 2")
	require.NoError(t, err)
	r = Evaluate(f, q)
	assert.Equal(t, "10", FormatText(q, r))
	assert.JSONEq(t,
		`{"flag":0,"size":2,"mode":10,"tie":true,"counts":[1,1,0,0,0,0]}`,
		Formatter(true)(q, r))
}

func TestFormatError(t *testing.T) {
	_, err := Parse("a")
	assert.Equal(t, `error: parse "a": syntax error`, FormatError(err))
}
