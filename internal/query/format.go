package query

import (
	"encoding/json"
	"strconv"

	"modefind/finder"
)

// jsonResult is the wire shape of a JSON answer line.
type jsonResult struct {
	Flag   int32    `json:"flag"`
	Size   int32    `json:"size"`
	Mode   int32    `json:"mode"`
	Tie    bool     `json:"tie"`
	Counts [6]int32 `json:"counts"`
}

// FormatText renders the answer as a bare decimal.
func FormatText(_ Query, r finder.Result) string {
	return strconv.FormatInt(int64(r.Mode), 10)
}

// FormatJSON renders the answer with its tally as one JSON object.
func FormatJSON(q Query, r finder.Result) string {
	out := jsonResult{Flag: q.Flag, Size: q.Size, Mode: r.Mode, Tie: r.Tie}
	copy(out.Counts[:], r.Counts[1:])
	data, _ := json.Marshal(out)
	return string(data)
}

// FormatError renders a failed line for line-oriented output.
func FormatError(err error) string {
	return "error: " + err.Error()
}

// Formatter selects FormatJSON or FormatText.
func Formatter(asJSON bool) func(Query, finder.Result) string {
	if asJSON {
		return FormatJSON
	}
	return FormatText
}
