package surface

import (
	"encoding/json"
	"io"
)

// JSONRenderer marshals reports to indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) RenderScores(w io.Writer, reports []ScoreReport) error {
	if reports == nil {
		reports = []ScoreReport{}
	}
	return encode(w, reports)
}

func (r *JSONRenderer) RenderSweep(w io.Writer, report SweepReport) error {
	return encode(w, report)
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
