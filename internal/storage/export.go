package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/galaxysim/internal/star"
)

type ExportStar struct {
	Pos     [3]float64 `json:"pos"`
	Vel     [3]float64 `json:"vel"`
	Mass    float64    `json:"mass"`
	Density float64    `json:"density"`
	Color   string     `json:"color"`
}

type ExportData struct {
	RunMetadata
	Stars []ExportStar `json:"stars,omitempty"`
}

// ExportJSON writes the run metadata, and the stars when given, as
// indented JSON.
func ExportJSON(w io.Writer, meta *RunMetadata, stars []star.Star) error {
	data := ExportData{
		RunMetadata: *meta,
		Stars:       make([]ExportStar, len(stars)),
	}

	for i, st := range stars {
		data.Stars[i] = ExportStar{
			Pos:     [3]float64{st.Pos.X, st.Pos.Y, st.Pos.Z},
			Vel:     [3]float64{st.Vel.X, st.Vel.Y, st.Vel.Z},
			Mass:    st.Mass,
			Density: st.Density,
			Color:   st.Color.Hex(),
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
