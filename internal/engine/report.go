package engine

import (
	"time"

	"github.com/google/uuid"
)

// Report is the uniform shape every report-producing component emits.
// Export and display consumers depend only on this structure. Currency cells
// are minor-unit-rounded fixed strings; percentage cells carry plain numbers
// with the % convention stated in the header name.
type Report struct {
	RunID       uuid.UUID         `json:"run_id"`
	Headers     []string          `json:"headers"`
	Rows        [][]string        `json:"rows"`
	Summary     map[string]string `json:"summary"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// NewReport creates an empty report with the given column headers.
func NewReport(generatedAt time.Time, headers ...string) *Report {
	return &Report{
		RunID:       uuid.New(),
		Headers:     headers,
		Rows:        [][]string{},
		Summary:     map[string]string{},
		GeneratedAt: generatedAt,
	}
}

// AddRow appends one row of cells.
func (r *Report) AddRow(cells ...string) {
	r.Rows = append(r.Rows, cells)
}
