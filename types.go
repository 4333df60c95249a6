package cyclana

import (
	"github.com/google/uuid"
)

// Facilities names the facility prototypes the aggregation columns draw
// from. It is a curated view of the internal facility model for use in
// Run options; it imports no internal packages, so it is safe to use from
// outside the module.
type Facilities struct {
	HEUSink          string
	PuSink           string
	Enrichment       string
	NaturalUStorage  string
	FreshFuelStorage string
	DepletedUSink    string
	WasteSink        string
	Reactors         []string
}

// Result is the merged run table produced by Run. Every column holds one
// value per analyzed run; rows are aligned with the discovery order of the
// output databases.
type Result struct {
	// BatchID identifies the analysis batch the table was produced under.
	// A cache hit reports the id stored in the container.
	BatchID uuid.UUID
	// Columns lists the column names in table order.
	Columns []string
	// Data maps column name to per-run values; all slices share one length.
	Data map[string][]float64
}

// NumRows returns the number of analyzed runs.
func (r *Result) NumRows() int {
	if len(r.Columns) == 0 {
		return 0
	}
	return len(r.Data[r.Columns[0]])
}

// Column returns the values of one column and whether it exists.
func (r *Result) Column(name string) ([]float64, bool) {
	vals, ok := r.Data[name]
	return vals, ok
}
