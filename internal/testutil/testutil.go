// Package testutil builds synthetic simulation output databases for tests.
// A DB value describes the rows; Create materializes them as a real SQLite
// file under t.TempDir().
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // sqlite driver
)

type Agent struct {
	ID        int64
	Spec      string
	Prototype string
	EnterTime int64
	Lifetime  int64
}

type Transaction struct {
	ID       int64
	Time     int64
	Sender   int64
	Receiver int64
	Resource int64
}

type Resource struct {
	ID       int64
	Qual     int64
	Quantity float64
}

type Composition struct {
	Qual int64
	Nuc  int64
	Frac float64
}

type Feed struct {
	Agent int64
	Time  int64
	Value float64
	Units string
}

type SWUPoint struct {
	Agent int64
	Time  int64
	Value float64
}

type Enrichment struct {
	Agent int64
	Times []float64
	Vals  []float64
}

type Reactor struct {
	Agent      int64
	CycleTime  int64
	RefuelTime int64
}

type Event struct {
	Agent int64
	Time  int64
	Kind  string
}

// DB describes one synthetic simulation output database.
type DB struct {
	Duration     int64
	StepSecs     int64
	Agents       []Agent
	Transactions []Transaction
	Resources    []Resource
	Compositions []Composition
	Feeds        []Feed
	SWUUsed      []SWUPoint
	Enrichments  []Enrichment
	Reactors     []Reactor
	Events       []Event
}

// StateVector serializes values the way agent state vectors are stored: an
// XML island with one <item> element per entry.
func StateVector(vals ...float64) string {
	var sb strings.Builder
	sb.WriteString("<val><count>")
	sb.WriteString(strconv.Itoa(len(vals)))
	sb.WriteString("</count><item_version>0</item_version>")
	for _, v := range vals {
		sb.WriteString("<item>")
		sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		sb.WriteString("</item>")
	}
	sb.WriteString("</val>")
	return sb.String()
}

// Create writes the database to a fresh file under t.TempDir() and returns
// its path.
func (d DB) Create(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.sqlite")
	d.Write(t, path)
	return path
}

// Write materializes the database at path.
func (d DB) Write(t *testing.T, path string) {
	t.Helper()
	ctx := context.Background()

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer func() { require.NoError(t, db.Close()) }()

	for _, ddl := range []string{
		`CREATE TABLE Info (Duration INTEGER)`,
		`CREATE TABLE TimeStepDur (DurationSecs INTEGER)`,
		`CREATE TABLE AgentEntry (AgentId INTEGER, Spec TEXT, Prototype TEXT, EnterTime INTEGER, Lifetime INTEGER)`,
		`CREATE TABLE Transactions (TransactionId INTEGER, SenderId INTEGER, ReceiverId INTEGER, ResourceId INTEGER, Time INTEGER)`,
		`CREATE TABLE Resources (ResourceId INTEGER, QualId INTEGER, Quantity REAL)`,
		`CREATE TABLE Compositions (QualId INTEGER, NucId INTEGER, MassFrac REAL)`,
		`CREATE TABLE TimeSeriesEnrichmentFeed (AgentId INTEGER, Time INTEGER, Value REAL, Units TEXT)`,
		`CREATE TABLE TimeSeriesEnrichmentSWU (AgentId INTEGER, Time INTEGER, Value REAL)`,
		`CREATE TABLE AgentState_flexicamore_FlexibleEnrichmentInfo (AgentId INTEGER, swu_capacity_times TEXT, swu_capacity_vals TEXT)`,
		`CREATE TABLE AgentState_cycamore_ReactorInfo (AgentId INTEGER, cycle_time INTEGER, refuel_time INTEGER)`,
		`CREATE TABLE ReactorEvents (AgentId INTEGER, Time INTEGER, Event TEXT)`,
	} {
		_, err := db.ExecContext(ctx, ddl)
		require.NoError(t, err, "ddl: %s", ddl)
	}

	exec := func(q string, args ...any) {
		_, err := db.ExecContext(ctx, q, args...)
		require.NoError(t, err, "insert: %s", q)
	}

	exec(`INSERT INTO Info VALUES (?)`, d.Duration)
	exec(`INSERT INTO TimeStepDur VALUES (?)`, d.StepSecs)
	for _, a := range d.Agents {
		exec(`INSERT INTO AgentEntry VALUES (?, ?, ?, ?, ?)`,
			a.ID, a.Spec, a.Prototype, a.EnterTime, a.Lifetime)
	}
	for _, tr := range d.Transactions {
		exec(`INSERT INTO Transactions VALUES (?, ?, ?, ?, ?)`,
			tr.ID, tr.Sender, tr.Receiver, tr.Resource, tr.Time)
	}
	for _, r := range d.Resources {
		exec(`INSERT INTO Resources VALUES (?, ?, ?)`, r.ID, r.Qual, r.Quantity)
	}
	for _, c := range d.Compositions {
		exec(`INSERT INTO Compositions VALUES (?, ?, ?)`, c.Qual, c.Nuc, c.Frac)
	}
	for _, f := range d.Feeds {
		exec(`INSERT INTO TimeSeriesEnrichmentFeed VALUES (?, ?, ?, ?)`,
			f.Agent, f.Time, f.Value, f.Units)
	}
	for _, s := range d.SWUUsed {
		exec(`INSERT INTO TimeSeriesEnrichmentSWU VALUES (?, ?, ?)`, s.Agent, s.Time, s.Value)
	}
	for _, e := range d.Enrichments {
		exec(`INSERT INTO AgentState_flexicamore_FlexibleEnrichmentInfo VALUES (?, ?, ?)`,
			e.Agent, StateVector(e.Times...), StateVector(e.Vals...))
	}
	for _, r := range d.Reactors {
		exec(`INSERT INTO AgentState_cycamore_ReactorInfo VALUES (?, ?, ?)`,
			r.Agent, r.CycleTime, r.RefuelTime)
	}
	for _, ev := range d.Events {
		exec(`INSERT INTO ReactorEvents VALUES (?, ?, ?)`, ev.Agent, ev.Time, ev.Kind)
	}
}

// Agent ids used by SampleDB.
const (
	SampleEnrichment   int64 = 20
	SampleReactor1     int64 = 30
	SampleReactor2     int64 = 31
	SampleHEUSink      int64 = 40
	SamplePuSink       int64 = 41
	SampleDepletedSink int64 = 42
	SampleWasteSink    int64 = 43
	SampleNUStorage    int64 = 50
	SampleFuelStorage  int64 = 51
)

// SampleDB returns a small but fully populated run: one enrichment
// facility, two reactors, the sink and storage facilities the aggregation
// columns draw from, and a spent-fuel composition whose fractions sum to
// 0.999 rather than 1.
//
// Derived quantities, for test assertions:
//
//	total HEU 12.5, total Pu 2.5, depleted U 950, NU to enrichment 1500,
//	NU to reactors 140, SWU sampled 18250, SWU available 1650, SWU used
//	100, feeds {NaturalU: 1000, RecycledU: 250}, Cs-137 mass
//	70*0.04/0.999, reactor1 used factor 0.5, reactor2 used factor 2/3,
//	fleet planned 2/3, fleet used 4/7.
func SampleDB() DB {
	return DB{
		Duration: 24,
		StepSecs: 86400,
		Agents: []Agent{
			{ID: 10, Spec: ":agents:NullRegion", Prototype: "World", EnterTime: 0, Lifetime: -1},
			{ID: 11, Spec: ":agents:NullInst", Prototype: "Operator", EnterTime: 0, Lifetime: -1},
			{ID: SampleEnrichment, Spec: ":flexicamore:FlexibleEnrichment", Prototype: "EnrichmentFacility", EnterTime: 1, Lifetime: -1},
			{ID: SampleReactor1, Spec: ":cycamore:Reactor", Prototype: "Reactor1", EnterTime: 0, Lifetime: -1},
			{ID: SampleReactor2, Spec: ":cycamore:Reactor", Prototype: "Reactor2", EnterTime: 2, Lifetime: 20},
			{ID: SampleHEUSink, Spec: ":cycamore:Sink", Prototype: "WeapongradeUSink", EnterTime: 0, Lifetime: -1},
			{ID: SamplePuSink, Spec: ":cycamore:Sink", Prototype: "SeparatedPuSink", EnterTime: 0, Lifetime: -1},
			{ID: SampleDepletedSink, Spec: ":cycamore:Sink", Prototype: "DepletedUSink", EnterTime: 0, Lifetime: -1},
			{ID: SampleWasteSink, Spec: ":cycamore:Sink", Prototype: "FinalWasteSink", EnterTime: 0, Lifetime: -1},
			{ID: SampleNUStorage, Spec: ":cycamore:Storage", Prototype: "NaturalUStorage", EnterTime: 0, Lifetime: -1},
			{ID: SampleFuelStorage, Spec: ":cycamore:Storage", Prototype: "FreshFuelStorage", EnterTime: 0, Lifetime: -1},
		},
		Transactions: []Transaction{
			{ID: 1, Time: 1, Sender: SampleNUStorage, Receiver: SampleEnrichment, Resource: 100},
			{ID: 2, Time: 2, Sender: SampleNUStorage, Receiver: SampleEnrichment, Resource: 101},
			{ID: 3, Time: 3, Sender: SampleEnrichment, Receiver: SampleHEUSink, Resource: 102},
			{ID: 4, Time: 4, Sender: SampleEnrichment, Receiver: SampleDepletedSink, Resource: 103},
			{ID: 5, Time: 5, Sender: SampleFuelStorage, Receiver: SampleReactor1, Resource: 104},
			{ID: 6, Time: 6, Sender: SampleFuelStorage, Receiver: SampleReactor2, Resource: 105},
			{ID: 7, Time: 8, Sender: SampleReactor1, Receiver: SampleWasteSink, Resource: 106},
			{ID: 8, Time: 9, Sender: SampleReactor1, Receiver: SamplePuSink, Resource: 107},
		},
		Resources: []Resource{
			{ID: 100, Qual: 1, Quantity: 1000},
			{ID: 101, Qual: 1, Quantity: 500},
			{ID: 102, Qual: 2, Quantity: 12.5},
			{ID: 103, Qual: 3, Quantity: 950},
			{ID: 104, Qual: 4, Quantity: 80},
			{ID: 105, Qual: 4, Quantity: 60},
			{ID: 106, Qual: 5, Quantity: 70},
			{ID: 107, Qual: 6, Quantity: 2.5},
		},
		Compositions: []Composition{
			{Qual: 2, Nuc: 922350000, Frac: 0.9},
			{Qual: 2, Nuc: 922380000, Frac: 0.1},
			// Fractions sum to 0.999: consumers must re-normalize.
			{Qual: 5, Nuc: 551370000, Frac: 0.04},
			{Qual: 5, Nuc: 922380000, Frac: 0.9},
			{Qual: 5, Nuc: 942390000, Frac: 0.059},
		},
		Feeds: []Feed{
			{Agent: SampleEnrichment, Time: 2, Value: 600, Units: "NaturalU"},
			{Agent: SampleEnrichment, Time: 3, Value: 400, Units: "NaturalU"},
			{Agent: SampleEnrichment, Time: 5, Value: 250, Units: "RecycledU"},
		},
		SWUUsed: []SWUPoint{
			{Agent: SampleEnrichment, Time: 2, Value: 30},
			{Agent: SampleEnrichment, Time: 3, Value: 45.5},
			{Agent: SampleEnrichment, Time: 5, Value: 24.5},
		},
		Enrichments: []Enrichment{
			{Agent: SampleEnrichment, Times: []float64{0, 10}, Vals: []float64{100, 50}},
		},
		Reactors: []Reactor{
			{Agent: SampleReactor1, CycleTime: 10, RefuelTime: 5},
			{Agent: SampleReactor2, CycleTime: 10, RefuelTime: 5},
		},
		Events: []Event{
			{Agent: SampleReactor1, Time: 0, Kind: "CYCLE_START"},
			{Agent: SampleReactor1, Time: 10, Kind: "CYCLE_END"},
			{Agent: SampleReactor1, Time: 20, Kind: "CYCLE_START"},
			{Agent: SampleReactor2, Time: 2, Kind: "CYCLE_START"},
			{Agent: SampleReactor2, Time: 12, Kind: "CYCLE_END"},
			{Agent: SampleReactor2, Time: 17, Kind: "CYCLE_START"},
		},
	}
}

// WriteRuns materializes n copies of d in dir, named with prefix and a
// zero-padded index, and returns the paths in name order.
func WriteRuns(t *testing.T, d DB, dir, prefix string, n int) []string {
	t.Helper()
	paths := make([]string, 0, n)
	for i := 0; i < n; i++ {
		path := filepath.Join(dir, fmt.Sprintf("%s%03d.sqlite", prefix, i))
		d.Write(t, path)
		paths = append(paths, path)
	}
	return paths
}

// TestLogger returns a logger configured for test output (warns only).
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}
