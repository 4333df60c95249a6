// Package simdb extracts derived quantities from a single simulation output
// database: material transfer masses, separative work series, reactor cycle
// accounting, and per-nuclide masses. An Analyzer owns one read-only SQLite
// handle; every operation is a pure read, and any failure is terminal for
// the file being analyzed.
package simdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // sqlite driver
)

// wildcardID is the resolved form of AllAgents. Query builders treat it as
// "leave this side of the filter open".
const wildcardID int64 = -1

// Agent is one registry entry from the agent-entry table. Lifetime is -1
// when the agent lives to run end.
type Agent struct {
	ID        int64
	Name      string
	Spec      string
	EnterTime int64
	Lifetime  int64
}

// InSimTime is the number of timesteps the agent existed in a run of the
// given duration.
func (a Agent) InSimTime(duration int64) int64 {
	if a.Lifetime == -1 {
		return duration - a.EnterTime
	}
	return a.Lifetime
}

// Analyzer reads one simulation output database. It is safe for sequential
// use only; batch workers open one Analyzer per file instead of sharing.
type Analyzer struct {
	path     string
	db       *sql.DB
	duration int64

	agents    map[int64]Agent
	idsByName map[string]int64
}

// Open validates that path exists, opens it read-only, and loads the run
// duration and agent registry. The caller owns the returned Analyzer and
// must release it with Close exactly once.
func Open(ctx context.Context, path string) (*Analyzer, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileMissing, path)
		}
		return nil, fmt.Errorf("simdb: stat %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("simdb: open %s: %w", path, err)
	}
	// One file is read sequentially; a single connection keeps the
	// per-worker footprint flat.
	db.SetMaxOpenConns(1)

	a := &Analyzer{
		path:      path,
		db:        db,
		agents:    make(map[int64]Agent),
		idsByName: make(map[string]int64),
	}
	if err := a.load(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

func (a *Analyzer) load(ctx context.Context) error {
	if err := a.db.QueryRowContext(ctx, `SELECT Duration FROM Info`).Scan(&a.duration); err != nil {
		return fmt.Errorf("simdb: read run duration from %s: %w", a.path, err)
	}

	rows, err := a.db.QueryContext(ctx,
		`SELECT AgentId, Spec, Prototype, EnterTime, Lifetime FROM AgentEntry`)
	if err != nil {
		return fmt.Errorf("simdb: query agent entries in %s: %w", a.path, err)
	}
	defer rows.Close()

	for rows.Next() {
		var ag Agent
		var spec string
		if err := rows.Scan(&ag.ID, &spec, &ag.Name, &ag.EnterTime, &ag.Lifetime); err != nil {
			return fmt.Errorf("simdb: scan agent entry: %w", err)
		}
		ag.Spec = stripNamespace(spec)
		a.agents[ag.ID] = ag
		// Prototypes deployed more than once: the last entry wins the name
		// lookup.
		a.idsByName[ag.Name] = ag.ID
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("simdb: iterate agent entries: %w", err)
	}
	return nil
}

// stripNamespace reduces an archetype path like ":cycamore:Reactor" to its
// final component.
func stripNamespace(spec string) string {
	if i := strings.LastIndexByte(spec, ':'); i >= 0 {
		return spec[i+1:]
	}
	return spec
}

// Close releases the database handle. A failed release is reported, never
// swallowed.
func (a *Analyzer) Close() error {
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("simdb: close %s: %w", a.path, err)
	}
	return nil
}

// Path returns the database path the Analyzer was opened with.
func (a *Analyzer) Path() string { return a.path }

// Duration returns the run length in timesteps.
func (a *Analyzer) Duration() int64 { return a.duration }

// Names returns every registered prototype name, sorted.
func (a *Analyzer) Names() []string {
	names := make([]string, 0, len(a.idsByName))
	for name := range a.idsByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve maps ref to a concrete agent id, or to the wildcard for
// AllAgents. Names must be registered; ids pass through as given.
func (a *Analyzer) Resolve(ref AgentRef) (int64, error) {
	switch ref.kind {
	case refID:
		return ref.id, nil
	case refName:
		id, ok := a.idsByName[ref.name]
		if !ok {
			return 0, fmt.Errorf("%w: %q not in %s (known: %s)",
				ErrUnknownAgent, ref.name, a.path, strings.Join(a.Names(), ", "))
		}
		return id, nil
	case refAll:
		return wildcardID, nil
	default:
		return 0, fmt.Errorf("%w: use ByID, ByName, or AllAgents", ErrInvalidAgentRef)
	}
}

// Agent resolves ref to its full registry entry. The wildcard is rejected:
// per-agent operations need one concrete agent.
func (a *Analyzer) Agent(ref AgentRef) (Agent, error) {
	if ref.kind == refAll {
		return Agent{}, fmt.Errorf("%w: a concrete agent is required, not the wildcard", ErrInvalidAgentRef)
	}
	id, err := a.Resolve(ref)
	if err != nil {
		return Agent{}, err
	}
	ag, ok := a.agents[id]
	if !ok {
		return Agent{}, fmt.Errorf("%w: id %d not in %s", ErrUnknownAgent, id, a.path)
	}
	return ag, nil
}
