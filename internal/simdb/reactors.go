package simdb

import (
	"context"
	"fmt"

	"github.com/fuelcycle/cyclana/internal/cycles"
)

// reactorSpec is the archetype name reactors register under, after
// namespace stripping.
const reactorSpec = "Reactor"

// PlannedCapacityFactor reads the as-configured cycle parameters of one
// reactor. Referencing an agent of any other archetype fails with
// ErrWrongAgentType.
func (a *Analyzer) PlannedCapacityFactor(ctx context.Context, agent AgentRef) (cycles.Planned, error) {
	ag, err := a.Agent(agent)
	if err != nil {
		return cycles.Planned{}, err
	}
	if ag.Spec != reactorSpec {
		return cycles.Planned{}, fmt.Errorf("%w: %s (agent %d) is a %s, want %s",
			ErrWrongAgentType, ag.Name, ag.ID, ag.Spec, reactorSpec)
	}

	var planned cycles.Planned
	err = a.db.QueryRowContext(ctx,
		`SELECT cycle_time, refuel_time FROM AgentState_cycamore_ReactorInfo WHERE AgentId = ?`, ag.ID).
		Scan(&planned.CycleTime, &planned.RefuelTime)
	if err != nil {
		return cycles.Planned{}, fmt.Errorf("simdb: read cycle parameters of %s (agent %d) from %s: %w",
			ag.Name, ag.ID, a.path, err)
	}
	return planned, nil
}

// ReactorOperations runs cycle accounting for one reactor: its event stream
// against its planned cycle parameters and deployment window.
func (a *Analyzer) ReactorOperations(ctx context.Context, agent AgentRef) (cycles.Operations, error) {
	ag, err := a.Agent(agent)
	if err != nil {
		return cycles.Operations{}, err
	}
	planned, err := a.PlannedCapacityFactor(ctx, ByID(ag.ID))
	if err != nil {
		return cycles.Operations{}, err
	}

	rows, err := a.db.QueryContext(ctx,
		`SELECT Time, Event FROM ReactorEvents
		WHERE AgentId = ? AND Event IN ('CYCLE_START', 'CYCLE_END')
		ORDER BY Time`, ag.ID)
	if err != nil {
		return cycles.Operations{}, fmt.Errorf("simdb: query cycle events of %s (agent %d) in %s: %w",
			ag.Name, ag.ID, a.path, err)
	}
	defer rows.Close()

	var events []cycles.Event
	for rows.Next() {
		var ts int64
		var kind string
		if err := rows.Scan(&ts, &kind); err != nil {
			return cycles.Operations{}, fmt.Errorf("simdb: scan cycle event: %w", err)
		}
		ev := cycles.Event{Time: ts, Kind: cycles.CycleEnd}
		if kind == "CYCLE_START" {
			ev.Kind = cycles.CycleStart
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return cycles.Operations{}, fmt.Errorf("simdb: iterate cycle events: %w", err)
	}

	ops, err := cycles.Account(events, planned, a.duration, ag.InSimTime(a.duration))
	if err != nil {
		return cycles.Operations{}, fmt.Errorf("simdb: %s (agent %d) in %s: %w", ag.Name, ag.ID, a.path, err)
	}
	return ops, nil
}

// FleetOperations pairs per-reactor accounting with the fleet aggregate.
type FleetOperations struct {
	Reactors map[int64]cycles.Operations
	Total    cycles.Fleet
}

// AllReactorOperations runs cycle accounting for every referenced reactor
// and aggregates the fleet. Weighting follows the caller's agent order, so
// a fixed fleet list gives a reproducible aggregate.
func (a *Analyzer) AllReactorOperations(ctx context.Context, agents []AgentRef) (FleetOperations, error) {
	fleet := FleetOperations{Reactors: make(map[int64]cycles.Operations, len(agents))}
	ordered := make([]cycles.Operations, 0, len(agents))
	for _, ref := range agents {
		ag, err := a.Agent(ref)
		if err != nil {
			return FleetOperations{}, err
		}
		ops, err := a.ReactorOperations(ctx, ByID(ag.ID))
		if err != nil {
			return FleetOperations{}, err
		}
		fleet.Reactors[ag.ID] = ops
		ordered = append(ordered, ops)
	}
	fleet.Total = cycles.AggregateFleet(ordered)
	return fleet, nil
}
