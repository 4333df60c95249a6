// Package cycles turns reactor start/stop event streams into capacity
// factors, both as configured and as actually realized over a run.
package cycles

import (
	"errors"
	"fmt"
)

// ErrInsufficientEvents is returned when a reactor logged too few cycle
// events for its realized capacity factor to be well defined.
var ErrInsufficientEvents = errors.New("cycles: insufficient cycle events")

// Kind distinguishes the two reactor cycle events.
type Kind uint8

const (
	CycleStart Kind = iota
	CycleEnd
)

func (k Kind) String() string {
	if k == CycleStart {
		return "CYCLE_START"
	}
	return "CYCLE_END"
}

// Event is one reactor cycle transition at an absolute timestep.
type Event struct {
	Time int64
	Kind Kind
}

// Planned holds the as-configured cycle parameters of one reactor, in
// timesteps.
type Planned struct {
	CycleTime  int64
	RefuelTime int64
}

// Factor is the capacity factor the configuration alone implies: the share
// of each full cycle-plus-refuel period spent producing.
func (p Planned) Factor() float64 {
	return float64(p.CycleTime) / float64(p.CycleTime+p.RefuelTime)
}

// Operations is the full accounting record for one reactor over a run.
type Operations struct {
	Planned Planned

	NStart int // cycle starts logged
	NEnd   int // cycle ends logged

	// InSimTime is how long the reactor existed in the simulation: its
	// lifetime when bounded, otherwise run duration minus entry.
	InSimTime int64

	// OnlineTime and TotalCfTime are the numerator and denominator of the
	// realized capacity factor: timesteps spent producing, and the
	// accounting window they are measured against.
	OnlineTime  int64
	TotalCfTime int64

	PlannedFactor float64
	UsedFactor    float64
}

// Account derives the realized capacity factor of one reactor from its
// ordered event stream.
//
// Only completed cycles count as online time. The accounting window depends
// on how the run ended:
//
//   - the last event is a start: the cycle was cut off by run end, so the
//     window closes at that start;
//   - the last event is an end and more than a refuel period remained: the
//     reactor idled afterwards, so the window runs to run end;
//   - the last event is an end with at most a refuel period remaining: the
//     run ended mid-refuel, so neither that refuel nor the cycle before it
//     is representative and the window closes one event earlier.
//
// Fewer than three events leave no completed cycle to measure and yield
// ErrInsufficientEvents.
func Account(events []Event, planned Planned, duration, inSimTime int64) (Operations, error) {
	if len(events) < 3 {
		return Operations{}, fmt.Errorf("%w: got %d, need at least 3", ErrInsufficientEvents, len(events))
	}

	ops := Operations{
		Planned:       planned,
		InSimTime:     inSimTime,
		PlannedFactor: planned.Factor(),
	}
	for _, ev := range events {
		if ev.Kind == CycleStart {
			ops.NStart++
		} else {
			ops.NEnd++
		}
	}

	first := events[0]
	last := events[len(events)-1]
	switch {
	case last.Kind == CycleStart:
		ops.OnlineTime = int64(ops.NEnd) * planned.CycleTime
		ops.TotalCfTime = last.Time - first.Time
	case duration-last.Time > planned.RefuelTime:
		ops.OnlineTime = int64(ops.NEnd) * planned.CycleTime
		ops.TotalCfTime = duration - first.Time
	default:
		ops.OnlineTime = int64(ops.NEnd-1) * planned.CycleTime
		ops.TotalCfTime = events[len(events)-2].Time - first.Time
	}
	ops.UsedFactor = float64(ops.OnlineTime) / float64(ops.TotalCfTime)
	return ops, nil
}

// Fleet is the combined accounting record over several reactors.
type Fleet struct {
	NStart    int
	NEnd      int
	InSimTime int64

	PlannedFactor float64
	UsedFactor    float64
}

// AggregateFleet combines per-reactor records into one fleet record. Counts
// and in-simulation times add; planned factors are weighted by each
// reactor's full in-simulation time while used factors are weighted by its
// accounting window. The two denominators differ on purpose: planned output
// is promised for as long as a reactor exists, realized output is only
// measured where cycles were observed.
func AggregateFleet(ops []Operations) Fleet {
	var fleet Fleet
	var plannedWeighted, usedWeighted float64
	var cfTime int64
	for _, op := range ops {
		fleet.NStart += op.NStart
		fleet.NEnd += op.NEnd
		fleet.InSimTime += op.InSimTime
		cfTime += op.TotalCfTime
		plannedWeighted += op.PlannedFactor * float64(op.InSimTime)
		usedWeighted += op.UsedFactor * float64(op.TotalCfTime)
	}
	fleet.PlannedFactor = plannedWeighted / float64(fleet.InSimTime)
	fleet.UsedFactor = usedWeighted / float64(cfTime)
	return fleet
}
