// Package series reconstructs dense per-timestep series from the sparse
// "value changed at time T" keyframe logs found in simulation output
// databases. All functions are pure and deterministic.
package series

// Keyframe is one entry of a piecewise-constant curve: at Time the curve
// takes Value and holds it until the next keyframe. Time is measured in
// timesteps relative to the owning agent's entry into the simulation.
type Keyframe struct {
	Time  int64
	Value float64
}

// Point is one timestep of a reconstructed series, in absolute simulation
// time.
type Point struct {
	Time  int64
	Value float64
}

// Reconstruct expands sparse keyframes into one Point per integer timestep.
//
// For each pair of consecutive keyframes the earlier value holds on
// [prev.Time, next.Time). When the final keyframe ends before the run does,
// a synthetic terminal keyframe extends its value through run end so the
// tail of the simulation is not dropped. Every produced timestep is offset
// by enterTime to express it in absolute simulation time.
//
// The result covers [first keyframe + enterTime, duration) with no gaps.
// A nil or empty keyframe list yields nil.
func Reconstruct(frames []Keyframe, enterTime, duration int64) []Point {
	if len(frames) == 0 {
		return nil
	}

	// Extend through run end before hold-filling. The full-slice expression
	// forces the append to copy rather than grow the caller's backing array.
	last := frames[len(frames)-1]
	if last.Time+enterTime < duration {
		frames = append(frames[:len(frames):len(frames)],
			Keyframe{Time: duration - enterTime, Value: last.Value})
	}

	var out []Point
	prev := frames[0]
	for _, kf := range frames {
		for t := prev.Time; t < kf.Time; t++ {
			out = append(out, Point{Time: t + enterTime, Value: prev.Value})
		}
		prev = kf
	}
	return out
}

// Sum adds up the values of a series.
func Sum(points []Point) float64 {
	var total float64
	for _, p := range points {
		total += p.Value
	}
	return total
}
