package simdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/fuelcycle/cyclana/internal/series"
)

// NucCs137 is the nuclide id of Cs-137 in ZZZAAAIIII form
// (Z=55, A=137, ground state).
const NucCs137 = 551370000

// Transfer is one resource movement: the timestep it happened on and the
// mass moved. A Transfer with Time == -1 is a total over many movements.
type Transfer struct {
	Time int64
	Mass float64
}

// MaterialTransfers lists every transaction from sender to receiver joined
// with the mass of the resource it moved, ordered by time then transaction
// id so reruns see identical row order. Either side may be AllAgents to
// leave that side unfiltered.
func (a *Analyzer) MaterialTransfers(ctx context.Context, sender, receiver AgentRef) ([]Transfer, error) {
	senderID, err := a.Resolve(sender)
	if err != nil {
		return nil, err
	}
	receiverID, err := a.Resolve(receiver)
	if err != nil {
		return nil, err
	}

	q := `SELECT t.Time, r.Quantity
		FROM Transactions AS t
		JOIN Resources AS r ON r.ResourceId = t.ResourceId`
	var conds []string
	var args []any
	if senderID != wildcardID {
		conds = append(conds, "t.SenderId = ?")
		args = append(args, senderID)
	}
	if receiverID != wildcardID {
		conds = append(conds, "t.ReceiverId = ?")
		args = append(args, receiverID)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY t.Time, t.TransactionId"

	rows, err := a.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("simdb: query transfers %s -> %s in %s: %w", sender, receiver, a.path, err)
	}
	defer rows.Close()

	var transfers []Transfer
	for rows.Next() {
		var tr Transfer
		if err := rows.Scan(&tr.Time, &tr.Mass); err != nil {
			return nil, fmt.Errorf("simdb: scan transfer: %w", err)
		}
		transfers = append(transfers, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("simdb: iterate transfers: %w", err)
	}
	return transfers, nil
}

// MaterialTransferTotal sums every matching transfer into a single record
// with Time == -1.
func (a *Analyzer) MaterialTransferTotal(ctx context.Context, sender, receiver AgentRef) (Transfer, error) {
	transfers, err := a.MaterialTransfers(ctx, sender, receiver)
	if err != nil {
		return Transfer{}, err
	}
	total := Transfer{Time: -1}
	for _, tr := range transfers {
		total.Mass += tr.Mass
	}
	return total, nil
}

// EnrichmentFeeds sums the feed stream of one enrichment agent per feed
// label. Agents that never enriched yield an empty map.
func (a *Analyzer) EnrichmentFeeds(ctx context.Context, agent AgentRef) (map[string]float64, error) {
	id, err := a.Resolve(agent)
	if err != nil {
		return nil, err
	}
	rows, err := a.db.QueryContext(ctx,
		`SELECT Value, Units FROM TimeSeriesEnrichmentFeed WHERE AgentId = ? ORDER BY Time, Units`, id)
	if err != nil {
		return nil, fmt.Errorf("simdb: query enrichment feeds of agent %d in %s: %w", id, a.path, err)
	}
	defer rows.Close()

	feeds := make(map[string]float64)
	for rows.Next() {
		var v float64
		var units string
		if err := rows.Scan(&v, &units); err != nil {
			return nil, fmt.Errorf("simdb: scan enrichment feed: %w", err)
		}
		feeds[units] += v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("simdb: iterate enrichment feeds: %w", err)
	}
	return feeds, nil
}

// SWUSampled returns the separative capacity the enrichment agent was
// deployed with: the last entry of its capacity curve, annualized from
// per-timestep SWU using the wall-clock length of one timestep.
func (a *Analyzer) SWUSampled(ctx context.Context, agent AgentRef) (float64, error) {
	id, err := a.Resolve(agent)
	if err != nil {
		return 0, err
	}

	var stepSecs float64
	if err := a.db.QueryRowContext(ctx, `SELECT DurationSecs FROM TimeStepDur`).Scan(&stepSecs); err != nil {
		return 0, fmt.Errorf("simdb: read timestep length from %s: %w", a.path, err)
	}

	_, vals, err := a.capacityCurve(ctx, id)
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return 0, fmt.Errorf("simdb: agent %d in %s has an empty capacity curve", id, a.path)
	}
	return vals[len(vals)-1] / stepSecs * 86400 * 365, nil
}

// SWUAvailable reconstructs the dense per-timestep separative capacity of
// one enrichment agent over its deployment, in absolute simulation time.
func (a *Analyzer) SWUAvailable(ctx context.Context, agent AgentRef) ([]series.Point, error) {
	ag, err := a.Agent(agent)
	if err != nil {
		return nil, err
	}
	times, vals, err := a.capacityCurve(ctx, ag.ID)
	if err != nil {
		return nil, err
	}
	if len(times) != len(vals) {
		return nil, fmt.Errorf("simdb: capacity curve of agent %d in %s has %d times but %d values",
			ag.ID, a.path, len(times), len(vals))
	}
	frames := make([]series.Keyframe, len(times))
	for i := range frames {
		frames[i] = series.Keyframe{Time: int64(times[i]), Value: vals[i]}
	}
	return series.Reconstruct(frames, ag.EnterTime, a.duration), nil
}

// SWUAvailableTotal sums the reconstructed capacity curve over the run.
func (a *Analyzer) SWUAvailableTotal(ctx context.Context, agent AgentRef) (float64, error) {
	pts, err := a.SWUAvailable(ctx, agent)
	if err != nil {
		return 0, err
	}
	return series.Sum(pts), nil
}

func (a *Analyzer) capacityCurve(ctx context.Context, id int64) (times, vals []float64, err error) {
	var timesRaw, valsRaw string
	err = a.db.QueryRowContext(ctx,
		`SELECT swu_capacity_times, swu_capacity_vals
		FROM AgentState_flexicamore_FlexibleEnrichmentInfo WHERE AgentId = ?`, id).
		Scan(&timesRaw, &valsRaw)
	if err != nil {
		return nil, nil, fmt.Errorf("simdb: read capacity curve of agent %d from %s: %w", id, a.path, err)
	}
	if times, err = parseItemVector(timesRaw); err != nil {
		return nil, nil, fmt.Errorf("simdb: capacity change times of agent %d: %w", id, err)
	}
	if vals, err = parseItemVector(valsRaw); err != nil {
		return nil, nil, fmt.Errorf("simdb: capacity values of agent %d: %w", id, err)
	}
	return times, vals, nil
}

// SWUUsed returns the separative work the agent actually performed, one
// point per timestep it enriched on.
func (a *Analyzer) SWUUsed(ctx context.Context, agent AgentRef) ([]series.Point, error) {
	id, err := a.Resolve(agent)
	if err != nil {
		return nil, err
	}
	rows, err := a.db.QueryContext(ctx,
		`SELECT Time, Value FROM TimeSeriesEnrichmentSWU WHERE AgentId = ? ORDER BY Time`, id)
	if err != nil {
		return nil, fmt.Errorf("simdb: query used SWU of agent %d in %s: %w", id, a.path, err)
	}
	defer rows.Close()

	var pts []series.Point
	for rows.Next() {
		var p series.Point
		if err := rows.Scan(&p.Time, &p.Value); err != nil {
			return nil, fmt.Errorf("simdb: scan used SWU: %w", err)
		}
		pts = append(pts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("simdb: iterate used SWU: %w", err)
	}
	return pts, nil
}

// SWUUsedTotal sums the used separative work over the run.
func (a *Analyzer) SWUUsedTotal(ctx context.Context, agent AgentRef) (float64, error) {
	pts, err := a.SWUUsed(ctx, agent)
	if err != nil {
		return 0, err
	}
	return series.Sum(pts), nil
}

// NuclideMass computes the mass of one nuclide inside the single resource
// the agent received. Mass fractions are re-normalized by their sum:
// recorded fractions accumulate floating-point drift and need not add up to
// exactly 1.
func (a *Analyzer) NuclideMass(ctx context.Context, agent AgentRef, nuc int64) (float64, error) {
	id, err := a.Resolve(agent)
	if err != nil {
		return 0, err
	}

	var resourceID int64
	err = a.db.QueryRowContext(ctx,
		`SELECT ResourceId FROM Transactions WHERE ReceiverId = ? ORDER BY Time, TransactionId LIMIT 1`, id).
		Scan(&resourceID)
	if err != nil {
		return 0, fmt.Errorf("simdb: resource received by agent %d in %s: %w", id, a.path, err)
	}

	var qualID int64
	var quantity float64
	err = a.db.QueryRowContext(ctx,
		`SELECT QualId, Quantity FROM Resources WHERE ResourceId = ?`, resourceID).
		Scan(&qualID, &quantity)
	if err != nil {
		return 0, fmt.Errorf("simdb: resource %d in %s: %w", resourceID, a.path, err)
	}

	rows, err := a.db.QueryContext(ctx,
		`SELECT NucId, MassFrac FROM Compositions WHERE QualId = ?`, qualID)
	if err != nil {
		return 0, fmt.Errorf("simdb: query composition %d in %s: %w", qualID, a.path, err)
	}
	defer rows.Close()

	var frac, sum float64
	found := false
	for rows.Next() {
		var nucID int64
		var f float64
		if err := rows.Scan(&nucID, &f); err != nil {
			return 0, fmt.Errorf("simdb: scan composition entry: %w", err)
		}
		sum += f
		if nucID == nuc {
			frac = f
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("simdb: iterate composition %d: %w", qualID, err)
	}
	if !found {
		return 0, fmt.Errorf("%w: nuclide %d absent from composition %d of agent %d in %s",
			ErrMissingNuclide, nuc, qualID, id, a.path)
	}
	return quantity * frac / sum, nil
}

// Cs137Mass is NuclideMass for Cs-137.
func (a *Analyzer) Cs137Mass(ctx context.Context, agent AgentRef) (float64, error) {
	return a.NuclideMass(ctx, agent, NucCs137)
}
