package batch

import (
	"context"
	"sort"
	"strings"

	"github.com/fuelcycle/cyclana/internal/config"
	"github.com/fuelcycle/cyclana/internal/simdb"
	"github.com/fuelcycle/cyclana/internal/table"
)

// Columns of the aggregated table, in table order. Enrichment feed columns
// are inserted between colSWUUsed and colNUToEnrichment, one per feed
// commodity, sorted by label.
const (
	colTotalHEU     = "total_heu"
	colTotalPu      = "total_pu"
	colSWUSampled   = "swu_sampled"
	colSWUAvailable = "swu_available"
	colSWUUsed      = "swu_used"

	colNUToEnrichment = "NU_to_enrichment"
	colNUToReactors   = "NU_to_reactors"
	colCFPlanned      = "capacity_factor_planned"
	colCFUsed         = "capacity_factor_used"
	colDepletedUMass  = "dep_U_mass"
	colCs137Mass      = "cs137_mass"

	feedColumnPrefix = "enrichment_feed_"
)

// ExtractRow derives the aggregated row of one output database. The cell
// order matches the final table order so that unsplit ensembles need no
// reordering at all.
func ExtractRow(ctx context.Context, an *simdb.Analyzer, fac config.Facilities) ([]table.Cell, error) {
	row := make([]table.Cell, 0, 16)

	heu, err := an.MaterialTransferTotal(ctx, simdb.AllAgents(), simdb.ByName(fac.HEUSink))
	if err != nil {
		return nil, err
	}
	row = append(row, table.Cell{Col: colTotalHEU, Val: heu.Mass})

	pu, err := an.MaterialTransferTotal(ctx, simdb.AllAgents(), simdb.ByName(fac.PuSink))
	if err != nil {
		return nil, err
	}
	row = append(row, table.Cell{Col: colTotalPu, Val: pu.Mass})

	sampled, err := an.SWUSampled(ctx, simdb.ByName(fac.Enrichment))
	if err != nil {
		return nil, err
	}
	row = append(row, table.Cell{Col: colSWUSampled, Val: sampled})

	available, err := an.SWUAvailableTotal(ctx, simdb.ByName(fac.Enrichment))
	if err != nil {
		return nil, err
	}
	row = append(row, table.Cell{Col: colSWUAvailable, Val: available})

	used, err := an.SWUUsedTotal(ctx, simdb.ByName(fac.Enrichment))
	if err != nil {
		return nil, err
	}
	row = append(row, table.Cell{Col: colSWUUsed, Val: used})

	feeds, err := an.EnrichmentFeeds(ctx, simdb.ByName(fac.Enrichment))
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(feeds))
	for label := range feeds {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		row = append(row, table.Cell{Col: feedColumnPrefix + label, Val: feeds[label]})
	}

	toEnrichment, err := an.MaterialTransferTotal(ctx, simdb.ByName(fac.NaturalUStorage), simdb.ByName(fac.Enrichment))
	if err != nil {
		return nil, err
	}
	row = append(row, table.Cell{Col: colNUToEnrichment, Val: toEnrichment.Mass})

	toReactors, err := an.MaterialTransferTotal(ctx, simdb.ByName(fac.FreshFuelStorage), simdb.AllAgents())
	if err != nil {
		return nil, err
	}
	row = append(row, table.Cell{Col: colNUToReactors, Val: toReactors.Mass})

	refs := make([]simdb.AgentRef, len(fac.Reactors))
	for i, name := range fac.Reactors {
		refs[i] = simdb.ByName(name)
	}
	fleet, err := an.AllReactorOperations(ctx, refs)
	if err != nil {
		return nil, err
	}
	row = append(row,
		table.Cell{Col: colCFPlanned, Val: fleet.Total.PlannedFactor},
		table.Cell{Col: colCFUsed, Val: fleet.Total.UsedFactor},
	)

	depU, err := an.MaterialTransferTotal(ctx, simdb.AllAgents(), simdb.ByName(fac.DepletedUSink))
	if err != nil {
		return nil, err
	}
	row = append(row, table.Cell{Col: colDepletedUMass, Val: depU.Mass})

	cs137, err := an.Cs137Mass(ctx, simdb.ByName(fac.WasteSink))
	if err != nil {
		return nil, err
	}
	row = append(row, table.Cell{Col: colCs137Mass, Val: cs137})

	return row, nil
}

// columnOrder arranges a merged column set into the final table order:
// leading schema columns, feed columns sorted by label, trailing schema
// columns, then any remaining columns sorted by name. Schema columns absent
// from cols are skipped, so partially populated tables still normalize.
func columnOrder(cols []string) []string {
	head := []string{colTotalHEU, colTotalPu, colSWUSampled, colSWUAvailable, colSWUUsed}
	tail := []string{colNUToEnrichment, colNUToReactors, colCFPlanned, colCFUsed, colDepletedUMass, colCs137Mass}

	fixed := make(map[string]bool, len(head)+len(tail))
	for _, c := range head {
		fixed[c] = true
	}
	for _, c := range tail {
		fixed[c] = true
	}

	present := make(map[string]bool, len(cols))
	var feeds, extras []string
	for _, c := range cols {
		present[c] = true
		switch {
		case fixed[c]:
		case strings.HasPrefix(c, feedColumnPrefix):
			feeds = append(feeds, c)
		default:
			extras = append(extras, c)
		}
	}
	sort.Strings(feeds)
	sort.Strings(extras)

	out := make([]string, 0, len(cols))
	for _, c := range head {
		if present[c] {
			out = append(out, c)
		}
	}
	out = append(out, feeds...)
	for _, c := range tail {
		if present[c] {
			out = append(out, c)
		}
	}
	return append(out, extras...)
}
