package batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelcycle/cyclana/internal/config"
	"github.com/fuelcycle/cyclana/internal/simdb"
	"github.com/fuelcycle/cyclana/internal/testutil"
)

// sampleFacilities maps the facility roles onto the prototypes used by
// testutil.SampleDB.
func sampleFacilities() config.Facilities {
	return config.Facilities{
		HEUSink:          "WeapongradeUSink",
		PuSink:           "SeparatedPuSink",
		Enrichment:       "EnrichmentFacility",
		NaturalUStorage:  "NaturalUStorage",
		FreshFuelStorage: "FreshFuelStorage",
		DepletedUSink:    "DepletedUSink",
		WasteSink:        "FinalWasteSink",
		Reactors:         []string{"Reactor1", "Reactor2"},
	}
}

// finalColumns spells out the expected table order with literals so that a
// typo in the column constants cannot hide.
func finalColumns() []string {
	return []string{
		"total_heu", "total_pu", "swu_sampled", "swu_available", "swu_used",
		"enrichment_feed_NaturalU", "enrichment_feed_RecycledU",
		"NU_to_enrichment", "NU_to_reactors",
		"capacity_factor_planned", "capacity_factor_used",
		"dep_U_mass", "cs137_mass",
	}
}

func TestExtractRow(t *testing.T) {
	path := testutil.SampleDB().Create(t)
	an, err := simdb.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, an.Close()) })

	row, err := ExtractRow(context.Background(), an, sampleFacilities())
	require.NoError(t, err)

	cols := make([]string, len(row))
	vals := make(map[string]float64, len(row))
	for i, c := range row {
		cols[i] = c.Col
		vals[c.Col] = c.Val
	}
	assert.Equal(t, finalColumns(), cols)

	assert.InDelta(t, 12.5, vals["total_heu"], 1e-9)
	assert.InDelta(t, 2.5, vals["total_pu"], 1e-9)
	assert.InDelta(t, 18250, vals["swu_sampled"], 1e-6)
	assert.InDelta(t, 1650, vals["swu_available"], 1e-9)
	assert.InDelta(t, 100, vals["swu_used"], 1e-9)
	assert.InDelta(t, 1000, vals["enrichment_feed_NaturalU"], 1e-9)
	assert.InDelta(t, 250, vals["enrichment_feed_RecycledU"], 1e-9)
	assert.InDelta(t, 1500, vals["NU_to_enrichment"], 1e-9)
	assert.InDelta(t, 140, vals["NU_to_reactors"], 1e-9)
	assert.InDelta(t, 2.0/3.0, vals["capacity_factor_planned"], 1e-9)
	assert.InDelta(t, 4.0/7.0, vals["capacity_factor_used"], 1e-9)
	assert.InDelta(t, 950, vals["dep_U_mass"], 1e-9)
	assert.InDelta(t, 70*0.04/0.999, vals["cs137_mass"], 1e-9)
}

func TestExtractRowUnknownFacility(t *testing.T) {
	path := testutil.SampleDB().Create(t)
	an, err := simdb.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, an.Close()) })

	fac := sampleFacilities()
	fac.Enrichment = "NoSuchFacility"

	_, err = ExtractRow(context.Background(), an, fac)
	require.Error(t, err)
	assert.ErrorIs(t, err, simdb.ErrUnknownAgent)
}

func TestColumnOrder(t *testing.T) {
	in := []string{
		"cs137_mass", "enrichment_feed_RecycledU", "total_pu", "swu_used",
		"NU_to_reactors", "enrichment_feed_NaturalU", "total_heu",
		"capacity_factor_used", "swu_sampled", "NU_to_enrichment",
		"dep_U_mass", "capacity_factor_planned", "swu_available",
	}
	assert.Equal(t, finalColumns(), columnOrder(in))
}

func TestColumnOrderPartial(t *testing.T) {
	got := columnOrder([]string{"zzz_custom", "swu_used", "total_heu", "enrichment_feed_X"})
	assert.Equal(t, []string{"total_heu", "swu_used", "enrichment_feed_X", "zzz_custom"}, got)
}
