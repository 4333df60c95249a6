package simdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseItemVector(t *testing.T) {
	raw := `<val><count>3</count><item_version>0</item_version>` +
		`<item>0</item><item>12.5</item><item>-3e2</item></val>`

	got, err := parseItemVector(raw)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 12.5, -300}, got)
}

func TestParseItemVectorSkipsBookkeepingElements(t *testing.T) {
	raw := `<swu_capacity_vals><count>2</count><item_version>0</item_version>` +
		`<item> 100 </item><item>50</item></swu_capacity_vals>`

	got, err := parseItemVector(raw)
	require.NoError(t, err)
	assert.Equal(t, []float64{100, 50}, got)
}

func TestParseItemVectorEmpty(t *testing.T) {
	got, err := parseItemVector("")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = parseItemVector(`<val><count>0</count></val>`)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseItemVectorRejectsGarbage(t *testing.T) {
	_, err := parseItemVector(`<val><item>not-a-number</item></val>`)
	require.Error(t, err)
	assert.ErrorContains(t, err, "not-a-number")

	_, err = parseItemVector(`<val><item>1`)
	assert.Error(t, err)
}
