package simdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelcycle/cyclana/internal/testutil"
)

func openSample(t *testing.T) *Analyzer {
	t.Helper()
	a, err := Open(context.Background(), testutil.SampleDB().Create(t))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, a.Close()) })
	return a
}

func TestOpenMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.sqlite")

	_, err := Open(context.Background(), path)
	require.ErrorIs(t, err, ErrFileMissing)
	assert.ErrorContains(t, err, path)
}

func TestOpenLoadsRunAndRegistry(t *testing.T) {
	a := openSample(t)

	assert.Equal(t, int64(24), a.Duration())
	assert.Len(t, a.Names(), 11)
	assert.Contains(t, a.Names(), "EnrichmentFacility")
}

func TestResolve(t *testing.T) {
	a := openSample(t)

	id, err := a.Resolve(ByName("EnrichmentFacility"))
	require.NoError(t, err)
	assert.Equal(t, testutil.SampleEnrichment, id)

	// Ids pass through unchecked.
	id, err = a.Resolve(ByID(777))
	require.NoError(t, err)
	assert.Equal(t, int64(777), id)

	_, err = a.Resolve(ByName("NoSuchPrototype"))
	require.ErrorIs(t, err, ErrUnknownAgent)
	assert.ErrorContains(t, err, "known:")

	_, err = a.Resolve(AgentRef{})
	assert.ErrorIs(t, err, ErrInvalidAgentRef)
}

func TestResolveRoundTripsEveryName(t *testing.T) {
	a := openSample(t)

	for _, name := range a.Names() {
		ag, err := a.Agent(ByName(name))
		require.NoError(t, err)
		assert.Equal(t, name, ag.Name)
	}
}

func TestAgentEntryFields(t *testing.T) {
	a := openSample(t)

	ag, err := a.Agent(ByName("Reactor2"))
	require.NoError(t, err)
	assert.Equal(t, testutil.SampleReactor2, ag.ID)
	assert.Equal(t, "Reactor", ag.Spec, "namespace prefix must be stripped")
	assert.Equal(t, int64(2), ag.EnterTime)
	assert.Equal(t, int64(20), ag.Lifetime)
	assert.Equal(t, int64(20), ag.InSimTime(24))

	unbounded, err := a.Agent(ByName("Reactor1"))
	require.NoError(t, err)
	assert.Equal(t, int64(24), unbounded.InSimTime(24))

	_, err = a.Agent(ByID(9999))
	assert.ErrorIs(t, err, ErrUnknownAgent)

	_, err = a.Agent(AllAgents())
	assert.ErrorIs(t, err, ErrInvalidAgentRef)
}

func TestStripNamespace(t *testing.T) {
	assert.Equal(t, "Reactor", stripNamespace(":cycamore:Reactor"))
	assert.Equal(t, "FlexibleEnrichment", stripNamespace(":flexicamore:FlexibleEnrichment"))
	assert.Equal(t, "Plain", stripNamespace("Plain"))
}

func TestAgentRefString(t *testing.T) {
	assert.Equal(t, "agent 42", ByID(42).String())
	assert.Equal(t, `agent "Reactor1"`, ByName("Reactor1").String())
	assert.Equal(t, "all agents", AllAgents().String())
	assert.Equal(t, "invalid agent reference", AgentRef{}.String())
}
