package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvIntValid(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	if v := envInt("TEST_INT", 0); v != 42 {
		t.Fatalf("expected 42, got %d", v)
	}
}

func TestEnvIntFallback(t *testing.T) {
	// TEST_INT_MISSING is not set.
	if v := envInt("TEST_INT_MISSING", 99); v != 99 {
		t.Fatalf("expected fallback 99, got %d", v)
	}
	t.Setenv("TEST_INT_BAD", "abc")
	if v := envInt("TEST_INT_BAD", 7); v != 7 {
		t.Fatalf("expected fallback 7, got %d", v)
	}
}

func TestEnvBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	if !envBool("TEST_BOOL", false) {
		t.Fatal("expected true")
	}
	t.Setenv("TEST_BOOL_BAD", "yep")
	if envBool("TEST_BOOL_BAD", false) {
		t.Fatal("expected fallback false")
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"CYCLANA_DATA_PATH", "CYCLANA_JOB_FILTER", "CYCLANA_MAX_FILES",
		"CYCLANA_WORKERS", "CYCLANA_FORCE_REFRESH", "CYCLANA_CACHE_PATH",
		"CYCLANA_TABLE_KEY", "CYCLANA_CSV_PATH", "CYCLANA_FACILITIES",
		"CYCLANA_OTEL_INSECURE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.DataPath)
	assert.Empty(t, cfg.JobFilter)
	assert.Zero(t, cfg.MaxFiles)
	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.False(t, cfg.ForceRefresh)
	assert.Equal(t, "runs", cfg.TableKey)
	assert.Equal(t, DefaultFacilities(), cfg.Facilities)
}

func TestLoadFromEnv(t *testing.T) {
	facPath := filepath.Join(t.TempDir(), "facilities.yaml")
	require.NoError(t, os.WriteFile(facPath, []byte("heu_sink: CustomSink\nreactors: [R1]\n"), 0o600))

	t.Setenv("CYCLANA_DATA_PATH", "/data/runs")
	t.Setenv("CYCLANA_JOB_FILTER", "job42")
	t.Setenv("CYCLANA_MAX_FILES", "100")
	t.Setenv("CYCLANA_WORKERS", "4")
	t.Setenv("CYCLANA_FORCE_REFRESH", "true")
	t.Setenv("CYCLANA_CACHE_PATH", "/tmp/results.bin")
	t.Setenv("CYCLANA_TABLE_KEY", "batch7")
	t.Setenv("CYCLANA_FACILITIES", facPath)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/runs", cfg.DataPath)
	assert.Equal(t, "job42", cfg.JobFilter)
	assert.Equal(t, 100, cfg.MaxFiles)
	assert.Equal(t, 4, cfg.Workers)
	assert.True(t, cfg.ForceRefresh)
	assert.Equal(t, "/tmp/results.bin", cfg.CachePath)
	assert.Equal(t, "batch7", cfg.TableKey)

	// YAML overrides apply on top of the defaults.
	assert.Equal(t, "CustomSink", cfg.Facilities.HEUSink)
	assert.Equal(t, []string{"R1"}, cfg.Facilities.Reactors)
	assert.Equal(t, "EnrichmentFacility", cfg.Facilities.Enrichment)
}

func TestLoadRejectsInvalidWorkers(t *testing.T) {
	t.Setenv("CYCLANA_WORKERS", "-2")

	_, err := Load()
	require.Error(t, err)
	assert.ErrorContains(t, err, "WORKERS")
}

func TestValidate(t *testing.T) {
	valid := Config{
		DataPath:   "/data",
		Workers:    1,
		TableKey:   "runs",
		Facilities: DefaultFacilities(),
	}
	require.NoError(t, valid.Validate())

	noKey := valid
	noKey.TableKey = ""
	assert.Error(t, noKey.Validate())

	negFiles := valid
	negFiles.MaxFiles = -1
	assert.Error(t, negFiles.Validate())
}

func TestLoadFacilitiesMissingFile(t *testing.T) {
	_, err := LoadFacilities(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFacilitiesBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "facilities.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n\t- bad"), 0o600))

	_, err := LoadFacilities(path)
	assert.Error(t, err)
}

func TestFacilitiesValidate(t *testing.T) {
	require.NoError(t, DefaultFacilities().Validate())

	noSink := DefaultFacilities()
	noSink.WasteSink = ""
	assert.ErrorContains(t, noSink.Validate(), "waste_sink")

	noReactors := DefaultFacilities()
	noReactors.Reactors = nil
	assert.ErrorContains(t, noReactors.Validate(), "reactor")

	blankReactor := DefaultFacilities()
	blankReactor.Reactors = []string{"Khushab1", ""}
	assert.Error(t, blankReactor.Validate())
}
