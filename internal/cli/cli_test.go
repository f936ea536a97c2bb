package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/ecotrack/internal/model"
)

// isolate points HOME at a temp dir and clears credentials so no remote
// provider or user config leaks into a test
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY", "OLLAMA_BASE_URL"} {
		t.Setenv(k, "")
	}
	viper.Reset()
	cfgFile = ""
	t.Cleanup(viper.Reset)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestParseFactorKey(t *testing.T) {
	key, err := parseFactorKey("walk, Transportation ,car")
	require.NoError(t, err)
	assert.Equal(t, "walk", key.Action)
	assert.Equal(t, model.CategoryTransportation, key.Category)
	assert.Equal(t, "car", key.InsteadOf)

	key, err = parseFactorKey("compost,waste")
	require.NoError(t, err)
	assert.Empty(t, key.InsteadOf)

	for _, bad := range []string{"walk", ",transportation", "a,b,c,d", "walk,"} {
		_, err := parseFactorKey(bad)
		assert.Error(t, err, bad)
	}
}

func TestLoadConfig_EnvOverridesDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("ECOTRACK_ENGINE_MIN_CONFIDENCE", "0.6")
	t.Setenv("ECOTRACK_CACHE_TTL", "15m")
	initConfig()

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, 0.6, cfg.Engine.MinConfidence)
	assert.Equal(t, "15m0s", cfg.Cache.TTL.String())
	assert.Equal(t, 4, cfg.Concurrency.Workers)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, writeDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# ecotrack configuration")

	var cfg model.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, model.DefaultConfig().LLM.Timeout, cfg.LLM.Timeout)
	assert.Equal(t, model.DefaultConfig().Cache.TTL, cfg.Cache.TTL)

	assert.Error(t, writeDefaultConfig(path), "existing file must not be overwritten")
}

func TestInterpretCommand_JSON(t *testing.T) {
	isolate(t)

	out, err := execute(t, "interpret", "--no-llm", "--json", "walked", "2km", "instead", "of", "driving")
	require.NoError(t, err)

	var got model.Interpretation
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, model.SourceRules, got.Source)
	assert.InDelta(t, 0.24, got.CO2SavedKg, 1e-9)
	require.NotNil(t, got.Parsed)
	assert.Equal(t, "walk", got.Parsed.Action)
}

func TestInterpretCommand_StdinKeepsRepeatedActivities(t *testing.T) {
	isolate(t)
	t.Cleanup(func() {
		readStdin = false
		rootCmd.SetIn(nil)
	})

	rootCmd.SetIn(strings.NewReader("walked 2km instead of driving\nrecycled 3 bottles\n# skipped\nwalked 2km instead of driving\n"))
	out, err := execute(t, "interpret", "--no-llm", "--json", "--stdin")
	require.NoError(t, err)

	var got struct {
		Records []struct {
			ID             string               `json:"id"`
			Text           string               `json:"text"`
			Interpretation model.Interpretation `json:"interpretation"`
		} `json:"records"`
		Summary struct {
			Entries int     `json:"entries"`
			TotalKg float64 `json:"total_co2_saved_kg"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Records, 3)
	assert.Equal(t, "walked 2km instead of driving", got.Records[0].Text)
	assert.Equal(t, "recycled 3 bottles", got.Records[1].Text)
	assert.Equal(t, "walked 2km instead of driving", got.Records[2].Text)
	assert.NotEqual(t, got.Records[0].ID, got.Records[2].ID)
	assert.Equal(t, 3, got.Summary.Entries)
	assert.InDelta(t, 3.78, got.Summary.TotalKg, 1e-9)
}

func TestFactorsCommand_Resolve(t *testing.T) {
	isolate(t)

	out, err := execute(t, "factors", "--resolve", "walk,transportation,car")
	require.NoError(t, err)
	assert.Contains(t, out, "0.12 kg CO2 per unit")
	assert.Contains(t, out, "per_km_difference")
	factorsResolve = ""
}

func TestVersionCommand(t *testing.T) {
	isolate(t)

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ecotrack "+Version+"\n", out)
}
