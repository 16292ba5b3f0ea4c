package env

import (
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleConfig struct {
	Name     string        `env:"SAMPLE_NAME"`
	Limit    int           `env:"SAMPLE_LIMIT,required"`
	Ratio    float64       `env:"SAMPLE_RATIO"`
	Enabled  bool          `env:"SAMPLE_ENABLED"`
	Interval time.Duration `env:"SAMPLE_INTERVAL"`
	Token    string        `env:"SAMPLE_TOKEN" envSecret:"true"`
	Note     string        `env:"SAMPLE_NOTE"`
	untagged string
	Skipped  string
}

func TestMarshalEnv(t *testing.T) {
	c := &sampleConfig{
		Name:     "tuskmem",
		Limit:    5,
		Ratio:    0.85,
		Enabled:  true,
		Interval: 90 * time.Minute,
		Token:    "sk-123",
		Note:     "two words # not a comment",
		untagged: "x",
		Skipped:  "y",
	}

	got, err := MarshalEnv(false, c)
	require.NoError(t, err)
	assert.Equal(t, `SAMPLE_NAME=tuskmem
SAMPLE_LIMIT=5
SAMPLE_RATIO=0.85
SAMPLE_ENABLED=true
SAMPLE_INTERVAL=1h30m0s
SAMPLE_TOKEN=********
SAMPLE_NOTE="two words # not a comment"
`, got)

	parsed, err := godotenv.Unmarshal(got)
	require.NoError(t, err)
	assert.Equal(t, "two words # not a comment", parsed["SAMPLE_NOTE"])
	assert.Equal(t, "1h30m0s", parsed["SAMPLE_INTERVAL"])
}

func TestMarshalEnv_ZeroValues(t *testing.T) {
	got, err := MarshalEnv(false, &sampleConfig{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, "SAMPLE_LIMIT=1\n", got)

	got, err = MarshalEnv(true, &sampleConfig{})
	require.NoError(t, err)
	assert.Contains(t, got, "SAMPLE_NAME=\"\"\n")
	assert.Contains(t, got, "SAMPLE_ENABLED=false\n")
	assert.Contains(t, got, "SAMPLE_INTERVAL=0s\n")
	assert.Contains(t, got, "SAMPLE_TOKEN=\"\"\n")

	got, err = MarshalEnv(false, &sampleConfig{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMarshalEnv_MultipleConfigs(t *testing.T) {
	type other struct {
		Path string `env:"OTHER_PATH"`
	}
	got, err := MarshalEnv(false, &sampleConfig{Limit: 2}, &other{Path: "/tmp/x"})
	require.NoError(t, err)
	assert.Equal(t, "SAMPLE_LIMIT=2\nOTHER_PATH=/tmp/x\n", got)
}

func TestMarshalEnv_RejectsNonStruct(t *testing.T) {
	_, err := MarshalEnv(false, sampleConfig{})
	assert.Error(t, err)

	n := 3
	_, err = MarshalEnv(false, &n)
	assert.Error(t, err)
}
