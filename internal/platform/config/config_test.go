package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"ADDR", "TEAM_DIR", "TEAM_PATTERN", "DEFAULT_TEAM_FILE", "SPRITES_DIR", "SETTLE_DELAY", "SUBSCRIBER_BACKLOG", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()
	assert.Equal(t, Config{
		Addr:              "127.0.0.1:3000",
		TeamDir:           ".",
		TeamPattern:       "team",
		DefaultTeamFile:   "team.txt",
		SpritesDir:        "sprites",
		SettleDelay:       150 * time.Millisecond,
		SubscriberBacklog: 100,
		LogLevel:          "info",
		LogFormat:         "json",
	}, cfg)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ADDR", ":9000")
	t.Setenv("SETTLE_DELAY", "1s")
	t.Setenv("SUBSCRIBER_BACKLOG", "7")

	cfg := FromEnv()
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, time.Second, cfg.SettleDelay)
	assert.Equal(t, 7, cfg.SubscriberBacklog)
}

func TestGetEnv_BadValuesFallBack(t *testing.T) {
	t.Setenv("SOME_INT", "seven")
	t.Setenv("SOME_DUR", "-5s")

	assert.Equal(t, 3, GetEnvInt("SOME_INT", 3))
	assert.Equal(t, time.Minute, GetEnvDuration("SOME_DUR", time.Minute))
}

func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("OVERLAY_TEST_KEY=from-dotenv\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("OVERLAY_TEST_KEY") })

	require.NoError(t, Load(path))
	assert.Equal(t, "from-dotenv", GetEnv("OVERLAY_TEST_KEY", "fallback"))
}

func TestLoad_MissingFile(t *testing.T) {
	require.Error(t, Load(filepath.Join(t.TempDir(), "nope.env")))
}
