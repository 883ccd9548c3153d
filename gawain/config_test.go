package gawain

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	err := os.WriteFile(path, []byte(`
[bot]
token = "from-file"
dev_guilds = [123456789012345678]

[db]
host = "localhost"
port = 5432
pool_size = 8

[crafting]
mention_skill_roles = true
`), 0o600)
	require.NoError(t, err)

	t.Setenv("GAWAIN_TOKEN", "from-env")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Bot.Token)
	require.Len(t, cfg.Bot.DevGuilds, 1)
	require.Equal(t, 8, cfg.DB.PoolSize)
	require.True(t, cfg.Crafting.MentionSkillRoles)
	require.Equal(t, 30*time.Second, cfg.Crafting.ButtonTimeoutDuration())
	require.Equal(t, 10, cfg.Crafting.ListPageSize)
	require.Equal(t, "backups", cfg.Spaces.Prefix)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}
