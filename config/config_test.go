package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 300*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, float32(0.7), cfg.Generation.Temperature)
	assert.Equal(t, "original", cfg.Generation.PromptLineage)
	assert.Equal(t, "edgeone", cfg.Deploy.Target)
	assert.Equal(t, "https://mcp.edgeone.site", cfg.Deploy.EdgeOneBaseURL)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("GENERATION_PROVIDER", "static")
	t.Setenv("GENERATION_TIMEOUT", "30s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "static", cfg.Generation.Provider)
	assert.Equal(t, 30*time.Second, cfg.Generation.Timeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := FromEnv()
		require.NoError(t, err)
		cfg.Generation.Provider = "static"
		return cfg
	}

	t.Run("defaults with static provider pass", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("openai needs a key", func(t *testing.T) {
		cfg := valid()
		cfg.Generation.Provider = "openai"
		assert.ErrorContains(t, cfg.Validate(), "GENERATION_API_KEY")
	})

	t.Run("unknown store driver", func(t *testing.T) {
		cfg := valid()
		cfg.Database.Driver = "sqlite"
		assert.Error(t, cfg.Validate())
	})

	t.Run("s3 target needs bucket and public url", func(t *testing.T) {
		cfg := valid()
		cfg.Deploy.Target = "s3"
		assert.ErrorContains(t, cfg.Validate(), "DEPLOY_S3_BUCKET")
		cfg.Deploy.S3Bucket = "sites"
		cfg.Deploy.S3PublicBaseURL = "https://sites.example.com"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("lineage mode", func(t *testing.T) {
		cfg := valid()
		cfg.Generation.PromptLineage = "branching"
		assert.Error(t, cfg.Validate())
	})
}
