package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biodex/internal/imagery"
	"biodex/pkg/models"
	"biodex/pkg/utils"
)

func testConfig() utils.Config {
	cfg := utils.Load()
	cfg.TraitsFile = ""
	cfg.Image.RedisAddr = ""
	return cfg
}

func TestBuildProviders(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, name := range []string{"inaturalist", "gbif"} {
		cfg := testConfig()
		cfg.Provider.Name = name
		p, err := Build(ctx, cfg, nil)
		require.NoError(t, err, name)
		assert.Equal(t, name, p.Explorer.Source.Name())
		assert.IsType(t, &imagery.LRU{}, p.Images.Cache)
		assert.NoError(t, p.Close())
	}

	cfg := testConfig()
	cfg.Provider.Name = "ebird"
	_, err := Build(ctx, cfg, nil)
	assert.Error(t, err)
}

func TestBuildTraitsFile(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "traits.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
reproduction:
  viviparous: [mammal]
diet:
  keywords:
    herbivore: [capivara]
  fallback: omnivore
`), 0o644))

	cfg := testConfig()
	cfg.TraitsFile = path
	p, err := Build(ctx, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, models.Herbivore, p.Classifier.Diet("Mammalia", "Capivara"))

	cfg.TraitsFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = Build(ctx, cfg, nil)
	assert.Error(t, err)
}
