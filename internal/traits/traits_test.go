package traits

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biodex/pkg/models"
)

func TestReproduction(t *testing.T) {
	tables := Default()

	tests := []struct {
		class string
		want  models.Reproduction
	}{
		{"Mammalia", models.Viviparous},
		{"Aves", models.Oviparous},
		{"Reptilia", models.Oviparous},
		{"Amphibia", models.Oviparous},
		{"Insecta", models.Variable},
		{"unknown", models.Variable},
		{"", models.Variable},
	}
	for _, tt := range tests {
		t.Run(tt.class, func(t *testing.T) {
			assert.Equal(t, tt.want, tables.Reproduction(tt.class))
		})
	}
}

func TestDiet(t *testing.T) {
	tables := Default()

	tests := []struct {
		name, class, animal string
		want                models.Diet
	}{
		{"keyword without class", "", "Leão", models.Carnivore},
		{"keyword beats class", "Mammalia", "Capivara", models.Herbivore},
		{"category order", "Mammalia", "Urso-Polar", models.Carnivore},
		{"later category", "Mammalia", "Urso-Pardo", models.Omnivore},
		{"reptile default", "Reptilia", "Unknown Species Xyz", models.Carnivore},
		{"amphibian default", "Amphibia", "Unknown Species Xyz", models.Insectivore},
		{"fallback", "Insecta", "Unknown Species Xyz", models.Omnivore},
		{"nothing", "", "", models.Omnivore},
		{"piscivore", "Aves", "Pinguim-De-Magalhães", models.Piscivore},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tables.Diet(tt.class, tt.animal))
		})
	}
}

func TestParseValidates(t *testing.T) {
	_, err := Parse([]byte(`diet: {order: [carnivore, grazer]}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`reproduction: [`))
	assert.Error(t, err)

	tb, err := Parse([]byte(`
reproduction:
  viviparous: [MAMMAL]
diet:
  keywords:
    piscivore: [Lontra]
`))
	require.NoError(t, err)
	assert.Equal(t, models.Viviparous, tb.Reproduction("Mammalia"))
	assert.Equal(t, models.Piscivore, tb.Diet("", "Lontra-Europeia"))
	assert.Equal(t, models.Omnivore, tb.Diet("", "Gato"))
}

func TestParseNormalizesTables(t *testing.T) {
	tb, err := Parse([]byte(`
reproduction:
  viviparous: [" MAMMAL "]
  oviparous: [Aves, ""]
diet:
  order: [carnivore, herbivore]
  keywords:
    carnivore: [LEÃO]
    herbivore: [Anta]
  class_defaults:
    - {marker: " Reptil ", diet: carnivore}
`))
	require.NoError(t, err)
	assert.Equal(t, []string{"mammal"}, tb.Repro.Viviparous)
	assert.Equal(t, []string{"aves"}, tb.Repro.Oviparous)
	assert.Equal(t, []string{"leão"}, tb.Diets.Keywords[models.Carnivore])
	assert.Equal(t, "reptil", tb.Diets.ClassDefaults[0].Marker)
	assert.Equal(t, models.Omnivore, tb.Diets.Fallback)

	// lookups use the normalized tables
	assert.Equal(t, models.Oviparous, tb.Reproduction("Aves"))
	assert.Equal(t, models.Carnivore, tb.Diet("Reptilia", "Jiboia"))
	assert.Equal(t, models.Herbivore, tb.Diet("", "Anta-Brasileira"))
}

func TestClassifierEnrich(t *testing.T) {
	c := NewClassifier(nil)
	r := models.AnimalRecord{DisplayName: "Onça-Pintada", TaxonomicClass: "Mammalia"}
	c.Enrich(&r)
	assert.Equal(t, models.Viviparous, r.Reproduction)
	assert.Equal(t, models.Carnivore, r.Diet)
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "traits.yaml")
	require.NoError(t, os.WriteFile(path, []byte("diet: {fallback: herbivore}\n"), 0o644))

	tb, err := Load(path)
	require.NoError(t, err)
	c := NewClassifier(tb)
	assert.Equal(t, models.Herbivore, c.Diet("", "x"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, c.Watch(ctx, path, nil))

	require.NoError(t, os.WriteFile(path, []byte("diet: {fallback: insectivore}\n"), 0o644))
	assert.Eventually(t, func() bool {
		return c.Diet("", "x") == models.Insectivore
	}, 3*time.Second, 20*time.Millisecond)

	// invalid tables keep the previous ones
	require.NoError(t, os.WriteFile(path, []byte("diet: {fallback: grazer}\n"), 0o644))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, models.Insectivore, c.Diet("", "x"))
}
