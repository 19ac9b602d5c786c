// Package traits derives reproduction mode and diet category from a
// record's taxonomic class and display name using configurable tables.
package traits

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"biodex/pkg/models"
)

//go:embed tables.yaml
var defaultTables []byte

type ReproductionTable struct {
	Viviparous []string `yaml:"viviparous"`
	Oviparous  []string `yaml:"oviparous"`
}

type ClassDefault struct {
	Marker string      `yaml:"marker"`
	Diet   models.Diet `yaml:"diet"`
}

type DietTable struct {
	Order         []models.Diet            `yaml:"order"`
	Keywords      map[models.Diet][]string `yaml:"keywords"`
	ClassDefaults []ClassDefault           `yaml:"class_defaults"`
	Fallback      models.Diet              `yaml:"fallback"`
}

type Tables struct {
	Repro ReproductionTable `yaml:"reproduction"`
	Diets DietTable         `yaml:"diet"`
}

// Parse decodes and validates a tables document. Markers and keywords are
// lower-cased so lookups only need to lower-case the input.
func Parse(b []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("decode traits: %w", err)
	}
	if err := t.normalize(); err != nil {
		return nil, err
	}
	return &t, nil
}

func Load(path string) (*Tables, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read traits %s: %w", path, err)
	}
	return Parse(b)
}

// Default returns the embedded tables.
func Default() *Tables {
	t, err := Parse(defaultTables)
	if err != nil {
		panic(fmt.Sprintf("embedded traits tables: %v", err))
	}
	return t
}

func (t *Tables) normalize() error {
	t.Repro.Viviparous = lowerAll(t.Repro.Viviparous)
	t.Repro.Oviparous = lowerAll(t.Repro.Oviparous)

	if len(t.Diets.Order) == 0 {
		for d := range t.Diets.Keywords {
			t.Diets.Order = append(t.Diets.Order, d)
		}
		if len(t.Diets.Order) > 1 {
			return errors.New("traits: diet.order is required with more than one keyword category")
		}
	}
	for _, d := range t.Diets.Order {
		if !d.Valid() {
			return fmt.Errorf("traits: unknown diet category %q", d)
		}
	}
	for d, kws := range t.Diets.Keywords {
		if !d.Valid() {
			return fmt.Errorf("traits: unknown diet category %q", d)
		}
		t.Diets.Keywords[d] = lowerAll(kws)
	}
	for i, cd := range t.Diets.ClassDefaults {
		if !cd.Diet.Valid() {
			return fmt.Errorf("traits: unknown diet category %q for class %q", cd.Diet, cd.Marker)
		}
		t.Diets.ClassDefaults[i].Marker = strings.ToLower(strings.TrimSpace(cd.Marker))
	}
	if t.Diets.Fallback == "" {
		t.Diets.Fallback = models.Omnivore
	}
	if !t.Diets.Fallback.Valid() {
		return fmt.Errorf("traits: unknown fallback diet %q", t.Diets.Fallback)
	}
	return nil
}

// Reproduction maps a taxonomic class to a reproduction mode.
func (t *Tables) Reproduction(class string) models.Reproduction {
	c := strings.ToLower(class)
	if c == "" {
		return models.Variable
	}
	if containsAny(c, t.Repro.Viviparous) {
		return models.Viviparous
	}
	if containsAny(c, t.Repro.Oviparous) {
		return models.Oviparous
	}
	return models.Variable
}

// Diet maps a record to a diet category: name keywords first, then class
// defaults, then the fallback.
func (t *Tables) Diet(class, name string) models.Diet {
	n := strings.ToLower(name)
	if n != "" {
		for _, d := range t.Diets.Order {
			if containsAny(n, t.Diets.Keywords[d]) {
				return d
			}
		}
	}

	c := strings.ToLower(class)
	if c != "" {
		for _, cd := range t.Diets.ClassDefaults {
			if cd.Marker != "" && strings.Contains(c, cd.Marker) {
				return cd.Diet
			}
		}
	}
	return t.Diets.Fallback
}

// Classifier holds the active tables and swaps them atomically on reload.
type Classifier struct {
	tables atomic.Pointer[Tables]
}

func NewClassifier(t *Tables) *Classifier {
	if t == nil {
		t = Default()
	}
	c := &Classifier{}
	c.tables.Store(t)
	return c
}

func (c *Classifier) Tables() *Tables { return c.tables.Load() }

func (c *Classifier) Swap(t *Tables) {
	if t != nil {
		c.tables.Store(t)
	}
}

func (c *Classifier) Reproduction(class string) models.Reproduction {
	return c.tables.Load().Reproduction(class)
}

func (c *Classifier) Diet(class, name string) models.Diet {
	return c.tables.Load().Diet(class, name)
}

// Enrich fills the derived fields of r.
func (c *Classifier) Enrich(r *models.AnimalRecord) {
	t := c.tables.Load()
	r.Reproduction = t.Reproduction(r.TaxonomicClass)
	r.Diet = t.Diet(r.TaxonomicClass, r.DisplayName)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
