// Package mirror stores captured provider responses on disk and replays
// them with the iNaturalist API shape, for offline development and demos.
package mirror

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"biodex/internal/provider"
	"biodex/internal/query"
)

const DefaultDir = "data/mirror"

// page is the subset of the observations response the pipeline reads.
type page struct {
	TotalResults int                `json:"total_results"`
	Results      []provider.RawItem `json:"results"`
}

// FixtureName maps a query to its file name. Coordinates snap to a hotspot
// when they fall within a degree of one.
func FixtureName(spec query.Spec) string {
	switch spec.Mode {
	case query.ModeText:
		return "q-" + query.Slugify(spec.Term) + ".json"
	case query.ModeCoordinate:
		for _, h := range query.Hotspots() {
			if math.Abs(h.Latitude-spec.Latitude) <= 1 && math.Abs(h.Longitude-spec.Longitude) <= 1 {
				return h.Slug + ".json"
			}
		}
		return fmt.Sprintf("geo-%.1f_%.1f.json", spec.Latitude, spec.Longitude)
	}
	return ""
}

// TaxaSpec names the fixture for a /v1/taxa lookup.
func TaxaSpec(name string) query.Spec {
	return query.FromTerm("taxa " + name)
}

func Save(dir string, spec query.Spec, items []provider.RawItem) (string, error) {
	name := FixtureName(spec)
	if name == "" {
		return "", provider.ErrNoQuery
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(page{TotalResults: len(items), Results: items}, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	return path, os.WriteFile(path, b, 0o644)
}

// Load returns the raw fixture bytes, or os.ErrNotExist.
func Load(dir string, spec query.Spec) ([]byte, error) {
	name := FixtureName(spec)
	if name == "" {
		return nil, os.ErrNotExist
	}
	b, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return nil, err
	}
	// validate JSON so a bad file doesn't silently break the pipeline
	var tmp page
	if err := json.Unmarshal(b, &tmp); err != nil {
		return nil, fmt.Errorf("%s invalid JSON: %w", name, err)
	}
	return b, nil
}

// Router serves /v1/observations and /v1/taxa from dir. Unknown queries get
// an empty page, like the live API.
func Router(dir string, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery())

	serve := func(c *gin.Context, spec query.Spec) {
		b, err := Load(dir, spec)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Debug("mirror miss", zap.String("query", spec.String()))
			c.JSON(http.StatusOK, page{Results: []provider.RawItem{}})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.Data(http.StatusOK, "application/json", b)
		}
	}

	r.GET("/v1/observations", func(c *gin.Context) {
		spec, ok := specFrom(c)
		if !ok {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "lat/lng or q required"})
			return
		}
		serve(c, spec)
	})

	r.GET("/v1/taxa", func(c *gin.Context) {
		serve(c, TaxaSpec(c.Query("q")))
	})

	return r
}

func specFrom(c *gin.Context) (query.Spec, bool) {
	if c.Query("lat") != "" {
		lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
		lon, err2 := strconv.ParseFloat(c.Query("lng"), 64)
		if err1 != nil || err2 != nil {
			return query.Spec{}, false
		}
		return query.FromCoordinates(lat, lon), true
	}
	spec := query.FromTerm(c.Query("q"))
	return spec, !spec.Empty()
}
