// Package imagery finds a display image for an animal by name, falling
// back through a prioritized list of sources to a deterministic
// placeholder.
package imagery

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"biodex/internal/metrics"
	"biodex/internal/provider"
)

// DefaultPlaceholder is a seeded stock-photo URL; the same seed always
// yields the same picture.
const DefaultPlaceholder = "https://picsum.photos/seed/{seed}/400/300"

// SourcePlaceholder labels resolutions that fell through every source.
const SourcePlaceholder = "placeholder"

// Source looks up an image URL for an animal name. An empty URL with a nil
// error is a miss.
type Source interface {
	Name() string
	Lookup(ctx context.Context, name string) (string, error)
}

// TaxonPhotos uses the default photo of the best-matching iNaturalist taxon.
type TaxonPhotos struct {
	INat *provider.INaturalist
}

func (s TaxonPhotos) Name() string { return "inaturalist_taxa" }

func (s TaxonPhotos) Lookup(ctx context.Context, name string) (string, error) {
	items, err := s.INat.Taxa(ctx, name, 1)
	if err != nil {
		return "", err
	}
	for _, it := range items {
		if u := it.First("default_photo.medium_url", "default_photo.url"); u != "" {
			return u, nil
		}
	}
	return "", nil
}

// PageImages uses the lead image of the Wikipedia article titled name.
type PageImages struct {
	Wiki *provider.Wikipedia
}

func (s PageImages) Name() string { return "wikipedia" }

func (s PageImages) Lookup(ctx context.Context, name string) (string, error) {
	return s.Wiki.PageImage(ctx, name)
}

type Placeholder struct {
	Template string
}

// URL substitutes {seed} in the template. The seed is the fallback id, or
// the name when there is no id.
func (p Placeholder) URL(fallbackID, name string) string {
	tpl := p.Template
	if tpl == "" {
		tpl = DefaultPlaceholder
	}
	seed := strings.TrimSpace(fallbackID)
	if seed == "" {
		seed = strings.ToLower(strings.TrimSpace(name))
	}
	if seed == "" {
		seed = "biodex"
	}
	return strings.ReplaceAll(tpl, "{seed}", url.PathEscape(seed))
}

type Resolver struct {
	Sources     []Source
	Timeout     time.Duration // per source
	Placeholder Placeholder
	Cache       Cache
	Log         *zap.Logger
}

func NewResolver(sources ...Source) *Resolver {
	return &Resolver{
		Sources: sources,
		Timeout: 4 * time.Second,
		Log:     zap.NewNop(),
	}
}

// Resolve always returns a URL.
func (r *Resolver) Resolve(ctx context.Context, name, fallbackID string) string {
	u, _ := r.ResolveSource(ctx, name, fallbackID)
	return u
}

// ResolveSource is Resolve plus the name of the source that answered
// ("cache", a source name, or SourcePlaceholder).
func (r *Resolver) ResolveSource(ctx context.Context, name, fallbackID string) (string, string) {
	log := r.Log
	if log == nil {
		log = zap.NewNop()
	}

	key := strings.ToLower(strings.TrimSpace(name))
	if key != "" {
		if r.Cache != nil {
			if u, ok := r.Cache.Get(ctx, key); ok {
				metrics.ImageResolutionsTotal.WithLabelValues("cache").Inc()
				return u, "cache"
			}
		}

		for _, src := range r.Sources {
			u, err := r.lookup(ctx, src, name)
			if err != nil {
				log.Debug("image source failed",
					zap.String("source", src.Name()),
					zap.String("name", name),
					zap.Error(err))
				continue
			}
			if u == "" {
				continue
			}
			if r.Cache != nil {
				r.Cache.Set(ctx, key, u)
			}
			metrics.ImageResolutionsTotal.WithLabelValues(src.Name()).Inc()
			return u, src.Name()
		}
	}

	metrics.ImageResolutionsTotal.WithLabelValues(SourcePlaceholder).Inc()
	return r.Placeholder.URL(fallbackID, name), SourcePlaceholder
}

func (r *Resolver) lookup(ctx context.Context, src Source, name string) (string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return src.Lookup(ctx, name)
}
