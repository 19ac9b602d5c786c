// Package bootstrap assembles the exploration pipeline from configuration.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"biodex/internal/explore"
	"biodex/internal/imagery"
	"biodex/internal/provider"
	"biodex/internal/query"
	"biodex/internal/traits"
	"biodex/pkg/utils"
)

type Pipeline struct {
	Explorer   *explore.Explorer
	Images     *imagery.Resolver
	Classifier *traits.Classifier
	Builder    query.Builder

	redis *redis.Client
}

// Build wires provider, image resolver, caches and traits. ctx bounds the
// traits file watcher.
func Build(ctx context.Context, cfg utils.Config, log *zap.Logger) (*Pipeline, error) {
	if log == nil {
		log = zap.NewNop()
	}
	pc := cfg.Provider

	inat := provider.NewINaturalist(pc.INatBaseURL)
	inat.PerPage = pc.PageSize
	inat.Locale = pc.Locale
	inat.Timeout = pc.FetchTimeout

	wiki := provider.NewWikipedia(pc.WikiBaseURL)
	wiki.Timeout = cfg.Image.Timeout

	var src provider.Source
	switch pc.Name {
	case "inaturalist":
		src = inat
	case "gbif":
		g := provider.NewGBIF(pc.GBIFBaseURL)
		g.Limit = pc.PageSize
		g.Kingdom = pc.Kingdom
		g.Timeout = pc.FetchTimeout
		src = g
	default:
		return nil, fmt.Errorf("unknown provider %q", pc.Name)
	}
	mapping, _ := explore.MappingFor(src.Name())

	images := imagery.NewResolver(imagery.TaxonPhotos{INat: inat}, imagery.PageImages{Wiki: wiki})
	images.Timeout = cfg.Image.Timeout
	images.Placeholder = imagery.Placeholder{Template: cfg.Image.Placeholder}
	images.Log = log.Named("imagery")

	p := &Pipeline{Images: images, Builder: query.NewBuilder(pc.RadiusKm)}

	var cache imagery.Cache = imagery.NewLRU(cfg.Image.CacheSize, cfg.Image.CacheTTL)
	if cfg.Image.RedisAddr != "" {
		p.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Image.RedisAddr,
			Password: cfg.Image.RedisPassword,
			DB:       cfg.Image.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := p.redis.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Warn("redis unavailable, image cache stays in process", zap.String("addr", cfg.Image.RedisAddr), zap.Error(err))
			_ = p.redis.Close()
			p.redis = nil
		} else {
			cache = imagery.Tiered{cache, imagery.NewRedisCache(p.redis, cfg.Image.CacheTTL)}
		}
	}
	images.Cache = cache

	tables := traits.Default()
	if cfg.TraitsFile != "" {
		t, err := traits.Load(cfg.TraitsFile)
		if err != nil {
			return nil, err
		}
		tables = t
	}
	p.Classifier = traits.NewClassifier(tables)
	if cfg.TraitsFile != "" {
		if err := p.Classifier.Watch(ctx, cfg.TraitsFile, log.Named("traits")); err != nil {
			log.Warn("traits reload disabled", zap.Error(err))
		}
	}

	e := explore.New(src, mapping)
	e.Traits = p.Classifier
	e.Images = images
	e.Workers = cfg.Image.Workers
	e.Log = log.Named("explore")
	p.Explorer = e

	log.Info("pipeline ready",
		zap.String("provider", src.Name()),
		zap.Bool("redis_cache", p.redis != nil),
		zap.Bool("traits_file", cfg.TraitsFile != ""))
	return p, nil
}

func (p *Pipeline) Close() error {
	if p.redis != nil {
		return p.redis.Close()
	}
	return nil
}
