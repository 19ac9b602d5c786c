package main

import (
	"context"
	"flag"
	"strings"
	"time"

	"go.uber.org/zap"

	"biodex/internal/mirror"
	"biodex/internal/provider"
	"biodex/internal/query"
	"biodex/pkg/utils"
)

func main() {
	var (
		outDir = flag.String("out", mirror.DefaultDir, "output directory")
		terms  = flag.String("q", "", "comma-separated text queries to capture as well")
		taxa   = flag.Bool("taxa", false, "also capture taxon lookups for every animal found")
	)
	flag.Parse()

	cfg := utils.Load()
	log := utils.MustLogger(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	inat := provider.NewINaturalist(cfg.Provider.INatBaseURL)
	inat.PerPage = cfg.Provider.PageSize
	inat.Locale = cfg.Provider.Locale
	inat.Timeout = cfg.Provider.FetchTimeout

	b := query.NewBuilder(cfg.Provider.RadiusKm)
	var specs []query.Spec
	for _, h := range query.Hotspots() {
		specs = append(specs, b.Coordinates(h.Latitude, h.Longitude))
	}
	for _, t := range strings.Split(*terms, ",") {
		if spec := b.Text(t); !spec.Empty() {
			specs = append(specs, spec)
		}
	}

	names := map[string]bool{}
	saved := 0
	for _, spec := range specs {
		items, err := inat.Search(ctx, spec)
		if err != nil {
			log.Warn("capture failed", zap.String("query", spec.String()), zap.Error(err))
			continue
		}
		path, err := mirror.Save(*outDir, spec, items)
		if err != nil {
			log.Fatal("write failed", zap.Error(err))
		}
		saved++
		log.Info("captured", zap.String("query", spec.String()), zap.Int("items", len(items)), zap.String("file", path))

		for _, it := range items {
			if name := it.String("taxon.name"); name != "" {
				names[name] = true
			}
		}
	}

	if *taxa {
		for name := range names {
			items, err := inat.Taxa(ctx, name, 1)
			if err != nil {
				log.Warn("taxa capture failed", zap.String("name", name), zap.Error(err))
				continue
			}
			if _, err := mirror.Save(*outDir, mirror.TaxaSpec(name), items); err != nil {
				log.Fatal("write failed", zap.Error(err))
			}
			saved++
		}
	}

	log.Info("mirror export done", zap.Int("files", saved), zap.String("dir", *outDir))
}
