package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"biodex/internal/bootstrap"
	"biodex/internal/query"
	"biodex/pkg/models"
	"biodex/pkg/utils"
)

type exploreResponse struct {
	Query   query.Spec            `json:"query"`
	Total   int                   `json:"total"`
	Items   []models.AnimalRecord `json:"items"`
	Message string                `json:"message,omitempty"`
}

var hotspotsCmd = &cobra.Command{
	Use:   "hotspots",
	Short: "List the predefined regions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, h := range query.Hotspots() {
			fmt.Printf("%-24s %-24s %9.4f %9.4f\n", h.Slug, h.Name, h.Latitude, h.Longitude)
		}
		return nil
	},
}

var exploreFlags struct {
	hotspot string
	lat     string
	lon     string
	q       string
	local   bool
	debug   bool
}

var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Find animals by hotspot, coordinates or name",
	Long: `Find animals by hotspot, coordinates or name.

Exactly one of --hotspot, --lat/--lon or --q is used, in that order.
With --local the pipeline runs in this process against the configured
provider instead of calling the API.`,
	Args: cobra.NoArgs,
	RunE: runExplore,
}

func init() {
	f := exploreCmd.Flags()
	f.StringVar(&exploreFlags.hotspot, "hotspot", "", "hotspot name or slug")
	f.StringVar(&exploreFlags.lat, "lat", "", "latitude")
	f.StringVar(&exploreFlags.lon, "lon", "", "longitude")
	f.StringVar(&exploreFlags.q, "q", "", "free-text query")
	f.BoolVar(&exploreFlags.local, "local", false, "run the pipeline in-process")
	f.BoolVar(&exploreFlags.debug, "debug", false, "include pipeline diagnostics")

	rootCmd.AddCommand(hotspotsCmd, exploreCmd)
}

func runExplore(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if exploreFlags.local {
		return exploreLocal(ctx)
	}

	q := url.Values{}
	switch {
	case exploreFlags.hotspot != "":
		q.Set("hotspot", exploreFlags.hotspot)
	case exploreFlags.lat != "" || exploreFlags.lon != "":
		q.Set("lat", exploreFlags.lat)
		q.Set("lon", exploreFlags.lon)
	default:
		q.Set("q", exploreFlags.q)
	}
	if exploreFlags.debug {
		q.Set("debug", "1")
	}
	u, err := endpoint("/explore", q)
	if err != nil {
		return err
	}

	// a stored session makes the query show up in history
	token := ""
	if td, err := readToken(tokenPath); err == nil {
		token = td.Token
	}

	var resp exploreResponse
	if err := doJSON(ctx, http.MethodGet, u, token, nil, &resp); err != nil {
		return err
	}
	printRecords(resp.Items, resp.Message)
	return nil
}

func exploreLocal(ctx context.Context) error {
	cfg := utils.Load()
	log := utils.MustLogger("warn")
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer p.Close()

	spec, err := localSpec(p.Builder)
	if err != nil {
		return err
	}

	res, err := p.Explorer.Run(ctx, spec)
	if err != nil {
		log.Warn("explore failed", zap.Error(err))
	}
	msg := ""
	if len(res.Records) == 0 {
		msg = "nothing found, try another query"
	}
	printRecords(res.Records, msg)
	if exploreFlags.debug {
		fmt.Printf("\nraw=%d rejected=%v duplicates=%d images=%d dropped=%d\n",
			res.Raw, res.Rejected, res.Duplicates, res.Resolved, res.Dropped)
	}
	return nil
}

func localSpec(b query.Builder) (query.Spec, error) {
	switch {
	case exploreFlags.hotspot != "":
		spec, ok := b.Hotspot(exploreFlags.hotspot)
		if !ok {
			return query.Spec{}, fmt.Errorf("unknown hotspot %q", exploreFlags.hotspot)
		}
		return spec, nil
	case exploreFlags.lat != "" || exploreFlags.lon != "":
		lat, err1 := strconv.ParseFloat(exploreFlags.lat, 64)
		lon, err2 := strconv.ParseFloat(exploreFlags.lon, 64)
		if err1 != nil || err2 != nil {
			return query.Spec{}, errors.New("--lat and --lon must both be numbers")
		}
		return b.Coordinates(lat, lon), nil
	}
	return b.Text(exploreFlags.q), nil
}

func printRecords(items []models.AnimalRecord, msg string) {
	if len(items) == 0 {
		fmt.Println(msg)
		return
	}
	for _, r := range items {
		fmt.Printf("%-28s %-30s %-10s %-10s %-12s %s\n",
			r.DisplayName, r.ScientificName, r.TaxonomicClass, r.Reproduction, r.Diet, r.PhotoURL)
	}
	fmt.Printf("%d animals\n", len(items))
}
