package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"biodex/pkg/models"
)

var exportFlags struct {
	out    string
	format string
}

var exportCmd = &cobra.Command{
	Use:       "export <favorites|sightings>",
	Short:     "Export session data to CSV or JSON",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"favorites", "sightings"},
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := sessionToken()
		if err != nil {
			return err
		}
		what := args[0]
		out := exportFlags.out
		if out == "" {
			out = filepath.Join("data", what+"."+exportFlags.format)
		}
		format := exportFormat(out, exportFlags.format)

		var items any
		var writeRows func(io.Writer) error
		switch what {
		case "favorites":
			u, err := endpoint("/favorites", url.Values{"limit": {"100"}})
			if err != nil {
				return err
			}
			var resp listResponse[models.Favorite]
			if err := doJSON(cmd.Context(), http.MethodGet, u, token, nil, &resp); err != nil {
				return err
			}
			items = resp.Items
			writeRows = func(w io.Writer) error { return writeFavoritesCSV(w, resp.Items) }
		case "sightings":
			u, err := endpoint("/sightings", url.Values{"limit": {"500"}})
			if err != nil {
				return err
			}
			var resp listResponse[models.Sighting]
			if err := doJSON(cmd.Context(), http.MethodGet, u, token, nil, &resp); err != nil {
				return err
			}
			items = resp.Items
			writeRows = func(w io.Writer) error { return writeSightingsCSV(w, resp.Items) }
		}

		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()

		if format == "json" {
			enc := json.NewEncoder(f)
			enc.SetIndent("", "  ")
			err = enc.Encode(items)
		} else {
			err = writeRows(f)
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Printf("exported %s to %s\n", what, out)
		return nil
	},
}

// exportFormat prefers the output file's extension over the flag.
func exportFormat(path, flag string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".csv":
		return "csv"
	}
	if strings.EqualFold(flag, "json") {
		return "json"
	}
	return "csv"
}

func writeFavoritesCSV(w io.Writer, items []models.Favorite) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "scientific_name", "photo_url", "added_at"}); err != nil {
		return err
	}
	for _, f := range items {
		if err := cw.Write([]string{f.Name, f.ScientificName, f.PhotoURL, f.AddedAt.UTC().Format(time.RFC3339)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeSightingsCSV writes the same columns sightings import reads.
func writeSightingsCSV(w io.Writer, items []models.Sighting) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "animal", "seen_on", "hotspot"}); err != nil {
		return err
	}
	for _, s := range items {
		if err := cw.Write([]string{strconv.FormatInt(s.ID, 10), s.Animal, s.SeenOn, s.Hotspot}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func init() {
	exportCmd.Flags().StringVarP(&exportFlags.out, "out", "o", "", "output file (default data/<what>.<format>)")
	exportCmd.Flags().StringVar(&exportFlags.format, "format", "csv", "csv or json")
	rootCmd.AddCommand(exportCmd)
}
