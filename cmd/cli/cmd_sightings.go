package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"biodex/pkg/models"
)

type sightingInput struct {
	Animal  string `json:"animal"`
	SeenOn  string `json:"seen_on,omitempty"`
	Hotspot string `json:"hotspot,omitempty"`
}

var sightingsCmd = &cobra.Command{
	Use:   "sightings",
	Short: "Record and browse the sighting calendar",
}

var sightAddFlags struct {
	on      string
	hotspot string
}

var sightingsAddCmd = &cobra.Command{
	Use:   "add <animal>",
	Short: "Record a sighting (today unless --on is given)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := sessionToken()
		if err != nil {
			return err
		}
		u, err := endpoint("/sightings", nil)
		if err != nil {
			return err
		}
		in := sightingInput{Animal: args[0], SeenOn: sightAddFlags.on, Hotspot: sightAddFlags.hotspot}
		var saved models.Sighting
		if err := doJSON(cmd.Context(), http.MethodPost, u, token, in, &saved); err != nil {
			return err
		}
		fmt.Printf("sighting of %s on %s saved\n", saved.Animal, saved.SeenOn)
		return nil
	},
}

var sightingsListMonth string

var sightingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show a month of sightings as a calendar",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		token, err := sessionToken()
		if err != nil {
			return err
		}
		month := sightingsListMonth
		if month == "" {
			month = time.Now().Format("2006-01")
		}
		u, err := endpoint("/sightings/calendar", url.Values{"month": {month}})
		if err != nil {
			return err
		}
		var resp struct {
			Month string `json:"month"`
			Days  []struct {
				Date    string   `json:"date"`
				Animals []string `json:"animals"`
			} `json:"days"`
		}
		if err := doJSON(cmd.Context(), http.MethodGet, u, token, nil, &resp); err != nil {
			return err
		}
		fmt.Println(resp.Month)
		if len(resp.Days) == 0 {
			fmt.Println("  no sightings")
		}
		for _, d := range resp.Days {
			fmt.Printf("  %s  %s\n", d.Date, strings.Join(d.Animals, ", "))
		}
		return nil
	},
}

var sightingsImportCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Import sightings from CSV (animal,seen_on[,hotspot])",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := sessionToken()
		if err != nil {
			return err
		}
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		rows, err := readSightingsCSV(f)
		if err != nil {
			return err
		}
		u, err := endpoint("/sightings", nil)
		if err != nil {
			return err
		}
		for i, in := range rows {
			if err := doJSON(cmd.Context(), http.MethodPost, u, token, in, nil); err != nil {
				return fmt.Errorf("row %d (%s): %w", i+2, in.Animal, err)
			}
		}
		fmt.Printf("imported %d sightings from %s\n", len(rows), args[0])
		return nil
	},
}

// readSightingsCSV reads a CSV with a header naming at least "animal".
// Rows without an animal are skipped.
func readSightingsCSV(r io.Reader) ([]sightingInput, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := readHeader(cr)
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if _, ok := header["animal"]; !ok {
		return nil, errors.New(`csv header must include "animal"`)
	}

	var out []sightingInput
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		in := sightingInput{
			Animal:  valueAt(header, row, "animal"),
			SeenOn:  valueAt(header, row, "seen_on"),
			Hotspot: valueAt(header, row, "hotspot"),
		}
		if in.Animal == "" {
			continue
		}
		if in.SeenOn != "" {
			if _, err := time.Parse("2006-01-02", in.SeenOn); err != nil {
				return nil, fmt.Errorf("invalid seen_on %q for %s", in.SeenOn, in.Animal)
			}
		}
		out = append(out, in)
	}
	return out, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func init() {
	sightingsAddCmd.Flags().StringVar(&sightAddFlags.on, "on", "", "date seen (YYYY-MM-DD)")
	sightingsAddCmd.Flags().StringVar(&sightAddFlags.hotspot, "hotspot", "", "where it was seen")
	sightingsListCmd.Flags().StringVar(&sightingsListMonth, "month", "", "month (YYYY-MM), defaults to the current one")

	sightingsCmd.AddCommand(sightingsAddCmd, sightingsListCmd, sightingsImportCmd)
	rootCmd.AddCommand(sightingsCmd)
}
