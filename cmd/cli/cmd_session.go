package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"biodex/pkg/models"
)

type listResponse[T any] struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Items  []T `json:"items"`
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Start or end an exploration session",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a session and store its token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		u, err := endpoint("/sessions", nil)
		if err != nil {
			return err
		}
		var td tokenData
		if err := doJSON(cmd.Context(), http.MethodPost, u, "", nil, &td); err != nil {
			return err
		}
		if err := saveToken(tokenPath, td); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
		fmt.Printf("session %s started, expires %s\n", td.SessionID, td.ExpiresAt.Local().Format(time.RFC1123))
		return nil
	},
}

var sessionEndCmd = &cobra.Command{
	Use:   "end",
	Short: "End the session and discard its data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		token, err := sessionToken()
		if err != nil {
			return err
		}
		u, err := endpoint("/sessions/me", nil)
		if err != nil {
			return err
		}
		var resp struct {
			Removed int64 `json:"removed"`
		}
		if err := doJSON(cmd.Context(), http.MethodDelete, u, token, nil, &resp); err != nil {
			return err
		}
		if err := clearToken(tokenPath); err != nil {
			return err
		}
		fmt.Printf("session ended, %d entries removed\n", resp.Removed)
		return nil
	},
}

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "Manage favorite animals",
}

var favAddFlags struct {
	scientific string
	photo      string
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an animal to favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := sessionToken()
		if err != nil {
			return err
		}
		u, err := endpoint("/favorites", nil)
		if err != nil {
			return err
		}
		payload := map[string]string{
			"name":            args[0],
			"scientific_name": favAddFlags.scientific,
			"photo_url":       favAddFlags.photo,
		}
		var fav models.Favorite
		if err := doJSON(cmd.Context(), http.MethodPost, u, token, payload, &fav); err != nil {
			return err
		}
		fmt.Printf("added %s\n", fav.Name)
		return nil
	},
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorites, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		token, err := sessionToken()
		if err != nil {
			return err
		}
		u, err := endpoint("/favorites", url.Values{"limit": {"100"}})
		if err != nil {
			return err
		}
		var resp listResponse[models.Favorite]
		if err := doJSON(cmd.Context(), http.MethodGet, u, token, nil, &resp); err != nil {
			return err
		}
		for _, f := range resp.Items {
			fmt.Printf("%-28s %-30s %s\n", f.Name, f.ScientificName, f.AddedAt.Local().Format("2006-01-02 15:04"))
		}
		fmt.Printf("%d favorites\n", resp.Total)
		return nil
	},
}

var favoritesRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove an animal from favorites",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := sessionToken()
		if err != nil {
			return err
		}
		u, err := endpoint("/favorites/"+url.PathEscape(args[0]), nil)
		if err != nil {
			return err
		}
		if err := doJSON(cmd.Context(), http.MethodDelete, u, token, nil, nil); err != nil {
			return err
		}
		fmt.Printf("removed %s\n", args[0])
		return nil
	},
}

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Write notes about animals",
}

var notesAddCmd = &cobra.Command{
	Use:   "add <animal> <text>",
	Short: "Add a note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := sessionToken()
		if err != nil {
			return err
		}
		u, err := endpoint("/notes", nil)
		if err != nil {
			return err
		}
		var note models.Note
		if err := doJSON(cmd.Context(), http.MethodPost, u, token, map[string]string{"animal": args[0], "text": args[1]}, &note); err != nil {
			return err
		}
		fmt.Printf("note %d saved\n", note.ID)
		return nil
	},
}

var notesListAnimal string

var notesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		token, err := sessionToken()
		if err != nil {
			return err
		}
		q := url.Values{"limit": {"100"}}
		if notesListAnimal != "" {
			q.Set("animal", notesListAnimal)
		}
		u, err := endpoint("/notes", q)
		if err != nil {
			return err
		}
		var resp listResponse[models.Note]
		if err := doJSON(cmd.Context(), http.MethodGet, u, token, nil, &resp); err != nil {
			return err
		}
		for _, n := range resp.Items {
			fmt.Printf("#%-5d %-20s %s\n", n.ID, n.Animal, n.Text)
		}
		return nil
	},
}

var notesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid note id %q", args[0])
		}
		token, err := sessionToken()
		if err != nil {
			return err
		}
		u, err := endpoint(fmt.Sprintf("/notes/%d", id), nil)
		if err != nil {
			return err
		}
		if err := doJSON(cmd.Context(), http.MethodDelete, u, token, nil, nil); err != nil {
			return err
		}
		fmt.Printf("note %d deleted\n", id)
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show this session's queries, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		token, err := sessionToken()
		if err != nil {
			return err
		}
		u, err := endpoint("/history", url.Values{"limit": {"50"}})
		if err != nil {
			return err
		}
		var resp listResponse[models.HistoryEntry]
		if err := doJSON(cmd.Context(), http.MethodGet, u, token, nil, &resp); err != nil {
			return err
		}
		for _, h := range resp.Items {
			what := h.Term
			if h.Mode == "coordinate" {
				what = fmt.Sprintf("%.4f,%.4f", h.Latitude, h.Longitude)
			}
			fmt.Printf("%s  %-10s %-24s %-12s %d\n", h.At.Local().Format("2006-01-02 15:04"), h.Mode, what, h.Provider, h.Results)
		}
		return nil
	},
}

func init() {
	favoritesAddCmd.Flags().StringVar(&favAddFlags.scientific, "scientific", "", "scientific name")
	favoritesAddCmd.Flags().StringVar(&favAddFlags.photo, "photo", "", "photo URL")
	notesListCmd.Flags().StringVar(&notesListAnimal, "animal", "", "only notes about this animal")

	sessionCmd.AddCommand(sessionStartCmd, sessionEndCmd)
	favoritesCmd.AddCommand(favoritesAddCmd, favoritesListCmd, favoritesRemoveCmd)
	notesCmd.AddCommand(notesAddCmd, notesListCmd, notesDeleteCmd)
	rootCmd.AddCommand(sessionCmd, favoritesCmd, notesCmd, historyCmd)
}
