package main

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var watchPretty bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream this session's events (favorites, notes, sightings)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		token, err := sessionToken()
		if err != nil {
			return err
		}
		wsURL, err := websocketURL(baseURL, "/sessions/events", token)
		if err != nil {
			return err
		}
		conn, _, err := websocket.DefaultDialer.DialContext(cmd.Context(), wsURL, nil)
		if err != nil {
			return err
		}
		defer conn.Close()
		log.Printf("[watch] connected to %s", baseURL)

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return err
			}
			fmt.Println(formatEvent(msg, watchPretty))
		}
	},
}

func formatEvent(msg []byte, pretty bool) string {
	if !pretty {
		return string(msg)
	}
	var obj map[string]any
	if err := json.Unmarshal(msg, &obj); err != nil {
		return string(msg)
	}
	b, _ := json.MarshalIndent(obj, "", "  ")
	return string(b)
}

func init() {
	watchCmd.Flags().BoolVar(&watchPretty, "pretty", false, "indent JSON events")
	rootCmd.AddCommand(watchCmd)
}
