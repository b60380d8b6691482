package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/pairline/pairline/internal/peer"
	"github.com/pairline/pairline/internal/signaling"
	"github.com/pairline/pairline/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show room and connection counts of a signaling server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig()
		if err != nil {
			return err
		}

		stats, err := fetchStats(cmd.Context(), cfg.StatsURL())
		if err != nil {
			return err
		}
		ui.RenderStats(cfg.ServerURL, *stats)
		return nil
	},
}

func fetchStats(ctx context.Context, url string) (*signaling.Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, peer.NewError("fetch stats", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, peer.NewError("fetch stats", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, peer.NewError("fetch stats", fmt.Errorf("unexpected status %s", resp.Status))
	}

	var stats signaling.Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, peer.NewError("decode stats", err)
	}
	return &stats, nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
