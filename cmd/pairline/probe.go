package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pairline/pairline/internal/config"
	"github.com/pairline/pairline/internal/peer"
	"github.com/pairline/pairline/internal/ui"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check a signaling server end to end",
	Long: `Open two connections to the signaling server, pair them through a fresh
room and negotiate a WebRTC data channel between them inside this process.

Examples:
  pairline probe
  pairline probe --server wss://relay.example.com/ws`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig()
		if err != nil {
			return err
		}

		stopSpinner := ui.RunConnectionSpinner("Probing " + cfg.ServerURL + "...")
		results, err := probe(cmd.Context(), cfg)
		stopSpinner()
		if err != nil {
			return err
		}

		ui.PrintSuccess("Relay paired both peers and the data channel is up")
		for _, res := range results {
			fmt.Println()
			ui.RenderSessionSummary(fmt.Sprintf("Probe %s", res.Role), summaryOf(res))
		}
		return nil
	},
}

// probe plays both roles against cfg.ServerURL and returns the offerer's and
// answerer's results, in that order.
func probe(parent context.Context, cfg *config.Client) ([]*peer.Result, error) {
	ctx, cancel := context.WithTimeout(parent, cfg.Timeout)
	defer cancel()

	creator, err := NewConnectionContext(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer creator.Close()

	joiner, err := NewConnectionContext(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer joiner.Close()

	code, err := createRoom(ctx, creator)
	if err != nil {
		return nil, err
	}
	if err := joinRoom(joiner, code); err != nil {
		return nil, err
	}
	if err := waitForPeer(ctx, creator); err != nil {
		return nil, err
	}

	results := make([]*peer.Result, 2)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Leaving the room tells the joiner the offerer is done.
		defer creator.Close()
		res, err := runSession(gctx, creator, code, peer.RoleOfferer, nil)
		results[0] = res
		return err
	})
	g.Go(func() error {
		res, err := runSession(gctx, joiner, code, peer.RoleAnswerer, nil)
		results[1] = res
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
