package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pairline/pairline/internal/peer"
	"github.com/pairline/pairline/internal/ui"
)

var createCmd = &cobra.Command{
	Use:     "create",
	Aliases: []string{"c"},
	Short:   "Create a room and wait for a peer to join",
	Long: `Create a room on the signaling server, print its pairing code and wait
for the other side to join. The creator makes the WebRTC offer.

Examples:
  pairline create
  pairline create --server wss://relay.example.com/ws
  pairline create --relay --turn turn:turn.example.com`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return createAndConnect(cmd.Context())
	},
}

func createAndConnect(parent context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	preferRelay(cfg)

	ctx, cancel := context.WithTimeout(parent, cfg.Timeout)
	defer cancel()

	fmt.Println()
	stopSpinner := ui.RunConnectionSpinner("Connecting to server...")
	cc, err := NewConnectionContext(ctx, cfg)
	stopSpinner()
	if err != nil {
		return err
	}
	defer cc.Close()

	code, err := createRoom(ctx, cc)
	if err != nil {
		return err
	}
	ui.RenderRoomInfo(code, cfg.ServerURL)

	fmt.Println()
	stopSpinner = ui.RunWaitingSpinner("Waiting for peer to join...")
	err = waitForPeer(ctx, cc)
	stopSpinner()
	if err != nil {
		return err
	}
	ui.PrintSuccess("Peer joined")

	return runWithStages(ctx, cc, code, peer.RoleOfferer)
}

func init() {
	rootCmd.AddCommand(createCmd)
}
