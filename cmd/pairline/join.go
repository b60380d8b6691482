package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pairline/pairline/internal/peer"
	"github.com/pairline/pairline/internal/ui"
)

var joinCmd = &cobra.Command{
	Use:     "join <code>",
	Aliases: []string{"j"},
	Short:   "Join a room with its pairing code",
	Long: `Join the room identified by a 6-digit pairing code and answer the
creator's WebRTC offer.

Examples:
  pairline join 123456
  pairline join 123456 --relay --turn turn:turn.example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := parseCode(args[0])
		if err != nil {
			return err
		}
		return joinAndConnect(cmd.Context(), code)
	},
}

func joinAndConnect(parent context.Context, code string) error {
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

	if err := joinRoom(cc, code); err != nil {
		return err
	}
	ui.PrintInfo(fmt.Sprintf("Joining room %s", ui.CodeStyle.Render(code)))

	return runWithStages(ctx, cc, code, peer.RoleAnswerer)
}

// parseCode accepts a pairing code with optional spaces or dashes, as people
// tend to read it out in groups.
func parseCode(input string) (string, error) {
	code := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, input)

	if len(code) != 6 {
		return "", fmt.Errorf("pairing code must have 6 digits, got %q", input)
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("pairing code must have 6 digits, got %q", input)
		}
	}
	return code, nil
}

func init() {
	rootCmd.AddCommand(joinCmd)
}
