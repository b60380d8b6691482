package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pairline/pairline/internal/config"
	"github.com/pairline/pairline/internal/peer"
	"github.com/pairline/pairline/internal/signalclient"
	"github.com/pairline/pairline/internal/ui"
)

// ConnectionContext bundles a relay connection with its message router.
type ConnectionContext struct {
	Client  *signalclient.Client
	Handler *signalclient.Handler
	Config  *config.Client
}

func NewConnectionContext(ctx context.Context, cfg *config.Client) (*ConnectionContext, error) {
	client := signalclient.NewClient(cfg.ServerURL)
	if err := client.Connect(ctx); err != nil {
		return nil, peer.NewError("connect to server", err)
	}

	handler := signalclient.NewHandler(client)
	go handler.Start()

	return &ConnectionContext{
		Client:  client,
		Handler: handler,
		Config:  cfg,
	}, nil
}

func (c *ConnectionContext) Close() {
	if c.Handler != nil {
		c.Handler.Close()
	}
	if c.Client != nil {
		c.Client.Close()
	}
}

func LoadConfig() (*config.Client, error) {
	cfg, err := config.LoadClient(config.Options{
		ServerURL:  flagServer,
		STUNServer: flagSTUN,
		TURNServer: flagTURN,
		TURNUser:   flagTURNUser,
		TURNPass:   flagTURNPass,
		ForceRelay: flagRelay,
		Timeout:    flagTimeout,
	})
	if err != nil {
		return nil, peer.NewError("load config", err)
	}
	return cfg, nil
}

// preferRelay switches to TURN on networks where direct candidates rarely
// connect. Without a TURN server it only warns.
func preferRelay(cfg *config.Client) {
	if cfg.ForceRelay || !peer.RestrictedNetwork() {
		return
	}
	if cfg.TURNServer == "" {
		ui.PrintWarning("VPN or CGNAT detected; configure a TURN server if the connection fails")
		return
	}
	slog.Info("restricted network detected, forcing relay", "turn", cfg.TURNServer)
	cfg.ForceRelay = true
}

func createRoom(ctx context.Context, cc *ConnectionContext) (string, error) {
	if !cc.Client.SendMessage(signalclient.CreateRoom()) {
		return "", peer.NewError("create room", peer.ErrServerClosed)
	}

	select {
	case code := <-cc.Handler.PairingCode:
		return code, nil
	case errMsg := <-cc.Handler.Error:
		return "", peer.WrapError("create room", peer.ErrSignaling, errMsg)
	case <-cc.Handler.Done():
		return "", peer.NewError("create room", peer.ErrServerClosed)
	case <-ctx.Done():
		return "", peer.WrapError("create room", peer.ErrTimeout, ctx.Err().Error())
	}
}

func joinRoom(cc *ConnectionContext, code string) error {
	if !cc.Client.SendMessage(signalclient.JoinRoom(code)) {
		return peer.NewError("join room", peer.ErrServerClosed)
	}
	return nil
}

func waitForPeer(ctx context.Context, cc *ConnectionContext) error {
	select {
	case <-cc.Handler.PeerJoined:
		return nil
	case errMsg := <-cc.Handler.Error:
		return peer.WrapError("wait for peer", peer.ErrSignaling, errMsg)
	case <-cc.Handler.Done():
		return peer.NewError("wait for peer", peer.ErrServerClosed)
	case <-ctx.Done():
		return peer.WrapError("wait for peer", peer.ErrTimeout, ctx.Err().Error())
	}
}

// runSession negotiates the peer connection and verifies the data channel.
// stage receives progress updates; it may be nil.
func runSession(ctx context.Context, cc *ConnectionContext, code string, role peer.Role, stage func(string)) (*peer.Result, error) {
	session, err := peer.NewSession(cc.Config, cc.Client, cc.Handler, code, role, peerName(role))
	if err != nil {
		return nil, peer.NewError("create session", err)
	}
	defer session.Close()

	session.OnStage(stage)
	return session.Run(ctx)
}

// runWithStages wraps runSession in the stage view and prints the summary.
func runWithStages(ctx context.Context, cc *ConnectionContext, code string, role peer.Role) error {
	view := ui.NewStageUI(fmt.Sprintf("%s Connecting to peer", ui.IconPeer))
	view.Start(os.Stdout)

	res, err := runSession(ctx, cc, code, role, view.Stage)
	if err != nil {
		view.Finish(false, err.Error())
		return err
	}
	view.Finish(true, "Peer connection verified")

	fmt.Println()
	ui.RenderSessionSummary("Session", summaryOf(res))
	return nil
}

func summaryOf(res *peer.Result) ui.SessionSummary {
	name := res.PeerName
	if res.PeerVersion != "" {
		name = fmt.Sprintf("%s (%s)", name, res.PeerVersion)
	}
	return ui.SessionSummary{
		Role:      string(res.Role),
		Code:      res.Code,
		Peer:      name,
		RTT:       res.RTT,
		SetupTime: res.SetupTime,
	}
}

func peerName(role peer.Role) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "pairline-" + string(role)
	}
	return host
}
