package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Default configuration values
const (
	DefaultPort            = "8765"
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 10 * time.Second

	DefaultServerURL = "ws://localhost:8765/ws"
	DefaultSTUN      = "stun:stun.l.google.com:19302"
	DefaultTimeout   = 60 * time.Second
)

// Server holds the relay's configuration.
type Server struct {
	Port     string
	LogLevel string

	// AllowedOrigins restricts websocket upgrades by Origin header.
	// Empty or containing "*" allows every origin.
	AllowedOrigins []string

	ShutdownTimeout time.Duration
}

// Addr returns the listen address for the HTTP server.
func (s *Server) Addr() string {
	return ":" + s.Port
}

// OriginAllowed reports whether a websocket upgrade from origin is accepted.
func (s *Server) OriginAllowed(origin string) bool {
	if len(s.AllowedOrigins) == 0 || origin == "" {
		return true
	}
	for _, o := range s.AllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// LoadServer reads the relay configuration from the environment, after loading
// a .env file from the working directory when one exists.
func LoadServer() (*Server, error) {
	loadDotEnv()

	v := viper.New()
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.log_level", DefaultLogLevel)
	v.SetDefault("server.allowed_origins", "")
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)

	if err := bindEnv(v, map[string]string{
		"server.port":             "PORT",
		"server.log_level":        "LOG_LEVEL",
		"server.allowed_origins":  "ALLOWED_ORIGINS",
		"server.shutdown_timeout": "SHUTDOWN_TIMEOUT",
	}); err != nil {
		return nil, err
	}

	cfg := &Server{
		Port:            fmt.Sprint(v.Get("server.port")),
		LogLevel:        v.GetString("server.log_level"),
		AllowedOrigins:  splitList(v.GetString("server.allowed_origins")),
		ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
	}

	if cfg.Port == "" {
		return nil, errors.New("PORT must not be empty")
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	return cfg, nil
}

// Client holds the CLI's configuration.
type Client struct {
	// ServerURL is the relay's websocket endpoint.
	ServerURL string

	// ICE servers for WebRTC
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string

	// ForceRelay restricts ICE to TURN relay candidates.
	ForceRelay bool

	// Timeout bounds how long a session may take to connect.
	Timeout time.Duration
}

// Options for loading config with CLI flag overrides
type Options struct {
	ServerURL  string
	STUNServer string
	TURNServer string
	TURNUser   string
	TURNPass   string
	ForceRelay bool
	Timeout    time.Duration
}

// LoadClient reads configuration with the following priority:
// 1. CLI flags (passed via Options) - highest priority
// 2. Environment variables
// 3. Hardcoded defaults - lowest priority
func LoadClient(opts Options) (*Client, error) {
	loadDotEnv()

	v := viper.New()
	v.SetDefault("server", DefaultServerURL)
	v.SetDefault("stun", DefaultSTUN)
	v.SetDefault("timeout", DefaultTimeout)

	if err := bindEnv(v, map[string]string{
		"server":    "PAIRLINE_SERVER",
		"stun":      "STUN_SERVER",
		"turn":      "TURN_SERVER",
		"turn_user": "TURN_USERNAME",
		"turn_pass": "TURN_PASSWORD",
		"timeout":   "PAIRLINE_TIMEOUT",
	}); err != nil {
		return nil, err
	}

	override(v, "server", opts.ServerURL)
	override(v, "stun", opts.STUNServer)
	override(v, "turn", opts.TURNServer)
	override(v, "turn_user", opts.TURNUser)
	override(v, "turn_pass", opts.TURNPass)
	if opts.Timeout > 0 {
		v.Set("timeout", opts.Timeout)
	}

	cfg := &Client{
		ServerURL:  v.GetString("server"),
		STUNServer: v.GetString("stun"),
		TURNServer: v.GetString("turn"),
		TURNUser:   v.GetString("turn_user"),
		TURNPass:   v.GetString("turn_pass"),
		ForceRelay: opts.ForceRelay,
		Timeout:    v.GetDuration("timeout"),
	}

	if !strings.HasPrefix(cfg.ServerURL, "ws://") && !strings.HasPrefix(cfg.ServerURL, "wss://") {
		return nil, fmt.Errorf("server URL %q must use ws:// or wss://", cfg.ServerURL)
	}
	if cfg.ForceRelay && cfg.TURNServer == "" {
		return nil, errors.New("cannot force relay mode without TURN server configured")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return cfg, nil
}

// StatsURL derives the relay's /stats endpoint from the websocket URL.
func (c *Client) StatsURL() string {
	u := strings.Replace(c.ServerURL, "ws", "http", 1)
	u = strings.TrimSuffix(u, "/")
	u = strings.TrimSuffix(u, "/ws")
	return u + "/stats"
}

// GetSTUNServers returns STUN server URLs as strings
func (c *Client) GetSTUNServers() []string {
	if c.STUNServer == "" {
		return nil
	}
	return []string{c.STUNServer}
}

// GetTURNServers returns TURN server URLs if configured
func (c *Client) GetTURNServers() []string {
	if c.TURNServer == "" {
		return nil
	}
	return []string{
		fmt.Sprintf("%s:3478?transport=udp", c.TURNServer),
		fmt.Sprintf("%s:3478?transport=tcp", c.TURNServer),
	}
}

// bindEnv binds each key to exactly one environment variable. Only these
// names are read from the environment.
func bindEnv(v *viper.Viper, keys map[string]string) error {
	for key, env := range keys {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}
	return nil
}

func override(v *viper.Viper, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func loadDotEnv() {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}
}
