package cmd

import (
	"log/slog"
	"time"

	"github.com/Alia5/rcpad/internal/log"
	"github.com/Alia5/rcpad/link"
)

// LinkOptions configure the connection to the vehicle.
type LinkOptions struct {
	Address          string        `help:"WebSocket address of the vehicle" default:"ws://192.168.4.1:1024/" env:"RCPAD_LINK_ADDRESS"`
	ReconnectDelay   time.Duration `help:"Delay before reconnecting after the link closes" default:"2s" env:"RCPAD_LINK_RECONNECT_DELAY"`
	HandshakeTimeout time.Duration `help:"WebSocket handshake timeout" default:"5s" env:"RCPAD_LINK_HANDSHAKE_TIMEOUT"`
	WriteTimeout     time.Duration `help:"Timeout for sending a single token" default:"5s" env:"RCPAD_LINK_WRITE_TIMEOUT"`
}

func (o LinkOptions) validate() error {
	return link.ValidateAddress(o.Address)
}

// open starts connecting in the background. The returned manager keeps
// reconnecting until it is closed.
func (o LinkOptions) open(logger *slog.Logger, traffic *log.TokenLogger) *link.Manager {
	d := link.NewWebSocketDialer()
	if o.HandshakeTimeout > 0 {
		d.HandshakeTimeout = o.HandshakeTimeout
	}
	if o.WriteTimeout > 0 {
		d.WriteTimeout = o.WriteTimeout
	}
	cfg := &link.Config{ReconnectDelay: o.ReconnectDelay}
	if traffic.Enabled() {
		cfg.Traffic = traffic
	}
	m := link.New(d, cfg, logger.With("component", "link"))
	if err := m.Connect(o.Address); err != nil {
		logger.Warn("initial connect failed, retrying", "address", o.Address, "error", err)
	}
	return m
}
