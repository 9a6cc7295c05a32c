package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Alia5/rcpad/internal/log"
	"github.com/Alia5/rcpad/internal/vehicle"
)

// Vehicle runs the vehicle simulator.
type Vehicle struct {
	Server vehicle.ServerConfig `embed:"" prefix:"vehicle."`
}

// Run is called by Kong when the vehicle command is executed.
func (v *Vehicle) Run(logger *slog.Logger, traffic *log.TokenLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return v.Serve(ctx, logger, traffic)
}

// Serve runs the simulator until ctx is done.
func (v *Vehicle) Serve(ctx context.Context, logger *slog.Logger, traffic *log.TokenLogger) error {
	var veh *vehicle.Vehicle
	if traffic.Enabled() {
		veh = vehicle.New(logger.With("component", "vehicle"), traffic)
	} else {
		veh = vehicle.New(logger.With("component", "vehicle"), nil)
	}

	srv := vehicle.NewServer(v.Server, veh, logger)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("listen on %s: %w", v.Server.Addr, err)
	}
	<-ctx.Done()
	logger.Info("vehicle shutting down")
	return srv.Close()
}
