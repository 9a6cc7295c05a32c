// Package config holds the root command-line interface.
package config

import (
	"github.com/Alia5/rcpad/internal/cmd"
	"github.com/Alia5/rcpad/internal/log"
)

// CLI is the root of the kong command tree. Values come from config files,
// then RCPAD_* environment variables, then flags.
type CLI struct {
	ConfigFile string      `name:"config" help:"Config file to load before the default locations" type:"path" env:"RCPAD_CONFIG"`
	Log        log.Options `embed:"" prefix:"log."`

	Panel   cmd.Panel         `cmd:"" default:"withargs" help:"Open the graphical control panel"`
	Term    cmd.Term          `cmd:"" help:"Run the control panel in the terminal"`
	Vehicle cmd.Vehicle       `cmd:"" help:"Simulate the vehicle end of the link"`
	Config  cmd.ConfigCommand `cmd:"" help:"Configuration helpers"`
}
