package main

import (
	"os"

	"github.com/Alia5/rcpad/internal/config"
	"github.com/Alia5/rcpad/internal/configpaths"
	"github.com/Alia5/rcpad/internal/log"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
)

func main() {
	userCfg := configpaths.FindUserConfig(os.Args[1:])
	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths(userCfg)

	var cli config.CLI
	ctx := kong.Parse(&cli,
		kong.Name("rcpad"),
		kong.Description("Remote-control panel: joystick and buttons over a WebSocket link"),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON, jsonPaths...),
		kong.Configuration(kongyaml.Loader, yamlPaths...),
		kong.Configuration(kongtoml.Loader, tomlPaths...),
	)

	// the terminal panel draws on the console, so it only logs to a file
	out := log.Output{NoConsole: ctx.Command() == "term"}
	logger, closers, err := log.SetupLoggerTo(out, cli.Log.Level, cli.Log.File)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}()

	var traffic *log.TokenLogger
	switch {
	case cli.Log.RawFile != "":
		f, err := os.OpenFile(cli.Log.RawFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("failed to open token log", "file", cli.Log.RawFile, "error", err)
			traffic = log.NewTokenLogger(nil)
		} else {
			traffic = log.NewTokenLogger(f)
			closers = append(closers, f)
		}
	case cli.Log.Level == "trace":
		traffic = log.NewTokenLogger(os.Stdout)
	default:
		traffic = log.NewTokenLogger(nil)
	}

	ctx.Bind(logger)
	ctx.Bind(traffic)
	ctx.Bind(cli.Log)

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}
