package main

import (
	"embed"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"voxtype/internal/config"
	"voxtype/internal/logger"
	"voxtype/internal/overlay"
)

//go:embed all:frontend/dist
var assets embed.FS

var (
	cli          = kingpin.New("voxtype", "Push-to-talk dictation with transcription cleanup")
	configPath   = cli.Flag("config", "Path to config file").Default(defaultConfigPath()).Envar("VOXTYPE_CONFIG").String()
	settingsPath = cli.Flag("settings", "Path to the user settings file").String()
	verbose      = cli.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile      = cli.Flag("logfile", "Path to log file (default: stderr)").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(cli.Parse(os.Args[1:]))

	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
	}
	if *settingsPath != "" {
		cfg.Settings.Path = *settingsPath
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logfile != "" {
		cfg.Log.Output = "file"
		cfg.Log.File = *logfile
	}

	closer, err := logger.Init(logger.Config{Output: cfg.Log.Output, Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to initialize logger")
	}
	defer closer.Close()

	zlog.Info().Str("config", *configPath).Str("settings", cfg.Settings.Path).Msg("starting voxtype")

	app := NewApp(*cfg, zlog.Logger)
	err = wails.Run(&options.App{
		Title:            "voxtype",
		Width:            overlay.Width,
		Height:           overlay.Height,
		DisableResize:    true,
		Frameless:        true,
		AlwaysOnTop:      true,
		StartHidden:      true,
		BackgroundColour: &options.RGBA{R: 0, G: 0, B: 0, A: 0},
		AssetServer:      &assetserver.Options{Assets: assets},
		OnStartup:        app.startup,
		OnShutdown:       app.shutdown,
		Bind:             []interface{}{app},
	})
	if err != nil {
		zlog.Error().Err(err).Msg("application error")
		closer.Close()
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "voxtype.yaml"
	}
	return filepath.Join(dir, "voxtype", "config.yaml")
}
