package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli"

	"github.com/valerio/go-dmg/dmg"
	"github.com/valerio/go-dmg/dmg/audio"
	"github.com/valerio/go-dmg/dmg/backend"
	"github.com/valerio/go-dmg/dmg/backend/headless"
	"github.com/valerio/go-dmg/dmg/backend/terminal"
	"github.com/valerio/go-dmg/dmg/config"
	"github.com/valerio/go-dmg/dmg/input"
	"github.com/valerio/go-dmg/dmg/input/action"
	"github.com/valerio/go-dmg/dmg/input/event"
	"github.com/valerio/go-dmg/dmg/timing"
)

func main() {
	app := newApp(runEmulator)
	if err := app.Run(os.Args); err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func newApp(action func(*cli.Context) error) *cli.App {
	app := cli.NewApp()
	app.Name = "dmg"
	app.Description = "A Game Boy (DMG) emulator"
	app.Usage = "dmg [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "bootstrap",
			Usage: "Path to a 256 byte boot ROM, overrides the config file",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "Path to the TOML settings file",
			Value: config.DefaultPath(),
		},
		cli.BoolFlag{
			Name:  "save-config",
			Usage: "Write the effective settings back to the config file",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run the emulator without a display",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
		},
		cli.IntFlag{
			Name:  "speed",
			Usage: "Speed multiplier, overrides the config file",
		},
		cli.BoolFlag{
			Name:  "mute",
			Usage: "Start with audio muted",
		},
		cli.StringFlag{
			Name:  "limiter",
			Usage: "Frame pacing: adaptive, ticker or none",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save PNG snapshots every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save snapshots (default: temp directory)",
		},
		cli.IntFlag{
			Name:  "snapshot-scale",
			Usage: "Scale factor for PNG snapshots, overrides the config file",
		},
		cli.BoolFlag{
			Name:  "debug-header",
			Usage: "Print the cartridge header and exit",
		},
		cli.BoolFlag{
			Name:  "trace",
			Usage: "Log every executed instruction at debug level",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn or error",
			Value: "info",
		},
	}
	app.Action = action
	return app
}

func runEmulator(c *cli.Context) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.String("log-level"))); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() == 0 {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
		romPath = c.Args().Get(0)
	}

	settings, err := loadSettings(c)
	if err != nil {
		return err
	}

	rt := config.NewRuntime(settings.Emulation.Speed, settings.Audio.Muted)
	opts := []dmg.Option{dmg.WithRuntime(rt), dmg.WithTrace(c.Bool("trace"))}
	if settings.Emulation.Bootstrap != "" {
		image, err := dmg.LoadBootstrapImage(settings.Emulation.Bootstrap)
		if err != nil {
			return err
		}
		opts = append(opts, dmg.WithBootstrap(image))
	}

	emu, err := dmg.NewWithFile(romPath, opts...)
	if err != nil {
		return err
	}

	if c.Bool("debug-header") {
		fmt.Println(emu.Cartridge().Header())
		return nil
	}

	be, limiter, err := newBackend(c, settings, romPath)
	if err != nil {
		return err
	}

	manager := input.NewManager(emu)
	input.BindRuntime(manager, rt)
	snapshotDir := c.String("snapshot-dir")
	if snapshotDir == "" {
		snapshotDir = "."
	}
	manager.On(action.EmulatorSnapshot, event.Press, func() {
		name := fmt.Sprintf("%s_frame_%d", romName(romPath), emu.Frames())
		path, err := backend.SaveSnapshot(emu.Framebuffer(), snapshotDir, name, settings.Video.Scale)
		if err != nil {
			slog.Error("Snapshot failed", "error", err)
			return
		}
		slog.Info("Saved snapshot", "path", path)
	})

	session := &dmg.Session{
		Emulator: emu,
		Backend:  be,
		Config: backend.BackendConfig{
			Title:    emu.Cartridge().Title(),
			Scale:    settings.Video.Scale,
			LogLevel: level,
			Status:   statusFunc(emu, rt),
		},
		Limiter: limiter,
		Input:   manager,
		Monitor: audio.NewMonitor(emu, audio.LogSink,
			audio.WithInterval(settings.PollInterval()),
			audio.WithMute(rt.Muted)),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := session.Run(ctx); err != nil {
		return err
	}

	if out := emu.SerialOutput(); out != "" {
		slog.Info("Serial output", "text", out)
	}
	return nil
}

// loadSettings reads the config file and applies command line overrides.
func loadSettings(c *cli.Context) (config.Settings, error) {
	path := c.String("config")
	settings, err := config.Load(path)
	if err != nil {
		return settings, err
	}

	if c.IsSet("speed") {
		settings.Emulation.Speed = c.Int("speed")
	}
	if c.IsSet("bootstrap") {
		settings.Emulation.Bootstrap = c.String("bootstrap")
	}
	if c.Bool("mute") {
		settings.Audio.Muted = true
	}
	if c.IsSet("limiter") {
		settings.Video.Limiter = c.String("limiter")
	}
	if c.IsSet("snapshot-scale") {
		settings.Video.Scale = c.Int("snapshot-scale")
	}
	settings.Normalize()

	if c.Bool("save-config") {
		if err := config.Save(path, settings); err != nil {
			return settings, err
		}
		slog.Info("Saved settings", "path", path)
	}
	return settings, nil
}

func newBackend(c *cli.Context, settings config.Settings, romPath string) (backend.Backend, timing.Limiter, error) {
	if !c.Bool("headless") {
		limiter, err := timing.NewLimiter(settings.Video.Limiter)
		if err != nil {
			return nil, nil, err
		}
		return terminal.New(), limiter, nil
	}

	frames := c.Int("frames")
	if frames <= 0 {
		return nil, nil, errors.New("headless mode requires --frames option with a positive value")
	}

	snapshots, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath, settings.Video.Scale)
	if err != nil {
		return nil, nil, err
	}

	// headless runs as fast as possible unless pacing was asked for
	limiter := timing.NewNoOpLimiter()
	if c.IsSet("limiter") {
		if limiter, err = timing.NewLimiter(settings.Video.Limiter); err != nil {
			return nil, nil, err
		}
	}
	return headless.New(frames, snapshots), limiter, nil
}

func statusFunc(emu *dmg.DMG, rt *config.Runtime) func() backend.Status {
	return func() backend.Status {
		st := emu.CPUState()
		return backend.Status{
			Title: emu.Cartridge().Title(),
			Speed: rt.Speed(),
			Muted: rt.Muted(),
			Frame: emu.Frames(),
			PC:    st.PC,
		}
	}
}

func romName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}
