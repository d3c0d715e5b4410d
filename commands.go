package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Fettser/diplom-deploy/app"
	"github.com/Fettser/diplom-deploy/app/batch"
	"github.com/Fettser/diplom-deploy/config"
	"github.com/Fettser/diplom-deploy/domain/acquisition"
	"github.com/Fettser/diplom-deploy/domain/restore"
	"github.com/Fettser/diplom-deploy/ui/tui"
)

// Exit codes of the restore command.
const (
	exitUsage   = 2
	exitRequest = 3
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config file (.json, .yaml or .yml)", EnvVars: []string{"HOLO_CONFIG"}},
		&cli.StringFlag{Name: "server", Usage: "restoration service base URL"},
		&cli.BoolFlag{Name: "debug", Usage: "debug logging and memory diagnostics"},
	}
}

func guiCommand() *cli.Command {
	return &cli.Command{
		Name:   "gui",
		Usage:  "Open the desktop window (default)",
		Flags:  append(globalFlags(), &cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "image to select on start"}),
		Action: guiAction,
	}
}

func restoreCommand() *cli.Command {
	return &cli.Command{
		Name:  "restore",
		Usage: "Submit one interferogram without the window",
		Flags: append(globalFlags(),
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "interferogram image", Required: true},
			&cli.StringFlag{Name: "lambda", Usage: "wavelength, nm"},
			&cli.StringFlag{Name: "x-angle", Usage: "x tilt, rad"},
			&cli.StringFlag{Name: "y-angle", Usage: "y tilt, rad"},
			&cli.StringFlag{Name: "x-size", Usage: "sensor width, mm"},
			&cli.StringFlag{Name: "y-size", Usage: "sensor height, mm"},
			&cli.Float64Flag{Name: "radius", Usage: "enable the aperture mask with this radius in source pixels"},
			&cli.BoolFlag{Name: "tui", Usage: "interactive terminal view"},
			&cli.StringFlag{Name: "preview-svg", Usage: "write the preview overlay as SVG"},
			&cli.StringFlag{Name: "surface-png", Usage: "write the rendered surface as PNG"},
		),
		Action: restoreAction,
	}
}

// configPath is --config, or the per-user default location.
func configPath(c *cli.Context) string {
	if p := c.String("config"); p != "" {
		return p
	}
	return config.DefaultPath()
}

// loadConfig reads the config file and applies environment then flag overrides.
func loadConfig(c *cli.Context) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath(c))
	if err != nil {
		return nil, nil, cli.Exit(err.Error(), exitUsage)
	}
	cfg.ApplyEnv()
	if c.IsSet("server") {
		cfg.ServerURL = c.String("server")
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	_ = cfg.Validate()
	return cfg, NewLogger(levelFor(cfg.Debug)), nil
}

func guiAction(c *cli.Context) error {
	cfg, logger, err := loadConfig(c)
	if err != nil {
		return err
	}
	client, err := app.NewClient("Interferogram restoration", cfg, configPath(c), logger)
	if err != nil {
		return err
	}
	if path := c.String("file"); path != "" {
		if err := client.Open(path); err != nil {
			logger.Warn("start file rejected", "path", path, "error", err)
		}
	}
	client.Start()
	return nil
}

func paramsFrom(c *cli.Context) acquisition.Params {
	return acquisition.Params{
		Lambda: c.String("lambda"),
		XAngle: c.String("x-angle"),
		YAngle: c.String("y-angle"),
		XSize:  c.String("x-size"),
		YSize:  c.String("y-size"),
	}
}

func restoreAction(c *cli.Context) error {
	cfg, logger, err := loadConfig(c)
	if err != nil {
		return err
	}
	req := batch.Request{Path: c.String("file"), Params: paramsFrom(c)}
	if c.IsSet("radius") {
		r := c.Float64("radius")
		req.Radius = &r
	}

	prepCtx, cancel := context.WithTimeout(c.Context, 30*time.Second)
	prepared, err := batch.Prepare(prepCtx, req, logger)
	cancel()
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	defer prepared.Close()

	if path := c.String("preview-svg"); path != "" {
		svg, ok := prepared.OverlaySVG()
		if !ok {
			logger.Warn("preview unavailable, svg not written", "path", path)
		} else if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
			return cli.Exit(fmt.Sprintf("write %s: %v", path, err), exitUsage)
		}
	}

	client, err := restore.NewClient(restore.ClientConfig{URL: cfg.RestoreURL()}, logger)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	defer client.Close()
	submit := func(ctx context.Context) (*restore.Result, error) {
		return client.Restore(ctx, prepared.Payload)
	}

	var (
		res     *restore.Result
		elapsed time.Duration
	)
	if c.Bool("tui") {
		m, err := tui.Run(prepared.Payload.FileName, submit, cfg.RequestTimeout())
		if err != nil {
			return err
		}
		res, elapsed = m.Result(), m.Elapsed(time.Now())
		if res == nil {
			if m.Failed() {
				return cli.Exit("restoration failed", exitRequest)
			}
			return nil
		}
	} else {
		ctx := c.Context
		if t := cfg.RequestTimeout(); t > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, t)
			defer cancel()
		}
		start := time.Now()
		res, err = submit(ctx)
		elapsed = time.Since(start)
		if err != nil {
			logger.Error("restore failed", "error", err)
			return cli.Exit("restoration failed: "+err.Error(), exitRequest)
		}
		fmt.Println(batch.Summary(res, elapsed))
	}
	logger.Info("restore.done", "points", res.Points(), "elapsed", elapsed)

	if path := c.String("surface-png"); path != "" {
		if err := batch.SaveSurface(res, path, cfg.ViewerWidth, cfg.ViewerHeight); err != nil {
			return cli.Exit(fmt.Sprintf("write %s: %v", path, err), exitUsage)
		}
	}
	return nil
}
