package main

import (
	"bytes"
	"flag"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := newLoggerTo(&buf, levelFor(false))
	l.Debug("hidden")
	l.Info("form.select", "file", "a.png")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, `"msg":"form.select"`) {
		t.Fatalf("info logger output %q", out)
	}
	if levelFor(true) != slog.LevelDebug {
		t.Fatal("debug flag ignored")
	}
}

func contextWith(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range restoreCommand().Flags {
		if err := f.Apply(set); err != nil {
			t.Fatal(err)
		}
	}
	if err := set.Parse(args); err != nil {
		t.Fatal(err)
	}
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestLoadConfig_FlagsOverrideFileAndEnv(t *testing.T) {
	t.Setenv("HOLO_SERVER_URL", "http://env:1")
	path := filepath.Join(t.TempDir(), "absent.yaml")
	c := contextWith(t, "--config", path, "--server", "http://flag:2/", "--debug", "--file", "x.png")
	cfg, logger, err := loadConfig(c)
	if err != nil {
		t.Fatal(err)
	}
	if logger == nil || !cfg.Debug {
		t.Fatal("debug not applied")
	}
	if cfg.RestoreURL() != "http://flag:2/api/restore" {
		t.Fatalf("url %q", cfg.RestoreURL())
	}
}

func TestParamsFrom(t *testing.T) {
	c := contextWith(t, "--file", "x.png", "--lambda", "632.8", "--y-size", "4,8")
	p := paramsFrom(c)
	if p.Lambda != "632.8" || p.YSize != "4,8" || p.XAngle != "" {
		t.Fatalf("params %+v", p)
	}
}
