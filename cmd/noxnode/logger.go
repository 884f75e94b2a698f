package main

import (
	"fmt"
	"os"
	"time"

	"github.com/DENNIS-CODES/nox/pkg/config"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// buildLogger constructs the node's logger the way HandleLoggingParams
// does in the node this project is descended from: production encoder
// config, capital level names, string-rendered durations, and a
// timestamp only when attached to a terminal (or forced).
func buildLogger(c *cli.Context, cfg config.Logger) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.LogLevel != "" {
		var err error
		level, err = zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("log setting: %w", err)
		}
	}
	if c.Bool("debug") {
		level = zapcore.DebugLevel
	}

	encoding := "console"
	if cfg.LogEncoding != "" {
		encoding = cfg.LogEncoding
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	wantTimestamp := term.IsTerminal(int(os.Stdout.Fd())) || c.Bool("force-timestamp-logs")
	if cfg.LogTimestamp != nil {
		wantTimestamp = *cfg.LogTimestamp
	}
	if wantTimestamp {
		cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cc.EncoderConfig.EncodeTime = func(time.Time, zapcore.PrimitiveArrayEncoder) {}
	}
	cc.Encoding = encoding
	cc.Level = zap.NewAtomicLevelAt(level)
	cc.Sampling = nil

	if cfg.LogPath != "" {
		cc.OutputPaths = []string{cfg.LogPath}
		cc.ErrorOutputPaths = []string{cfg.LogPath}
	}

	return cc.Build()
}
