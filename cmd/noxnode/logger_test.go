package main

import (
	"flag"
	"path/filepath"
	"testing"

	"github.com/DENNIS-CODES/nox/pkg/config"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func TestBuildLoggerDefault(t *testing.T) {
	set := flag.NewFlagSet("flagSet", flag.ExitOnError)
	c := cli.NewContext(cli.NewApp(), set, nil)

	logger, err := buildLogger(c, config.Logger{LogPath: filepath.Join(t.TempDir(), "file.log")})
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zap.InfoLevel))
	require.False(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestBuildLoggerDebugFlag(t *testing.T) {
	set := flag.NewFlagSet("flagSet", flag.ExitOnError)
	set.Bool("debug", true, "")
	c := cli.NewContext(cli.NewApp(), set, nil)

	logger, err := buildLogger(c, config.Logger{LogPath: filepath.Join(t.TempDir(), "file.log")})
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestBuildLoggerInvalidLevel(t *testing.T) {
	set := flag.NewFlagSet("flagSet", flag.ExitOnError)
	c := cli.NewContext(cli.NewApp(), set, nil)

	_, err := buildLogger(c, config.Logger{LogLevel: "not-a-level"})
	require.Error(t, err)
}

func TestBuildLoggerTimestampOverride(t *testing.T) {
	set := flag.NewFlagSet("flagSet", flag.ExitOnError)
	c := cli.NewContext(cli.NewApp(), set, nil)

	forced := true
	logger, err := buildLogger(c, config.Logger{LogTimestamp: &forced})
	require.NoError(t, err)
	require.NotNil(t, logger)
}
