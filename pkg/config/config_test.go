package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/DENNIS-CODES/nox/pkg/config"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, config.Default().Validate())
}

func TestSendTimeoutIsDoubleUpgrade(t *testing.T) {
	p := config.Default()
	require.Equal(t, 2*p.UpgradeTimeout, p.SendTimeout())
}

func TestValidateRejectsNonPositiveUpgradeTimeout(t *testing.T) {
	p := config.Default()
	p.UpgradeTimeout = 0
	require.Error(t, p.Validate())
}

func TestValidateRejectsNonPositiveEgressBuffer(t *testing.T) {
	p := config.Default()
	p.EgressBufferSize = 0
	require.Error(t, p.Validate())
}

func TestLoggerValidate(t *testing.T) {
	require.NoError(t, config.Logger{}.Validate())
	require.NoError(t, config.Logger{LogEncoding: "json"}.Validate())
	require.NoError(t, config.Logger{LogEncoding: "console"}.Validate())
	require.Error(t, config.Logger{LogEncoding: "xml"}.Validate())
}

func TestLoadFillsDefaultsAndParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlContent := "P2P:\n  EgressBufferSize: 10\nLogger:\n  LogLevel: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlContent), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 10, cfg.P2P.EgressBufferSize)
	require.Equal(t, "debug", cfg.Logger.LogLevel)
	require.Equal(t, config.Default().UpgradeTimeout, cfg.P2P.UpgradeTimeout)
}

func TestLoadRejectsBadEncoding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Logger:\n  LogEncoding: xml\n"), 0o644))

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load("/nonexistent/path/config.yaml")
	require.Error(t, err)
}
