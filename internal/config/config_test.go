// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bearcat.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// isolate keeps the developer's own config out of the test
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("BEARCAT_CONFIG", "")
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Serial.Port)
	assert.Equal(t, 57600, cfg.Serial.BaudRate)
	assert.Equal(t, 3*time.Second, cfg.Serial.ReadTimeout)
	assert.Equal(t, []string{"10c4:ea60"}, cfg.Discovery.DeviceIDs)
	assert.Equal(t, []string{"BC75XLT", "UBC75XLT"}, cfg.Scanner.SupportedModels)
	assert.Equal(t, "US", cfg.Scanner.Bandplans["0"])
	assert.Equal(t, 1, cfg.Scanner.Retries)
	assert.False(t, cfg.Scanner.VerifyWrites)
	assert.Equal(t, time.Duration(0), cfg.Scanner.CommandInterval)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "", cfg.Metrics.Textfile)
}

func TestLoad_File(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
serial:
  port: /dev/ttyUSB3
  readTimeout: 500ms
scanner:
  retries: 3
  verifyWrites: true
  commandInterval: 50ms
logging:
  level: debug
  format: json
  file:
    filename: /tmp/bearcat.log
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB3", cfg.Serial.Port)
	assert.Equal(t, 57600, cfg.Serial.BaudRate)
	assert.Equal(t, 500*time.Millisecond, cfg.Serial.ReadTimeout)
	assert.Equal(t, 3, cfg.Scanner.Retries)
	assert.True(t, cfg.Scanner.VerifyWrites)
	assert.Equal(t, 50*time.Millisecond, cfg.Scanner.CommandInterval)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/tmp/bearcat.log", cfg.Logging.File.Filename)
}

func TestLoad_SearchPath(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile("bearcat.yaml", []byte("serial:\n  port: /dev/ttyACM0\n"), 0o644))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", cfg.Serial.Port)
}

func TestLoad_Env(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "serial:\n  port: /dev/ttyUSB3\n")
	t.Setenv("BEARCAT_SERIAL_PORT", "/dev/ttyUSB7")
	t.Setenv("BEARCAT_SCANNER_RETRIES", "4")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB7", cfg.Serial.Port)
	assert.Equal(t, 4, cfg.Scanner.Retries)
}

func TestLoad_Flags(t *testing.T) {
	isolate(t)
	t.Setenv("BEARCAT_SERIAL_PORT", "/dev/ttyUSB7")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.StringP("port", "p", "", "")
	flags.IntP("baud", "b", 57600, "")
	flags.Duration("timeout", 3*time.Second, "")
	flags.String("log-level", "warn", "")
	require.NoError(t, flags.Parse([]string{"-p", "/dev/ttyUSB9", "--timeout", "1s"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyUSB9", cfg.Serial.Port)
	assert.Equal(t, time.Second, cfg.Serial.ReadTimeout)
	assert.Equal(t, 57600, cfg.Serial.BaudRate)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero baud", "serial:\n  baudRate: 0\n"},
		{"negative retries", "scanner:\n  retries: -1\n"},
		{"bad format", "logging:\n  format: xml\n"},
		{"bad yaml", "serial: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, err := Load(writeConfig(t, tt.body), nil)
			assert.Error(t, err)
		})
	}
}
