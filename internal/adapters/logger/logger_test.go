package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/logger"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestLogger_Levels(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New()
	lg.SetOutput(buf)

	lg.Info("configured nms_cpu")
	lg.Warn("state file unreadable")
	lg.Error(nil)

	assert.Equal(t, "configured nms_cpu\n! state file unreadable\n", buf.String())
}

func TestLogger_SetLevel(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New()
	lg.SetOutput(buf)
	lg.SetLevel(domain.LogLevelWarn)

	lg.Info("hidden")
	lg.Warn("shown")

	assert.Equal(t, "! shown\n", buf.String())
}

func TestLogger_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	lg := logger.New()
	lg.SetOutput(buf)
	lg.SetJSON(true)

	lg.Error(zerr.Wrap(&domain.CompilationError{
		Unit:        "nms_cpu",
		Source:      "nms_cpu.cpp",
		ExitCode:    2,
		Diagnostics: "nms_cpu.cpp:1: error",
	}, "unit nms_cpu failed"))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "ERROR", record["level"])
	assert.Equal(t, "build failed", record["msg"])
	assert.Equal(t, "nms_cpu", record["unit"])
	assert.InDelta(t, 2, record["exit_code"], 0)
	assert.Equal(t, "nms_cpu.cpp:1: error", record["diagnostics"])
	assert.Contains(t, record["error"], "unit nms_cpu failed")
}

func TestLogger_SetOutputKeepsJSONMode(t *testing.T) {
	lg := logger.New()
	lg.SetJSON(true)

	buf := &bytes.Buffer{}
	lg.SetOutput(buf)
	lg.Info("json line")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "json line", record["msg"])
}

func TestLogger_ErrorPretty(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New()
	lg.SetOutput(buf)
	lg.Error(errors.New("plain failure"))

	assert.Equal(t, "✗ Error: plain failure\n", buf.String())
}

func TestFormatError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		goldenName string
	}{
		{
			name:       "configuration chain",
			err:        zerr.With(zerr.Wrap(domain.ErrAcceleratorSDKMissing, "unit nms_cuda failed"), "unit", "nms_cuda"),
			goldenName: "error_chain",
		},
		{
			name: "compilation diagnostics",
			err: zerr.Wrap(&domain.CompilationError{
				Unit:        "nms_cpu",
				Source:      "src/nms_cpu.cpp",
				ExitCode:    1,
				Diagnostics: "src/nms_cpu.cpp:3:1: error: expected ';'\n1 error generated.\n",
			}, "unit nms_cpu failed"),
			goldenName: "error_compilation",
		},
		{
			name:       "multiline message",
			err:        zerr.Wrap(errors.New("disk full"), "first line\nsecond line"),
			goldenName: "error_multiline",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := goldie.New(t)
			g.Assert(t, tt.goldenName, []byte(logger.FormatError(tt.err)))
		})
	}
}
