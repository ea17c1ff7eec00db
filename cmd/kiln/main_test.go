package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/kiln/internal/adapters/telemetry"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/kiln/internal/engine/session"
	"go.trai.ch/kiln/internal/engine/toolchain"
	"go.uber.org/mock/gomock"
)

type testApp struct {
	loader *mocks.MockConfigLoader
	logger *mocks.MockLogger
	app    *app.App
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctrl := gomock.NewController(t)
	ta := &testApp{
		loader: mocks.NewMockConfigLoader(ctrl),
		logger: mocks.NewMockLogger(ctrl),
	}
	configurator := toolchain.NewConfigurator()
	orch := session.NewOrchestrator(configurator, mocks.NewMockCompiler(ctrl), ta.logger, telemetry.NewNoOp())
	ta.app = app.New(
		ta.loader,
		mocks.NewMockEnvironmentDetector(ctrl),
		orch,
		configurator,
		mocks.NewMockSourceWatcher(ctrl),
		ta.logger,
	)
	return ta
}

func (ta *testApp) provider(context.Context) (*app.Components, error) {
	return &app.Components{App: ta.app, Logger: ta.logger}, nil
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	ta := newTestApp(t)
	stdout := new(bytes.Buffer)

	exitCode := run(context.Background(), []string{"version"}, stdout, new(bytes.Buffer), ta.provider)

	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "kiln version")
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(context.Context) (*app.Components, error) {
		return nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, new(bytes.Buffer), stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that a failing command is logged and exits 1.
func TestRun_ExecutionError(t *testing.T) {
	ta := newTestApp(t)
	ta.loader.EXPECT().Load(".").Return(nil, domain.ErrProjectNotFound)
	ta.logger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	})

	stdout := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"build"}, stdout, new(bytes.Buffer), ta.provider)

	assert.Equal(t, 1, exitCode)
	assert.Empty(t, stdout.String())
}
