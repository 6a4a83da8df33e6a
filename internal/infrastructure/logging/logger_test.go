package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/formfill/internal/shared/types"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "chatty"})
	assert.Error(t, err)
}

func TestNewDefault(t *testing.T) {
	logger := NewDefault()
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewDevelopment(t *testing.T) {
	logger := NewDevelopment()
	require.NotNil(t, logger)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestFieldHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := (&Logger{Logger: zap.New(core)}).Named("manager")

	form := types.FormGlobalID{FrameToken: "main", RendererID: 3}
	logger.WithForm(form).Info("filled",
		Field(types.FieldGlobalID{FrameToken: "main", RendererID: 7}),
		Product(types.ProductCreditCard),
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "manager", entries[0].LoggerName)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "main#3", ctx["form"])
	assert.Equal(t, "main#7", ctx["field"])
	assert.Equal(t, "credit_card", ctx["product"])
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Named("x").Info("discarded")
	})
}
