package tracer

import (
	"context"
	"testing"

	"kisansetu-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestInitTracerDisabled(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "")
	shutdown := InitTracer("kisansetu-test", logger.NewNopLogger())
	assert.NoError(t, shutdown(context.Background()))
}
