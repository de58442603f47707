package tracing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracingFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "span_test.txt")
	require.NoError(t, Init("guidebook", "0.0.1", fname))

	ctx, span := StartSpan(context.Background(), "optimize")
	span.WithAttributes(map[string]string{"guidebook": "install.yaml"})
	_, child := StartSpan(ctx, "validate")
	EndSpan(child, errors.New("exit 1"))
	EndSpan(span, nil)

	data, err := os.ReadFile(fname)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.NoError(t, Shutdown(context.Background()))
}

func TestNilSpan(t *testing.T) {
	var span *Span
	assert.Nil(t, span.WithAttributes(map[string]string{"k": "v"}))
	EndSpan(span, nil)
}
