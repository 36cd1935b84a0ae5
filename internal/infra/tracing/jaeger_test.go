package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitTracerValidation(t *testing.T) {
	_, err := InitTracer(context.Background(), Config{SampleRatio: 1})
	assert.Error(t, err)

	_, err = InitTracer(context.Background(), Config{Endpoint: "http://localhost:4318", SampleRatio: 1.5})
	assert.Error(t, err)
}

func TestInitTracer(t *testing.T) {
	tp, err := InitTracer(context.Background(), Config{
		Endpoint:    "http://localhost:4318",
		SampleRatio: 0.5,
		Command:     "cache",
	})
	require.NoError(t, err)
	require.NoError(t, tp.Shutdown(context.Background()))
}
