package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.False(t, cfg.Enabled)
	assert.Equal(t, "ecfs", cfg.ServiceName)
	assert.Equal(t, "localhost:4317", cfg.Endpoint)
	assert.True(t, cfg.Insecure)
	assert.Equal(t, 1.0, cfg.SampleRate)
}

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()

	shutdown, err := Init(ctx, DefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(ctx))
	assert.False(t, IsEnabled())
}

func TestStartSpanWithoutInit(t *testing.T) {
	setTracer(nil, false)

	ctx, span := StartSpan(context.Background(), "namespace.SetPolicy",
		WithAttributes(Path("/data"), Policy("RS-6-3-1024k")))
	require.NotNil(t, ctx)
	require.NotNil(t, span)

	assert.NotPanics(t, func() {
		RecordError(ctx, errors.New("boom"))
		RecordError(ctx, nil)
		SetAttributes(ctx, Subject("admin"))
		span.End()
	})

	// No-op spans carry no IDs.
	assert.Empty(t, TraceID(ctx))
	assert.Empty(t, SpanID(ctx))
}

func TestStartStoreSpan(t *testing.T) {
	ctx, span := StartStoreSpan(context.Background(), "badger", "get", Path("/a"))
	defer span.End()
	assert.NotNil(t, ctx)
}

func TestAttributeHelpers(t *testing.T) {
	tests := []struct {
		attr attribute.KeyValue
		key  string
		want string
	}{
		{Path("/a/b"), AttrPath, "/a/b"},
		{Policy("XOR-2-1-1024k"), AttrPolicy, "XOR-2-1-1024k"},
		{Operation("unsetPolicy"), AttrOperation, "unsetPolicy"},
		{StoreType("gorm"), AttrStore, "gorm"},
		{Subject("ops"), AttrSubject, "ops"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, attribute.Key(tt.key), tt.attr.Key)
			assert.Equal(t, tt.want, tt.attr.Value.AsString())
		})
	}
}

func TestSampler(t *testing.T) {
	assert.Contains(t, sampler(1).Description(), "AlwaysOn")
	assert.Contains(t, sampler(0).Description(), "AlwaysOff")
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
}

func TestParseProfileTypes(t *testing.T) {
	types, err := ParseProfileTypes([]string{"cpu", "inuse_space"})
	require.NoError(t, err)
	assert.Len(t, types, 2)

	_, err = ParseProfileTypes([]string{"heap"})
	assert.ErrorContains(t, err, `unknown profile type "heap"`)
}

func TestInitProfilingDisabled(t *testing.T) {
	stop, err := InitProfiling(ProfilingConfig{})
	require.NoError(t, err)
	assert.NoError(t, stop())
}
