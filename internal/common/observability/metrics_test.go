package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObservability_NoTracingIsNoop(t *testing.T) {
	o := New("planner-test")
	defer o.Shutdown()

	require.NoError(t, o.EnableTracing("", 1))

	ctx, span := o.StartSpan(context.Background(), "generate")
	assert.NotNil(t, ctx)
	span.End()

	o.RecordPlanProcessed(ctx, "success")
	o.RecordPlanDuration(ctx, 1500*time.Millisecond, "success")
}

func TestObservability_EnableTracing(t *testing.T) {
	o := New("planner-trace-test")
	defer o.Shutdown()

	require.NoError(t, o.EnableTracing("http://127.0.0.1:14268/api/traces", 1))

	_, span := o.StartSpan(context.Background(), "render")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}
