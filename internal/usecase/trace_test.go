package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestStartUsecaseSpan_RequiresParent(t *testing.T) {
	ctx, span := startUsecaseSpan(context.Background(), "usecase.Test")
	require.Equal(t, usecaseNoopSpan, span)
	require.False(t, trace.SpanFromContext(ctx).SpanContext().IsValid())

	parent := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1},
		SpanID:     trace.SpanID{2},
		TraceFlags: trace.FlagsSampled,
	})
	_, child := startUsecaseSpan(trace.ContextWithRemoteSpanContext(context.Background(), parent), "usecase.Test")
	require.Equal(t, parent.TraceID(), child.SpanContext().TraceID())

	_, blank := startUsecaseSpan(trace.ContextWithRemoteSpanContext(context.Background(), parent), " ")
	require.Equal(t, usecaseNoopSpan, blank)
}

func TestRecordSpanError_NilIsNoop(t *testing.T) {
	require.NotPanics(t, func() {
		recordSpanError(usecaseNoopSpan, nil)
		recordSpanError(usecaseNoopSpan, ErrNoDataAvailable)
	})
}
