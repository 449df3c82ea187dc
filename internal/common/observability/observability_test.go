package observability

import (
	"context"
	"errors"
	"testing"

	"culturis/internal/common/config"
	"culturis/internal/common/logger"
	"culturis/internal/common/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackStage_RecordsOutcome(t *testing.T) {
	o := NewNoop()

	_, done := o.TrackStage(context.Background(), "plan-request")
	done(nil)
	_, done = o.TrackStage(context.Background(), "plan-request")
	done(errors.New("no tool call"))

	assert.GreaterOrEqual(t, testutil.CollectAndCount(metrics.StageDuration), 2)
	assert.NoError(t, o.Shutdown(context.Background()))
}

func TestNew_TracingDisabled(t *testing.T) {
	o := New("culturis-test", config.TracingConfig{}, logger.NewTestLogger(t))
	defer o.Shutdown(context.Background())

	ctx, span := o.StartSpan(context.Background(), "retrieve-context")
	defer span.End()

	assert.NotNil(t, ctx)
	assert.Nil(t, o.tracerProvider)
}
