package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/vigilo/internal/models"
	"github.com/ternarybob/vigilo/internal/services/pipeline"
)

type stubRunner struct {
	runs int32
	err  error
}

func (s *stubRunner) Run(ctx context.Context, opts pipeline.Options) (*models.RunResult, error) {
	atomic.AddInt32(&s.runs, 1)
	if s.err != nil {
		return nil, s.err
	}
	return &models.RunResult{ID: "run_test", Documents: models.DocumentSet{}}, nil
}

func TestStartAndStop(t *testing.T) {
	service := NewService(&stubRunner{}, arbor.NewLogger())

	require.NoError(t, service.Start("0 0 */6 * * *"))
	assert.True(t, service.IsRunning())

	// Double start fails
	err := service.Start("0 0 */6 * * *")
	assert.Error(t, err)

	require.NoError(t, service.Stop())
	assert.False(t, service.IsRunning())

	// Stop is idempotent
	require.NoError(t, service.Stop())
}

func TestStartRejectsInvalidExpression(t *testing.T) {
	service := NewService(&stubRunner{}, arbor.NewLogger())

	err := service.Start("not a cron expression")
	require.Error(t, err)
	assert.False(t, service.IsRunning())
}

func TestTriggerNowRunsPipeline(t *testing.T) {
	runner := &stubRunner{}
	service := NewService(runner, arbor.NewLogger())

	require.NoError(t, service.TriggerNow())

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&runner.runs) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStatusTracksLastError(t *testing.T) {
	runner := &stubRunner{err: fmt.Errorf("portal down")}
	service := NewService(runner, arbor.NewLogger())

	service.runScheduledCycle()

	status := service.GetStatus()
	require.NotNil(t, status.LastRun)
	assert.Equal(t, "portal down", status.LastError)
	assert.False(t, status.Running)
}

func TestStatusReportsNextRun(t *testing.T) {
	service := NewService(&stubRunner{}, arbor.NewLogger())
	require.NoError(t, service.Start("0 0 */6 * * *"))
	defer service.Stop()

	status := service.GetStatus()
	assert.True(t, status.Running)
	assert.Equal(t, "0 0 */6 * * *", status.Schedule)
	require.NotNil(t, status.NextRun)
	assert.True(t, status.NextRun.After(time.Now()))
}
