package camunda

import (
	"errors"
	"testing"

	apperrors "loan-intake-workers/internal/common/errors"
	"loan-intake-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// nopJobClient hands out nil command builders; the handlers under test only
// pick a command and never send it.
type nopJobClient struct{}

func (nopJobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 { return nil }
func (nopJobClient) NewFailJobCommand() commands.FailJobCommandStep1         { return nil }
func (nopJobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1   { return nil }

func testJob() entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 42, Type: "test"}}
}

func TestInstrument_CountsOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		taskType string
		handler  HandlerFunc
		outcome  string
	}{
		{
			name:     "completed",
			taskType: "instrument-complete",
			handler:  func(c worker.JobClient, _ entities.Job) { c.NewCompleteJobCommand() },
			outcome:  OutcomeCompleted,
		},
		{
			name:     "failed with retries",
			taskType: "instrument-fail",
			handler:  func(c worker.JobClient, _ entities.Job) { c.NewFailJobCommand() },
			outcome:  OutcomeFailed,
		},
		{
			name:     "bpmn error",
			taskType: "instrument-throw",
			handler:  func(c worker.JobClient, _ entities.Job) { c.NewThrowErrorCommand() },
			outcome:  OutcomeThrown,
		},
		{
			name:     "no command",
			taskType: "instrument-none",
			handler:  func(worker.JobClient, entities.Job) {},
			outcome:  OutcomeNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := Instrument(tt.taskType, tt.handler, nil)
			wrapped(nopJobClient{}, testJob())

			if tt.outcome == OutcomeCompleted {
				assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WorkerJobsCompleted.WithLabelValues(tt.taskType)))
			} else {
				assert.Equal(t, 1.0, testutil.ToFloat64(metrics.WorkerJobsFailed.WithLabelValues(tt.taskType, tt.outcome)))
				assert.Equal(t, 0.0, testutil.ToFloat64(metrics.WorkerJobsCompleted.WithLabelValues(tt.taskType)))
			}
			assert.Equal(t, 0.0, testutil.ToFloat64(metrics.WorkerJobsActive.WithLabelValues(tt.taskType)))
		})
	}
}

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(errors.New("rpc error: code = Unavailable desc = connection refused")))
	assert.True(t, isRetryableZeebeError(errors.New("context deadline exceeded")))
	assert.False(t, isRetryableZeebeError(errors.New("rpc error: code = PermissionDenied")))
}

func TestMapZeebeError(t *testing.T) {
	err := mapZeebeError(errors.New("context deadline exceeded"), "connect localhost:26500", 3)
	stdErr, ok := apperrors.AsStandardError(err)
	assert.True(t, ok)
	assert.Equal(t, "TIMEOUT_ERROR", string(stdErr.Code))
	assert.Contains(t, stdErr.Details, "after 3 attempts")

	err = mapZeebeError(errors.New("connection refused"), "connect", 1)
	stdErr, ok = apperrors.AsStandardError(err)
	assert.True(t, ok)
	assert.Equal(t, "EXTERNAL_SERVICE_ERROR", string(stdErr.Code))
	assert.NotContains(t, stdErr.Details, "attempts")
}
