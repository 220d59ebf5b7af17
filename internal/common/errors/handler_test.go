package errors

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/commands"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

// ==========================
// Mock Implementations
// ==========================

// MockGateway records fail and throw requests and rejects calls whose
// context is already done, as a real gRPC connection would.
type MockGateway struct {
	pb.GatewayClient

	mu     sync.Mutex
	failed []*pb.FailJobRequest
	thrown []*pb.ThrowErrorRequest
}

func (m *MockGateway) FailJob(ctx context.Context, in *pb.FailJobRequest, _ ...grpc.CallOption) (*pb.FailJobResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = append(m.failed, in)
	return &pb.FailJobResponse{}, nil
}

func (m *MockGateway) ThrowError(ctx context.Context, in *pb.ThrowErrorRequest, _ ...grpc.CallOption) (*pb.ThrowErrorResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.thrown = append(m.thrown, in)
	return &pb.ThrowErrorResponse{}, nil
}

type MockJobClient struct {
	gateway *MockGateway
}

func noRetry(context.Context, error) bool { return false }

func (c MockJobClient) NewCompleteJobCommand() commands.CompleteJobCommandStep1 {
	return commands.NewCompleteJobCommand(c.gateway, noRetry)
}

func (c MockJobClient) NewFailJobCommand() commands.FailJobCommandStep1 {
	return commands.NewFailJobCommand(c.gateway, noRetry)
}

func (c MockJobClient) NewThrowErrorCommand() commands.ThrowErrorCommandStep1 {
	return commands.NewThrowErrorCommand(c.gateway, noRetry)
}

type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *MockLogger) Error(msg string, _ map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

func jobWithRetries(retries int32) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 42, Type: "extract-document-fields", Retries: retries}}
}

func expiredContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	t.Cleanup(cancel)
	<-ctx.Done()
	return ctx
}

// ==========================
// HandleJobError
// ==========================

func TestHandleJobError_FailsJobAfterDeadlinePassed(t *testing.T) {
	gateway := &MockGateway{}
	log := &MockLogger{}
	h := NewErrorHandler(log)

	bpmnErr := h.HandleJobError(expiredContext(t), MockJobClient{gateway}, jobWithRetries(3), NewExtractionTimeoutError("PAN Card"))

	require.Len(t, gateway.failed, 1)
	assert.Equal(t, int64(42), gateway.failed[0].JobKey)
	assert.Equal(t, int32(2), gateway.failed[0].Retries)
	assert.Equal(t, "EXTRACTION_FAILED", bpmnErr.Code)
	assert.NotContains(t, log.messages, "failed to send fail job command")
}

func TestHandleJobError_ThrowsAfterDeadlinePassed(t *testing.T) {
	gateway := &MockGateway{}
	h := NewErrorHandler(&MockLogger{})

	h.HandleJobError(expiredContext(t), MockJobClient{gateway}, jobWithRetries(3), NewRecordNotFoundError("a1_eligibility_result"))

	require.Len(t, gateway.thrown, 1)
	assert.Equal(t, "RECORD_NOT_FOUND", gateway.thrown[0].ErrorCode)
	assert.Empty(t, gateway.failed)
}

func TestHandleJobError_NoRetriesLeftThrows(t *testing.T) {
	gateway := &MockGateway{}
	h := NewErrorHandler(&MockLogger{})

	h.HandleJobError(context.Background(), MockJobClient{gateway}, jobWithRetries(0), NewExtractionTimeoutError("PAN Card"))

	assert.Empty(t, gateway.failed)
	require.Len(t, gateway.thrown, 1)
	assert.Equal(t, "EXTRACTION_FAILED", gateway.thrown[0].ErrorCode)
}
