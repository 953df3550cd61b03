package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/plastinin/aceinterview/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestHealthCheckIsPerBackend(t *testing.T) {
	interview := &stubHealth{health: domain.ServiceHealth{Status: "healthy", Service: "interview", QueueSize: 2}}
	posture := &stubHealth{err: errors.New("connection refused")}
	uc := NewHealthUseCase(interview, posture, zaptest.NewLogger(t))

	result := uc.Check(context.Background())

	assert.True(t, result.Interview.Up())
	require.NotNil(t, result.Interview.Data)
	assert.Equal(t, 2, result.Interview.Data.QueueSize)
	assert.Empty(t, result.Interview.Error)

	assert.False(t, result.Posture.Up())
	assert.Nil(t, result.Posture.Data)
	assert.Equal(t, domain.MsgPostureUnreachable, result.Posture.Error)
	assert.Equal(t, domain.BackendPosture, result.Posture.Backend)
}

func TestHealthCheckBothDown(t *testing.T) {
	down := &stubHealth{err: errors.New("timeout")}
	uc := NewHealthUseCase(down, down, zaptest.NewLogger(t))

	result := uc.Check(context.Background())
	assert.Equal(t, domain.MsgInterviewUnreachable, result.Interview.Error)
	assert.Equal(t, domain.MsgPostureUnreachable, result.Posture.Error)
}

func TestHealthMonitorRepeatsUntilCancelled(t *testing.T) {
	interview := &stubHealth{}
	posture := &stubHealth{}
	uc := NewHealthUseCase(interview, posture, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		uc.Monitor(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return interview.count() >= 3 && posture.count() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}
