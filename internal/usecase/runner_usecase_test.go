package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/plastinin/aceinterview/internal/analysis"
	"github.com/plastinin/aceinterview/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var runnerConfig = analysis.Config{PollInterval: 5 * time.Millisecond, PollDeadline: 5 * time.Second}

type runnerFixture struct {
	repo      *memoryRepo
	storage   *memoryStorage
	interview *stubBackend[domain.InterviewResult]
	posture   *stubBackend[domain.PostureResult]
	session   *domain.Session
}

func newRunnerFixture(t *testing.T) *runnerFixture {
	f := &runnerFixture{
		repo:    newMemoryRepo(),
		storage: newMemoryStorage(),
		interview: &stubBackend[domain.InterviewResult]{
			name:   domain.BackendInterview,
			submit: accepted("i-1"),
			poll:   completedWith(domain.InterviewResult{GoodPerformance: []string{"Calm"}}),
		},
		posture: &stubBackend[domain.PostureResult]{
			name:   domain.BackendPosture,
			submit: accepted("p-1"),
			poll:   completedWith(domain.PostureResult{Status: "success"}),
		},
	}

	f.session = domain.NewSession("videos/interview.mp4", "interview.mp4", "video/mp4", 11)
	f.storage.put(f.session.VideoKey, []byte("video-bytes"))
	require.NoError(t, f.repo.Create(context.Background(), f.session))
	return f
}

func (f *runnerFixture) run(t *testing.T, ctx context.Context, generation int) error {
	uc := NewRunnerUseCase(f.repo, f.storage, f.interview, f.posture, runnerConfig, zaptest.NewLogger(t))
	return uc.Run(ctx, RunInput{SessionID: f.session.ID, Generation: generation})
}

func TestRunnerCompletesBothAnalyses(t *testing.T) {
	f := newRunnerFixture(t)

	require.NoError(t, f.run(t, context.Background(), 1))

	s := f.repo.get(f.session.ID)
	assert.Equal(t, domain.StateComplete, s.Interview.State)
	assert.Equal(t, "i-1", s.Interview.TaskID)
	require.NotNil(t, s.Interview.Result)
	assert.Equal(t, []string{"Calm"}, s.Interview.Result.GoodPerformance)

	assert.Equal(t, domain.StateComplete, s.Posture.State)
	require.NotNil(t, s.Posture.Result)
	assert.True(t, s.Posture.Result.Succeeded())
	assert.True(t, s.AllComplete())
}

func TestRunnerFailureOfOneDoesNotAffectOther(t *testing.T) {
	f := newRunnerFixture(t)
	f.posture.submit = func(context.Context, domain.Upload) (domain.Submission, error) {
		return domain.Submission{Accepted: false, Error: "no video"}, nil
	}

	require.NoError(t, f.run(t, context.Background(), 1))

	s := f.repo.get(f.session.ID)
	assert.Equal(t, domain.StateComplete, s.Interview.State)
	assert.Equal(t, domain.StateError, s.Posture.State)
	assert.Equal(t, "no video", s.Posture.Error)
	assert.Nil(t, s.Posture.Result)
}

func TestRunnerSkipsSupersededGeneration(t *testing.T) {
	f := newRunnerFixture(t)
	_, err := f.repo.Reset(context.Background(), f.session.ID)
	require.NoError(t, err)

	var calls atomic.Int32
	f.interview.submit = func(context.Context, domain.Upload) (domain.Submission, error) {
		calls.Add(1)
		return domain.Submission{}, errors.New("must not be called")
	}

	require.NoError(t, f.run(t, context.Background(), 1))
	assert.Zero(t, calls.Load())
	assert.Equal(t, domain.StateIdle, f.repo.get(f.session.ID).Interview.State)
}

func TestRunnerSkipsMissingSession(t *testing.T) {
	f := newRunnerFixture(t)
	require.NoError(t, f.repo.Delete(context.Background(), f.session.ID))

	assert.NoError(t, f.run(t, context.Background(), 1))
}

func TestRunnerStopsBothTasksAfterReset(t *testing.T) {
	f := newRunnerFixture(t)

	f.posture.poll = processingUntilCancelled[domain.PostureResult]

	// сброс приходит, пока интервью ещё опрашивается
	f.interview.poll = func(ctx context.Context, _ string) (domain.RemoteTaskStatus[domain.InterviewResult], error) {
		_, err := f.repo.Reset(ctx, f.session.ID)
		assert.NoError(t, err)
		return domain.RemoteTaskStatus[domain.InterviewResult]{Success: true, Status: domain.RemoteStatusFailed, Error: "late"}, nil
	}

	done := make(chan error, 1)
	go func() { done <- f.run(t, context.Background(), 1) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop after reset")
	}

	s := f.repo.get(f.session.ID)
	assert.Equal(t, 2, s.Generation)
	assert.Equal(t, domain.StateIdle, s.Interview.State)
	assert.Empty(t, s.Interview.Error)
	assert.Equal(t, domain.StateIdle, s.Posture.State)
}

func TestRunnerJobCancellation(t *testing.T) {
	f := newRunnerFixture(t)
	f.interview.poll = processingUntilCancelled[domain.InterviewResult]
	f.posture.poll = processingUntilCancelled[domain.PostureResult]

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.run(t, ctx, 1) }()

	require.Eventually(t, func() bool {
		s := f.repo.get(f.session.ID)
		return s.Interview.State == domain.StateAnalyzing && s.Posture.State == domain.StateAnalyzing
	}, 2*time.Second, 5*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner ignored cancellation")
	}
}

func TestRunnerDownloadFailure(t *testing.T) {
	f := newRunnerFixture(t)
	f.storage = newMemoryStorage()

	require.NoError(t, f.run(t, context.Background(), 1))

	s := f.repo.get(f.session.ID)
	assert.Equal(t, domain.StateError, s.Interview.State)
	assert.Equal(t, domain.MsgUploadFailed, s.Interview.Error)
	assert.Equal(t, domain.StateError, s.Posture.State)
	assert.Equal(t, domain.MsgUploadFailed, s.Posture.Error)
}

func TestRunnerRetriesFinalSnapshot(t *testing.T) {
	f := newRunnerFixture(t)
	f.repo.failTerminalWrites = 2

	require.NoError(t, f.run(t, context.Background(), 1))

	s := f.repo.get(f.session.ID)
	assert.Equal(t, domain.StateComplete, s.Interview.State)
	require.NotNil(t, s.Interview.Result)
	assert.Equal(t, domain.StateComplete, s.Posture.State)
	assert.Equal(t, 3, f.repo.terminalWrites)
}

func TestRunnerGivesUpOnFinalSnapshot(t *testing.T) {
	f := newRunnerFixture(t)
	f.repo.failTerminalWrites = 100

	err := f.run(t, context.Background(), 1)
	assert.ErrorIs(t, err, errTransientDB)

	s := f.repo.get(f.session.ID)
	assert.Equal(t, domain.StateComplete, s.Posture.State)
	assert.GreaterOrEqual(t, f.repo.terminalWrites, finalFlushAttempts)
}
