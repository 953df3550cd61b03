package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateTransitions(t *testing.T) {
	cases := []struct {
		from, to State
		ok       bool
	}{
		{StateIdle, StateUploading, true},
		{StateIdle, StateAnalyzing, false},
		{StateIdle, StateComplete, false},
		{StateUploading, StateAnalyzing, true},
		{StateUploading, StateError, true},
		{StateUploading, StateComplete, false},
		{StateAnalyzing, StateComplete, true},
		{StateAnalyzing, StateError, true},
		{StateAnalyzing, StateUploading, false},
		{StateComplete, StateError, false},
		{StateError, StateComplete, false},
		{StateComplete, StateIdle, true},
		{StateError, StateIdle, true},
		{StateAnalyzing, StateIdle, true},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestAnalysisTaskHappyPath(t *testing.T) {
	task := NewAnalysisTask[InterviewResult]()
	require.Equal(t, StateIdle, task.State)

	require.NoError(t, task.MarkUploading())
	require.NoError(t, task.MarkAnalyzing("abc"))
	assert.Equal(t, "abc", task.TaskID)

	result := InterviewResult{GoodPerformance: []string{"Calm"}}
	require.NoError(t, task.MarkComplete(result))

	assert.Equal(t, StateComplete, task.State)
	require.NotNil(t, task.Result)
	assert.Equal(t, result, *task.Result)
	assert.Empty(t, task.Error)
}

func TestAnalysisTaskRejectsIllegalMoves(t *testing.T) {
	task := NewAnalysisTask[PostureResult]()

	assert.ErrorIs(t, task.MarkAnalyzing("abc"), ErrInvalidTransition)
	assert.ErrorIs(t, task.MarkComplete(PostureResult{}), ErrInvalidTransition)

	require.NoError(t, task.MarkUploading())
	assert.ErrorIs(t, task.MarkUploading(), ErrInvalidTransition)
	assert.ErrorIs(t, task.MarkAnalyzing(""), ErrEmptyTaskID)

	require.NoError(t, task.MarkFailed(MsgUploadFailed, ""))
	assert.ErrorIs(t, task.MarkComplete(PostureResult{}), ErrInvalidTransition)
	assert.ErrorIs(t, task.MarkFailed("again", ""), ErrInvalidTransition)
}

func TestUploadProgressIsMonotonicAndClamped(t *testing.T) {
	task := NewAnalysisTask[InterviewResult]()

	_, err := task.SetUploadProgress(10)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, task.MarkUploading())

	seen := []int{}
	for _, p := range []int{-5, 10, 40, 30, 40, 150, 90} {
		changed, err := task.SetUploadProgress(p)
		require.NoError(t, err)
		if changed {
			seen = append(seen, task.UploadProgress)
		}
	}

	assert.Equal(t, []int{10, 40, 100}, seen)
	assert.Equal(t, 100, task.UploadProgress)
}

func TestMutualExclusivityAndReset(t *testing.T) {
	task := NewAnalysisTask[InterviewResult]()
	require.NoError(t, task.MarkUploading())
	_, _ = task.SetUploadProgress(70)
	require.NoError(t, task.MarkFailed(MsgAnalysisFailed, "model crashed"))

	assert.Nil(t, task.Result)
	assert.Equal(t, MsgAnalysisFailed, task.Error)
	assert.Equal(t, "model crashed", task.ErrorDetail)

	task.Reset()
	assert.Equal(t, StateIdle, task.State)
	assert.Zero(t, task.UploadProgress)
	assert.Nil(t, task.Result)
	assert.Empty(t, task.Error)
	assert.Empty(t, task.ErrorDetail)
	assert.Empty(t, task.TaskID)

	// после сброса задача снова может стартовать
	require.NoError(t, task.MarkUploading())
	require.NoError(t, task.MarkAnalyzing("next"))
	require.NoError(t, task.MarkComplete(InterviewResult{}))
	assert.Empty(t, task.Error)
}

func TestRemoteTaskStatusClassification(t *testing.T) {
	cases := []struct {
		name      string
		status    RemoteTaskStatus[InterviewResult]
		completed bool
		failed    bool
	}{
		{"processing", RemoteTaskStatus[InterviewResult]{Success: true, Status: RemoteStatusProcessing}, false, false},
		{"pending", RemoteTaskStatus[InterviewResult]{Success: true, Status: RemoteStatusPending}, false, false},
		{"completed", RemoteTaskStatus[InterviewResult]{Success: true, Status: RemoteStatusCompleted}, true, false},
		{"failed status", RemoteTaskStatus[InterviewResult]{Success: true, Status: RemoteStatusFailed}, false, true},
		{"failed envelope", RemoteTaskStatus[InterviewResult]{Success: false, Status: RemoteStatusCompleted}, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.completed, tc.status.Completed())
			assert.Equal(t, tc.failed, tc.status.Failed())
		})
	}
}
