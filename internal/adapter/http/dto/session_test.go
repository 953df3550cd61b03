package dto

import (
	"encoding/json"
	"testing"

	"github.com/plastinin/aceinterview/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionFromDomain(t *testing.T) {
	s := domain.NewSession("key", "interview.mp4", "video/mp4", 10)
	require.NoError(t, s.Interview.MarkUploading())
	require.NoError(t, s.Interview.MarkAnalyzing("i-1"))
	require.NoError(t, s.Interview.MarkComplete(domain.InterviewResult{
		Classifications: domain.Classifications{Calm: 0.876},
	}))
	require.NoError(t, s.Posture.MarkUploading())
	_, err := s.Posture.SetUploadProgress(40)
	require.NoError(t, err)

	resp := SessionFromDomain(s)

	assert.Equal(t, "complete", resp.Interview.State)
	require.NotNil(t, resp.Interview.Result)
	assert.Equal(t, 88, resp.Interview.Result.Percentages["Calm"])
	assert.Equal(t, "uploading", resp.Posture.State)
	assert.Equal(t, 40, resp.Posture.UploadProgress)
	assert.Nil(t, resp.Posture.Result)
	assert.True(t, resp.Active)
	assert.False(t, resp.AllComplete)
	assert.False(t, resp.AnyError)

	// встроенный результат интервью сериализуется плоско
	data, err := json.Marshal(resp.Interview.Result)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "classifications")
	assert.Contains(t, decoded, "percentages")
}

func TestSessionFromDomainDerivedFlags(t *testing.T) {
	s := domain.NewSession("key", "interview.mp4", "video/mp4", 10)
	require.NoError(t, s.Interview.MarkUploading())
	require.NoError(t, s.Interview.MarkAnalyzing("i-1"))
	require.NoError(t, s.Interview.MarkComplete(domain.InterviewResult{}))
	require.NoError(t, s.Posture.MarkUploading())
	require.NoError(t, s.Posture.MarkAnalyzing("p-1"))
	require.NoError(t, s.Posture.MarkComplete(domain.PostureResult{Status: "error", Message: "no person detected"}))

	resp := SessionFromDomain(s)
	assert.True(t, resp.AllComplete)
	assert.False(t, resp.AnyError)
	assert.False(t, resp.Active)
	require.NotNil(t, resp.Posture.Result)
	assert.False(t, resp.Posture.Result.Succeeded)
	assert.Equal(t, "no person detected", resp.Posture.Result.Message)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, true, decoded["all_complete"])
	assert.Equal(t, false, decoded["any_error"])
	assert.Equal(t, false, decoded["posture"].(map[string]any)["result"].(map[string]any)["succeeded"])

	s.ResetAll()
	require.NoError(t, s.Posture.MarkUploading())
	require.NoError(t, s.Posture.MarkFailed(domain.MsgUploadFailed, "connection refused"))

	resp = SessionFromDomain(s)
	assert.False(t, resp.AllComplete)
	assert.True(t, resp.AnyError)
}

func TestSessionListFromDomain(t *testing.T) {
	result := &domain.SessionListResult{
		Sessions:   []*domain.Session{domain.NewSession("a", "a.mp4", "video/mp4", 1)},
		Total:      21,
		Pagination: domain.NewPagination(2, 10),
	}

	resp := SessionListFromDomain(result)
	assert.Len(t, resp.Sessions, 1)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, 2, resp.Page)
}
