package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectVideoContentType(t *testing.T) {
	ct, err := DetectVideoContentType("interview.MP4", "")
	require.NoError(t, err)
	assert.Equal(t, "video/mp4", ct)

	ct, err = DetectVideoContentType("clip.mov", "application/octet-stream")
	require.NoError(t, err)
	assert.Equal(t, "video/quicktime", ct)

	ct, err = DetectVideoContentType("clip.avi", "video/avi; codecs=xvid")
	require.NoError(t, err)
	assert.Equal(t, "video/avi", ct)

	_, err = DetectVideoContentType("notes.pdf", "")
	assert.ErrorIs(t, err, ErrUnsupportedVideoType)

	_, err = DetectVideoContentType("clip.mp4", "image/png")
	assert.ErrorIs(t, err, ErrUnsupportedVideoType)
}

func TestClassificationsPercentages(t *testing.T) {
	c := Classifications{Excited: 0.456, Paused: 0.004, EngagingTone: 1, Calm: 0.996, NoFillers: 0}

	assert.Equal(t, map[string]int{
		"Excited":      46,
		"Paused":       0,
		"EngagingTone": 100,
		"Calm":         100,
		"NoFillers":    0,
	}, c.Percentages())
}

func TestSessionResetAll(t *testing.T) {
	s := NewSession("2026/10/18/key/video.mp4", "video.mp4", "video/mp4", 42)
	require.Equal(t, 1, s.Generation)

	require.NoError(t, s.Interview.MarkUploading())
	require.NoError(t, s.Posture.MarkUploading())
	require.NoError(t, s.Posture.MarkFailed(MsgUploadFailed, ""))
	assert.True(t, s.Active())
	assert.True(t, s.AnyError())
	assert.False(t, s.AllComplete())

	s.ResetAll()
	assert.Equal(t, 2, s.Generation)
	assert.Equal(t, StateIdle, s.Interview.State)
	assert.Equal(t, StateIdle, s.Posture.State)
	assert.False(t, s.Active())
	assert.False(t, s.AnyError())
}

func TestPagination(t *testing.T) {
	p := NewPagination(0, 500)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxPageSize, p.PageSize)
	assert.Equal(t, 0, p.Offset())

	p = NewPagination(3, 0)
	assert.Equal(t, DefaultPageSize, p.Limit())
	assert.Equal(t, 40, p.Offset())
	assert.Equal(t, 3, p.TotalPages(41))
	assert.Equal(t, 2, p.TotalPages(40))
}
