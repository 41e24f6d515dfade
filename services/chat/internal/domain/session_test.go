package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Shiro-Bankai7/electricians/pkg/errors"
)

var now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func TestNewSession_StartOpenGreets(t *testing.T) {
	s := NewSession("s1", true, now)

	assert.Equal(t, StateExpanded, s.State)
	require.Len(t, s.Messages, 1)
	assert.Equal(t, Greeting, s.Messages[0].Text)
	assert.False(t, s.Messages[0].IsUser)
	assert.True(t, s.Greeted)
}

func TestNewSession_StartClosed(t *testing.T) {
	s := NewSession("s1", false, now)

	assert.Equal(t, StateClosed, s.State)
	assert.Empty(t, s.Messages)
	assert.False(t, s.Greeted)
}

func TestOpen_GreetsOnce(t *testing.T) {
	s := NewSession("s1", false, now)

	s.Open(now)
	s.Open(now)
	s.Close(now)
	s.Open(now)

	greetings := 0
	for _, m := range s.Messages {
		if m.Text == Greeting {
			greetings++
		}
	}
	assert.Equal(t, 1, greetings)
	assert.Equal(t, StateExpanded, s.State)
}

func TestMinimizeMaximize(t *testing.T) {
	s := NewSession("s1", true, now)

	require.NoError(t, s.Minimize(now))
	assert.Equal(t, StateMinimized, s.State)
	assert.True(t, s.State.IsOpen())

	require.NoError(t, s.Maximize(now))
	assert.Equal(t, StateExpanded, s.State)
}

func TestMinimizeMaximize_ClosedIsInvalid(t *testing.T) {
	s := NewSession("s1", false, now)

	assert.ErrorIs(t, s.Minimize(now), apperrors.ErrInvalidState)
	assert.ErrorIs(t, s.Maximize(now), apperrors.ErrInvalidState)
	assert.Equal(t, StateClosed, s.State)
}

func TestClose_KeepsMessages(t *testing.T) {
	s := NewSession("s1", true, now)
	s.AppendUser("hello", now)

	s.Close(now)

	assert.Equal(t, StateClosed, s.State)
	assert.Len(t, s.Messages, 2)
}

func TestReset(t *testing.T) {
	s := NewSession("s1", true, now)
	s.AppendUser("hello", now)
	s.Typing = true
	gen := s.Generation

	s.Reset(now)

	assert.Equal(t, gen+1, s.Generation)
	assert.False(t, s.Typing)
	require.Len(t, s.Messages, 1)
	assert.Equal(t, Greeting, s.Messages[0].Text)
	assert.Equal(t, StateExpanded, s.State)
}

func TestReset_ClosedDoesNotGreetUntilOpened(t *testing.T) {
	s := NewSession("s1", true, now)
	s.Close(now)

	s.Reset(now)
	assert.Empty(t, s.Messages)

	s.Open(now)
	assert.Len(t, s.Messages, 1)
}

func TestMessageIDsUniqueAcrossReset(t *testing.T) {
	s := NewSession("s1", true, now)
	first := s.Messages[0].ID
	s.Reset(now)

	assert.NotEqual(t, first, s.Messages[0].ID)
}

func TestShowQuickActions(t *testing.T) {
	s := NewSession("s1", true, now)
	assert.True(t, s.ShowQuickActions())

	s.AppendUser("Get a quote", now)
	assert.False(t, s.ShowQuickActions())
}

func TestClone_IsDeep(t *testing.T) {
	s := NewSession("s1", true, now)
	c := s.Clone()

	c.AppendUser("x", now)
	c.Messages[0].Text = "changed"

	assert.Len(t, s.Messages, 1)
	assert.Equal(t, Greeting, s.Messages[0].Text)
}

func TestIsQuickAction(t *testing.T) {
	assert.True(t, IsQuickAction("Emergency service"))
	assert.False(t, IsQuickAction("emergency service"))
}
