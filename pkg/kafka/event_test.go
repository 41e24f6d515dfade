package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shiro-Bankai7/electricians/pkg/logger"
)

type reviewSubmitted struct {
	ReviewID string `json:"review_id"`
	Rating   int    `json:"rating"`
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "powerpro.review.submitted", Topic("review.submitted"))
	assert.Equal(t, "powerpro.chat.handoff_requested", Topic("chat.handoff_requested"))
}

func TestNewEvent(t *testing.T) {
	ctx := logger.WithCorrelationID(context.Background(), "corr-1")
	data := reviewSubmitted{ReviewID: "r-1", Rating: 5}

	event, err := NewEvent(ctx, "review.submitted", "r-1", "review", "review-service", data)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "review.submitted", event.EventType)
	assert.Equal(t, "r-1", event.AggregateID)
	assert.Equal(t, "review", event.AggregateType)
	assert.Equal(t, "review-service", event.Source)
	assert.Equal(t, "corr-1", event.CorrelationID)
	assert.Equal(t, 1, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)

	var got reviewSubmitted
	require.NoError(t, event.UnmarshalData(&got))
	assert.Equal(t, data, got)
}

func TestNewEvent_UnencodableData(t *testing.T) {
	_, err := NewEvent(context.Background(), "x.y", "a", "x", "svc", make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marshal x.y payload")
}

func TestEvent_EnvelopeEncoding(t *testing.T) {
	event, err := NewEvent(context.Background(), "inquiry.contact_received", "c-1", "contact", "inquiry-service",
		map[string]string{"email": "pat@example.com"})
	require.NoError(t, err)
	event.WithMetadata("channel", "web")

	raw, err := event.Marshal()
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "correlation_id")

	restored, err := UnmarshalEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, event.EventID, restored.EventID)
	assert.Equal(t, "web", restored.Metadata["channel"])

	_, err = UnmarshalEvent([]byte("{"))
	assert.Error(t, err)
}
