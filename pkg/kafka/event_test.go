package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopic(t *testing.T) {
	assert.Equal(t, "catalog.dataset.updated", Topic("dataset", "updated"))
	assert.Equal(t, "catalog.index.rebuilt", Topic("index", "rebuilt"))
}

func TestNewEvent(t *testing.T) {
	type payload struct {
		Count int `json:"count"`
	}

	event, err := NewEvent("catalog.index.rebuilt", "catalog", "index", "catalog-search", payload{Count: 3})
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "catalog.index.rebuilt", event.EventType)
	assert.Equal(t, "catalog", event.AggregateID)
	assert.Equal(t, "index", event.AggregateType)
	assert.Equal(t, "catalog-search", event.Source)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, time.Minute)

	var got payload
	require.NoError(t, event.UnmarshalData(&got))
	assert.Equal(t, 3, got.Count)
}

func TestEventMarshalRoundTrip(t *testing.T) {
	event, err := NewEvent("catalog.dataset.updated", "catalog", "dataset", "catalog-service", map[string]string{"reason": "import"})
	require.NoError(t, err)

	data, err := event.Marshal()
	require.NoError(t, err)

	got, err := UnmarshalEvent(data)
	require.NoError(t, err)
	assert.Equal(t, event.EventID, got.EventID)
	assert.Equal(t, event.EventType, got.EventType)

	var reason map[string]string
	require.NoError(t, got.UnmarshalData(&reason))
	assert.Equal(t, "import", reason["reason"])
}

func TestUnmarshalEventInvalid(t *testing.T) {
	_, err := UnmarshalEvent([]byte("{not json"))
	assert.Error(t, err)
}
