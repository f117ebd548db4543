package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventCarriesHeaders(t *testing.T) {
	headers := Headers{TraceID: "trace", CorrelationID: "corr", Service: "storefront"}

	event := NewEvent(ItemCreatedEvent, EventVersionV1, ItemDeletedPayload{ID: 3}, headers)

	assert.Equal(t, "item.created.v1", event.GetRoutingKey())
	assert.Equal(t, "trace", event.TraceID)
	assert.Equal(t, "corr", event.CorrelationID)
	assert.False(t, event.Timestamp.IsZero())
}

func TestDecodePayload(t *testing.T) {
	body, err := NewEvent(StockDepletedEvent, EventVersionV1, StockPayload{ItemID: 12}, Headers{}).ToJSON()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(body, &event))

	var payload StockPayload
	require.NoError(t, event.DecodePayload(&payload))
	assert.Equal(t, int64(12), payload.ItemID)
}

func TestGeneratedIDsAreUnique(t *testing.T) {
	assert.NotEqual(t, GenerateTraceID(), GenerateTraceID())
	assert.NotEqual(t, GenerateCorrelationID(), GenerateCorrelationID())
}
