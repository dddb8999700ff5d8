package messaging

import (
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/autotaller-api/internal/application/inventory"
)

func TestStockMovedMessage(t *testing.T) {
	at := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	ev := inventory.StockMovedEvent{
		TenantID:      "t1",
		Operation:     "purchase.receive",
		ReferenceType: "purchase",
		ReferenceID:   "doc-1",
		Lines: []inventory.MovedLine{
			{ProductID: "p1", WarehouseID: "w1", Direction: "in", Quantity: decimal.NewFromInt(4)},
		},
		OccurredAt: at,
	}

	msg, err := stockMovedMessage(ev)
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "t1", msg.Headers["tenant_id"])
	assert.Equal(t, at, msg.Timestamp)

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Body, &body))
	assert.Equal(t, "doc-1", body["reference_id"])
	lines := body["lines"].([]any)
	require.Len(t, lines, 1)
	assert.Equal(t, "4", lines[0].(map[string]any)["quantity"])
}
