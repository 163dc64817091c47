package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookPayload_FirstMessage(t *testing.T) {
	t.Run("text message", func(t *testing.T) {
		raw := `{
			"object": "whatsapp_business_account",
			"entry": [{"id": "1", "changes": [{"field": "messages", "value": {
				"messaging_product": "whatsapp",
				"messages": [{"from": "966511111111", "id": "wamid.A", "type": "text", "text": {"body": "Hello"}}]
			}}]}]
		}`
		var p WebhookPayload
		require.NoError(t, json.Unmarshal([]byte(raw), &p))

		msg, ok := p.FirstMessage()
		require.True(t, ok)
		assert.Equal(t, "966511111111", msg.From)
		assert.Equal(t, "wamid.A", msg.ID)
		require.NotNil(t, msg.Text)
		assert.Equal(t, "Hello", msg.Text.Body)
	})

	t.Run("status update has no message", func(t *testing.T) {
		raw := `{"object": "whatsapp_business_account", "entry": [{"changes": [{"value": {"statuses": [{"id": "wamid.B", "status": "read"}]}}]}]}`
		var p WebhookPayload
		require.NoError(t, json.Unmarshal([]byte(raw), &p))

		_, ok := p.FirstMessage()
		assert.False(t, ok)
	})

	t.Run("missing object", func(t *testing.T) {
		p := WebhookPayload{Entry: []Entry{{Changes: []Change{{Value: ChangeValue{Messages: []InboundMessage{{ID: "x"}}}}}}}}
		_, ok := p.FirstMessage()
		assert.False(t, ok)
	})

	t.Run("empty payload", func(t *testing.T) {
		var p WebhookPayload
		_, ok := p.FirstMessage()
		assert.False(t, ok)
	})
}
