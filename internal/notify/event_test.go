package notify

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDraftEvent(t *testing.T) {
	ev := NewDraftEvent()

	assert.Equal(t, EventVersion, ev.Version)
	assert.Equal(t, EventTypeDraftSaved, ev.Type)
	assert.Equal(t, int64(0), ev.Ts)
	assert.Equal(t, "", ev.DraftID)
	assert.Equal(t, "", ev.Title)
	assert.Equal(t, 0, ev.Words)
	assert.Equal(t, int64(0), ev.Revision)
	assert.Equal(t, "", ev.Origin)
}

func TestDraftEventJSONSerialization(t *testing.T) {
	t.Run("minimal event", func(t *testing.T) {
		ev := &DraftEvent{
			Version: 1,
			Type:    EventTypeDraftSaved,
			Ts:      1730000000123,
			DraftID: "abc-123",
			Words:   42,
		}

		data, err := json.Marshal(ev)
		require.NoError(t, err)

		// Verify expected JSON structure
		var m map[string]interface{}
		err = json.Unmarshal(data, &m)
		require.NoError(t, err)

		assert.Equal(t, float64(1), m["v"])
		assert.Equal(t, "draft_saved", m["type"])
		assert.Equal(t, float64(1730000000123), m["ts"])
		assert.Equal(t, "abc-123", m["draft_id"])
		assert.Equal(t, float64(42), m["words"])
		// Optional fields should be omitted when zero
		_, hasTitle := m["title"]
		assert.False(t, hasTitle)
		_, hasRevision := m["revision"]
		assert.False(t, hasRevision)
		_, hasOrigin := m["origin"]
		assert.False(t, hasOrigin)
	})

	t.Run("full event with revision", func(t *testing.T) {
		ev := &DraftEvent{
			Version:  1,
			Type:     EventTypeDraftSaved,
			Ts:       1730000000123,
			DraftID:  "draft-456",
			Title:    "Field notes",
			Words:    987,
			Revision: 12,
			Origin:   "assist",
		}

		data, err := json.Marshal(ev)
		require.NoError(t, err)

		var m map[string]interface{}
		err = json.Unmarshal(data, &m)
		require.NoError(t, err)

		assert.Equal(t, "Field notes", m["title"])
		assert.Equal(t, float64(987), m["words"])
		assert.Equal(t, float64(12), m["revision"])
		assert.Equal(t, "assist", m["origin"])
	})

	t.Run("roundtrip serialization", func(t *testing.T) {
		original := &DraftEvent{
			Version:  1,
			Type:     EventTypeDraftDeleted,
			Ts:       1730000000999,
			DraftID:  "roundtrip-test",
			Title:    "gone",
			Words:    3,
			Revision: 7,
			Origin:   "manual",
		}

		data, err := json.Marshal(original)
		require.NoError(t, err)

		var parsed DraftEvent
		err = json.Unmarshal(data, &parsed)
		require.NoError(t, err)

		assert.Equal(t, *original, parsed)
	})
}

func TestEventConstants(t *testing.T) {
	assert.Equal(t, "draft_saved", EventTypeDraftSaved)
	assert.Equal(t, "draft_deleted", EventTypeDraftDeleted)
	assert.Equal(t, 1, EventVersion)
}
