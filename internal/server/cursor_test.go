package server

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCursor_RoundTrip validates that a handed-out token decodes back to its
// page position.
func TestCursor_RoundTrip(t *testing.T) {
	cursor, err := decodeCursor(encodeCursor(42))
	require.NoError(t, err)

	assert.Equal(t, 42, cursor.Offset)
	assert.WithinDuration(t, time.Now(), cursor.IssuedAt, time.Minute)
}

// TestDecodeCursor validates the rejection rules for client-supplied tokens.
func TestDecodeCursor(t *testing.T) {
	t.Run("empty_token_is_the_start_position", func(t *testing.T) {
		cursor, err := decodeCursor("")
		require.NoError(t, err)
		assert.Equal(t, 0, cursor.Offset)
	})

	t.Run("garbage_token_is_rejected", func(t *testing.T) {
		_, err := decodeCursor("!!not-base64!!")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode cursor token")
	})

	t.Run("token_with_garbage_payload_is_rejected", func(t *testing.T) {
		token := base64.URLEncoding.EncodeToString([]byte("not json"))

		_, err := decodeCursor(token)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unmarshal cursor")
	})

	t.Run("negative_offset_is_rejected", func(t *testing.T) {
		_, err := decodeCursor(forgeCursor(t, -1, time.Now()))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid cursor offset")
	})

	t.Run("stale_token_is_rejected", func(t *testing.T) {
		_, err := decodeCursor(forgeCursor(t, 10, time.Now().Add(-25*time.Hour)))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too old")
	})
}

// Helper functions

func forgeCursor(t *testing.T, offset int, issuedAt time.Time) string {
	t.Helper()
	data, err := json.Marshal(pageCursor{Offset: offset, IssuedAt: issuedAt})
	require.NoError(t, err)
	return base64.URLEncoding.EncodeToString(data)
}
