package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// cursorMaxAge bounds how long a handed-out pagination token stays valid.
const cursorMaxAge = 24 * time.Hour

// pageCursor is the opaque pagination token handed to API clients: a
// base64-encoded JSON offset plus its issue time.
type pageCursor struct {
	Offset   int       `json:"offset"`
	IssuedAt time.Time `json:"issued_at"`
}

func encodeCursor(offset int) string {
	data, _ := json.Marshal(pageCursor{Offset: offset, IssuedAt: time.Now()})
	return base64.URLEncoding.EncodeToString(data)
}

// decodeCursor parses an opaque cursor token back to a page position. An
// empty token is the start position.
func decodeCursor(token string) (*pageCursor, error) {
	if token == "" {
		return &pageCursor{}, nil
	}

	data, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cursor token: %w", err)
	}

	var cursor pageCursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cursor: %w", err)
	}

	if cursor.Offset < 0 {
		return nil, fmt.Errorf("invalid cursor offset %d", cursor.Offset)
	}
	if time.Since(cursor.IssuedAt) > cursorMaxAge {
		return nil, fmt.Errorf("cursor is too old")
	}

	return &cursor, nil
}
