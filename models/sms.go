package models

import "time"

// RawMessage is one SMS as read from an inbox export or the raw SMS topic.
type RawMessage struct {
	Text            string `json:"text"`
	TimestampMillis int64  `json:"timestamp"`
	SourceAddress   string `json:"address"`
}

// ReceivedAt returns the receipt timestamp as a UTC instant.
func (m RawMessage) ReceivedAt() time.Time {
	return time.UnixMilli(m.TimestampMillis).UTC()
}
