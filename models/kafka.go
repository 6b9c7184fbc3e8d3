package models

// Record is a single message polled from the raw SMS topic.
type Record struct {
	Key   []byte
	Value []byte
	Topic string
}
