package sources

import (
	// Go Internal Packages
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	// Local Packages
	models "sms-ledger/models"
)

// FileSource reads an SMS inbox export. The file holds either one JSON array
// of messages or one JSON object per line.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Fetch(ctx context.Context) ([]models.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode parses a JSON array or JSON lines export.
func Decode(data []byte) ([]models.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var msgs []models.RawMessage
		if err := json.Unmarshal(trimmed, &msgs); err != nil {
			return nil, fmt.Errorf("decode message array: %w", err)
		}
		return msgs, nil
	}

	var msgs []models.RawMessage
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	for {
		var msg models.RawMessage
		err := dec.Decode(&msg)
		if err == io.EOF {
			return msgs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode message %d: %w", len(msgs)+1, err)
		}
		msgs = append(msgs, msg)
	}
}

// SliceSource serves a fixed list of messages.
type SliceSource struct {
	Messages []models.RawMessage
}

func NewSliceSource(msgs ...models.RawMessage) *SliceSource {
	return &SliceSource{Messages: msgs}
}

func (s *SliceSource) Fetch(ctx context.Context) ([]models.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]models.RawMessage, len(s.Messages))
	copy(out, s.Messages)
	return out, nil
}
