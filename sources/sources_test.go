package sources

import (
	// Go Internal Packages
	"context"
	"os"
	"path/filepath"
	"testing"

	// Local Packages
	models "sms-ledger/models"

	// External Packages
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	want := []models.RawMessage{
		{Text: "Rs 500 debited", TimestampMillis: 1718000000000, SourceAddress: "VM-HDFCBK"},
		{Text: "Rs 20 credited", TimestampMillis: 1718000001000, SourceAddress: "AX-ICICIB"},
	}

	tests := []struct {
		name string
		data string
	}{
		{"array", `[
			{"text": "Rs 500 debited", "timestamp": 1718000000000, "address": "VM-HDFCBK"},
			{"text": "Rs 20 credited", "timestamp": 1718000001000, "address": "AX-ICICIB"}
		]`},
		{"lines", `{"text": "Rs 500 debited", "timestamp": 1718000000000, "address": "VM-HDFCBK"}
{"text": "Rs 20 credited", "timestamp": 1718000001000, "address": "AX-ICICIB"}
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestDecodeEmptyAndBroken(t *testing.T) {
	got, err := Decode([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = Decode([]byte(`{"text": "ok"}` + "\n{broken"))
	assert.Error(t, err)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inbox.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"text": "Rs 1 paid", "timestamp": 1, "address": "X"}]`), 0o600))

	msgs, err := NewFileSource(path).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Rs 1 paid", msgs[0].Text)

	_, err = NewFileSource(filepath.Join(t.TempDir(), "missing.json")).Fetch(context.Background())
	assert.Error(t, err)
}

func TestSliceSource(t *testing.T) {
	src := NewSliceSource(models.RawMessage{Text: "a"}, models.RawMessage{Text: "b"})
	msgs, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, msgs, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
