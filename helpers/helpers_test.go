package helpers

import (
	// Go Internal Packages
	"bytes"
	"testing"

	// Local Packages
	models "sms-ledger/models"

	// External Packages
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintStruct(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintStruct(&buf, models.MatchResult{MatchesCreated: 2, Examined: 3, Unmatched: 1}))
	assert.Contains(t, buf.String(), "\n  ")
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("}\n")))

	assert.Error(t, PrintStruct(&buf, make(chan int)))
}
