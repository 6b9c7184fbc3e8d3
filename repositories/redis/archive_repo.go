package redis

import (
	// Go Internal Packages
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	// Local Packages
	models "sms-ledger/models"

	// External Packages
	"github.com/redis/go-redis/v9"
)

// RawArchive keeps a copy of every raw SMS seen, keyed by content so the
// same message arriving twice is stored once.
type RawArchive struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRawArchive(client *redis.Client, ttl time.Duration) *RawArchive {
	return &RawArchive{client: client, ttl: ttl}
}

// ArchiveKey returns the key a message is stored under, "sms:{sha256}".
func ArchiveKey(msg models.RawMessage) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%s", msg.SourceAddress, msg.TimestampMillis, msg.Text)))
	return "sms:" + hex.EncodeToString(sum[:])
}

// Archive stores msg unless an identical message is already archived.
func (a *RawArchive) Archive(ctx context.Context, msg models.RawMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return a.client.SetNX(ctx, ArchiveKey(msg), data, a.ttl).Err()
}
