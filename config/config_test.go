package config

import (
	// Go Internal Packages
	"testing"
	"time"

	// Local Packages
	errors "sms-ledger/errors"

	// External Packages
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadDefault(t *testing.T, overrides ...string) Config {
	t.Helper()

	k := koanf.New(".")
	require.NoError(t, k.Load(rawbytes.Provider(DefaultConfig), yaml.Parser()))
	for _, o := range overrides {
		require.NoError(t, k.Load(rawbytes.Provider([]byte(o)), yaml.Parser()))
	}

	var c Config
	require.NoError(t, k.Unmarshal("", &c))
	return c
}

func TestDefaultConfigIsValid(t *testing.T) {
	c := loadDefault(t)

	require.NoError(t, c.Validate())
	require.NoError(t, c.ValidateConsumer())
	assert.Equal(t, "sms-ledger", c.Application)
	assert.Equal(t, DriverMongo, c.Store.Driver)
	assert.Equal(t, 30*time.Second, c.Redis.LockTTL)
	assert.Equal(t, []string{"localhost:9092"}, c.Kafka.Brokers)
	assert.True(t, c.Matcher.RunAfterIngest)
}

func TestValidateReportsDriverSpecificKeys(t *testing.T) {
	tests := []struct {
		name     string
		override string
		wantErr  string
	}{
		{
			name:     "sqlite without dsn",
			override: "store:\n  driver: sqlite\nsqlite:\n  dsn: \"\"\n",
			wantErr:  "sqlite.dsn cannot be empty",
		},
		{
			name:     "unknown driver",
			override: "store:\n  driver: postgres\n",
			wantErr:  "store.driver must be one of mongo, sqlite, memory",
		},
		{
			name:     "mongo without database",
			override: "mongo:\n  database: \"\"\n",
			wantErr:  "mongo.database cannot be empty",
		},
		{
			name:     "redis enabled without uri",
			override: "redis:\n  enabled: true\n  uri: \"\"\n",
			wantErr:  "redis.uri cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := loadDefault(t, tt.override)
			err := c.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(errors.Invalid, err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMemoryDriverNeedsNoConnection(t *testing.T) {
	c := loadDefault(t, "store:\n  driver: memory\nmongo:\n  uri: \"\"\n")
	assert.NoError(t, c.Validate())
}

func TestValidateConsumer(t *testing.T) {
	c := loadDefault(t, "kafka:\n  topic: \"\"\n  records_per_poll: 0\n")
	err := c.ValidateConsumer()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kafka.records_per_poll must be positive")
	assert.Contains(t, err.Error(), "kafka.topic cannot be empty")
}
