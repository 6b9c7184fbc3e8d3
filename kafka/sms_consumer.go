package kafka

import (
	// Go Internal Packages
	"context"
	"errors"

	// Local Packages
	models "sms-ledger/models"

	// External Packages
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/plugin/kprom"
	"go.uber.org/zap"
)

type ConsumerConfig struct {
	Brokers        []string
	Name           string
	Topic          string
	RecordsPerPoll int
}

// RecordProcessor handles one polled batch of raw SMS records.
type RecordProcessor interface {
	ProcessRecords(ctx context.Context, records []models.Record) error
}

type Consumer struct {
	Client    *kgo.Client
	Config    *ConsumerConfig
	Processor RecordProcessor
	Logger    *zap.Logger
}

// NewSMSConsumer creates a consumer group member on the raw SMS topic.
// Offsets are committed manually after each processed batch; call Poll to
// start consuming.
func NewSMSConsumer(conf *ConsumerConfig, logger *zap.Logger, processor RecordProcessor, metrics *kprom.Metrics) (*Consumer, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(conf.Brokers...),
		kgo.ConsumerGroup(conf.Name),
		kgo.ConsumeTopics(conf.Topic),
		kgo.WithHooks(metrics),
		kgo.DisableAutoCommit(),
		kgo.BlockRebalanceOnPoll(),
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, err
	}
	return &Consumer{Client: client, Config: conf, Processor: processor, Logger: logger}, nil
}

// Poll consumes until ctx is cancelled or the client is closed. Each poll is
// one ingestion batch.
func (c *Consumer) Poll(ctx context.Context) error {
	defer c.Client.Close()

	for {
		if ctx.Err() != nil {
			c.Logger.Warn("polling stopped: context canceled")
			return ctx.Err()
		}

		fetches := c.Client.PollRecords(ctx, c.Config.RecordsPerPoll)
		if fetches.IsClientClosed() {
			return errors.New("kafka client closed")
		}
		if errors.Is(fetches.Err0(), context.Canceled) {
			return ctx.Err()
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			c.Logger.Error("fetch error", zap.String("topic", topic), zap.Int32("partition", partition), zap.Error(err))
		})

		records := ToRecords(fetches.Records())
		if len(records) == 0 {
			c.Client.AllowRebalance()
			continue
		}
		c.Logger.Debug("polled raw sms", zap.String("consumer", c.Config.Name), zap.Int("records", len(records)))

		if err := c.Processor.ProcessRecords(ctx, records); err != nil {
			c.Logger.Error("failed to process records", zap.Error(err))
			c.Client.AllowRebalance()
			continue
		}

		if err := c.Client.CommitRecords(ctx, fetches.Records()...); err != nil {
			c.Logger.Error("failed to commit offsets", zap.Error(err))
		}
		c.Client.AllowRebalance()
	}
}

// ToRecords copies the fields the processor needs out of kafka records.
func ToRecords(rs []*kgo.Record) []models.Record {
	records := make([]models.Record, len(rs))
	for idx, r := range rs {
		records[idx] = models.Record{Key: r.Key, Value: r.Value, Topic: r.Topic}
	}
	return records
}
