package main

import (
	// Go Internal Packages
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	// Local Packages
	config "sms-ledger/config"
	helpers "sms-ledger/helpers"
	kafka "sms-ledger/kafka"
	memory "sms-ledger/repositories/memory"
	mongodb "sms-ledger/repositories/mongodb"
	redis "sms-ledger/repositories/redis"
	sqlite "sms-ledger/repositories/sqlite"
	matcher "sms-ledger/services/matcher"
	processors "sms-ledger/services/processors"
	sources "sms-ledger/sources"

	// External Packages
	"github.com/alecthomas/kingpin/v2"
	_ "github.com/jsternberg/zap-logfmt"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/twmb/franz-go/plugin/kprom"
	"go.uber.org/zap"
)

var (
	configPath = kingpin.Flag("config", "Path to the application config file").Short('c').Default("config.yml").String()

	consumeCmd  = kingpin.Command("consume", "Consume raw SMS from kafka and ingest each polled batch")
	ingestCmd   = kingpin.Command("ingest", "Ingest an SMS inbox export as one batch")
	ingestFile  = ingestCmd.Flag("file", "Path to a JSON (array or lines) SMS export").Short('f').Required().String()
	matchCmd    = kingpin.Command("match", "Match unmatched credit card payments to open bills")
	rederiveCmd = kingpin.Command("rederive", "Re-derive direction and counterparty of stored transactions")
)

// LedgerStore is everything the processor and the matcher need from storage.
type LedgerStore interface {
	processors.LedgerRepository
	matcher.BillRepository
}

// LoadSecrets Loads the secret variables and overrides the config
func LoadSecrets(k config.Config) config.Config {
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		k.Mongo.URI = uri
	}
	if uri := os.Getenv("REDIS_URI"); uri != "" {
		k.Redis.URI = uri
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		k.Redis.Password = password
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		k.Kafka.Brokers = strings.Split(brokers, ",")
	}

	IsProdMode := os.Getenv("IS_PROD_MODE")
	k.IsProdMode = IsProdMode == "true"
	return k
}

// LoadConfig loads the default configuration and overrides it with the config file
// specified by the path defined in the config flag
func LoadConfig() (*koanf.Koanf, string) {
	command := kingpin.Parse()
	k := koanf.New(".")
	_ = k.Load(rawbytes.Provider(config.DefaultConfig), yaml.Parser())
	if *configPath != "" {
		_ = k.Load(file.Provider(*configPath), yaml.Parser())
	}
	return k, command
}

func newLogger(conf config.Config) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "logfmt"
	_ = cfg.Level.UnmarshalText([]byte(conf.Logger.Level))
	cfg.InitialFields = make(map[string]any)
	cfg.InitialFields["host"], _ = os.Hostname()
	cfg.InitialFields["service"] = conf.Application
	cfg.OutputPaths = []string{"stdout"}
	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("cannot build logger: %v", err)
	}
	return logger
}

// openStore connects the configured ledger backend. The returned func
// releases it.
func openStore(ctx context.Context, conf config.Config, logger *zap.Logger) (LedgerStore, func(), error) {
	switch conf.Store.Driver {
	case config.DriverSQLite:
		db, err := sqlite.InitDB(conf.SQLite.DSN)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewLedgerRepository(db), func() { closeDB(db, logger) }, nil

	case config.DriverMemory:
		logger.Warn("using in-memory store, nothing will be persisted")
		return memory.NewLedgerRepository(), func() {}, nil
	}

	db, err := mongodb.Connect(ctx, conf.Mongo)
	if err != nil {
		return nil, nil, err
	}
	repo := mongodb.NewLedgerRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		return nil, nil, err
	}
	return repo, func() { _ = db.Client().Disconnect(context.Background()) }, nil
}

func closeDB(db *sql.DB, logger *zap.Logger) {
	if err := db.Close(); err != nil {
		logger.Error("failed to close sqlite", zap.Error(err))
	}
}

func main() {
	k, command := LoadConfig()
	appKonf := config.Config{}

	// Unmarshalling config into struct
	err := k.Unmarshal("", &appKonf)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Update and Validate config before starting
	appKonf = LoadSecrets(appKonf)
	if err = appKonf.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if command == consumeCmd.FullCommand() {
		if err = appKonf.ValidateConsumer(); err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}
	}

	if !appKonf.IsProdMode {
		k.Print()
	}

	logger := newLogger(appKonf)
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, appKonf, logger)
	if err != nil {
		logger.Fatal("cannot open ledger store", zap.String("driver", appKonf.Store.Driver), zap.Error(err))
	}
	defer closeStore()

	billMatcher := matcher.NewMatcher(logger, store)
	smsProcessor := processors.NewSMSProcessor(logger, store)
	if appKonf.Matcher.RunAfterIngest {
		smsProcessor.Reconciler = billMatcher
	}

	if appKonf.Redis.Enabled {
		redisClient, err := redis.Connect(ctx, appKonf.Redis)
		if err != nil {
			logger.Fatal("cannot create redis client", zap.Error(err))
		}
		defer redisClient.Close()
		smsProcessor.Locker = redis.NewKeyLock(redisClient, appKonf.Redis.LockTTL)
		smsProcessor.Archiver = redis.NewRawArchive(redisClient, appKonf.Redis.ArchiveTTL)
	}

	switch command {
	case consumeCmd.FullCommand():
		metrics := kprom.NewMetrics("sms_ledger")
		conf := &kafka.ConsumerConfig{
			Brokers:        appKonf.Kafka.Brokers,
			Name:           appKonf.Kafka.ConsumerName,
			Topic:          appKonf.Kafka.Topic,
			RecordsPerPoll: appKonf.Kafka.RecordsPerPoll,
		}
		consumer, err := kafka.NewSMSConsumer(conf, logger, smsProcessor, metrics)
		if err != nil {
			logger.Fatal("cannot create sms consumer", zap.Error(err))
		}
		if err := consumer.Poll(ctx); err != nil && ctx.Err() == nil {
			logger.Fatal("cannot poll records from topic", zap.Error(err))
		}

	case ingestCmd.FullCommand():
		stats, err := smsProcessor.Ingest(ctx, sources.NewFileSource(*ingestFile))
		if err != nil {
			logger.Fatal("ingestion failed", zap.String("file", *ingestFile), zap.Error(err))
		}
		_ = helpers.PrintStruct(os.Stdout, stats)

	case matchCmd.FullCommand():
		res, err := billMatcher.Run(ctx)
		if err != nil {
			logger.Fatal("matcher run failed", zap.Error(err))
		}
		_ = helpers.PrintStruct(os.Stdout, res)

	case rederiveCmd.FullCommand():
		stats, err := smsProcessor.Rederive(ctx)
		if err != nil {
			logger.Fatal("rederive failed", zap.Error(err))
		}
		_ = helpers.PrintStruct(os.Stdout, stats)
	}
}
