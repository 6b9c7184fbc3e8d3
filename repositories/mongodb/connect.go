package mongodb

import (
	// Go Internal Packages
	"context"
	"time"

	// Local Packages
	config "sms-ledger/config"

	// External Packages
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect connects to the mongodb server and returns the configured ledger database.
func Connect(ctx context.Context, conf config.Mongo) (*mongo.Database, error) {
	timeout := time.Second * 5
	opts := &options.ClientOptions{ServerSelectionTimeout: &timeout}

	client, err := mongo.Connect(ctx, opts.ApplyURI(conf.URI))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return client.Database(conf.Database), nil
}
