package app

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Pinger is the minimal interface shared by the Postgres pool and the
// Kafka client for connectivity probes.
type Pinger interface{ Ping(ctx context.Context) error }

// MongoPinger is the minimal surface of the Mongo client used by the
// readiness probe.
type MongoPinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// BuildReadinessChecks returns the dependency probes behind /readyz.
// Pass nil for a disabled dependency; its check comes back nil and the
// readiness handler drops it from the report.
func BuildReadinessChecks(pool Pinger, mongoClient MongoPinger, kafkaClient Pinger, rdb *redis.Client) (
	dbCheck func(ctx context.Context) error,
	mongoCheck func(ctx context.Context) error,
	kafkaCheck func(ctx context.Context) error,
	redisCheck func(ctx context.Context) error,
) {
	if pool != nil {
		dbCheck = func(ctx context.Context) error { return pool.Ping(ctx) }
	}
	if mongoClient != nil {
		mongoCheck = func(ctx context.Context) error { return mongoClient.Ping(ctx, readpref.Primary()) }
	}
	if kafkaClient != nil {
		kafkaCheck = func(ctx context.Context) error { return kafkaClient.Ping(ctx) }
	}
	if rdb != nil {
		redisCheck = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return dbCheck, mongoCheck, kafkaCheck, redisCheck
}
