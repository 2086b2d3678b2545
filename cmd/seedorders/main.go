// Command seedorders inserts pending-order fixtures into MongoDB so a
// running pipeline has something to fetch. Dev tooling only.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fairyhunter13/kafka-order-processor/internal/adapter/repo/mongodb"
	"github.com/fairyhunter13/kafka-order-processor/internal/config"
	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
	"github.com/fairyhunter13/kafka-order-processor/internal/seed"
)

func main() {
	file := flag.String("file", "configs/seed/orders.yaml", "YAML fixture of orders to insert")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal(err)
	}

	repo := mongodb.NewOrdersRepo(client, cfg.MongoDatabase, cfg.FetchPendingLimit)
	n, err := seed.SeedFile(ctx, repo, *file)
	if err != nil {
		log.Fatal(err)
	}
	pending, err := repo.CountByStatus(ctx, domain.OrderStatusPending)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("seeded %d orders from %s, %d now pending", n, *file, pending)
}
