package main

import (
	"fmt"
	"log"

	"github.com/fairyhunter13/kafka-order-processor/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("KafkaBrokers: %v\n", cfg.KafkaBrokers)
	fmt.Printf("KafkaGroupID: '%s'\n", cfg.KafkaGroupID)
	fmt.Printf("TopicOrderEvents: '%s'\n", cfg.TopicOrderEvents)
	fmt.Printf("DedupBackend: '%s'\n", cfg.DedupBackend)
	fmt.Printf("DLQSink: '%s'\n", cfg.DLQSink)
	fmt.Printf("MongoEnabled: %v\n", cfg.MongoEnabled)
	fmt.Printf("WMQEnabled: %v\n", cfg.WMQEnabled)
	fmt.Printf("GroupingStrategy: '%s'\n", cfg.GroupingStrategy)
	fmt.Printf("DBRetryDelay(): %v\n", cfg.DBRetryDelay())
}
