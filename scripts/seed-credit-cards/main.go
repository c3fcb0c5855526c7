// seed-credit-cards loads a JSON array of card offerings into the configured
// store. The store is chosen by the same STORE_BACKEND settings as the server.
//
// Usage:
//
//	STORE_BACKEND=firestore GOOGLE_CLOUD_PROJECT=... go run ./scripts/seed-credit-cards cards.json
//	STORE_BACKEND=sqlite SQLITE_PATH=spendwise.db go run ./scripts/seed-credit-cards cards.json
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/firestore"

	"github.com/spendwise/backend/internal/config"
	"github.com/spendwise/backend/internal/logging"
	"github.com/spendwise/backend/internal/model"
	"github.com/spendwise/backend/internal/store"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatal("usage: seed-credit-cards <cards.json>")
	}

	cards, err := readCards(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to read cards: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	var st store.Store
	switch cfg.StoreBackend {
	case config.StoreFirestore:
		projectID := cfg.ProjectID
		if projectID == "" {
			projectID = firestore.DetectProjectID
		}
		client, err := firestore.NewClient(ctx, projectID)
		if err != nil {
			log.Fatalf("Failed to create Firestore client: %v", err)
		}
		defer client.Close()
		st = store.NewFirestoreStore(client)
	case config.StoreSQLite:
		sqlStore, err := store.OpenSQLite(cfg.SQLitePath, logging.SetupLogging(cfg.LogLevel))
		if err != nil {
			log.Fatalf("Failed to open SQLite store: %v", err)
		}
		defer sqlStore.Close()
		st = sqlStore
	default:
		log.Fatalf("STORE_BACKEND %q is not persistent; use firestore or sqlite", cfg.StoreBackend)
	}

	if err := st.PutCreditCards(ctx, cards); err != nil {
		log.Fatalf("Failed to store cards: %v", err)
	}
	fmt.Printf("Stored %d credit cards in %s\n", len(cards), cfg.StoreBackend)
}

func readCards(path string) ([]*model.CreditCard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cards []*model.CreditCard
	if err := json.Unmarshal(data, &cards); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i, c := range cards {
		if c.Name == "" {
			return nil, fmt.Errorf("%s: card %d has no name", path, i)
		}
	}
	return cards, nil
}
