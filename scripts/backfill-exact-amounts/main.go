// backfill-exact-amounts rewrites Firestore documents written before amounts
// were stored as exact decimal strings. Transactions gain amount_exact (and a
// hash when missing); challenges get target_amount converted to a string.
//
// The script is idempotent: documents that already carry the exact fields are
// skipped.
//
// Usage:
//
//	export GOOGLE_APPLICATION_CREDENTIALS=/path/to/service-account.json
//	export GOOGLE_CLOUD_PROJECT=your-project-id
//	go run ./scripts/backfill-exact-amounts/
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"

	"github.com/spendwise/backend/internal/ingest"
	"github.com/spendwise/backend/internal/model"
)

// backfillFunc returns the updates one document needs, or none.
type backfillFunc func(data map[string]interface{}) []firestore.Update

func main() {
	ctx := context.Background()

	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		log.Fatal("GOOGLE_CLOUD_PROJECT environment variable is required")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer client.Close()

	collections := []struct {
		name string
		fn   backfillFunc
	}{
		{name: "transactions", fn: backfillTransaction},
		{name: "challenges", fn: backfillChallenge},
	}

	for _, col := range collections {
		processed, updated, err := backfillCollection(ctx, client, col.name, col.fn)
		if err != nil {
			log.Printf("[%s] ERROR: %v", col.name, err)
			continue
		}
		fmt.Printf("[%s] Processed %d docs, updated %d\n", col.name, processed, updated)
	}

	fmt.Println("\nBackfill complete.")
}

// backfillCollection applies fn to every document of a collection.
// Returns (processed count, updated count, error).
func backfillCollection(ctx context.Context, client *firestore.Client, name string, fn backfillFunc) (int, int, error) {
	iter := client.Collection(name).Documents(ctx)
	defer iter.Stop()

	processed := 0
	updated := 0

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return processed, updated, fmt.Errorf("iterating %s: %w", name, err)
		}
		processed++

		updates := fn(doc.Data())
		if len(updates) == 0 {
			continue
		}

		if _, err := doc.Ref.Update(ctx, updates); err != nil {
			log.Printf("[%s] Failed to update doc %s: %v", name, doc.Ref.ID, err)
			continue
		}
		updated++
	}

	return processed, updated, nil
}

func backfillTransaction(data map[string]interface{}) []firestore.Update {
	var updates []firestore.Update

	exact, hasExact := data["amount_exact"].(string)
	amount, err := decimal.NewFromString(exact)
	if !hasExact || err != nil {
		amount = decimal.NewFromFloat(getFloat64(data, "amount"))
		updates = append(updates, firestore.Update{Path: "amount_exact", Value: amount.String()})
	}

	if hash, _ := data["hash"].(string); hash == "" {
		date, _ := data["transaction_date"].(string)
		txType, _ := data["type"].(string)
		if date != "" && txType != "" {
			updates = append(updates, firestore.Update{
				Path:  "hash",
				Value: ingest.Fingerprint(date, amount, model.TransactionType(txType)),
			})
		}
	}
	return updates
}

func backfillChallenge(data map[string]interface{}) []firestore.Update {
	if _, ok := data["target_amount"].(string); ok {
		return nil
	}
	if _, ok := data["target_amount"]; !ok {
		return nil
	}
	target := decimal.NewFromFloat(getFloat64(data, "target_amount"))
	return []firestore.Update{{Path: "target_amount", Value: target.String()}}
}

// getFloat64 safely extracts a float64 value from a map.
// Firestore may store numbers as int64 or float64 depending on the value.
func getFloat64(data map[string]interface{}, key string) float64 {
	v, ok := data[key]
	if !ok || v == nil {
		return 0
	}
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int64:
		return float64(val)
	case int:
		return float64(val)
	default:
		return 0
	}
}
