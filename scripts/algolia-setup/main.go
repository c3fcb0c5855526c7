// algolia-setup applies the transaction search index settings.
//
// Usage:
//
//	ALGOLIA_APP_ID=... ALGOLIA_ADMIN_KEY=... go run ./scripts/algolia-setup
//	ALGOLIA_APP_ID=... ALGOLIA_ADMIN_KEY=... ALGOLIA_INDEX_NAME=spendwise_transactions go run ./scripts/algolia-setup
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/algolia/algoliasearch-client-go/v4/algolia/search"
)

func int32Ptr(v int32) *int32 { return &v }

func main() {
	appID := os.Getenv("ALGOLIA_APP_ID")
	adminKey := os.Getenv("ALGOLIA_ADMIN_KEY")
	indexName := os.Getenv("ALGOLIA_INDEX_NAME")

	if appID == "" || adminKey == "" {
		log.Fatal("ALGOLIA_APP_ID and ALGOLIA_ADMIN_KEY are required")
	}
	if indexName == "" {
		indexName = "spendwise_transactions"
	}

	client, err := search.NewClient(appID, adminKey)
	if err != nil {
		log.Fatalf("Failed to create Algolia client: %v", err)
	}

	log.Printf("Configuring Algolia index %q (app: %s)...", indexName, appID)

	settings := &search.IndexSettings{
		SearchableAttributes: []string{
			"Description",
			"Category",
		},

		// UserId is filter-only; every query is scoped to one user.
		AttributesForFaceting: []string{
			"filterOnly(UserId)",
			"searchable(Category)",
			"filterOnly(Type)",
		},

		NumericAttributesForFiltering: []string{
			"Amount",
			"DateUnix",
		},

		// Newest statement lines first.
		CustomRanking: []string{
			"desc(DateUnix)",
		},

		AttributesToRetrieve: []string{
			"objectID",
			"Description",
			"Category",
			"Amount",
			"AmountExact",
			"Type",
			"Date",
			"DateUnix",
		},

		AttributesToHighlight: []string{
			"Description",
		},

		HitsPerPage:       int32Ptr(20),
		MaxValuesPerFacet: int32Ptr(20),

		// Merchant names are short; keep typo tolerance tight.
		MinWordSizefor1Typo:  int32Ptr(5),
		MinWordSizefor2Typos: int32Ptr(9),
	}

	resp, err := client.SetSettings(client.NewApiSetSettingsRequest(indexName, settings))
	if err != nil {
		log.Fatalf("Failed to set index settings: %v", err)
	}

	log.Printf("Index settings applied (taskID: %d, updatedAt: %s)", resp.TaskID, resp.UpdatedAt)

	fmt.Println()
	fmt.Println("=== Transaction Search Index ===")
	fmt.Printf("Index:           %s\n", indexName)
	fmt.Printf("App ID:          %s\n", appID)
	fmt.Println("Searchable:      Description, Category")
	fmt.Println("Facets:          UserId, Category, Type")
	fmt.Println("Numeric filters: Amount, DateUnix")
	fmt.Println("Ranking:         desc(DateUnix)")
}
