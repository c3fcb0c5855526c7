//go:build ignore
// +build ignore

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"time"
)

// Two months of statement lines; the second upload overlaps the first so the
// duplicate count is exercised too.
var statements = []struct {
	filename string
	csv      string
}{
	{
		filename: "demo-january.csv",
		csv: "Trans. Date,Post Date,Description,Amount\n" +
			"01/03/2024,01/04/2024,STARBUCKS #1123,-5.75\n" +
			"01/05/2024,01/05/2024,PAYROLL ACME CORP,2450.00\n" +
			"01/07/2024,01/08/2024,COSTCO WHSE #0412,-132.48\n" +
			"01/11/2024,01/12/2024,NETFLIX.COM,-15.49\n" +
			"01/14/2024,01/15/2024,UBER TRIP,-23.10\n" +
			"01/19/2024,01/20/2024,CHIPOTLE 2234,-12.85\n" +
			"01/24/2024,01/24/2024,DOMINION ENERGY,-96.20\n",
	},
	{
		filename: "demo-february.csv",
		csv: "Trans. Date,Post Date,Description,Amount\n" +
			"01/24/2024,01/24/2024,DOMINION ENERGY,-96.20\n" +
			"02/02/2024,02/03/2024,STARBUCKS #1123,-6.25\n" +
			"02/05/2024,02/05/2024,PAYROLL ACME CORP,2450.00\n" +
			"02/09/2024,02/10/2024,AMAZON MKTPLACE,-54.99\n" +
			"02/13/2024,02/14/2024,CVS PHARMACY,-18.40\n",
	},
}

func main() {
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8111"
	}

	userID := os.Getenv("USER_ID")
	if userID == "" {
		userID = "local-dev-user"
	}

	// Without a token the server must run with AUTH_PROVIDER=none.
	authToken := os.Getenv("AUTH_TOKEN")

	log.Printf("Seeding statements for user %s against %s", userID, apiURL)

	client := &http.Client{Timeout: 3 * time.Minute}
	for _, st := range statements {
		result, err := upload(client, apiURL, userID, authToken, st.filename, []byte(st.csv))
		if err != nil {
			log.Fatalf("Failed to upload %s: %v", st.filename, err)
		}
		log.Printf("%s: %s", st.filename, result.Message)
		for _, c := range result.NewChallenges {
			log.Printf("  new challenge: %s", c.Name)
		}
	}

	log.Println("Seeding complete.")
}

type uploadResult struct {
	Message       string `json:"message"`
	NewChallenges []struct {
		Name string `json:"name"`
	} `json:"new_challenges"`
}

func upload(client *http.Client, apiURL, userID, token, filename string, data []byte) (*uploadResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, apiURL+"/api/transactions/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		req.Header.Set("X-Debug-Impersonate-User", userID)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, raw)
	}

	var result uploadResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}
