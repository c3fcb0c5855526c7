// Package ingest turns parsed statement lines into classified, fingerprinted
// and deduplicated transactions.
package ingest

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/spendwise/backend/internal/model"
)

// Fingerprint identifies a financial event by its date, amount and type.
// Category and description are left out so a reclassification of the same
// line still maps to the same fingerprint.
func Fingerprint(date string, amount decimal.Decimal, txType model.TransactionType) string {
	key := strings.Join([]string{date, amount.String(), string(txType)}, "|")
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}
