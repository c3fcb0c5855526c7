package ingest

import (
	"fmt"
	"strings"
	"time"

	"github.com/spendwise/backend/internal/model"
)

// dateLayouts are tried in order. Slash dates are read month first, which is
// how US bank exports write them.
var dateLayouts = []string{
	model.DateLayout,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
	"01/02/06",
	"1/2/06",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	time.RFC3339,
}

// NormalizeDate rewrites a date in any supported layout as YYYY-MM-DD.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(model.DateLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognised date %q", s)
}
