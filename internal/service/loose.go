package service

import (
	"bytes"
	"encoding/json"
	"strings"
)

// looseString accepts any JSON scalar and keeps it as text. Oracle answers
// mix "12.50" and 12.5 for the same field.
type looseString string

func (l *looseString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = looseString(s)
		return nil
	}
	if string(b) == "null" {
		*l = ""
		return nil
	}
	*l = looseString(strings.TrimSpace(string(b)))
	return nil
}
