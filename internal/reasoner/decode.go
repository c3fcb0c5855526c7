package reasoner

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnexpectedShape is returned when a completion parses as JSON but the top
// level is not the expected array or object.
var ErrUnexpectedShape = errors.New("unexpected JSON shape")

// StripCodeFences removes Markdown code fences around a completion.
func StripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```JSON")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// DecodeArray strips fences, requires a top-level JSON array and decodes it
// into dst.
func DecodeArray(text string, dst any) error {
	return decodeShape(text, '[', dst)
}

// DecodeObject strips fences, requires a top-level JSON object and decodes it
// into dst.
func DecodeObject(text string, dst any) error {
	return decodeShape(text, '{', dst)
}

func decodeShape(text string, open byte, dst any) error {
	body := []byte(StripCodeFences(text))
	if len(body) == 0 {
		return ErrEmptyResponse
	}
	if !json.Valid(body) {
		return fmt.Errorf("completion is not valid JSON (text: %s)", preview(body))
	}
	if body[0] != open {
		return fmt.Errorf("%w: want %q, got %q", ErrUnexpectedShape, open, body[0])
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode completion: %w", err)
	}
	return nil
}

func preview(b []byte) string {
	const limit = 200
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
