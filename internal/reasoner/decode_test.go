package reasoner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `[1,2]`, `[1,2]`},
		{"json fence", "```json\n[1,2]\n```", `[1,2]`},
		{"bare fence", "```\n{\"a\":1}\n```\n", `{"a":1}`},
		{"surrounding whitespace", "  \n```json [] ```  ", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFences(tt.in))
		})
	}
}

func TestDecodeArray(t *testing.T) {
	var out []struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	err := DecodeArray("```json\n[{\"id\":\"c1\",\"status\":\"Completed\"}]\n```", &out)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "c1", out[0].ID)
}

func TestDecodeArrayRejectsWrongShape(t *testing.T) {
	var out []map[string]any

	err := DecodeArray(`{"id":"c1"}`, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedShape))

	err = DecodeArray("Sorry, I cannot help with that.", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")

	err = DecodeArray("```json\n```", &out)
	assert.ErrorIs(t, err, ErrEmptyResponse)

	err = DecodeArray(`[{"id": 5}]`, &[]struct {
		ID string `json:"id"`
	}{})
	assert.Error(t, err)
}

func TestDecodeObject(t *testing.T) {
	var out map[string]any
	require.NoError(t, DecodeObject(`{"message":"ok"}`, &out))
	assert.Equal(t, "ok", out["message"])

	err := DecodeObject(`["ok"]`, &out)
	assert.ErrorIs(t, err, ErrUnexpectedShape)
}
