package jsontime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshal(t *testing.T) {
	tests := map[string]time.Time{
		`"2026-05-01T10:00:00Z"`:      time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		`"2026-05-01T10:00:00+02:00"`: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
		`"2026-05-01T10:00:00"`:       time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		`"2026-05-01 10:00"`:          time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		`"2026-05-01"`:                time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	for in, want := range tests {
		var d DateTime
		require.NoError(t, json.Unmarshal([]byte(in), &d), in)
		assert.True(t, want.Equal(d.Time), in)
	}
}

func TestUnmarshal_Invalid(t *testing.T) {
	var d DateTime
	assert.Error(t, json.Unmarshal([]byte(`"next tuesday"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`42`), &d))
}

func TestUnmarshal_NullInStruct(t *testing.T) {
	var v struct {
		At *DateTime `json:"at"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"at":null}`), &v))
	assert.Nil(t, v.At)
}
