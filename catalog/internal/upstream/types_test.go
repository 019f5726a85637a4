package upstream

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlexibleTotalShapes(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected int
	}{
		{name: "bare number", payload: `{"products":[],"total":42}`, expected: 42},
		{name: "numeric string", payload: `{"products":[],"total":"42"}`, expected: 42},
		{name: "nested object", payload: `{"products":[],"total":{"total":42}}`, expected: 42},
		{name: "array of objects", payload: `{"products":[],"total":[{"total":42}]}`, expected: 42},
		{name: "absent", payload: `{"products":[]}`, expected: 0},
		{name: "null", payload: `{"products":[],"total":null}`, expected: 0},
		{name: "unrecognized", payload: `{"products":[],"total":true}`, expected: 0},
		{name: "empty array", payload: `{"products":[],"total":[]}`, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := productListResponse{}
			err := json.Unmarshal([]byte(tt.payload), &out)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, int(out.Total))
		})
	}
}
