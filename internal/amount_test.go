package internal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestAmountJSON(t *testing.T) {
	tests := []struct {
		body string
		want Amount
	}{
		{`{"a":1200.5}`, 1200.5},
		{`{"a":"1200"}`, 1200},
		{`{"a":" 75.25 "}`, 75.25},
		{`{"a":""}`, 0},
		{`{"a":null}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			var v struct {
				A Amount `json:"a"`
			}
			require.NoError(t, json.Unmarshal([]byte(tt.body), &v))
			assert.Equal(t, tt.want, v.A)
		})
	}

	var v struct {
		A Amount `json:"a"`
	}
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"a":"twelve"}`), &v), ErrInvalidAmount)
	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &v))
}

func TestAmountBSON(t *testing.T) {
	type doc struct {
		A Amount `bson:"a"`
	}

	for name, value := range map[string]interface{}{
		"double": 99.5,
		"int32":  int32(99),
		"int64":  int64(99),
		"string": "99",
	} {
		t.Run(name, func(t *testing.T) {
			data, err := bson.Marshal(bson.D{{Key: "a", Value: value}})
			require.NoError(t, err)

			var d doc
			require.NoError(t, bson.Unmarshal(data, &d))
			assert.InDelta(t, 99, float64(d.A), 0.5)
		})
	}

	data, err := bson.Marshal(doc{A: 12.5})
	require.NoError(t, err)
	assert.Equal(t, 12.5, bson.Raw(data).Lookup("a").Double())

	data, err = bson.Marshal(bson.D{{Key: "a", Value: "n/a"}})
	require.NoError(t, err)
	var d doc
	assert.ErrorIs(t, bson.Unmarshal(data, &d), ErrInvalidAmount)
}
