package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

var ErrInvalidAmount = errors.New("amount must be a number")

// Amount is a money value. Clients and older records send it either as a
// number or as a numeric string; it is always stored as a double.
type Amount float64

// ParseAmount accepts a JSON-decoded number or numeric string.
func ParseAmount(v interface{}) (Amount, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return Amount(n), nil
	case int:
		return Amount(n), nil
	case int32:
		return Amount(n), nil
	case int64:
		return Amount(n), nil
	case string:
		return parseAmount(n)
	}
	return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, v)
}

func parseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return Amount(n), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n, err := ParseAmount(v)
	if err != nil {
		return err
	}
	*a = n
	return nil
}

func (a *Amount) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Double:
		*a = Amount(raw.Double())
	case bsontype.Int32:
		*a = Amount(raw.Int32())
	case bsontype.Int64:
		*a = Amount(raw.Int64())
	case bsontype.String:
		n, err := parseAmount(raw.StringValue())
		if err != nil {
			return err
		}
		*a = n
	case bsontype.Null, bsontype.Undefined:
		*a = 0
	default:
		return fmt.Errorf("%w: bson %s", ErrInvalidAmount, t)
	}
	return nil
}
