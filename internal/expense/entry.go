package expense

import (
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"meal-manager/internal"
)

// Entry is a bill or a cost. The declared fields cover what the mess tracks;
// anything else a client sends is kept in Extra and stored alongside them.
type Entry struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title     string             `json:"title,omitempty" bson:"title,omitempty"`
	Amount    internal.Amount    `json:"amount" bson:"amount"`
	Date      string             `json:"date" bson:"date"`
	Email     string             `json:"email,omitempty" bson:"email,omitempty"` // who paid or is billed
	Category  string             `json:"category,omitempty" bson:"category,omitempty"`
	Note      string             `json:"note,omitempty" bson:"note,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
	Extra     bson.M             `json:"-" bson:",inline"`
}

// reserved keys are never accepted from a client body or passthrough bag.
var reserved = map[string]bool{"_id": true, "id": true, "createdAt": true, "updatedAt": true}

var declared = map[string]bool{"title": true, "amount": true, "date": true, "email": true, "category": true, "note": true}

type entryFields Entry

// MarshalJSON flattens Extra into the object. A stored value that did not fit
// its declared field was kept in Extra and is returned as stored.
func (e Entry) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(entryFields(e))
	if err != nil {
		return nil, err
	}
	if len(e.Extra) == 0 {
		return known, nil
	}

	var out map[string]interface{}
	if err = json.Unmarshal(known, &out); err != nil {
		return nil, err
	}
	for k, v := range e.Extra {
		if _, taken := out[k]; !taken || declared[k] {
			out[k] = v
		}
	}

	return json.Marshal(out)
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k := range reserved {
		delete(raw, k)
	}

	known, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	var fields entryFields
	if err = json.Unmarshal(known, &fields); err != nil {
		return err
	}

	*e = Entry(fields)
	e.Extra = nil
	for k, v := range raw {
		if declared[k] {
			continue
		}
		var value interface{}
		if err = json.Unmarshal(v, &value); err != nil {
			return err
		}
		e.setExtra(k, value)
	}

	return nil
}

// UnmarshalBSON decodes a stored entry without failing on legacy documents:
// a declared field holding the wrong type is moved into Extra instead.
func (e *Entry) UnmarshalBSON(data []byte) error {
	var doc bson.M
	if err := bson.Unmarshal(data, &doc); err != nil {
		return err
	}

	*e = Entry{}
	for k, v := range doc {
		if !e.setField(k, v) {
			e.setExtra(k, v)
		}
	}

	return nil
}

func (e *Entry) setField(key string, v interface{}) bool {
	switch key {
	case "_id":
		id, ok := v.(primitive.ObjectID)
		e.ID = id
		return ok
	case "title":
		return setString(&e.Title, v)
	case "date":
		return setString(&e.Date, v)
	case "email":
		return setString(&e.Email, v)
	case "category":
		return setString(&e.Category, v)
	case "note":
		return setString(&e.Note, v)
	case "amount":
		n, err := internal.ParseAmount(v)
		if err != nil {
			return false
		}
		e.Amount = n
		return true
	case "createdAt":
		return setTime(&e.CreatedAt, v)
	case "updatedAt":
		return setTime(&e.UpdatedAt, v)
	}
	return false
}

func (e *Entry) setExtra(key string, v interface{}) {
	if e.Extra == nil {
		e.Extra = bson.M{}
	}
	e.Extra[key] = v
}

func setString(dst *string, v interface{}) bool {
	s, ok := v.(string)
	if ok {
		*dst = s
	}
	return ok
}

func setTime(dst *time.Time, v interface{}) bool {
	switch t := v.(type) {
	case primitive.DateTime:
		*dst = t.Time()
		return true
	case time.Time:
		*dst = t
		return true
	}
	return false
}

// UpdateFields turns a PATCH body into a $set document. Reserved keys are
// dropped and every declared field must carry its declared type.
func UpdateFields(body map[string]interface{}) (bson.M, error) {
	set := bson.M{}
	for k, v := range body {
		if reserved[k] {
			continue
		}
		set[k] = v
	}
	if len(set) == 0 {
		return nil, ErrEmptyUpdate
	}

	for k, v := range set {
		if !declared[k] {
			continue
		}
		switch k {
		case "amount":
			n, err := internal.ParseAmount(v)
			if err != nil {
				return nil, err
			}
			set[k] = float64(n)
		case "date":
			date, isString := v.(string)
			if !isString {
				return nil, internal.ErrInvalidDate
			}
			if err := internal.ValidDate(date); err != nil {
				return nil, err
			}
		default:
			if _, isString := v.(string); !isString {
				return nil, fmt.Errorf("%w: %s must be a string", ErrInvalidField, k)
			}
		}
	}

	set["updatedAt"] = time.Now()
	return set, nil
}
