package internal

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// MonthRange returns the first day of month and the first day of the month after it,
// both as YYYY-MM-DD strings. Records match when start <= date < end.
func MonthRange(month string) (string, string, error) {
	t, err := time.Parse(MonthLayout, month)
	if err != nil {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	return start.Format(DateLayout), end.Format(DateLayout), nil
}

// DateFilter adds the month range on the date field to filter. An empty month
// leaves the filter untouched.
func DateFilter(filter bson.M, month string) (bson.M, error) {
	if filter == nil {
		filter = bson.M{}
	}
	if month == "" {
		return filter, nil
	}

	start, end, err := MonthRange(month)
	if err != nil {
		return nil, err
	}
	filter["date"] = bson.M{"$gte": start, "$lt": end}

	return filter, nil
}

func ValidDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return nil
}

func ParseObjectID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, hex)
	}
	return id, nil
}
