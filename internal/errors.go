package internal

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidID    = errors.New("invalid object id")
	ErrInvalidMonth = errors.New("month must be formatted as YYYY-MM")
	ErrInvalidDate  = errors.New("date must be formatted as YYYY-MM-DD")
)

type ErrorFormat struct {
	ObjectID primitive.ObjectID `json:"objectID,omitempty"`
	Message  string             `json:"message,omitempty"`
	Error    error              `json:"-"`
	Function string             `json:"function,omitempty"`
	Level    logrus.Level       `json:"level,omitempty"`
	Package  string             `json:"package,omitempty"`
}

func (e ErrorFormat) String() string {
	out := struct {
		ErrorFormat
		Cause string `json:"error,omitempty"`
	}{ErrorFormat: e}
	if e.Error != nil {
		out.Cause = e.Error.Error()
	}

	marshal, err := json.Marshal(out)
	if err != nil {
		return e.Message
	}

	return string(marshal)
}

// ToError logs the record and returns an error that still matches the wrapped cause.
func (e ErrorFormat) ToError() error {
	e.Print()
	if e.Error == nil {
		return errors.New(e.Message)
	}
	return fmt.Errorf("%s: %w", e.Message, e.Error)
}

func (e ErrorFormat) Print() {
	entry := logrus.WithFields(logrus.Fields{
		"package":  e.Package,
		"function": e.Function,
	})
	if !e.ObjectID.IsZero() {
		entry = entry.WithField("objectID", e.ObjectID.Hex())
	}
	if e.Error != nil {
		entry = entry.WithError(e.Error)
	}

	switch e.Level {
	case logrus.WarnLevel:
		entry.Warn(e.Message)
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		entry.Error(e.Message)
	case logrus.InfoLevel:
		entry.Info(e.Message)
	default:
		entry.Debug(e.Message)
	}
}
