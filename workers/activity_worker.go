package workers

import (
	"context"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"meal-manager/internal/activity"
)

// ActivityBuffer is the channel capacity main allocates for the worker.
const ActivityBuffer = 256

// CreateActivityWorker persists events from c until c is closed. The returned
// channel is closed once the last event has been written.
func CreateActivityWorker(c chan activity.Event, db *mongo.Database) <-chan struct{} {
	done := make(chan struct{})
	go func(cc chan activity.Event) {
		defer close(done)
		log.Info("Starting activity worker...")
		for data := range cc {
			err := data.Create(context.Background(), db)
			if err != nil {
				log.Error(err)
			}
		}
		log.Info("Activity worker drained")
	}(c)
	return done
}
