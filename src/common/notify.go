package common

import (
	"fmt"
	"log"

	"bookingapp/src/db"
	"bookingapp/src/models"
)

// Notifier is the outbound sink for human-readable platform events.
// Delivery is fire-and-forget: a failed send is logged, never propagated,
// and never rolls back the state change that produced the message.
type Notifier interface {
	Send(message string) error
}

var (
	notifier        Notifier
	notifierChannel = "log"
)

// UseNotifier installs the sink implementation. Production wires the SNS
// publisher here; tests install a fake.
func UseNotifier(channel string, n Notifier) {
	notifier = n
	notifierChannel = channel
}

func Notify(format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	if notifier != nil {
		if err := notifier.Send(message); err != nil {
			log.Printf("[notify] delivery failed: %s\n", err.Error())
		}
	} else {
		log.Printf("[notify] %s\n", message)
	}

	d := db.GetDb()
	record := models.Notification{Message: message, Channel: notifierChannel}
	if err := d.Create(&record).Error; err != nil {
		log.Printf("[notify] could not persist notification: %s\n", err.Error())
	}
}
