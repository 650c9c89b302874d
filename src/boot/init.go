package boot

import (
	"log"
	"os"

	"bookingapp/src/common"
	"bookingapp/src/db"
	"bookingapp/src/lib"
	"bookingapp/src/lib/aws"
	"bookingapp/src/models"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Accommodation{},
		&models.Booking{},
		&models.Payment{},
		&models.Notification{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitServices wires the production collaborators: the Stripe checkout
// gateway and, when a topic is configured, the SNS notification sink.
func InitServices() {
	common.UseGateway(lib.NewStripeGateway())

	topic := os.Getenv("SNS_NOTIFICATIONS_TOPIC")
	if topic != "" {
		if publisher := aws.NewSNSPublisher(topic); publisher != nil {
			common.UseNotifier("sns", publisher)
		}
	}
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	if err := common.RegisterSweepJobs(); err != nil {
		log.Printf("Error registering sweep jobs: %s\n", err.Error())
		return
	}
	jobsWaitingInQueue := len(sched.Jobs())
	log.Println("Jobs in queue:", jobsWaitingInQueue)
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}
