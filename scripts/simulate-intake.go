// Drives a full intake against a running display: start a session, stream
// partial updates, wait for the customer's confirmation, collect the device
// password and signature, then complete. Run a display first (cmd/display),
// then:
//
//	go run scripts/simulate-intake.go --location loc-001
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	kafkaDelivery "github.com/vogiaan1904/repairhub-display/internal/delivery/kafka"
	"github.com/vogiaan1904/repairhub-display/internal/models"
	"github.com/vogiaan1904/repairhub-display/internal/operator"
	"github.com/vogiaan1904/repairhub-display/internal/transport"
	pkgKafka "github.com/vogiaan1904/repairhub-display/pkg/kafka"
	pkgLog "github.com/vogiaan1904/repairhub-display/pkg/logger"
)

var (
	redisAddr    = flag.String("redis", "localhost:6379", "Redis address (host:port)")
	redisPass    = flag.String("password", "", "Redis password")
	locationID   = flag.String("location", "", "Location ID (required)")
	stepDelay    = flag.Duration("step-delay", 2*time.Second, "Pause between operator steps")
	cancelStep   = flag.Bool("cancel", false, "Cancel the intake midway instead of completing it")
	kafkaBrokers = flag.String("kafka", "", "Kafka brokers (comma-separated) for intake audit events; empty disables")
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func main() {
	flag.Parse()

	if *locationID == "" {
		fmt.Println("Error: --location flag is required")
		flag.Usage()
		os.Exit(1)
	}

	ctx := context.Background()
	l := pkgLog.InitializeZapLogger(pkgLog.ZapConfig{Level: "info", Mode: "development", Encoding: "console"})

	cli := redis.NewClient(&redis.Options{Addr: *redisAddr, Password: *redisPass})
	if err := cli.Ping(ctx).Err(); err != nil {
		fmt.Printf("Error: cannot reach Redis at %s: %v\n", *redisAddr, err)
		os.Exit(1)
	}
	defer cli.Close()

	var audit kafkaDelivery.Producer
	if *kafkaBrokers != "" {
		syncProd, err := pkgKafka.NewProducer(pkgKafka.ProducerConfig{
			Brokers:      strings.Split(*kafkaBrokers, ","),
			RetryMax:     3,
			RequiredAcks: 1,
		})
		if err != nil {
			fmt.Printf("Error: cannot build Kafka producer: %v\n", err)
			os.Exit(1)
		}
		audit = kafkaDelivery.NewProducer(syncProd, l)
		defer audit.Close()
	}

	ch := transport.NewRedisChannel(cli, l)
	ctrl := operator.NewController(ch, audit, *locationID, l)

	passwordDone := make(chan struct{}, 1)
	signatureDone := make(chan struct{}, 1)
	confirmed := make(chan struct{}, 1)

	err := ctrl.ListenForResponses(ctx, operator.ResponseCallbacks{
		OnDataConfirmed: func() {
			fmt.Println(">> customer confirmed their details")
			confirmed <- struct{}{}
		},
		OnPasswordSubmitted: func(value string) {
			fmt.Printf(">> customer submitted device password (%d chars)\n", len(value))
			passwordDone <- struct{}{}
		},
		OnPasswordSkipped: func() {
			fmt.Println(">> customer skipped the device password")
			passwordDone <- struct{}{}
		},
		OnSignatureSubmitted: func(string) {
			fmt.Println(">> customer signed")
			signatureDone <- struct{}{}
		},
	})
	if err != nil {
		fmt.Printf("Error: listen for responses: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting intake session %s at location %s\n", ctrl.SessionID(), *locationID)

	must(ctrl.StartSession(ctx, models.IntakeSession{
		Customer: models.Customer{Name: "Dana Willis", Phone: "555-0132"},
	}))

	time.Sleep(*stepDelay)
	must(ctrl.UpdateSession(ctx, models.SessionPatch{
		Device: &models.DevicePatch{
			Brand:            strPtr("Apple"),
			Model:            strPtr("iPhone 14 Pro"),
			DeviceType:       strPtr("phone"),
			IssueDescription: strPtr("Cracked screen, flickering on the left edge"),
		},
	}))

	time.Sleep(*stepDelay)
	must(ctrl.UpdateSession(ctx, models.SessionPatch{
		Quote: &models.QuotePatch{
			EstimatedTotal: f64Ptr(289.00),
			AmountDueNow:   f64Ptr(50.00),
			LineItems: &[]models.QuoteLineItem{
				{Name: "Screen assembly", Quantity: 1, UnitPrice: 219.00, Total: 219.00, Kind: models.LineItemKindPart},
				{Name: "Repair labor", Quantity: 1, UnitPrice: 70.00, Total: 70.00, Kind: models.LineItemKindLabor},
			},
		},
	}))

	if *cancelStep {
		time.Sleep(*stepDelay)
		fmt.Println("Cancelling intake")
		must(ctrl.CancelIntake(ctx))
		return
	}

	fmt.Println("Waiting for customer confirmation (type 'confirm' on the display)...")
	<-confirmed

	must(ctrl.RequestPassword(ctx))
	fmt.Println("Waiting for device password ('password <value>' or 'skip')...")
	<-passwordDone

	must(ctrl.RequestSignature(ctx))
	fmt.Println("Waiting for signature ('sign <data>')...")
	<-signatureDone

	must(ctrl.CompleteIntake(ctx))
	fmt.Println("Intake complete")
}

func must(err error) {
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
