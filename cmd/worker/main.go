// cmd/worker/main.go
package main

import (
	"context"
	"encoding/json"

	"github.com/joho/godotenv"
	mg "github.com/mailgun/mailgun-go/v3"
	"github.com/sirupsen/logrus"

	"github.com/netvista/ispconsole-backend/internal/config"
	"github.com/netvista/ispconsole-backend/internal/db"
	"github.com/netvista/ispconsole-backend/internal/model"
	"github.com/netvista/ispconsole-backend/internal/queue"
	"github.com/netvista/ispconsole-backend/internal/repository"
	"github.com/netvista/ispconsole-backend/internal/service"
	"github.com/netvista/ispconsole-backend/internal/transport"
	"github.com/netvista/ispconsole-backend/internal/transport/httpsms"
	"github.com/netvista/ispconsole-backend/internal/transport/mailgun"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("no .env file found, relying on OS environment variables")
	}

	cfg := config.LoadConfig()

	conn, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}

	q, err := queue.NewAMQPQueue(cfg.AMQPURL)
	if err != nil {
		logrus.WithError(err).Fatal("queue connection failed")
	}
	defer q.Close()

	messageRepo := &repository.MessageRepository{DB: conn}
	statusService := &service.StatusService{
		MessageRepo: messageRepo,
		Logger:      logrus.StandardLogger(),
	}

	worker := &service.DeliveryWorker{
		MessageRepo: messageRepo,
		Status:      statusService,
		Email:       emailTransport(cfg),
		SMS:         smsTransport(cfg),
		Timeout:     cfg.TransportTimeout,
		Logger:      logrus.StandardLogger(),
	}

	// Outbound sends queued by the dispatch coordinator.
	err = q.Subscribe(queue.TopicDispatch, func(body []byte) error {
		var job service.DispatchJob
		if err := json.Unmarshal(body, &job); err != nil {
			logrus.WithError(err).Warn("invalid dispatch job dropped")
			return nil
		}
		return worker.Process(context.Background(), job.MessageID)
	})
	if err != nil {
		logrus.WithError(err).Fatal("failed to subscribe to dispatch queue")
	}

	// Asynchronous provider delivery reports.
	err = q.Subscribe(queue.TopicDeliveryStatus, func(body []byte) error {
		var event model.StatusEvent
		if err := json.Unmarshal(body, &event); err != nil {
			logrus.WithError(err).Warn("invalid status event dropped")
			return nil
		}
		return statusService.Apply(event)
	})
	if err != nil {
		logrus.WithError(err).Fatal("failed to subscribe to status queue")
	}

	logrus.Info("worker running, waiting for messages...")
	select {}
}

func emailTransport(cfg *config.Config) transport.EmailTransport {
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" {
		logrus.Warn("mailgun not configured, using mock email transport")
		return transport.NewMockEmailTransport()
	}
	client := mg.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey)
	return mailgun.NewMailgunTransport(client, cfg.MailgunFrom)
}

func smsTransport(cfg *config.Config) transport.SmsTransport {
	if cfg.SMSGatewayURL == "" {
		logrus.Warn("sms gateway not configured, using mock sms transport")
		return transport.NewMockSmsTransport()
	}
	return httpsms.NewGateway(cfg.SMSGatewayURL, cfg.SMSGatewayFrom,
		cfg.SMSGatewayUser, cfg.SMSGatewayPass)
}
