// cmd/server/main.go
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/netvista/ispconsole-backend/internal/config"
	"github.com/netvista/ispconsole-backend/internal/controller"
	"github.com/netvista/ispconsole-backend/internal/db"
	"github.com/netvista/ispconsole-backend/internal/handler"
	"github.com/netvista/ispconsole-backend/internal/queue"
	"github.com/netvista/ispconsole-backend/internal/render"
	"github.com/netvista/ispconsole-backend/internal/repository"
	"github.com/netvista/ispconsole-backend/internal/service"
)

func main() {
	// Load .env
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

	templateRepo := &repository.TemplateRepository{DB: conn}
	recipientRepo := &repository.RecipientRepository{DB: conn}
	messageRepo := &repository.MessageRepository{DB: conn}

	resolver := &render.Resolver{
		CompanyName:  cfg.CompanyName,
		SupportEmail: cfg.SupportEmail,
		SupportPhone: cfg.SupportPhone,
	}

	dispatchService := &service.DispatchService{
		TemplateRepo:  templateRepo,
		RecipientRepo: recipientRepo,
		MessageRepo:   messageRepo,
		Queue:         q,
		Resolver:      resolver,
		Logger:        logrus.StandardLogger(),
	}
	statusService := &service.StatusService{
		MessageRepo: messageRepo,
		Logger:      logrus.StandardLogger(),
	}
	templateService := &service.TemplateService{TemplateRepo: templateRepo}
	recipientService := &service.RecipientService{RecipientRepo: recipientRepo}

	messagingController := &controller.MessagingController{
		DispatchService: dispatchService,
		StatusService:   statusService,
		Communication:   cfg.Communication,
	}
	templateController := &controller.TemplateController{TemplateService: templateService}
	recipientController := &controller.RecipientController{RecipientService: recipientService}
	statusHandler := &handler.StatusHandler{StatusService: statusService}

	r := chi.NewRouter()

	// Messaging routes
	r.Post("/messages/send", messagingController.Send)
	r.Post("/messages/preview", messagingController.Preview)
	r.Get("/messages", messagingController.History)
	r.Get("/messages/stats", messagingController.Stats)
	r.Post("/messages/status", statusHandler.ProviderCallback)

	// Recipient selector
	r.Get("/recipients", recipientController.Search)

	// Template routes
	r.Get("/templates", templateController.List)
	r.Post("/templates", templateController.Create)
	r.Get("/templates/{id}", templateController.Get)
	r.Put("/templates/{id}", templateController.Update)
	r.Delete("/templates/{id}", templateController.Delete)

	logrus.WithField("port", cfg.ServerPort).Info("server running")
	logrus.Fatal(http.ListenAndServe(":"+cfg.ServerPort, r))
}
