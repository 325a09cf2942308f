// cmd/seeder/main.go
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/netvista/ispconsole-backend/internal/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("no .env file found, relying on OS environment variables")
	}

	conn, err := db.Connect(os.Getenv("DATABASE_URL"))
	if err != nil {
		logrus.WithError(err).Fatal("database connection failed")
	}
	defer conn.Close()

	seedFiles := []string{
		"seed/schema.sql",
		"seed/recipients.sql",
		"seed/templates.sql",
	}

	for _, file := range seedFiles {
		content, err := os.ReadFile(file)
		if err != nil {
			logrus.WithError(err).Fatalf("failed to read %s", file)
		}

		if _, err := conn.Exec(string(content)); err != nil {
			logrus.WithError(err).Fatalf("failed to execute %s", file)
		}
		logrus.WithField("file", file).Info("seeded")
	}

	logrus.Info("database seeding completed")
}
