package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/wchen-ai/site-backend/api"
	"github.com/wchen-ai/site-backend/db"
	"github.com/wchen-ai/site-backend/email"
	"github.com/wchen-ai/site-backend/ratelimit"
)

// Per-identity budget for accepted form submissions.
const (
	submissionWindow = time.Minute
	submissionLimit  = 5
)

func getEnvOrDefault(varName string, defaultValue string) string {
	envVar := os.Getenv(varName)
	if len(envVar) == 0 {
		envVar = defaultValue
	}
	return envVar
}

func validPort(port string) (string, error) {
	if _, err := strconv.Atoi(port); err != nil {
		return "", fmt.Errorf("given portstring %s is invalid", port)
	}
	return fmt.Sprintf(":%s", port), nil
}

func initDatabase() (db.Database, error) {
	if connectionString := os.Getenv("DATABASE_URL"); connectionString != "" {
		return db.InitSQLDatabase(connectionString)
	}
	log.Println("DATABASE_URL not set, using in-memory suppression store")
	return db.InitMemDatabase(), nil
}

// Serves all public endpoints.
func servePublicEndpoints() {
	database, err := initDatabase()
	if err != nil {
		log.Fatal(err)
	}
	emailConfig, err := email.MakeConfigFromEnv(database)
	if err != nil {
		log.Fatal(err)
	}
	a := api.API{
		Emailer:        emailConfig,
		Database:       database,
		Limiter:        ratelimit.New(submissionWindow, submissionLimit),
		Secret:         os.Getenv("NEWSLETTER_SECRET"),
		BaseURL:        getEnvOrDefault("BASE_URL", "https://wchen.ai"),
		AllowedOrigins: api.AllowedOriginsFromEnv(),
	}
	a.ParseTemplates("views")

	mux := http.NewServeMux()
	mainHandler := a.RegisterHandlers(mux)
	portString, err := validPort(getEnvOrDefault("PORT", "8080"))
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("Listening on %s", portString)
	log.Fatal(http.ListenAndServe(portString, mainHandler))
}

func main() {
	godotenv.Load()
	servePublicEndpoints()
}
