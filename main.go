package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"flipbook-cache/app"
)

func main() {
	// Load .env file in development (ignores error if file doesn't exist)
	// In production, variables should be set directly
	if os.Getenv("ENV") != "production" {
		// Use Overload to ensure .env values override system environment variables
		if err := godotenv.Overload(".env"); err != nil {
			log.Printf("Warning: .env file not found, using system environment variables")
		} else {
			log.Printf("Loaded environment variables from .env (overriding system variables)")
		}
	}

	// Initialize application
	if err := app.Initialize(); err != nil {
		log.Fatal(err)
	}

	// Start server
	// Listen on 0.0.0.0 to accept connections from all interfaces
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	// Remove leading colon if present
	if len(port) > 0 && port[0] == ':' {
		port = port[1:]
	}
	addr := "0.0.0.0:" + port
	log.Printf("Server starting on %s", addr)
	log.Printf("Load viewer endpoint: POST http://localhost:%s/viewer/load", port)

	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
