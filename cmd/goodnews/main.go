package main

import (
	"log"

	"github.com/MrSnakeDoc/goodnews/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ goodnews failed to start: %v", err)
	}
}
