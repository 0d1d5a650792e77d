package main

import (
	"log"

	"github.com/nexly/rag-backend/internal/builder"
)

func main() {
	app, err := builder.BuildWorker()
	if err != nil {
		log.Fatal("Failed to build chat worker:", err)
	}

	if err := app.Run(); err != nil {
		log.Fatal("Worker error:", err)
	}
}
