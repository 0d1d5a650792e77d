package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nexly/rag-backend/internal/config"
	"github.com/nexly/rag-backend/internal/entity"
	"github.com/nexly/rag-backend/internal/repository"
)

type cliConfig struct {
	DatabaseURL string `env:"DATABASE_URL,notEmpty"`
}

// chunkRecord is one line of the JSONL input. datapoint_id must match the
// id the chunk was indexed under in the vector index.
type chunkRecord struct {
	DatapointID string            `json:"datapoint_id"`
	Content     string            `json:"content"`
	Metadata    map[string]string `json:"metadata"`
}

// Operator tool loading document chunks into the lookup store. Embedding
// and index upload happen in the offline indexing pipeline; this tool only
// maintains the datapoint-id → document mapping the retrieval endpoint
// resolves against.
func main() {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	file := flag.String("file", "", "JSONL file of chunks: {datapoint_id, content, metadata}")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	config.LoadEnv(*envFlag)

	cfg := &cliConfig{}
	if err := env.Parse(cfg); err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	ctx := context.Background()

	db, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal("Failed to open input file:", err)
	}
	defer f.Close()

	chunks := repository.NewChunkPostgres(db, time.Minute, time.Minute)

	var count, line int
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}

		var rec chunkRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			log.Fatalf("Failed to parse line %d: %v", line, err)
		}
		if rec.DatapointID == "" || rec.Content == "" {
			log.Fatalf("Line %d: datapoint_id and content are required", line)
		}

		err := chunks.Upsert(ctx, &entity.DocumentChunk{
			DatapointID: rec.DatapointID,
			Content:     rec.Content,
			Metadata:    rec.Metadata,
		})
		if err != nil {
			log.Fatalf("Failed to upsert chunk %q: %v", rec.DatapointID, err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		log.Fatal("Failed to read input file:", err)
	}

	fmt.Printf("ingested %d chunks\n", count)
}
