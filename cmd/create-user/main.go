package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nexly/rag-backend/internal/config"
	"github.com/nexly/rag-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// cliConfig is the slice of configuration this tool actually needs; the
// full server config would demand service URLs the tool never touches.
type cliConfig struct {
	DatabaseURL string `env:"DATABASE_URL,notEmpty"`
	BcryptCost  int    `env:"AUTH_BCRYPT_COST" envDefault:"12"`
}

// Operator tool to provision API users. There is no self-service
// registration endpoint; accounts are created out-of-band.
func main() {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	username := flag.String("username", "", "username for the new account")
	password := flag.String("password", "", "password for the new account")
	flag.Parse()

	if *username == "" || *password == "" {
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

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), cfg.BcryptCost)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	user, err := repository.NewUserPostgres(db).Create(ctx, *username, string(hash))
	if err != nil {
		log.Fatal("Failed to create user:", err)
	}

	fmt.Printf("created user %s (id %s)\n", user.Username, user.ID)
}
