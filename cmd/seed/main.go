package main

import (
	"fmt"
	"os"

	"github.com/sahilchouksey/scholarhub/config"
	"github.com/sahilchouksey/scholarhub/database"
	"github.com/sahilchouksey/scholarhub/utils/logger"
)

func main() {
	if err := config.LoadENV(); err != nil {
		fmt.Println("Warning: .env file not found, using system environment variables")
	}

	env, err := config.Get()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	log, err := logger.New(env.GO_ENV)
	if err != nil {
		fmt.Fprintln(os.Stderr, "build logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	store, err := database.StartGORM(env, log)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatal("failed to migrate database", "error", err)
	}

	if err := database.RunSeeds(store.GetDB(), log, env.ADMIN_EMAIL, env.ADMIN_PASSWORD); err != nil {
		log.Fatal("seeding failed", "error", err)
	}
}
