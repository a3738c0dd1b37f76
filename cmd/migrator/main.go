package main

import (
	"context"
	"flag"
	"log"

	"github.com/UnknownOlympus/athena/internal/config"
	"github.com/UnknownOlympus/athena/internal/repository"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose"
)

func main() {
	dir := flag.String("dir", "migrations", "directory with goose migration files")
	command := flag.String("command", "up", "goose command: up, down, status, version")
	flag.Parse()

	cfg := config.MustLoad()

	dbpool, dbErr := repository.NewDatabase(context.Background(), cfg.Postgres)
	if dbErr != nil {
		log.Fatalf("Failed to connect to DB: %v", dbErr)
	}
	defer dbpool.Close()

	dtb := stdlib.OpenDBFromPool(dbpool)
	defer dtb.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal(err)
	}
	if migrationErr := goose.Run(*command, dtb, *dir, flag.Args()...); migrationErr != nil {
		log.Fatal(migrationErr)
	}

	log.Printf("✅ goose %s finished", *command)
}
