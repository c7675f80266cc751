// Command import loads a lectionary JSON file into the SQLite database.
//
// The JSON maps liturgical keys to readings:
//
//	{
//	  "Lent 1 Monday": {"OT": "Genesis 1:1-19", "NT": "Mark 1:1-13"},
//	  "25 Dec":        {"OT": "Isaiah 9:2-7",   "NT": "Luke 2:1-20"}
//	}
//
// The import is idempotent; existing keys are overwritten.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zapponejosh/devotions-api/internal/database"
)

type readings struct {
	OT string `json:"OT"`
	NT string `json:"NT"`
}

func main() {
	jsonPath := flag.String("json", "data/daily_lectionary.json", "Path to lectionary JSON file")
	dbPath := flag.String("db", "data/devotions.db", "Path to SQLite database")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	if err := run(*jsonPath, *dbPath, logger); err != nil {
		logger.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("import complete")
}

func run(jsonPath, dbPath string, logger *slog.Logger) error {
	ctx := context.Background()
	startTime := time.Now()

	logger.Info("reading JSON file", slog.String("path", jsonPath))
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("read JSON file: %w", err)
	}

	var entries map[string]readings
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}
	logger.Info("parsed JSON", slog.Int("keys", len(entries)))

	logger.Info("opening database", slog.String("path", dbPath))
	db, err := database.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	imported := 0
	for key, r := range entries {
		if key == "" || r.OT == "" || r.NT == "" {
			logger.Warn("skipping incomplete entry", slog.String("key", key))
			continue
		}
		err := db.UpsertLectionaryEntry(ctx, database.LectionaryEntry{
			Key:          key,
			OldTestament: r.OT,
			NewTestament: r.NT,
		})
		if err != nil {
			return fmt.Errorf("importing key %q: %w", key, err)
		}
		logger.Debug("imported", slog.String("key", key))
		imported++
	}

	logger.Info("imported lectionary",
		slog.Int("imported", imported),
		slog.Int("skipped", len(entries)-imported),
		slog.Duration("elapsed", time.Since(startTime)),
	)
	return nil
}
