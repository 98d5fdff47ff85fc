package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/joho/godotenv"

	"trackaudit/internal/matcher"
	"trackaudit/internal/models"
	"trackaudit/internal/music"
	"trackaudit/internal/rekordbox"
)

func main() {
	libraryPath := flag.String("library", "", "path to the exported library XML")
	masterDB := flag.String("db", "", "path to the rekordbox master.db")
	playlist := flag.String("playlist", "", "reconcile a single playlist instead of the whole catalog")
	workers := flag.Int("workers", runtime.NumCPU(), "concurrent track workers")
	checkTags := flag.Bool("check-tags", false, "also compare embedded ID3 ratings")
	writeTags := flag.Bool("write-tags", false, "rewrite disagreeing ID3 ratings and stamp the grouping frame")
	jsonOut := flag.Bool("json", false, "emit findings as JSON lines on stdout")
	flag.Parse()

	// A .env file is optional; the real environment always wins.
	_ = godotenv.Load()

	// 1. Validate inputs and credentials (fail fast)
	if *libraryPath == "" || *masterDB == "" {
		log.Fatal("CRITICAL: -library and -db are required")
	}
	key := os.Getenv("MASTER_DB_KEY")
	if key == "" {
		log.Fatal("CRITICAL: MASTER_DB_KEY must be set in environment")
	}

	// 2. Media library
	lib, err := music.Open(*libraryPath)
	if err != nil {
		log.Fatalf("Failed to open media library: %v", err)
	}
	slog.Info("media library loaded", "version", lib.Version())

	// 3. External content store
	store, err := rekordbox.Open(*masterDB, key, *workers)
	if err != nil {
		log.Fatalf("Failed to open content store: %v", err)
	}
	defer store.Close()

	// 4. Working set
	var items []music.Item
	if *playlist != "" {
		items = lib.PlaylistItems(*playlist)
	} else {
		items = lib.AllItems()
	}
	tracks := make([]models.Track, 0, len(items))
	for _, it := range items {
		if t, ok := models.NewTrack(it.Location, it.Rating); ok {
			tracks = append(tracks, t)
		}
	}
	slog.Info("reconciling", "tracks", len(tracks), "workers", *workers)

	// 5. Batch
	runner := &matcher.Runner{
		Lookup:    store,
		Workers:   *workers,
		CheckTags: *checkTags || *writeTags,
		WriteTags: *writeTags,
	}
	start := time.Now()
	findings := runner.Run(context.Background(), tracks)
	slog.Info("reconciliation complete",
		"tracks", len(tracks), "findings", len(findings), "elapsed", time.Since(start))

	// 6. Report
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		for _, f := range findings {
			if err := enc.Encode(f); err != nil {
				log.Fatalf("Failed to encode finding: %v", err)
			}
		}
		return
	}
	for _, f := range findings {
		fmt.Println(f.String())
	}
}
