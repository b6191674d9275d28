// Command seed provisions hub profiles and routing metadata from a JSON file
// into the sqlite store.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/jengzang/layover-backend-go/internal/config"
	"github.com/jengzang/layover-backend-go/internal/database"
	"github.com/jengzang/layover-backend-go/internal/logger"
	"github.com/jengzang/layover-backend-go/internal/models"
	"github.com/jengzang/layover-backend-go/internal/repository"
	"github.com/jengzang/layover-backend-go/internal/routing"
	"github.com/jengzang/layover-backend-go/internal/service"
)

// seedFile is the on-disk layout: profiles keyed by hub id, plus optional
// routing metadata. Without metadata the builtin hub table is stored.
type seedFile struct {
	Hubs map[string]*models.AirportProfile `json:"hubs"`
	Meta []models.HubMeta                  `json:"meta,omitempty"`
}

func main() {
	cfg := config.Load()
	file := flag.String("file", "./data/hubs.json", "hub seed file")
	dbPath := flag.String("db", cfg.DBPath, "sqlite database path")
	flag.Parse()

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer appLog.Sync()

	seed, err := loadSeed(*file)
	if err != nil {
		appLog.Fatal("Failed to load seed file", "file", *file, "error", err)
	}

	conn, err := database.Open(database.Config{Path: *dbPath}, appLog)
	if err != nil {
		appLog.Fatal("Failed to open database", "path", *dbPath, "error", err)
	}
	defer conn.Close()

	n, err := run(context.Background(), repository.NewHubRepository(conn), seed, appLog)
	if err != nil {
		appLog.Fatal("Seeding failed", "error", err)
	}
	appLog.Info("Seeding complete", "hubs", n, "db", *dbPath)
}

func loadSeed(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &seed, nil
}

// run validates every profile before writing any of them
func run(ctx context.Context, w service.HubWriter, seed *seedFile, log *logger.Logger) (int, error) {
	ids := make([]string, 0, len(seed.Hubs))
	for id := range seed.Hubs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		p := seed.Hubs[id]
		if p == nil {
			return 0, fmt.Errorf("hub %s: empty profile", id)
		}
		if p.ID == "" {
			p.ID = id
		}
		if models.NormalizeHubID(p.ID) != models.NormalizeHubID(id) {
			return 0, fmt.Errorf("hub %s: profile id %q does not match its key", id, p.ID)
		}
		if err := service.ValidateProfile(p); err != nil {
			return 0, fmt.Errorf("hub %s: %w", id, err)
		}
	}

	for _, id := range ids {
		p := seed.Hubs[id]
		if err := w.UpsertHub(ctx, p); err != nil {
			return 0, err
		}
		log.Info("Injected hub", "hub", p.ID, "name", p.Name, "activities", len(p.Activities), "visa_rules", len(p.VisaPolicy))
	}

	metas := seed.Meta
	if len(metas) == 0 {
		for _, m := range routing.DefaultHubMeta() {
			metas = append(metas, m)
		}
		sort.Slice(metas, func(i, j int) bool { return metas[i].ID < metas[j].ID })
	}
	if err := w.UpsertHubMeta(ctx, metas); err != nil {
		return 0, err
	}
	return len(ids), nil
}
