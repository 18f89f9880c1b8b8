package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	cataloginfra "insights/internal/catalog/infrastructure"
	"insights/internal/config"
	"insights/internal/logging"
)

func main() {
	file := flag.String("file", "amazon.csv", "catalog CSV export to import")
	batchSize := flag.Int("batch", 500, "rows per insert transaction")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Attention: fichier .env non trouvé, utilisation des valeurs par défaut")
	}

	if err := run(*file, *batchSize); err != nil {
		log.Fatal(err)
	}
}

func run(path string, batchSize int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Store.Backend == "memory" {
		return fmt.Errorf("store backend %q is not persistent, set STORE_BACKEND", cfg.Store.Backend)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	products, err := cataloginfra.ReadCSV(f)
	if err != nil {
		return err
	}
	logger.Info("csv loaded", zap.String("file", path), zap.Int("rows", len(products)))

	ctx := context.Background()
	store, closeStore, err := cataloginfra.OpenStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	defer closeStore()

	start := time.Now()
	if err := cataloginfra.ImportBatches(ctx, store, products, batchSize); err != nil {
		return fmt.Errorf("import: %w", err)
	}

	total, err := store.Count(ctx, cataloginfra.Filter{})
	if err != nil {
		return err
	}
	logger.Info("seed complete",
		zap.String("backend", cfg.Store.Backend),
		zap.Int("inserted", len(products)),
		zap.Int("total", total),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
