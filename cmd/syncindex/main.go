// Command syncindex rebuilds the catalog search index from a product catalog
// snapshot. Run it at bootstrap or after bulk catalog changes; day-to-day
// writes keep the index in sync incrementally.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/nmthanh/warehouse-vision/internal/catalogindex"
	"github.com/nmthanh/warehouse-vision/internal/config"
	"github.com/nmthanh/warehouse-vision/internal/domain"
	"github.com/nmthanh/warehouse-vision/internal/logger"
	"github.com/nmthanh/warehouse-vision/internal/match"
	"github.com/nmthanh/warehouse-vision/internal/textutil"
)

func main() {
	var (
		file    = flag.String("file", "products.json", "Path to the product catalog snapshot (JSON array)")
		timeout = flag.Duration("timeout", 60*time.Second, "Overall resync timeout")
	)
	flag.Parse()

	cfg := config.Load()
	log := logger.New("syncindex")

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Failed to read catalog snapshot")
	}

	var products []domain.Product
	if err := json.Unmarshal(data, &products); err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Failed to parse catalog snapshot")
	}

	entries := make([]match.Candidate, 0, len(products))
	for _, p := range products {
		entries = append(entries, match.Candidate{
			ExternalID:     p.ID,
			Name:           p.Name,
			NormalizedName: textutil.NormalizeTones(p.Name),
			SKU:            p.SKU,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	index, err := catalogindex.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to catalog index")
	}
	defer index.Close(ctx)

	if err := index.Resync(ctx, entries); err != nil {
		log.Fatal().Err(err).Msg("Resync failed")
	}

	log.Info().Int("products", len(entries)).Msg("Catalog index rebuilt")
}
