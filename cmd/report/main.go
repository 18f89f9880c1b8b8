package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"go.uber.org/zap"

	analyticsapp "insights/internal/analytics/application"
	analyticsdomain "insights/internal/analytics/domain"
	cataloginfra "insights/internal/catalog/infrastructure"
	"insights/internal/config"
	"insights/internal/metrics"
	shareddomain "insights/internal/shared/domain"
)

func main() {
	sortBy := flag.String("sort", "popularity_score", "popularity_score, total_sales or profit")
	limit := flag.Int("n", 10, "number of products")
	nameWidth := flag.Int("width", 40, "product name column width")
	flag.Parse()

	if err := run(os.Stdout, *sortBy, *limit, *nameWidth, flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func run(out io.Writer, sortBy string, limit, nameWidth int, categories []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx := context.Background()
	store, closeStore, err := cataloginfra.OpenStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	defer closeStore()

	analytics := analyticsapp.NewAnalyticsService(store, zap.NewNop(), metrics.NewRegistry(), cfg.Analytics.TrendStep)
	return report(ctx, out, analytics, sortBy, limit, nameWidth, categories)
}

// report écrit le classement des produits puis la liste des catégories
func report(ctx context.Context, out io.Writer, analytics *analyticsapp.AnalyticsService, sortBy string, limit, nameWidth int, categories []string) error {
	key, err := analyticsdomain.ParseSortKey(sortBy)
	if err != nil {
		return err
	}
	page, err := shareddomain.NewPageRequest(1, limit, limit)
	if err != nil {
		return err
	}
	filter, err := cataloginfra.NewFilter(categories, shareddomain.NullFloat{}, shareddomain.NullFloat{})
	if err != nil {
		return err
	}

	top, err := analytics.TopProducts(ctx, analyticsdomain.RankQuery{Criteria: filter.Criteria, SortBy: key, Page: page})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "## Top %d by %s (%d matching)\n\n", len(top.Products), key, top.TotalCount)
	if err := renderTable(out, topProductHeaders, topProductRows(top, nameWidth)); err != nil {
		return err
	}

	all, err := analytics.Categories(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, len(all))
	for i, c := range all {
		rows[i] = []string{c}
	}
	fmt.Fprintf(out, "\n## Categories (%d)\n\n", len(all))
	return renderTable(out, []string{"category"}, rows)
}
