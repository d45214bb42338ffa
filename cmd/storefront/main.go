package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"bookstorefront/internal/api"
	"bookstorefront/internal/cart"
	"bookstorefront/internal/catalog"
	"bookstorefront/internal/config"
	"bookstorefront/internal/feed"
	"bookstorefront/internal/session"
	"bookstorefront/internal/util"
	"bookstorefront/pkg/domain"
)

type catalogFlags struct {
	genres     string
	categories string
	sort       string
	title      string
	page       int
	special    string
}

func main() {
	configPath := flag.String("config", config.ConfigPath, "path to config file")
	token := flag.String("token", os.Getenv("STOREFRONT_TOKEN"), "bearer token for account operations")
	var cf catalogFlags
	flag.StringVar(&cf.genres, "genres", "", "comma-separated genre ids")
	flag.StringVar(&cf.categories, "categories", "", "comma-separated category ids")
	flag.StringVar(&cf.sort, "sort", "", "price sort order (asc or desc)")
	flag.StringVar(&cf.title, "title", "", "title search text")
	flag.IntVar(&cf.page, "page", 0, "zero-based page index")
	flag.StringVar(&cf.special, "special", "", "special category (discounts, new, bestsellers)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	timeout, err := config.ParseRequestTimeout(cfg.RequestTimeout)
	if err != nil {
		log.Fatalf("failed to parse request timeout: %v", err)
	}

	util.InitLogger(cfg.LogLevel)

	creds := session.NewCredentials()
	if *token != "" {
		creds.SetToken(*token)
	}
	creds.OnAuthFailure(func() {
		slog.Warn("session expired, account operations need a fresh token")
	})

	client := api.New(api.Config{
		BaseURL:     cfg.BaseURL,
		Credentials: creds,
		Timeout:     timeout,
	})

	ctx := context.Background()
	action := flag.Arg(0)
	if action == "" {
		action = "catalog"
	}

	switch action {
	case "catalog":
		err = runCatalog(ctx, client, cfg, cf)
	case "special":
		err = runSpecial(ctx, client, cfg, flag.Arg(1))
	case "cart":
		err = runCart(ctx, client)
	case "reviews":
		err = runReviews(ctx, client, cfg, flag.Arg(1))
	case "orders":
		err = runOrders(ctx, client, cfg)
	default:
		fmt.Fprintf(os.Stderr, "usage: %s [flags] catalog [query] | special <category> | cart | reviews <bookId> | orders\n", os.Args[0])
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", action, err)
	}
}

// runCatalog drives the query orchestrator the way an embedding view
// would: prefetch the facet tree alongside the first page, then apply
// the flag-selected filters through the draft-and-apply path.
func runCatalog(ctx context.Context, client *api.Client, cfg config.FileConfig, cf catalogFlags) error {
	orch := catalog.NewOrchestrator(client, catalog.NopNavigator{}, cfg.PageSize)

	var facets []domain.CategoryWithGenres
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		facets, err = client.CategoriesWithGenres(gctx)
		return err
	})
	g.Go(func() error {
		if cf.special != "" {
			cat, err := domain.ParseSpecialCategory(cf.special)
			if err != nil {
				return err
			}
			orch.SelectSpecial(gctx, cat)
		} else {
			orch.SetDraftFilter(catalog.NewFilterState(
				parseIDList(cf.genres), parseIDList(cf.categories), domain.ParseSortOrder(cf.sort)))
			orch.SetDraftSearch(cf.title)
			orch.Apply(gctx)
		}
		if cf.page > 0 {
			orch.SetPage(gctx, cf.page)
		}
		return orch.Snapshot().Err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	for _, cat := range facets {
		names := make([]string, 0, len(cat.Genres))
		for _, gn := range cat.Genres {
			names = append(names, gn.Name)
		}
		fmt.Printf("%s: %s\n", cat.CategoryName, strings.Join(names, ", "))
	}

	snap := orch.Snapshot()
	fmt.Printf("\npage %d/%d, %d books total\n", snap.Pagination.PageIndex+1, snap.Pagination.TotalPages, snap.Pagination.TotalElements)
	printBooks(snap.Books)
	return nil
}

func runSpecial(ctx context.Context, client *api.Client, cfg config.FileConfig, raw string) error {
	cat, err := domain.ParseSpecialCategory(raw)
	if err != nil {
		return err
	}
	page, err := client.SpecialBooks(ctx, cat, 0, cfg.PageSize)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%d books)\n", cat.Title(), page.Pagination.TotalElements)
	printBooks(page.Books)
	return nil
}

func runCart(ctx context.Context, client *api.Client) error {
	store := cart.NewStore(client)
	if err := store.Refresh(ctx); err != nil {
		return err
	}
	snap := store.Snapshot()
	fmt.Printf("%d of %d slots used, total %s (saved %s)\n",
		snap.ItemsCount, domain.MaxCartItems, snap.TotalAmount, snap.TotalDiscount)
	for _, it := range snap.Items {
		line := fmt.Sprintf("  #%d book %d %s %s", it.CartItemID, it.BookID, it.Type, it.Price)
		if !it.Available {
			line += " (unavailable)"
		}
		fmt.Println(line)
	}
	return nil
}

// runReviews pages the review feed to the end through the paginator,
// exercising the same append path the infinite-scroll view uses.
func runReviews(ctx context.Context, client *api.Client, cfg config.FileConfig, rawID string) error {
	var bookID int64
	if _, err := fmt.Sscan(rawID, &bookID); err != nil {
		return fmt.Errorf("invalid book id %q", rawID)
	}
	pager := feed.NewPaginator(func(ctx context.Context, page, size int) (api.FeedPage[domain.Review], error) {
		return client.BookReviews(ctx, bookID, page, size, api.ReviewSortNewest)
	}, cfg.ReviewPageSize)

	pager.Load(ctx)
	for {
		snap := pager.Snapshot()
		if snap.Err != nil || snap.State != feed.StateLoaded {
			break
		}
		pager.LoadMore(ctx)
	}
	snap := pager.Snapshot()
	if snap.Err != nil {
		return snap.Err
	}
	fmt.Printf("%d reviews\n", snap.TotalElements)
	for _, r := range snap.Items {
		fmt.Printf("  %d/5 %s\n", r.Rating, r.Comment)
	}
	return nil
}

func runOrders(ctx context.Context, client *api.Client, cfg config.FileConfig) error {
	pager := feed.NewPaginator(client.MyOrders, cfg.OrderPageSize)
	pager.Load(ctx)
	snap := pager.Snapshot()
	if snap.Err != nil {
		return snap.Err
	}
	fmt.Printf("%d orders\n", snap.TotalElements)
	for _, o := range snap.Items {
		fmt.Printf("  #%d %s %s\n", o.OrderID, o.Status, o.TotalAmount)
	}
	return nil
}

func parseIDList(raw string) []int64 {
	if raw == "" {
		return nil
	}
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func printBooks(books []domain.Book) {
	for _, b := range books {
		fmt.Printf("  %s by %s, %s\n", b.Title, b.AuthorName, b.PurchasePrice)
	}
}
