// Command order-import backfills confirmed orders from legacy NDJSON exports.
// Each input file is a gzip-compressed stream of one JSON order per line.
// Files are parsed concurrently; a bloom filter drops IDs already seen in the
// run, and the database insert ignores rows that already exist, so partial
// imports can simply be rerun.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/dhabalabs/pos-server/internal/domain/discount"
	"github.com/dhabalabs/pos-server/internal/domain/menu"
	"github.com/dhabalabs/pos-server/internal/domain/order"
	"github.com/dhabalabs/pos-server/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 50_000
)

// legacyOrder is one line of an export file. Monetary fields accept both
// JSON numbers and strings.
type legacyOrder struct {
	ID          string           `json:"id"`
	OrderNumber int              `json:"orderNumber"`
	Items       []legacyItem     `json:"items"`
	Method      string           `json:"paymentMethod"`
	Manual      decimal.Decimal  `json:"manualDiscount"`
	Percentage  decimal.Decimal  `json:"discountPercentage"`
	CashAmount  *decimal.Decimal `json:"cashAmount,omitempty"`
	Online      *decimal.Decimal `json:"onlineAmount,omitempty"`
	IsPaid      bool             `json:"isPaid"`
	CreatedAt   time.Time        `json:"createdAt"`
	ConfirmedAt time.Time        `json:"confirmedAt"`
}

type legacyItem struct {
	Name      string          `json:"name"`
	Variant   string          `json:"variant"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing orders-*.ndjson.gz export files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("order import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("order import completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "orders-*.ndjson.gz"))
	if err != nil {
		return errors.Wrap(err, "glob export files")
	}
	if len(files) == 0 {
		return errors.Errorf("no orders-*.ndjson.gz files in %s", dataDir)
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	repo := repository.NewConfirmedOrderRepository(pool)

	imported, skipped, err := importFiles(ctx, repo, files)
	if err != nil {
		return err
	}

	// Imported numbers must not be handed out again by live confirmations.
	if err := repo.SyncDayCounters(ctx); err != nil {
		return errors.Wrap(err, "sync day counters")
	}

	slog.Info("import summary",
		slog.Uint64("imported", imported),
		slog.Uint64("skipped", skipped),
		slog.Int("files", len(files)),
	)
	return nil
}

// importFiles streams every export file concurrently into a single writer.
// The bloom filter screens out IDs already offered in this run; the database
// conflict clause catches bloom false negatives and reruns.
func importFiles(ctx context.Context, repo *repository.ConfirmedOrderRepository, files []string) (imported, skipped uint64, err error) {
	var (
		seen   = bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		seenMu sync.Mutex
		orders = make(chan *order.ConfirmedOrder, 256)
	)

	g, ctx := errgroup.WithContext(ctx)

	writerDone := make(chan struct{})
	g.Go(func() error {
		defer close(writerDone)
		for co := range orders {
			inserted, err := repo.Import(ctx, co)
			if err != nil {
				return err
			}
			if inserted {
				imported++
			} else {
				skipped++
			}
			if total := imported + skipped; total%progressEvery == 0 {
				slog.Info("write progress",
					slog.Uint64("imported", imported),
					slog.Uint64("skipped", skipped),
				)
			}
		}
		return nil
	})

	var parsers errgroup.Group
	for _, path := range files {
		parsers.Go(func() error {
			return streamGzLines(ctx, path, func(line []byte) error {
				co, err := parseLegacyOrder(line)
				if err != nil {
					return errors.Wrapf(err, "parse line in %s", path)
				}

				seenMu.Lock()
				dup := seen.TestOrAddString(co.ID)
				seenMu.Unlock()
				if dup {
					return nil
				}

				select {
				case orders <- co:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				case <-writerDone:
					return errors.New("writer exited early")
				}
			})
		})
	}

	g.Go(func() error {
		defer close(orders)
		return parsers.Wait()
	})

	if err := g.Wait(); err != nil {
		return imported, skipped, err
	}
	return imported, skipped, nil
}

// parseLegacyOrder converts one export line into a confirmed order, running
// it through the same validation live orders get.
func parseLegacyOrder(line []byte) (*order.ConfirmedOrder, error) {
	var legacy legacyOrder
	if err := json.Unmarshal(line, &legacy); err != nil {
		return nil, errors.Wrap(err, "decode order")
	}
	if legacy.ID == "" {
		return nil, errors.New("order has no id")
	}
	if legacy.OrderNumber < 1 {
		return nil, errors.Errorf("order %s: bad order number %d", legacy.ID, legacy.OrderNumber)
	}
	method := order.PaymentMethod(legacy.Method)
	if !method.Valid() {
		return nil, errors.Errorf("order %s: unknown payment method %q", legacy.ID, legacy.Method)
	}

	items := make([]order.LineItem, len(legacy.Items))
	for i, item := range legacy.Items {
		items[i] = order.LineItem{
			Name:      item.Name,
			Variant:   menu.Variant(item.Variant),
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}

	// Recompute all derived amounts instead of trusting the export. The
	// discount percentage recorded on the order is reapplied as-is; a manual
	// discount that no longer fits is clamped to the largest valid amount.
	var rule *discount.Rule
	if !legacy.Percentage.IsZero() {
		rule = &discount.Rule{Percentage: legacy.Percentage, Active: true}
	}
	order.RecomputeLineTotals(items)
	totals, err := order.Reconcile(items, rule, legacy.Manual)
	if err != nil {
		var limitErr *order.DiscountExceedsLimitError
		if errors.As(err, &limitErr) {
			totals, err = order.Reconcile(items, rule, limitErr.Limit)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "order %s", legacy.ID)
		}
	}

	cash := decimal.Zero
	online := decimal.Zero
	switch method {
	case order.PaymentCash:
		cash = totals.TotalAmount
	case order.PaymentOnline:
		online = totals.TotalAmount
	case order.PaymentCustom:
		if legacy.CashAmount != nil {
			cash = *legacy.CashAmount
		}
		if legacy.Online != nil {
			online = *legacy.Online
		}
	}

	confirmedAt := legacy.ConfirmedAt
	if confirmedAt.IsZero() {
		confirmedAt = legacy.CreatedAt
	}

	return &order.ConfirmedOrder{
		ID:                 legacy.ID,
		OrderNumber:        legacy.OrderNumber,
		Items:              items,
		Subtotal:           totals.Subtotal,
		ManualDiscount:     totals.ManualDiscount,
		DiscountPercentage: totals.AppliedPercentage,
		DiscountAmount:     totals.DiscountAmount,
		TotalAmount:        totals.TotalAmount,
		PaymentMethod:      method,
		CashAmount:         cash,
		OnlineAmount:       online,
		IsPaid:             legacy.IsPaid,
		CreatedAt:          legacy.CreatedAt,
		ConfirmedAt:        confirmedAt,
	}, nil
}

// streamGzLines opens a gzip-compressed file and calls fn for each
// non-empty line.
func streamGzLines(ctx context.Context, path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}
	return nil
}
