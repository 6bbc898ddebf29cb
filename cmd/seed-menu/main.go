// Command seed-menu loads the menu catalog from a JSON file and provisions a
// worker device key. Safe to rerun: menu rows are upserted by name and
// variant, device keys by hash.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dhabalabs/pos-server/internal/domain/auth"
	"github.com/dhabalabs/pos-server/internal/domain/menu"
	"github.com/dhabalabs/pos-server/internal/repository"
)

type menuItemJSON struct {
	Name      string          `json:"name"`
	Variant   string          `json:"variant"`
	Price     decimal.Decimal `json:"price"`
	Category  string          `json:"category"`
	Available *bool           `json:"available,omitempty"`
}

func main() {
	var (
		databaseURL string
		menuFile    string
		deviceKey   string
		deviceName  string
		pepper      string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&menuFile, "menu-file", "db/seed/menu.json", "path to menu JSON file")
	flag.StringVar(&deviceKey, "device-key", "", "device key to provision (or POS_SEED_DEVICE_KEY env)")
	flag.StringVar(&deviceName, "device-name", "counter-1", "display name for the provisioned device")
	flag.StringVar(&pepper, "device-key-pepper", "", "HMAC pepper for device key hashing (or POS_DEVICE_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if deviceKey == "" {
		deviceKey = os.Getenv("POS_SEED_DEVICE_KEY")
	}
	if pepper == "" {
		pepper = os.Getenv("POS_DEVICE_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, menuFile, deviceKey, deviceName, pepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, menuFile, deviceKey, deviceName, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedMenu(ctx, repository.NewMenuRepository(pool), menuFile); err != nil {
		return errors.Wrap(err, "seed menu")
	}

	if deviceKey != "" {
		if err := seedDeviceKey(ctx, repository.NewDeviceKeyRepository(pool), deviceKey, deviceName, pepper); err != nil {
			return errors.Wrap(err, "seed device key")
		}
	}

	return nil
}

func seedMenu(ctx context.Context, repo *repository.MenuRepository, menuFile string) error {
	slog.Info("reading menu file", slog.String("path", menuFile))

	data, err := os.ReadFile(menuFile)
	if err != nil {
		return errors.Wrap(err, "read menu file")
	}

	var items []menuItemJSON
	if err := json.Unmarshal(data, &items); err != nil {
		return errors.Wrap(err, "parse menu JSON")
	}

	slog.Info("upserting menu items", slog.Int("count", len(items)))

	for _, raw := range items {
		variant := menu.Variant(raw.Variant)
		if !variant.Valid() {
			return errors.Errorf("item %q: unknown variant %q", raw.Name, raw.Variant)
		}

		available := true
		if raw.Available != nil {
			available = *raw.Available
		}

		item := &menu.Item{
			ID:        uuid.NewString(),
			Name:      raw.Name,
			Variant:   variant,
			Price:     raw.Price,
			Category:  raw.Category,
			Available: available,
		}
		if err := repo.Upsert(ctx, item); err != nil {
			return errors.Wrapf(err, "upsert item %s (%s)", raw.Name, raw.Variant)
		}

		slog.Info("upserted menu item",
			slog.String("name", raw.Name),
			slog.String("variant", raw.Variant),
			slog.String("price", raw.Price.String()),
		)
	}

	return nil
}

func seedDeviceKey(ctx context.Context, repo *repository.DeviceKeyRepository, rawKey, name, pepper string) error {
	slog.Info("provisioning device key", slog.String("name", name))

	key := &auth.DeviceKey{
		ID:      uuid.NewString(),
		KeyHash: auth.HashDeviceKey(rawKey, []byte(pepper)),
		Name:    name,
		Active:  true,
	}
	if err := repo.Insert(ctx, key); err != nil {
		return errors.Wrap(err, "insert device key")
	}

	slog.Info("provisioned device key", slog.String("name", name))
	return nil
}
