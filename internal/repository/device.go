package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dhabalabs/pos-server/internal/domain/auth"
)

const (
	getDeviceKeyByHashSQL = `SELECT id, key_hash, name, active
		FROM device_keys WHERE key_hash = $1 AND active = TRUE`

	insertDeviceKeySQL = `INSERT INTO device_keys (id, key_hash, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (key_hash) DO NOTHING`
)

var _ auth.DeviceRepository = (*DeviceKeyRepository)(nil)

// DeviceKeyRepository provides device key lookups backed by PostgreSQL.
type DeviceKeyRepository struct {
	pool *pgxpool.Pool
}

// NewDeviceKeyRepository returns a DeviceKeyRepository that uses the given
// pool.
func NewDeviceKeyRepository(pool *pgxpool.Pool) *DeviceKeyRepository {
	return &DeviceKeyRepository{pool: pool}
}

// FindByHash looks up an active device key by its HMAC-SHA256 hash.
func (r *DeviceKeyRepository) FindByHash(ctx context.Context, hash string) (*auth.DeviceKey, error) {
	rows, err := r.pool.Query(ctx, getDeviceKeyByHashSQL, hash)
	if err != nil {
		return nil, fmt.Errorf("finding device key: %w", err)
	}

	key, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (auth.DeviceKey, error) {
		var k auth.DeviceKey
		err := row.Scan(&k.ID, &k.KeyHash, &k.Name, &k.Active)
		return k, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("device key not found: %w", auth.ErrUnauthorized)
		}
		return nil, fmt.Errorf("finding device key: %w", err)
	}
	return &key, nil
}

// Insert provisions a new device key; an existing hash is left untouched.
// Used by the seeding tool.
func (r *DeviceKeyRepository) Insert(ctx context.Context, key *auth.DeviceKey) error {
	_, err := r.pool.Exec(ctx, insertDeviceKeySQL, key.ID, key.KeyHash, key.Name)
	if err != nil {
		return fmt.Errorf("inserting device key %q: %w", key.Name, err)
	}
	return nil
}
