package device

import (
	"context"
	_ "embed"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaSQL is embedded so the service can self-bootstrap its device table.
//
//go:embed schema.sql
var schemaSQL string

// PostgresRegistry is the durable Registry used when a database is configured.
type PostgresRegistry struct {
	pool *pgxpool.Pool
}

// NewPostgresRegistry creates a connection pool and fails fast if the
// database is unreachable.
func NewPostgresRegistry(dbURL string) (*PostgresRegistry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresRegistry{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (r *PostgresRegistry) EnsureSchema() error {
	_, err := r.pool.Exec(context.Background(), schemaSQL)
	return err
}

// Seed inserts the default development sensors, skipping ids that already
// exist so deployments keep administratively edited records.
func (r *PostgresRegistry) Seed(ctx context.Context) error {
	for _, d := range DefaultSeed() {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO devices(id, device_id, secret, name, location, active, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			ON CONFLICT (device_id) DO NOTHING
		`, d.ID, d.DeviceID, d.Secret, d.Name, d.Location, d.Active, d.CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

// Ready reports database connectivity; the readiness endpoint consults it.
func (r *PostgresRegistry) Ready(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (r *PostgresRegistry) Close() {
	r.pool.Close()
}

// Lookup returns the device for the given sensor id, or nil when absent.
func (r *PostgresRegistry) Lookup(ctx context.Context, deviceID string) (*Device, error) {
	var d Device
	err := r.pool.QueryRow(ctx, `
		SELECT id, device_id, secret, name, location, active, created_at, last_reading_at
		FROM devices
		WHERE device_id = $1
	`, deviceID).Scan(&d.ID, &d.DeviceID, &d.Secret, &d.Name, &d.Location, &d.Active, &d.CreatedAt, &d.LastReadingAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ValidateSecret performs the boolean-only secret check. The comparison
// happens on the entity, not in SQL, so the active/exact-match policy
// lives in one place.
func (r *PostgresRegistry) ValidateSecret(ctx context.Context, deviceID, secret string) (bool, error) {
	d, err := r.Lookup(ctx, deviceID)
	if err != nil {
		return false, err
	}
	if d == nil {
		return false, nil
	}
	return d.ValidateSecret(secret), nil
}

// Add registers the device, replacing an existing record with the same id.
func (r *PostgresRegistry) Add(ctx context.Context, d *Device) error {
	return r.upsert(ctx, d)
}

// Update upserts the device by sensor id.
func (r *PostgresRegistry) Update(ctx context.Context, d *Device) error {
	return r.upsert(ctx, d)
}

func (r *PostgresRegistry) upsert(ctx context.Context, d *Device) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO devices(id, device_id, secret, name, location, active, created_at, last_reading_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (device_id) DO UPDATE SET
			secret = EXCLUDED.secret,
			name = EXCLUDED.name,
			location = EXCLUDED.location,
			active = EXCLUDED.active,
			last_reading_at = EXCLUDED.last_reading_at
	`, d.ID, d.DeviceID, d.Secret, d.Name, d.Location, d.Active, d.CreatedAt, d.LastReadingAt)
	return err
}

// TouchLastReading stamps the device's last-reading timestamp.
func (r *PostgresRegistry) TouchLastReading(ctx context.Context, deviceID string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE devices SET last_reading_at = $2 WHERE device_id = $1
	`, deviceID, at.UTC())
	return err
}
