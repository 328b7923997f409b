package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hotel_ops/internal/models"
)

type DeviceSQLite struct {
	db *sql.DB
}

func NewDeviceSQLite(db *sql.DB) *DeviceSQLite {
	return &DeviceSQLite{db: db}
}

var _ DeviceRepo = (*DeviceSQLite)(nil)

const (
	deviceColumns = `device_id, token, available, created_at, custom_message, message_sent_at`

	// Only the token is refreshed on conflict; available and created_at
	// belong to the first registration.
	upsertDeviceSQL = `
		INSERT INTO device_tokens (device_id, token, available, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			token=excluded.token
	`
	selectDeviceSQL          = `SELECT ` + deviceColumns + ` FROM device_tokens WHERE device_id = ?`
	selectAvailableDevices   = `SELECT ` + deviceColumns + ` FROM device_tokens WHERE available = 1 ORDER BY created_at ASC`
	updateDeviceAvailableSQL = `UPDATE device_tokens SET available = ? WHERE device_id = ?`
	updateDeviceMessageSQL   = `UPDATE device_tokens SET custom_message = ?, message_sent_at = ? WHERE device_id = ?`
)

func scanDevice(row rowScanner) (models.DeviceRegistration, error) {
	var (
		d       models.DeviceRegistration
		msg     sql.NullString
		msgSent sql.NullTime
	)
	if err := row.Scan(&d.DeviceID, &d.Token, &d.Available, &d.CreatedAt, &msg, &msgSent); err != nil {
		return models.DeviceRegistration{}, err
	}
	d.CreatedAt = d.CreatedAt.UTC()
	if msg.Valid && msgSent.Valid {
		d.CustomMessage = &models.CustomMessage{Text: msg.String, SentAt: msgSent.Time.UTC()}
	}
	return d, nil
}

// Upsert inserts a registration or refreshes the token of an existing one.
func (r *DeviceSQLite) Upsert(ctx context.Context, d models.DeviceRegistration) error {
	created := d.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	if _, err := r.db.ExecContext(ctx, upsertDeviceSQL, d.DeviceID, d.Token, d.Available, created.UTC()); err != nil {
		return fmt.Errorf("upsert device %q: %w", d.DeviceID, err)
	}
	return nil
}

func (r *DeviceSQLite) Get(ctx context.Context, deviceID string) (models.DeviceRegistration, error) {
	d, err := scanDevice(r.db.QueryRowContext(ctx, selectDeviceSQL, deviceID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DeviceRegistration{}, ErrNotFound
		}
		return models.DeviceRegistration{}, fmt.Errorf("select device %q: %w", deviceID, err)
	}
	return d, nil
}

// ListAvailable is the equality query used by the fan-out.
func (r *DeviceSQLite) ListAvailable(ctx context.Context) ([]models.DeviceRegistration, error) {
	rows, err := r.db.QueryContext(ctx, selectAvailableDevices)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DeviceRegistration
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DeviceSQLite) SetAvailable(ctx context.Context, deviceID string, available bool) error {
	return execOneRow(ctx, r.db, updateDeviceAvailableSQL, available, deviceID)
}

func (r *DeviceSQLite) SetCustomMessage(ctx context.Context, deviceID string, msg models.CustomMessage) error {
	return execOneRow(ctx, r.db, updateDeviceMessageSQL, msg.Text, msg.SentAt.UTC(), deviceID)
}

// execOneRow runs an update and maps "no row touched" to ErrNotFound.
func execOneRow(ctx context.Context, db *sql.DB, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
