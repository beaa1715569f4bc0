package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"safezone/internal/domain"

	"go.uber.org/zap"
)

type PostgresDevicesRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresDevicesRepo(db *sql.DB) *PostgresDevicesRepo {
	return &PostgresDevicesRepo{db: db, logger: zap.NewNop()}
}

// SetLogger sets the logger for this repository
func (r *PostgresDevicesRepo) SetLogger(logger *zap.Logger) {
	r.logger = logger
}

const deviceColumns = `
	device_id,
	name,
	device_type,
	last_lat,
	last_lon,
	last_at,
	COALESCE(avatar, ''),
	owner_id,
	owner_name,
	COALESCE(owner_avatar, ''),
	status,
	battery_level,
	is_active`

func scanDevice(row rowScanner) (domain.Device, error) {
	var (
		d          domain.Device
		deviceType string
		lat, lon   sql.NullFloat64
		at         sql.NullTime
		battery    sql.NullInt64
	)
	if err := row.Scan(
		&d.ID,
		&d.Name,
		&deviceType,
		&lat,
		&lon,
		&at,
		&d.Avatar,
		&d.Owner.ID,
		&d.Owner.Name,
		&d.Owner.Avatar,
		&d.Status,
		&battery,
		&d.IsActive,
	); err != nil {
		return domain.Device{}, err
	}
	d.Type = domain.DeviceType(deviceType)
	if lat.Valid && lon.Valid {
		loc := domain.Location{Lat: lat.Float64, Lon: lon.Float64}
		if at.Valid {
			loc.At = at.Time
		}
		d.LastLocation = &loc
	}
	if battery.Valid {
		b := int(battery.Int64)
		d.BatteryLevel = &b
	}
	return d, nil
}

func (r *PostgresDevicesRepo) ListDevices(ctx context.Context) ([]domain.Device, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+deviceColumns+` FROM devices ORDER BY device_id`)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	out := []domain.Device{}
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("list devices: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PostgresDevicesRepo) GetDevice(ctx context.Context, deviceID string) (*domain.Device, error) {
	if deviceID == "" {
		return nil, domain.ErrDeviceNotFound
	}
	d, err := scanDevice(r.db.QueryRowContext(ctx, `SELECT `+deviceColumns+` FROM devices WHERE device_id = $1`, deviceID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDeviceNotFound
		}
		return nil, fmt.Errorf("get device: %w", err)
	}
	return &d, nil
}

func (r *PostgresDevicesRepo) UpdateLocation(ctx context.Context, deviceID string, loc domain.Location) (*domain.Device, error) {
	q := `
		UPDATE devices
		SET last_lat = $2, last_lon = $3, last_at = $4, status = $5
		WHERE device_id = $1
		RETURNING ` + deviceColumns
	d, err := scanDevice(r.db.QueryRowContext(ctx, q, deviceID, loc.Lat, loc.Lon, loc.At, domain.DeviceStatusOnline))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDeviceNotFound
		}
		r.logger.Error("UpdateLocation failed", zap.String("device_id", deviceID), zap.Error(err))
		return nil, fmt.Errorf("update device location: %w", err)
	}
	return &d, nil
}
