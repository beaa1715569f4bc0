package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"safezone/internal/domain"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type PostgresZonesRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresZonesRepo(db *sql.DB, logger *zap.Logger) *PostgresZonesRepo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresZonesRepo{db: db, logger: logger}
}

const zoneColumns = `
	zone_id,
	name,
	COALESCE(icon, ''),
	COALESCE(description, ''),
	zone_type,
	latitude,
	longitude,
	radius,
	address,
	is_active,
	notifications::text,
	devices,
	notifications_by_device::text,
	schedule::text,
	created_at,
	updated_at,
	COALESCE(created_by, ''),
	color`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanZone(row rowScanner) (domain.Zone, error) {
	var (
		z                                   domain.Zone
		zoneType                            string
		notifications, byDevice, scheduleJS string
		devices                             pq.StringArray
	)
	if err := row.Scan(
		&z.ID,
		&z.Name,
		&z.Icon,
		&z.Description,
		&zoneType,
		&z.Coordinates.Latitude,
		&z.Coordinates.Longitude,
		&z.Coordinates.Radius,
		&z.Address,
		&z.IsActive,
		&notifications,
		&devices,
		&byDevice,
		&scheduleJS,
		&z.CreatedAt,
		&z.UpdatedAt,
		&z.CreatedBy,
		&z.Color,
	); err != nil {
		return domain.Zone{}, err
	}
	z.Type = domain.ZoneType(zoneType)
	z.Devices = []string(devices)
	if z.Devices == nil {
		z.Devices = []string{}
	}
	if err := unmarshalJSONB(notifications, &z.Notifications); err != nil {
		return domain.Zone{}, fmt.Errorf("zone %s notifications: %w", z.ID, err)
	}
	z.NotificationsByDevice = map[string]bool{}
	if err := unmarshalJSONB(byDevice, &z.NotificationsByDevice); err != nil {
		return domain.Zone{}, fmt.Errorf("zone %s notifications_by_device: %w", z.ID, err)
	}
	if err := unmarshalJSONB(scheduleJS, &z.Schedule); err != nil {
		return domain.Zone{}, fmt.Errorf("zone %s schedule: %w", z.ID, err)
	}
	return z, nil
}

func unmarshalJSONB(s string, out any) error {
	if s == "" || s == "null" {
		return nil
	}
	return json.Unmarshal([]byte(s), out)
}

func (r *PostgresZonesRepo) queryZones(ctx context.Context, q string, args ...any) ([]domain.Zone, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Zone{}
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, z)
	}
	return out, rows.Err()
}

func (r *PostgresZonesRepo) ListZones(ctx context.Context) ([]domain.Zone, error) {
	q := `SELECT ` + zoneColumns + ` FROM zones ORDER BY created_at, zone_id`
	zones, err := r.queryZones(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	return zones, nil
}

func (r *PostgresZonesRepo) ListZonesByDevice(ctx context.Context, deviceID string) ([]domain.Zone, error) {
	q := `SELECT ` + zoneColumns + ` FROM zones WHERE $1 = ANY(devices) ORDER BY created_at, zone_id`
	zones, err := r.queryZones(ctx, q, deviceID)
	if err != nil {
		return nil, fmt.Errorf("list zones by device: %w", err)
	}
	return zones, nil
}

func (r *PostgresZonesRepo) GetZone(ctx context.Context, zoneID string) (*domain.Zone, error) {
	if zoneID == "" {
		return nil, domain.ErrZoneNotFound
	}
	q := `SELECT ` + zoneColumns + ` FROM zones WHERE zone_id = $1`
	z, err := scanZone(r.db.QueryRowContext(ctx, q, zoneID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrZoneNotFound
		}
		return nil, fmt.Errorf("get zone: %w", err)
	}
	return &z, nil
}

type zoneJSONB struct {
	notifications, byDevice, schedule []byte
}

func marshalZoneJSONB(z domain.Zone) (zoneJSONB, error) {
	var (
		out zoneJSONB
		err error
	)
	if out.notifications, err = json.Marshal(z.Notifications); err != nil {
		return out, err
	}
	byDevice := z.NotificationsByDevice
	if byDevice == nil {
		byDevice = map[string]bool{}
	}
	if out.byDevice, err = json.Marshal(byDevice); err != nil {
		return out, err
	}
	if out.schedule, err = json.Marshal(z.Schedule); err != nil {
		return out, err
	}
	return out, nil
}

func (r *PostgresZonesRepo) CreateZone(ctx context.Context, z domain.Zone) error {
	js, err := marshalZoneJSONB(z)
	if err != nil {
		return fmt.Errorf("create zone: %w", err)
	}
	devices := z.Devices
	if devices == nil {
		devices = []string{}
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO zones (
			zone_id, name, icon, description, zone_type,
			latitude, longitude, radius, address, is_active,
			notifications, devices, notifications_by_device, schedule,
			created_at, updated_at, created_by, color
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		z.ID, z.Name, z.Icon, z.Description, string(z.Type),
		z.Coordinates.Latitude, z.Coordinates.Longitude, z.Coordinates.Radius, z.Address, z.IsActive,
		string(js.notifications), pq.Array(devices), string(js.byDevice), string(js.schedule),
		z.CreatedAt, z.UpdatedAt, z.CreatedBy, z.Color,
	)
	if err != nil {
		r.logger.Error("CreateZone failed", zap.String("zone_id", z.ID), zap.Error(err))
		return fmt.Errorf("create zone: %w", err)
	}
	return nil
}

func (r *PostgresZonesRepo) UpdateZone(ctx context.Context, z domain.Zone) error {
	js, err := marshalZoneJSONB(z)
	if err != nil {
		return fmt.Errorf("update zone: %w", err)
	}
	devices := z.Devices
	if devices == nil {
		devices = []string{}
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE zones SET
			name = $2, icon = $3, description = $4, zone_type = $5,
			latitude = $6, longitude = $7, radius = $8, address = $9, is_active = $10,
			notifications = $11, devices = $12, notifications_by_device = $13, schedule = $14,
			updated_at = $15, color = $16
		WHERE zone_id = $1`,
		z.ID, z.Name, z.Icon, z.Description, string(z.Type),
		z.Coordinates.Latitude, z.Coordinates.Longitude, z.Coordinates.Radius, z.Address, z.IsActive,
		string(js.notifications), pq.Array(devices), string(js.byDevice), string(js.schedule),
		z.UpdatedAt, z.Color,
	)
	if err != nil {
		r.logger.Error("UpdateZone failed", zap.String("zone_id", z.ID), zap.Error(err))
		return fmt.Errorf("update zone: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrZoneNotFound
	}
	return nil
}

func (r *PostgresZonesRepo) DeleteZone(ctx context.Context, zoneID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM zones WHERE zone_id = $1`, zoneID)
	if err != nil {
		return fmt.Errorf("delete zone: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrZoneNotFound
	}
	return nil
}
