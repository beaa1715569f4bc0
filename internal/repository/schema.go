package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"safezone/internal/domain"

	"github.com/lib/pq"
)

// Schema zones / devices 表结构（幂等）
const Schema = `
CREATE TABLE IF NOT EXISTS devices (
	device_id     TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	device_type   TEXT NOT NULL,
	last_lat      DOUBLE PRECISION,
	last_lon      DOUBLE PRECISION,
	last_at       TIMESTAMPTZ,
	avatar        TEXT,
	owner_id      TEXT NOT NULL DEFAULT '',
	owner_name    TEXT NOT NULL DEFAULT '',
	owner_avatar  TEXT,
	status        TEXT NOT NULL DEFAULT 'offline',
	battery_level INTEGER,
	is_active     BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS zones (
	zone_id                 TEXT PRIMARY KEY,
	name                    TEXT NOT NULL,
	icon                    TEXT,
	description             TEXT,
	zone_type               TEXT NOT NULL DEFAULT 'other',
	latitude                DOUBLE PRECISION NOT NULL,
	longitude               DOUBLE PRECISION NOT NULL,
	radius                  DOUBLE PRECISION NOT NULL CHECK (radius BETWEEN 100 AND 5000),
	address                 TEXT NOT NULL,
	is_active               BOOLEAN NOT NULL DEFAULT TRUE,
	notifications           JSONB NOT NULL DEFAULT '{}',
	devices                 TEXT[] NOT NULL DEFAULT '{}',
	notifications_by_device JSONB NOT NULL DEFAULT '{}',
	schedule                JSONB NOT NULL DEFAULT '{}',
	created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
	created_by              TEXT,
	color                   TEXT NOT NULL DEFAULT '#4CAF50'
);

CREATE INDEX IF NOT EXISTS idx_zones_devices ON zones USING GIN (devices)`

// EnsureSchema 逐条执行 Schema
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(Schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// SeedPostgres 预置设备和区域（已存在的行保持不变）
func SeedPostgres(ctx context.Context, db *sql.DB, now time.Time) error {
	for _, d := range SeedDevices(now) {
		var battery any
		if d.BatteryLevel != nil {
			battery = *d.BatteryLevel
		}
		_, err := db.ExecContext(ctx,
			`INSERT INTO devices (device_id, name, device_type, last_lat, last_lon, last_at, avatar, owner_id, owner_name, owner_avatar, status, battery_level, is_active)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			 ON CONFLICT (device_id) DO NOTHING`,
			d.ID, d.Name, string(d.Type), d.LastLocation.Lat, d.LastLocation.Lon, d.LastLocation.At,
			d.Avatar, d.Owner.ID, d.Owner.Name, d.Owner.Avatar, d.Status, battery, d.IsActive,
		)
		if err != nil {
			return fmt.Errorf("seed device %s: %w", d.ID, err)
		}
	}
	for _, z := range SeedZones(now) {
		if err := seedZone(ctx, db, z); err != nil {
			return err
		}
	}
	return nil
}

func seedZone(ctx context.Context, db *sql.DB, z domain.Zone) error {
	js, err := marshalZoneJSONB(z)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO zones (
			zone_id, name, icon, description, zone_type,
			latitude, longitude, radius, address, is_active,
			notifications, devices, notifications_by_device, schedule,
			created_at, updated_at, created_by, color
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (zone_id) DO NOTHING`,
		z.ID, z.Name, z.Icon, z.Description, string(z.Type),
		z.Coordinates.Latitude, z.Coordinates.Longitude, z.Coordinates.Radius, z.Address, z.IsActive,
		string(js.notifications), pq.Array(z.Devices), string(js.byDevice), string(js.schedule),
		z.CreatedAt, z.UpdatedAt, z.CreatedBy, z.Color,
	)
	if err != nil {
		return fmt.Errorf("seed zone %s: %w", z.ID, err)
	}
	return nil
}
