// Package config 各服务共用的连接配置（Postgres / Redis / MQTT）
package config

import (
	"fmt"
	"os"
	"strconv"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MQTTConfig MQTT配置
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte
}

// GetDSN lib/pq 连接串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// envOverride 只覆盖设置了的变量，保留调用方给的默认值
type envOverride string

func (p envOverride) str(dst *string, key string) {
	if v := os.Getenv(string(p) + "_" + key); v != "" {
		*dst = v
	}
}

// num 解析失败时保留原值
func (p envOverride) num(dst *int, key string) {
	if v := os.Getenv(string(p) + "_" + key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// LoadFromEnv prefix 如 "DB"：DB_HOST、DB_PORT、DB_NAME ...
func (c *DatabaseConfig) LoadFromEnv(prefix string) {
	env := envOverride(prefix)
	env.str(&c.Host, "HOST")
	env.num(&c.Port, "PORT")
	env.str(&c.User, "USER")
	env.str(&c.Password, "PASSWORD")
	env.str(&c.Database, "NAME")
	env.str(&c.SSLMode, "SSLMODE")
	env.num(&c.MaxConns, "MAX_CONNS")
	env.num(&c.MaxIdle, "MAX_IDLE")
}

// LoadFromEnv prefix 如 "REDIS"
func (c *RedisConfig) LoadFromEnv(prefix string) {
	env := envOverride(prefix)
	env.str(&c.Addr, "ADDR")
	env.str(&c.Password, "PASSWORD")
	env.num(&c.DB, "DB")
}

// LoadFromEnv prefix 如 "MQTT"；QoS 只接受 0-2
func (c *MQTTConfig) LoadFromEnv(prefix string) {
	env := envOverride(prefix)
	env.str(&c.Broker, "BROKER")
	env.str(&c.ClientID, "CLIENT_ID")
	env.str(&c.Username, "USERNAME")
	env.str(&c.Password, "PASSWORD")

	qos := int(c.QoS)
	env.num(&qos, "QOS")
	if qos >= 0 && qos <= 2 {
		c.QoS = byte(qos)
	}
}
