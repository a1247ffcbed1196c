package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Pool defaults applied to zero values of PoolConfig.
const (
	defaultMaxIdleConns    = 10
	defaultMaxOpenConns    = 100
	defaultConnMaxLifetime = time.Hour
)

// slowQueryThreshold is the duration above which a query is logged as a warning.
const slowQueryThreshold = 200 * time.Millisecond

// poolSettings is a PoolConfig with defaults applied and the lifetime parsed.
type poolSettings struct {
	maxIdle     int
	maxOpen     int
	maxLifetime time.Duration
}

func resolvePool(p *PoolConfig) (poolSettings, error) {
	s := poolSettings{
		maxIdle:     defaultMaxIdleConns,
		maxOpen:     defaultMaxOpenConns,
		maxLifetime: defaultConnMaxLifetime,
	}
	if p == nil {
		return s, nil
	}
	if p.MaxIdleConns > 0 {
		s.maxIdle = p.MaxIdleConns
	}
	if p.MaxOpenConns > 0 {
		s.maxOpen = p.MaxOpenConns
	}
	if v := strings.TrimSpace(p.ConnMaxLifetime); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return s, fmt.Errorf("invalid pool.conn_max_lifetime %q: %w", p.ConnMaxLifetime, err)
		}
		if d <= 0 {
			return s, fmt.Errorf("invalid pool.conn_max_lifetime %q: must be greater than 0", p.ConnMaxLifetime)
		}
		s.maxLifetime = d
	}
	return s, nil
}

// SetupDatabase opens the record store described by cfg and sizes its
// connection pool. SQL is logged through log: every statement when log is at
// debug level, otherwise slow statements and errors. Query parameters are
// never logged since records carry personal data.
func SetupDatabase(cfg *DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	if cfg == nil {
		return nil, errors.New("database config is nil")
	}
	if log == nil {
		return nil, errors.New("logger is nil")
	}

	pool, err := resolvePool(&cfg.Pool)
	if err != nil {
		return nil, err
	}
	dialector, err := openDialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: newGormLogger(log)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(pool.maxIdle)
	sqlDB.SetMaxOpenConns(pool.maxOpen)
	sqlDB.SetConnMaxLifetime(pool.maxLifetime)

	log.Info("database connected",
		slog.String("driver", cfg.Driver),
		slog.Int("max_idle_conns", pool.maxIdle),
		slog.Int("max_open_conns", pool.maxOpen),
		slog.Duration("conn_max_lifetime", pool.maxLifetime),
	)
	return db, nil
}

func openDialector(cfg *DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite":
		if dir := filepath.Dir(cfg.SQLite.Path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create sqlite directory %q: %w", dir, err)
			}
		}
		return sqlite.Open(sqliteDSN(cfg.SQLite.Path)), nil
	case "postgres":
		return postgres.Open(buildPostgresDSN(&cfg.Postgres)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// newGormLogger routes GORM output into log. A missing record is a 404, not
// an error worth logging.
func newGormLogger(log *slog.Logger) gormlogger.Interface {
	level := gormlogger.Warn
	if log.Enabled(context.Background(), slog.LevelDebug) {
		level = gormlogger.Info
	}
	return gormlogger.NewSlogLogger(log, gormlogger.Config{
		SlowThreshold:             slowQueryThreshold,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
		LogLevel:                  level,
	})
}

// sqliteDSN appends the pragmas the record store relies on unless the path
// already carries a query string.
func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// Migrate creates or updates the tables of the given models.
func Migrate(db *gorm.DB, models ...any) error {
	if db == nil {
		return errors.New("database is nil")
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func buildPostgresDSN(cfg *PostgresConfig) string {
	if cfg == nil {
		return ""
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   cfg.DBName,
	}
	if cfg.User != "" || cfg.Password != "" {
		u.User = url.UserPassword(cfg.User, cfg.Password)
	}
	if cfg.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {cfg.SSLMode}}.Encode()
	}
	return u.String()
}
