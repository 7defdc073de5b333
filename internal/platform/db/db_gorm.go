// Package db はデータベース接続の確立とトランザクション管理を提供します。
package db

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	gmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// サポートするドライバー名
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

const (
	retryInterval   = 3 * time.Second
	applicationName = "sales_backend"
)

// Config はデータベース接続設定を保持します。
type Config struct {
	Driver       string
	User         string
	Password     string
	Name         string
	Host         string
	Port         string
	SSLMode      string
	InstanceName string // Cloud SQL のインスタンス接続名（設定時はUnixソケット接続）
	SQLitePath   string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
}

// Opener はDSNからgorm.DBを開く関数です。テストで差し替え可能です。
type Opener func(dsn string) (*gorm.DB, error)

// BuildDSN はドライバーに応じた接続文字列を生成します。
// InstanceName が設定されている場合は Host/Port より Cloud SQL のソケットが優先されます。
func BuildDSN(cfg Config) string {
	switch cfg.Driver {
	case DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.DBName = cfg.Name
		mc.ParseTime = true
		// UPDATE の RowsAffected を変更行ではなく一致行で数える
		mc.ClientFoundRows = true
		mc.Loc = time.UTC
		mc.Params = map[string]string{"charset": "utf8mb4"}
		if cfg.InstanceName != "" {
			mc.Net = "unix"
			mc.Addr = "/cloudsql/" + cfg.InstanceName
		} else {
			mc.Net = "tcp"
			mc.Addr = net.JoinHostPort(cfg.Host, cfg.Port)
		}
		return mc.FormatDSN()
	case DriverSQLite:
		if cfg.SQLitePath == "" {
			return ":memory:"
		}
		return cfg.SQLitePath
	default:
		host := cfg.Host
		if cfg.InstanceName != "" {
			host = "/cloudsql/" + cfg.InstanceName
		}
		sslmode := cfg.SSLMode
		if sslmode == "" {
			sslmode = "disable"
		}
		parts := []string{
			kv("host", host),
			kv("user", cfg.User),
			kv("password", cfg.Password),
			kv("dbname", cfg.Name),
			kv("sslmode", sslmode),
			"TimeZone=UTC",
		}
		if cfg.Port != "" && cfg.InstanceName == "" {
			parts = append(parts, kv("port", cfg.Port))
		}
		return strings.Join(parts, " ")
	}
}

// kv はlibpqのキーワード/値形式で値をクォートします。
func kv(key, value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `'`, `\'`)
	return fmt.Sprintf("%s='%s'", key, value)
}

// GormConfig は全ドライバー共通のGORM設定です。
// TranslateError により一意制約違反は gorm.ErrDuplicatedKey として返ります。
func GormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}
}

// OpenerFor はドライバー名に対応するOpenerを返します。
func OpenerFor(driver string) (Opener, error) {
	switch driver {
	case DriverPostgres, "":
		return openPostgres, nil
	case DriverMySQL:
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(gmysql.Open(dsn), GormConfig())
		}, nil
	case DriverSQLite:
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(sqlite.Open(dsn), GormConfig())
		}, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

// openPostgres は pgx の stdlib ドライバー経由で接続し、application_name を設定します。
func openPostgres(dsn string) (*gorm.DB, error) {
	pgxCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	pgxCfg.RuntimeParams["application_name"] = applicationName

	sqlDB := stdlib.OpenDB(*pgxCfg)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), GormConfig())
}

// ConnectWithRetry は timeout に達するまで一定間隔で接続を再試行します。
func ConnectWithRetry(dsn string, timeout time.Duration, opener Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := opener(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("DB connect failed after %s: %w", timeout, err)
		}
		zap.L().Warn("DB connect failed, retrying", zap.Error(err), zap.Duration("interval", retryInterval))
		time.Sleep(retryInterval)
	}
}

// Open は設定に従って接続し、コネクションプールを構成します。
func Open(cfg Config) (*gorm.DB, error) {
	opener, err := OpenerFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	db, err := ConnectWithRetry(BuildDSN(cfg), timeout, opener)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == DriverSQLite {
		// :memory: は接続ごとに別DBになるため単一接続に固定
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return db, nil
}

// Migrate は渡されたモデルのテーブルを作成・更新します。
func Migrate(db *gorm.DB, models ...any) error {
	if len(models) == 0 {
		return errors.New("no models to migrate")
	}
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
