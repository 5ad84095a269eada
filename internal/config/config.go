package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	KeyAddr                  = "addr"
	KeyPort                  = "port"
	KeyPublicURL             = "public-url"
	KeyDatabaseURL           = "database-url"
	KeyDBDriver              = "db-driver"
	KeyDBMaxOpenConns        = "db-max-open-conns"
	KeyDBMaxIdleConns        = "db-max-idle-conns"
	KeyDBConnMaxLifetime     = "db-conn-max-lifetime-seconds"
	KeyDBConnMaxIdleTime     = "db-conn-max-idle-seconds"
	KeyAutoMigrate           = "auto-migrate"
	KeyStartingSuperCards    = "starting-super-cards"
	KeyRoomCodeAttempts      = "room-code-attempts"
	KeyWSWriteTimeout        = "ws-write-timeout"
	KeyLogLevel              = "log-level"
	KeyDevMode               = "dev-mode"
)

// Config is built once at startup and handed to every component by value.
type Config struct {
	Addr                     string
	PublicURL                string
	DatabaseURL              string
	DBDriver                 string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
	AutoMigrate              bool
	StartingSuperCards       int
	RoomCodeAttempts         int
	WSWriteTimeout           time.Duration
	LogLevel                 string
	DevMode                  bool
}

func Default() Config {
	return Config{
		Addr:                     ":8080",
		PublicURL:                "http://localhost:8080",
		DBDriver:                 DriverPostgres,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
		AutoMigrate:              false,
		StartingSuperCards:       3,
		RoomCodeAttempts:         20,
		WSWriteTimeout:           5 * time.Second,
		LogLevel:                 "info",
	}
}

// NewViper returns a viper instance that resolves every key from the
// environment (DATABASE_URL for database-url and so on), falling back to
// Default(). The listen address has no viper default so that PORT can
// still apply when ADDR is unset.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault(KeyPort, "")
	v.SetDefault(KeyPublicURL, d.PublicURL)
	v.SetDefault(KeyDatabaseURL, d.DatabaseURL)
	v.SetDefault(KeyDBDriver, d.DBDriver)
	v.SetDefault(KeyDBMaxOpenConns, d.DBMaxOpenConns)
	v.SetDefault(KeyDBMaxIdleConns, d.DBMaxIdleConns)
	v.SetDefault(KeyDBConnMaxLifetime, d.DBConnMaxLifetimeSeconds)
	v.SetDefault(KeyDBConnMaxIdleTime, d.DBConnMaxIdleTimeSeconds)
	v.SetDefault(KeyAutoMigrate, d.AutoMigrate)
	v.SetDefault(KeyStartingSuperCards, d.StartingSuperCards)
	v.SetDefault(KeyRoomCodeAttempts, d.RoomCodeAttempts)
	v.SetDefault(KeyWSWriteTimeout, d.WSWriteTimeout)
	v.SetDefault(KeyLogLevel, d.LogLevel)
	v.SetDefault(KeyDevMode, d.DevMode)
	return v
}

// BindFlags registers the server flags and binds them to v so that an
// explicitly passed flag wins over the environment.
func BindFlags(fs *pflag.FlagSet, v *viper.Viper) error {
	d := Default()
	fs.String(KeyAddr, d.Addr, "address to listen on (env: ADDR)")
	fs.String(KeyPublicURL, d.PublicURL, "public base URL used in join links (env: PUBLIC_URL)")
	fs.String(KeyDatabaseURL, d.DatabaseURL, "database DSN or sqlite file path (env: DATABASE_URL)")
	fs.String(KeyDBDriver, d.DBDriver, "database driver: postgres or sqlite (env: DB_DRIVER)")
	fs.Bool(KeyAutoMigrate, d.AutoMigrate, "run GORM auto-migrations on startup (env: AUTO_MIGRATE)")
	fs.Int(KeyStartingSuperCards, d.StartingSuperCards, "super-cards granted on first join (env: STARTING_SUPER_CARDS)")
	fs.Duration(KeyWSWriteTimeout, d.WSWriteTimeout, "per-message websocket write deadline (env: WS_WRITE_TIMEOUT)")
	fs.String(KeyLogLevel, d.LogLevel, "log level: debug, info, warn, error (env: LOG_LEVEL)")
	fs.Bool(KeyDevMode, d.DevMode, "human readable logs and verbose SQL (env: DEV_MODE)")

	var bindErr error
	fs.VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	return bindErr
}

func Load(v *viper.Viper) Config {
	cfg := Default()
	if addr := strings.TrimSpace(v.GetString(KeyAddr)); addr != "" {
		cfg.Addr = addr
	}
	// PORT is honoured for platforms that only hand out a port number.
	if port := strings.TrimSpace(v.GetString(KeyPort)); port != "" && !v.IsSet(KeyAddr) {
		cfg.Addr = ":" + port
	}
	cfg.PublicURL = strings.TrimSuffix(v.GetString(KeyPublicURL), "/")
	cfg.DatabaseURL = v.GetString(KeyDatabaseURL)
	cfg.DBDriver = strings.ToLower(strings.TrimSpace(v.GetString(KeyDBDriver)))
	if value := v.GetInt(KeyDBMaxOpenConns); value > 0 {
		cfg.DBMaxOpenConns = value
	}
	if value := v.GetInt(KeyDBMaxIdleConns); value > 0 {
		cfg.DBMaxIdleConns = value
	}
	if value := v.GetInt(KeyDBConnMaxLifetime); value > 0 {
		cfg.DBConnMaxLifetimeSeconds = value
	}
	if value := v.GetInt(KeyDBConnMaxIdleTime); value > 0 {
		cfg.DBConnMaxIdleTimeSeconds = value
	}
	cfg.AutoMigrate = v.GetBool(KeyAutoMigrate)
	cfg.StartingSuperCards = v.GetInt(KeyStartingSuperCards)
	if value := v.GetInt(KeyRoomCodeAttempts); value > 0 {
		cfg.RoomCodeAttempts = value
	}
	if value := v.GetDuration(KeyWSWriteTimeout); value > 0 {
		cfg.WSWriteTimeout = value
	}
	cfg.LogLevel = v.GetString(KeyLogLevel)
	cfg.DevMode = v.GetBool(KeyDevMode)
	return cfg
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported db driver %q (want %s or %s)", c.DBDriver, DriverPostgres, DriverSQLite)
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is not set")
	}
	if c.StartingSuperCards < 0 {
		return fmt.Errorf("starting super-cards must be zero or more: %d", c.StartingSuperCards)
	}
	if c.RoomCodeAttempts <= 0 {
		return fmt.Errorf("room code attempts must be positive: %d", c.RoomCodeAttempts)
	}
	return nil
}
