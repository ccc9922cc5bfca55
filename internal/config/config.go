package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/indelible-labs/indelibled/internal/core/application"
	"github.com/indelible-labs/indelibled/internal/core/ports"
	"github.com/indelible-labs/indelibled/internal/infrastructure/db"
	watermillbus "github.com/indelible-labs/indelibled/internal/infrastructure/events/watermill"
	badgerledger "github.com/indelible-labs/indelibled/internal/infrastructure/ledger/badger"
	inmemoryledger "github.com/indelible-labs/indelibled/internal/infrastructure/ledger/inmemory"
	"github.com/indelible-labs/indelibled/internal/infrastructure/seed"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	supportedDbs = supportedType{
		"badger":   {},
		"sqlite":   {},
		"postgres": {},
	}
	supportedNonceStores = supportedType{
		"redis": {},
	}
	supportedLedgers = supportedType{
		"inmemory": {},
		"badger":   {},
	}
)

type Config struct {
	Datadir  string
	Port     uint32
	LogLevel int

	DbType         string
	DbDir          string
	DbUrl          string
	NonceStoreType string
	RedisUrl       string
	LedgerType     string
	LedgerDir      string
	CollectionFile string

	EnableDevLedger   bool
	EnableMetrics     bool
	CORSAllowOrigins  []string
	HeartbeatInterval time.Duration

	repo     ports.RepoManager
	ledger   ports.Ledger
	seeds    ports.SeedSource
	bus      ports.EventBus
	engine   *application.Engine
	svc      application.Service
	adminSvc application.AdminService
}

func (c *Config) String() string {
	clone := *c
	if clone.DbUrl != "" {
		clone.DbUrl = "••••••"
	}
	if clone.RedisUrl != "" {
		clone.RedisUrl = "••••••"
	}
	json, err := json.MarshalIndent(clone, "", "  ")
	if err != nil {
		return fmt.Sprintf("error while marshalling config JSON: %s", err)
	}
	return string(json)
}

var (
	defaultDatadir           = appDataDir("indelibled")
	DefaultPort              = 8080
	defaultDbType            = "badger"
	defaultLedgerType        = "badger"
	defaultLogLevel          = 4
	defaultHeartbeatInterval = 30 * time.Second
	defaultCORSAllowOrigins  = []string{"*"}
)

// env returns a list of strings prefixed with `INDELIBLED_`.
// This is used as a syntax sugar for defining env vars.
func env(values ...string) []string {
	envs := make([]string, len(values))

	for i, value := range values {
		envs[i] = fmt.Sprintf("INDELIBLED_%s", value)
	}

	return envs
}

var (
	Datadir = &cli.StringFlag{
		Usage: "Directory to store data",
		Name:  "datadir", EnvVars: env("DATADIR"),
		Value: defaultDatadir,
	}

	Port = &cli.UintFlag{
		Usage: "Port to listen on",
		Name:  "port", EnvVars: env("PORT"),
		Value: uint(DefaultPort),
	}

	LogLevel = &cli.IntFlag{
		Usage: "Logging level (0-6, where 6 is trace)",
		Name:  "log-level", EnvVars: env("LOG_LEVEL"),
		Value: defaultLogLevel,
	}

	DbType = &cli.StringFlag{
		Usage: "Database type (badger, sqlite, postgres)",
		Name:  "db-type", EnvVars: env("DB_TYPE"),
		Value: defaultDbType,
	}

	DbUrl = &cli.StringFlag{
		Usage: "Postgres connection url if INDELIBLED_DB_TYPE is set to postgres",
		Name:  "pg-db-url", EnvVars: env("PG_DB_URL"),
	}

	NonceStoreType = &cli.StringFlag{
		Usage:       "Store of the consumed signature nonces (redis), fallback to the database if unset",
		Name:        "nonce-store-type",
		EnvVars:     env("NONCE_STORE_TYPE"),
		DefaultText: "value of `INDELIBLED_DB_TYPE`",
	}

	RedisUrl = &cli.StringFlag{
		Usage: "Redis connection url if INDELIBLED_NONCE_STORE_TYPE is set to redis",
		Name:  "redis-url", EnvVars: env("REDIS_URL"),
	}

	LedgerType = &cli.StringFlag{
		Usage: "Ledger of the native value balances (inmemory, badger)",
		Name:  "ledger-type", EnvVars: env("LEDGER_TYPE"),
		Value: defaultLedgerType,
	}

	CollectionFile = &cli.StringFlag{
		Usage: "Path to the yaml, json or toml file the collection is initialized from on first start",
		Name:  "collection-file", EnvVars: env("COLLECTION_FILE"),
	}

	EnableDevLedger = &cli.BoolFlag{
		Usage: "Expose the endpoint crediting any account with native value, for testing only",
		Name:  "enable-dev-ledger", EnvVars: env("ENABLE_DEV_LEDGER"),
	}

	EnableMetrics = &cli.BoolFlag{
		Usage: "Expose prometheus metrics at /metrics",
		Name:  "enable-metrics", EnvVars: env("ENABLE_METRICS"),
		Value: true,
	}

	CORSAllowOrigins = &cli.StringSliceFlag{
		Usage: "Origins allowed to call the http api",
		Name:  "cors-allow-origin", EnvVars: env("CORS_ALLOW_ORIGINS"),
		Value: cli.NewStringSlice(defaultCORSAllowOrigins...),
	}

	HeartbeatInterval = &cli.DurationFlag{
		Usage: "Interval between the heartbeats sent on the event stream",
		Name:  "heartbeat-interval", EnvVars: env("HEARTBEAT_INTERVAL"),
		Value: defaultHeartbeatInterval,
	}
)

var Flags = []cli.Flag{
	Datadir,
	Port,
	LogLevel,
	DbType,
	DbUrl,
	NonceStoreType,
	RedisUrl,
	LedgerType,
	CollectionFile,
	EnableDevLedger,
	EnableMetrics,
	CORSAllowOrigins,
	HeartbeatInterval,
}

func LoadConfig(c *cli.Context) (*Config, error) {
	if err := initDatadir(c); err != nil {
		return nil, fmt.Errorf("failed to create datadir: %s", err)
	}

	datadir := c.String(Datadir.Name)

	var dbUrl string
	if c.String(DbType.Name) == "postgres" {
		dbUrl = c.String(DbUrl.Name)
		if dbUrl == "" {
			return nil, fmt.Errorf("db type set to 'postgres' but db url is missing")
		}
	}

	var redisUrl string
	if c.String(NonceStoreType.Name) == "redis" {
		redisUrl = c.String(RedisUrl.Name)
		if redisUrl == "" {
			return nil, fmt.Errorf("nonce store type set to 'redis' but redis url is missing")
		}
	}

	return &Config{
		Datadir:           datadir,
		Port:              uint32(c.Uint(Port.Name)),
		LogLevel:          c.Int(LogLevel.Name),
		DbType:            c.String(DbType.Name),
		DbDir:             filepath.Join(datadir, "db"),
		DbUrl:             dbUrl,
		NonceStoreType:    c.String(NonceStoreType.Name),
		RedisUrl:          redisUrl,
		LedgerType:        c.String(LedgerType.Name),
		LedgerDir:         datadir,
		CollectionFile:    c.String(CollectionFile.Name),
		EnableDevLedger:   c.Bool(EnableDevLedger.Name),
		EnableMetrics:     c.Bool(EnableMetrics.Name),
		CORSAllowOrigins:  c.StringSlice(CORSAllowOrigins.Name),
		HeartbeatInterval: c.Duration(HeartbeatInterval.Name),
	}, nil
}

func initDatadir(c *cli.Context) error {
	datadir := c.String(Datadir.Name)
	return makeDirectoryIfNotExists(datadir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0o755)
	}
	return nil
}

func appDataDir(appName string) string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appName)
	}
	return filepath.Join(".", "."+appName)
}

func (c *Config) Validate() error {
	if !supportedDbs.supports(c.DbType) {
		return fmt.Errorf("db type not supported, please select one of: %s", supportedDbs)
	}
	if len(c.NonceStoreType) > 0 && c.NonceStoreType != c.DbType &&
		!supportedNonceStores.supports(c.NonceStoreType) {
		return fmt.Errorf(
			"nonce store type not supported, please select one of: %s", supportedNonceStores,
		)
	}
	if !supportedLedgers.supports(c.LedgerType) {
		return fmt.Errorf("ledger type not supported, please select one of: %s", supportedLedgers)
	}
	if c.EnableDevLedger {
		log.Warn("dev ledger enabled, anyone can credit any account")
	}

	if err := c.repoManager(); err != nil {
		return err
	}
	if err := c.ledgerService(); err != nil {
		return err
	}
	c.seeds = seed.NewRandomSource()
	c.bus = watermillbus.NewEventBus()
	c.engine = application.NewEngine(c.repo, c.ledger, c.seeds).WithEventBus(c.bus)
	c.svc = application.NewService(c.engine)
	c.adminSvc = application.NewAdminService(c.engine)

	return c.initCollection()
}

func (c *Config) AppService() application.Service {
	return c.svc
}

func (c *Config) AdminService() application.AdminService {
	return c.adminSvc
}

func (c *Config) LedgerService() ports.Ledger {
	return c.ledger
}

func (c *Config) EventBus() ports.EventBus {
	return c.bus
}

// Close releases the stores, the ledger and the event bus.
func (c *Config) Close() {
	if c.engine != nil {
		c.engine.Close()
	}
}

func (c *Config) repoManager() error {
	var dataStoreConfig []interface{}
	logger := log.New()

	switch c.DbType {
	case "badger":
		dataStoreConfig = []interface{}{c.DbDir, logger}
	case "sqlite":
		if err := makeDirectoryIfNotExists(c.DbDir); err != nil {
			return fmt.Errorf("failed to create db dir: %s", err)
		}
		dataStoreConfig = []interface{}{c.DbDir}
	case "postgres":
		dataStoreConfig = []interface{}{c.DbUrl, true}
	default:
		return fmt.Errorf("unknown db type")
	}

	var nonceStoreConfig []interface{}
	if c.NonceStoreType == "redis" {
		nonceStoreConfig = []interface{}{c.RedisUrl}
	}

	svc, err := db.NewService(db.ServiceConfig{
		DataStoreType:    c.DbType,
		NonceStoreType:   c.NonceStoreType,
		DataStoreConfig:  dataStoreConfig,
		NonceStoreConfig: nonceStoreConfig,
	})
	if err != nil {
		return err
	}

	c.repo = svc
	return nil
}

func (c *Config) ledgerService() error {
	var svc ports.Ledger
	var err error
	switch c.LedgerType {
	case "inmemory":
		svc = inmemoryledger.NewLedger()
	case "badger":
		svc, err = badgerledger.NewLedger(c.LedgerDir, log.New())
	default:
		err = fmt.Errorf("unknown ledger type")
	}
	if err != nil {
		return err
	}

	c.ledger = svc
	return nil
}

// initCollection initializes the collection from CollectionFile unless it
// already exists.
func (c *Config) initCollection() error {
	if c.CollectionFile == "" {
		return nil
	}

	ctx := context.Background()
	existing, err := c.repo.Collection().Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to get collection: %s", err)
	}
	if existing != nil {
		log.Debugf("collection %s already initialized, skipping %s", existing.Name, c.CollectionFile)
		return nil
	}

	collection, err := LoadCollection(c.CollectionFile)
	if err != nil {
		return err
	}
	if err := c.adminSvc.InitCollection(ctx, *collection); err != nil {
		return fmt.Errorf("failed to init collection: %s", err)
	}
	return nil
}

type supportedType map[string]struct{}

func (t supportedType) String() string {
	types := make([]string, 0, len(t))
	for tt := range t {
		types = append(types, tt)
	}
	return strings.Join(types, " | ")
}

func (t supportedType) supports(typeStr string) bool {
	_, ok := t[typeStr]
	return ok
}
