package db

import (
	"embed"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/indelible-labs/indelibled/internal/core/domain"
	"github.com/indelible-labs/indelibled/internal/core/ports"
	badgerdb "github.com/indelible-labs/indelibled/internal/infrastructure/db/badger"
	redisdb "github.com/indelible-labs/indelibled/internal/infrastructure/db/redis"
	sqldb "github.com/indelible-labs/indelibled/internal/infrastructure/db/sql"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

//go:embed sql/migration/sqlite/*
var sqliteMigrations embed.FS

//go:embed sql/migration/postgres/*
var pgMigrations embed.FS

var (
	collectionStoreTypes = map[string]func(...interface{}) (domain.CollectionRepository, error){
		"badger":   badgerdb.NewCollectionRepository,
		"sqlite":   sqldb.NewCollectionRepository,
		"postgres": sqldb.NewCollectionRepository,
	}
	assetStoreTypes = map[string]func(...interface{}) (domain.AssetRepository, error){
		"badger":   badgerdb.NewAssetRepository,
		"sqlite":   sqldb.NewAssetRepository,
		"postgres": sqldb.NewAssetRepository,
	}
	tokenStoreTypes = map[string]func(...interface{}) (domain.TokenRepository, error){
		"badger":   badgerdb.NewTokenRepository,
		"sqlite":   sqldb.NewTokenRepository,
		"postgres": sqldb.NewTokenRepository,
	}
	nonceStoreTypes = map[string]func(...interface{}) (domain.NonceRepository, error){
		"badger":   badgerdb.NewNonceRepository,
		"sqlite":   sqldb.NewNonceRepository,
		"postgres": sqldb.NewNonceRepository,
		"redis":    redisdb.NewNonceRepository,
	}
)

const (
	sqliteDbFile = "sqlite.db"
)

// ServiceConfig selects the backends of the repositories.
//
// DataStoreConfig depends on DataStoreType:
//   - badger: base directory (empty for in-memory), badger.Logger or nil
//   - sqlite: base directory
//   - postgres: DSN, auto-create flag
//
// NonceStoreType defaults to DataStoreType. For redis, NonceStoreConfig
// carries the redis url and, optionally, a key namespace.
type ServiceConfig struct {
	DataStoreType  string
	NonceStoreType string

	DataStoreConfig  []interface{}
	NonceStoreConfig []interface{}
}

type service struct {
	collectionStore domain.CollectionRepository
	assetStore      domain.AssetRepository
	tokenStore      domain.TokenRepository
	nonceStore      domain.NonceRepository
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	collectionStoreFactory, ok := collectionStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}
	assetStoreFactory := assetStoreTypes[config.DataStoreType]
	tokenStoreFactory := tokenStoreTypes[config.DataStoreType]

	nonceStoreType := config.NonceStoreType
	if nonceStoreType == "" {
		nonceStoreType = config.DataStoreType
	}
	nonceStoreFactory, ok := nonceStoreTypes[nonceStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid nonce store type: %s", nonceStoreType)
	}

	var (
		storeConfig []interface{}
		err         error
	)
	switch config.DataStoreType {
	case "badger":
		storeConfig = config.DataStoreConfig

	case "postgres":
		if len(config.DataStoreConfig) != 2 {
			return nil, fmt.Errorf("invalid data store config for postgres")
		}

		dsn, ok := config.DataStoreConfig[0].(string)
		if !ok {
			return nil, fmt.Errorf("invalid DSN for postgres")
		}

		autoCreate, ok := config.DataStoreConfig[1].(bool)
		if !ok {
			return nil, fmt.Errorf("invalid autocreate flag for postgres")
		}

		db, err := sqldb.OpenPostgresDb(dsn, autoCreate)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres db: %s", err)
		}

		driver, err := migratepg.WithInstance(db, &migratepg.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to init postgres migration driver: %s", err)
		}
		if err := runMigrations(driver, pgMigrations, "sql/migration/postgres", "postgres"); err != nil {
			return nil, err
		}

		storeConfig = []interface{}{db, sqldb.Postgres}

	case "sqlite":
		if len(config.DataStoreConfig) != 1 {
			return nil, fmt.Errorf("invalid data store config")
		}

		baseDir, ok := config.DataStoreConfig[0].(string)
		if !ok {
			return nil, fmt.Errorf("invalid base directory")
		}

		db, err := sqldb.OpenSqliteDb(filepath.Join(baseDir, sqliteDbFile))
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %s", err)
		}

		driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to init driver: %s", err)
		}
		if err := runMigrations(driver, sqliteMigrations, "sql/migration/sqlite", "indelibledb"); err != nil {
			return nil, err
		}

		storeConfig = []interface{}{db, sqldb.Sqlite}
	}

	svc := &service{}
	if svc.collectionStore, err = collectionStoreFactory(storeConfig...); err != nil {
		return nil, fmt.Errorf("failed to open collection store: %s", err)
	}
	if svc.assetStore, err = assetStoreFactory(storeConfig...); err != nil {
		return nil, fmt.Errorf("failed to open asset store: %s", err)
	}
	if svc.tokenStore, err = tokenStoreFactory(storeConfig...); err != nil {
		return nil, fmt.Errorf("failed to open token store: %s", err)
	}

	nonceStoreConfig := storeConfig
	if nonceStoreType == "redis" {
		if nonceStoreConfig, err = redisNonceStoreConfig(config.NonceStoreConfig); err != nil {
			return nil, err
		}
	} else if nonceStoreType != config.DataStoreType {
		return nil, fmt.Errorf(
			"nonce store type %s must match data store type %s", nonceStoreType, config.DataStoreType,
		)
	}
	if svc.nonceStore, err = nonceStoreFactory(nonceStoreConfig...); err != nil {
		return nil, fmt.Errorf("failed to open nonce store: %s", err)
	}

	return svc, nil
}

func (s *service) Collection() domain.CollectionRepository {
	return s.collectionStore
}

func (s *service) Assets() domain.AssetRepository {
	return s.assetStore
}

func (s *service) Tokens() domain.TokenRepository {
	return s.tokenStore
}

func (s *service) Nonces() domain.NonceRepository {
	return s.nonceStore
}

func (s *service) Close() {
	s.collectionStore.Close()
	s.assetStore.Close()
	s.tokenStore.Close()
	s.nonceStore.Close()
}

func runMigrations(driver database.Driver, fs embed.FS, dir, dbName string) error {
	source, err := iofs.New(fs, dir)
	if err != nil {
		return fmt.Errorf("failed to embed migrations: %s", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dbName, driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %s", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %s", err)
	}
	version, _, _ := m.Version()
	log.Debugf("%s db schema at version %d", dbName, version)
	return nil
}

func redisNonceStoreConfig(config []interface{}) ([]interface{}, error) {
	if len(config) < 1 {
		return nil, fmt.Errorf("invalid nonce store config for redis")
	}
	redisURL, ok := config[0].(string)
	if !ok {
		return nil, fmt.Errorf("invalid redis url")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %s", err)
	}
	return append([]interface{}{redis.NewClient(opts)}, config[1:]...), nil
}
