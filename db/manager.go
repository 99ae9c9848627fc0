package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
	"yatube/config"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
	"gorm.io/plugin/dbresolver"
	"gorm.io/plugin/opentelemetry/tracing"
)

var ORM *gorm.DB

func dsnFromConfig(dbConf config.DBConfig) string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		dbConf.Host, dbConf.Port, dbConf.User, dbConf.Password, dbConf.DBName,
	)
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
			NoLowerCase:   false,
		},
		// Нарушения уникальности приходят как gorm.ErrDuplicatedKey
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		Logger: logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

func ConnectDB() (err error) {
	if ORM != nil {
		log.Println("ORM is already initialized")
		return nil
	}

	var conf = config.AppConfig
	if conf == nil {
		return fmt.Errorf("AppConfig is not loaded")
	}

	var database *gorm.DB
	switch conf.Databases.Driver {
	case "sqlite":
		database, err = OpenSQLite(conf.Databases.SQLitePath)
	case "postgres":
		database, err = openPostgres(conf)
	default:
		err = fmt.Errorf("unknown database driver %q", conf.Databases.Driver)
	}
	if err != nil {
		return err
	}

	// Запросы становятся спанами, если включена трассировка
	if conf.Telemetry.Endpoint != "" {
		if err = database.Use(tracing.NewPlugin()); err != nil {
			return fmt.Errorf("failed to enable gorm tracing: %w", err)
		}
	}

	if err = Migrate(database); err != nil {
		return err
	}

	ORM = database
	return nil
}

func openPostgres(conf *config.ConfigSchema) (*gorm.DB, error) {
	if conf.Databases.Master.Host == "" {
		return nil, fmt.Errorf("Master database configuration is missing")
	}

	// Initialize the ORM with the master database
	masterDSN := dsnFromConfig(conf.Databases.Master)
	// Init replicas
	replicaDSNs := make([]gorm.Dialector, 0, len(conf.Databases.Replicas))
	for _, r := range conf.Databases.Replicas {
		replicaDSNs = append(replicaDSNs, postgres.Open(dsnFromConfig(r)))
	}

	database, err := gorm.Open(postgres.Open(masterDSN), gormConfig())
	if err != nil {
		return nil, err
	}

	if len(replicaDSNs) > 0 {
		err = database.Use(dbresolver.Register(dbresolver.Config{
			Replicas: replicaDSNs,
			Policy:   dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, err
		}
	}
	return database, nil
}

// OpenSQLite открывает sqlite базу (файл или ":memory:") с включенными внешними ключами.
// Соединение одно: in-memory база живет ровно столько, сколько живет соединение.
func OpenSQLite(path string) (*gorm.DB, error) {
	database, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, err
	}
	sqlDB, err := database.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err = database.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return database, nil
}

// Close закрывает соединение и сбрасывает глобальный ORM
func Close() error {
	if ORM == nil {
		return nil
	}
	sqlDB, err := ORM.DB()
	ORM = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetReadOnlyDB возвращает подключение для чтения (слейвы)
func GetReadOnlyDB(ctx context.Context) *gorm.DB {
	return ORM.WithContext(ctx).Clauses(dbresolver.Read)
}

// GetWriteDB возвращает подключение для записи (мастер)
func GetWriteDB(ctx context.Context) *gorm.DB {
	return ORM.WithContext(ctx).Clauses(dbresolver.Write)
}

// IsDuplicateKey сообщает, что запись нарушила уникальный индекс
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
