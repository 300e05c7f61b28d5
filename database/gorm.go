package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sahilchouksey/examace-vault/config"
	"github.com/sahilchouksey/examace-vault/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage is the lifecycle surface the app needs from a database backend
type Storage interface {
	Init() error
	Close() error
	HealthCheck(ctx context.Context) error
	DB() *gorm.DB
}

type GORMStore struct {
	db  *gorm.DB
	log zerolog.Logger
}

// DSN builds the PostgreSQL connection string from the environment
func DSN(env *config.EnvironmentVariable) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		env.DB_HOST,
		env.DB_USER_NAME,
		env.DB_PASSWORD,
		env.DB_NAME,
		env.DB_PORT,
		env.DB_SSL_MODE,
	)
}

// StartGORM opens the PostgreSQL connection. The returned store is the
// single backend client of the process; pass DB() to every repository.
func StartGORM(env *config.EnvironmentVariable, log zerolog.Logger) (*GORMStore, error) {
	gormLogger := logger.Default.LogMode(logger.Warn)
	if env.IsProduction() {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	db, err := gorm.Open(postgres.Open(DSN(env)), &gorm.Config{
		Logger:         gormLogger,
		PrepareStmt:    true,
		TranslateError: true, // unique violations surface as gorm.ErrDuplicatedKey
	})
	if err != nil {
		log.Error().Err(err).Msg("unable to connect to PostgreSQL")
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info().Str("host", env.DB_HOST).Str("db", env.DB_NAME).Msg("connected to PostgreSQL")
	return NewGORMStore(db, log), nil
}

// NewGORMStore wraps an already opened connection
func NewGORMStore(db *gorm.DB, log zerolog.Logger) *GORMStore {
	return &GORMStore{db: db, log: log}
}

// Models lists every table the service owns, parents first
func Models() []interface{} {
	return []interface{}{
		&model.University{},
		&model.Degree{},
		&model.Semester{},
		&model.Subject{},
		&model.Resource{},
		&model.SolvedArticle{},
		&model.Subscriber{},
		&model.ContactMessage{},
		&model.CronJobLog{},
	}
}

// Init runs AutoMigrate for all models
func (s *GORMStore) Init() error {
	// gen_random_uuid() is built in from PostgreSQL 13; older servers need pgcrypto
	if err := s.db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		s.log.Warn().Err(err).Msg("could not ensure pgcrypto extension")
	}

	if err := s.db.AutoMigrate(Models()...); err != nil {
		s.log.Error().Err(err).Msg("AutoMigrate failed")
		return err
	}

	s.log.Info().Int("models", len(Models())).Msg("AutoMigrate completed")
	return nil
}

// Close closes the database connection
func (s *GORMStore) Close() error {
	s.log.Info().Msg("closing PostgreSQL connection")
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DB returns the GORM handle for repositories, services and handlers
func (s *GORMStore) DB() *gorm.DB {
	return s.db
}

// HealthCheck verifies the database connection is alive
func (s *GORMStore) HealthCheck(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
