package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // Postgres driver, registered as "pgx"
	_ "github.com/mattn/go-sqlite3"    // SQLite driver
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"gwi.com/tutorgen/internal/logger"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type Store struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

// Open connects to the database named by driver and dsn and migrates the schema.
func Open(driver, dataSourceName string, log *logger.Logger) (*Store, error) {
	sqlDB, dialector, err := openDialector(driver, dataSourceName)
	if err != nil {
		return nil, err
	}

	logLevel := gormLogger.Silent
	if log.IsDebug() {
		logLevel = gormLogger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  gormLogger.Default.LogMode(logLevel),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to open gorm session: %w", err)
	}

	store := New(db, log)
	if err := store.initSchema(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	log.Info("Database ready", "driver", driver)
	return store, nil
}

func openDialector(driver, dataSourceName string) (*sql.DB, gorm.Dialector, error) {
	switch driver {
	case DriverSQLite, "":
		db, err := sql.Open("sqlite3", dataSourceName)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		// SQLite serializes writers; a single connection also keeps :memory: databases intact.
		db.SetMaxOpenConns(1)
		if err = db.Ping(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}
		if _, err = db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		return db, sqlite.New(sqlite.Config{DriverName: "sqlite3", Conn: db}), nil
	case DriverPostgres:
		db, err := sql.Open("pgx", dataSourceName)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err = db.Ping(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return db, postgres.New(postgres.Config{Conn: db}), nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// New wraps an already opened gorm session. The schema is not migrated.
func New(db *gorm.DB, log *logger.Logger) *Store {
	return &Store{
		db:  db,
		log: log.With("component", "Store"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the source of store-assigned timestamps.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) initSchema() error {
	return s.db.AutoMigrate(&Tutorial{}, &Step{}, &Message{})
}

// WithTx runs fn against a store bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, log: s.log, now: s.now})
	})
}

// Tutorial methods
func (s *Store) CreateTutorial(ctx context.Context, topic string) (*Tutorial, error) {
	tutorial := &Tutorial{
		ID:        uuid.NewString(),
		Topic:     topic,
		CreatedAt: s.now(),
	}
	if err := s.db.WithContext(ctx).Create(tutorial).Error; err != nil {
		return nil, fmt.Errorf("failed to insert tutorial: %w", err)
	}
	return tutorial, nil
}

func (s *Store) GetTutorial(ctx context.Context, id string) (*Tutorial, error) {
	var tutorial Tutorial
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&tutorial).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get tutorial: %w", err)
	}
	return &tutorial, nil
}

func (s *Store) ListTutorials(ctx context.Context) ([]Tutorial, error) {
	tutorials := []Tutorial{}
	err := s.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&tutorials).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query tutorials: %w", err)
	}
	return tutorials, nil
}

// Step methods

// CreateSteps inserts all rows in one statement and returns them re-read in
// step_order with empty conversations. Store-assigned ids overwrite any ids
// already present.
func (s *Store) CreateSteps(ctx context.Context, steps []Step) ([]Step, error) {
	if len(steps) == 0 {
		return []Step{}, nil
	}

	rows := make([]Step, len(steps))
	ids := make([]string, len(steps))
	for i, step := range steps {
		step.ID = uuid.NewString()
		step.Messages = nil
		rows[i] = step
		ids[i] = step.ID
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to insert steps: %w", err)
	}

	inserted := []Step{}
	err := s.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("tutorial_id ASC").
		Order("step_order ASC").
		Find(&inserted).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read back inserted steps: %w", err)
	}
	for i := range inserted {
		inserted[i].Messages = []Message{}
	}
	return inserted, nil
}

func (s *Store) GetStep(ctx context.Context, id string) (*Step, error) {
	var step Step
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&step).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get step: %w", err)
	}
	return &step, nil
}

// ListSteps returns a tutorial's steps in step_order with each step's
// messages preloaded oldest first.
func (s *Store) ListSteps(ctx context.Context, tutorialID string) ([]Step, error) {
	steps := []Step{}
	err := s.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC").Order("id ASC")
		}).
		Where("tutorial_id = ?", tutorialID).
		Order("step_order ASC").
		Find(&steps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query steps: %w", err)
	}
	for i := range steps {
		if steps[i].Messages == nil {
			steps[i].Messages = []Message{}
		}
	}
	return steps, nil
}

// Message methods
func (s *Store) CreateMessage(ctx context.Context, stepID, role, content string) (*Message, error) {
	if role != RoleUser && role != RoleAssistant {
		return nil, fmt.Errorf("invalid message role %q", role)
	}
	msg := &Message{
		ID:        uuid.NewString(),
		StepID:    stepID,
		Role:      role,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}
	return msg, nil
}

func (s *Store) ListMessages(ctx context.Context, stepID string) ([]Message, error) {
	messages := []Message{}
	err := s.db.WithContext(ctx).
		Where("step_id = ?", stepID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	return messages, nil
}
