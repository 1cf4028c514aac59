// Package audit keeps an opt-in SQLite record of every external command run
// by a shell session. It is write-mostly and never feeds the history builtin.
package audit

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrNoSession = errors.New("run has no session id")

type Log struct {
	db *gorm.DB
}

// Run is one external command as the shell executed it. Rows are written
// once, after the child has been waited for.
type Run struct {
	ID        uint   `gorm:"primarykey"`
	SessionID string `gorm:"uniqueIndex:idx_session_seq,priority:1"`
	// Seq numbers the runs of a session from 1.
	Seq int `gorm:"uniqueIndex:idx_session_seq,priority:2"`

	Line      string
	Program   string
	Directory string
	// Redirect is the clause the run was wired through, such as "2> err.txt".
	Redirect string
	Replay   bool `gorm:"index"`

	StartedAt time.Time
	Duration  time.Duration
	Status    int
}

func Open(dbFilePath string) (*Log, error) {
	connectionString := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbFilePath)

	db, err := gorm.Open(sqlite.Open(connectionString), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening audit database: %w", err)
	}

	if err := db.AutoMigrate(&Run{}); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// Seq allocation relies on a single writer connection.
	sqlDB.SetMaxOpenConns(1)

	return &Log{db: db}, nil
}

// Close closes the database connection.
func (l *Log) Close() error {
	if l.db == nil {
		return nil
	}
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Record stores run and assigns its ID and Seq.
func (l *Log) Record(run *Run) error {
	if run.SessionID == "" {
		return ErrNoSession
	}

	return l.db.Transaction(func(tx *gorm.DB) error {
		var last int
		err := tx.Model(&Run{}).
			Where("session_id = ?", run.SessionID).
			Select("COALESCE(MAX(seq), 0)").
			Scan(&last).Error
		if err != nil {
			return err
		}

		run.Seq = last + 1
		return tx.Create(run).Error
	})
}

// Session returns the runs of one session in execution order.
func (l *Log) Session(sessionID string) ([]Run, error) {
	var runs []Run
	result := l.db.Where("session_id = ?", sessionID).Order("seq asc").Find(&runs)
	if result.Error != nil {
		return nil, result.Error
	}
	return runs, nil
}

// Replays returns the runs of one session that came from the history builtin.
func (l *Log) Replays(sessionID string) ([]Run, error) {
	var runs []Run
	result := l.db.Where("session_id = ? AND replay = ?", sessionID, true).Order("seq asc").Find(&runs)
	if result.Error != nil {
		return nil, result.Error
	}
	return runs, nil
}

func (l *Log) Count() (int64, error) {
	var count int64
	result := l.db.Model(&Run{}).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}
