package storage

import (
	"database/sql"
	"time"

	"github.com/Guide5210/Tensiometer-Arduino/src/logger"
	"github.com/Guide5210/Tensiometer-Arduino/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*SQLiteDB, error) {
	return &SQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Initialize() error {
	dsn := d.Config.Storage.DBPath

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) createTables() error {
	// SQLite types: INTEGER for int64, REAL for float64, TEXT for string
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			profile TEXT,
			speed_mm_s REAL,
			peak_force REAL,
			sample_count INTEGER,
			duration REAL,
			created_at TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS samples (
			run_id TEXT,
			seq INTEGER,
			elapsed REAL,
			force REAL,
			position REAL,
			PRIMARY KEY (run_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS profile_stats (
			profile TEXT PRIMARY KEY,
			run_count INTEGER,
			mean_peak REAL,
			std_peak REAL,
			rsd_percent REAL,
			min_peak REAL,
			max_peak REAL,
			updated_at TIMESTAMP
		);`,
	}

	for _, q := range queries {
		if _, err := d.DB.Exec(q); err != nil {
			return err
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) SaveRuns(aggs []*models.MTestAggregate) error {
	if len(aggs) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	runStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO runs (id, profile, speed_mm_s, peak_force, sample_count, duration, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer runStmt.Close()

	sampleStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO samples (run_id, seq, elapsed, force, position)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer sampleStmt.Close()

	for _, agg := range aggs {
		for _, run := range agg.Runs {
			if _, err := runStmt.Exec(run.ID, run.ProfileName, run.SpeedMMs, run.PeakForce, len(run.Samples), run.Duration, run.CreatedAt); err != nil {
				return err
			}

			for i, s := range run.Samples {
				if _, err := sampleStmt.Exec(run.ID, i, s.Elapsed, s.Force, s.Position); err != nil {
					return err
				}
			}
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) SaveStatistics(stats map[string]models.MStatistics) error {
	if len(stats) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO profile_stats (profile, run_count, mean_peak, std_peak, rsd_percent, min_peak, max_peak, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (profile) DO UPDATE SET
			run_count = excluded.run_count,
			mean_peak = excluded.mean_peak,
			std_peak = excluded.std_peak,
			rsd_percent = excluded.rsd_percent,
			min_peak = excluded.min_peak,
			max_peak = excluded.max_peak,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for profile, s := range stats {
		if _, err := stmt.Exec(profile, s.RunCount, s.Mean, s.Std, s.RSDPercent, s.Min, s.Max, time.Now().UTC()); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
