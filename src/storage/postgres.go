package storage

import (
	"time"

	"github.com/Guide5210/Tensiometer-Arduino/src/logger"
	"github.com/Guide5210/Tensiometer-Arduino/src/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sqlx.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	return &PostgresDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	db, err := sqlx.Connect("postgres", d.Config.Storage.DBConnectionString)
	if err != nil {
		return err
	}

	d.DB = db

	return d.createTables()
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			profile TEXT,
			speed_mm_s DOUBLE PRECISION,
			peak_force DOUBLE PRECISION,
			sample_count INTEGER,
			duration DOUBLE PRECISION,
			created_at TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS samples (
			run_id TEXT,
			seq INTEGER,
			elapsed DOUBLE PRECISION,
			force DOUBLE PRECISION,
			position DOUBLE PRECISION,
			PRIMARY KEY (run_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS profile_stats (
			profile TEXT PRIMARY KEY,
			run_count INTEGER,
			mean_peak DOUBLE PRECISION,
			std_peak DOUBLE PRECISION,
			rsd_percent DOUBLE PRECISION,
			min_peak DOUBLE PRECISION,
			max_peak DOUBLE PRECISION,
			updated_at TIMESTAMPTZ
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

func (d *PostgresDB) SaveRuns(aggs []*models.MTestAggregate) error {
	if len(aggs) == 0 {
		return nil
	}

	tx, err := d.DB.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	runStmt, err := tx.Prepare(`
		INSERT INTO runs (id, profile, speed_mm_s, peak_force, sample_count, duration, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer runStmt.Close()

	sampleStmt, err := tx.Prepare(`
		INSERT INTO samples (run_id, seq, elapsed, force, position)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (run_id, seq) DO NOTHING
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

func (d *PostgresDB) SaveStatistics(stats map[string]models.MStatistics) error {
	if len(stats) == 0 {
		return nil
	}

	tx, err := d.DB.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO profile_stats (profile, run_count, mean_peak, std_peak, rsd_percent, min_peak, max_peak, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (profile) DO UPDATE SET
			run_count = EXCLUDED.run_count,
			mean_peak = EXCLUDED.mean_peak,
			std_peak = EXCLUDED.std_peak,
			rsd_percent = EXCLUDED.rsd_percent,
			min_peak = EXCLUDED.min_peak,
			max_peak = EXCLUDED.max_peak,
			updated_at = EXCLUDED.updated_at
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

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
