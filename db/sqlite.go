package db

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists prediction history and training runs.
type Store struct {
	database *sql.DB
}

// Open opens (and creates) the SQLite database at path.
func Open(path string) (*Store, error) {
	database, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	query := `
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        radius REAL NOT NULL,
        eq_temp REAL NOT NULL,
        insolation REAL NOT NULL,
        stellar_temp REAL NOT NULL,
        predicted_label INTEGER NOT NULL,
        probability REAL NOT NULL,
        source VARCHAR(20),
        created_at DATETIME NOT NULL
    );
    CREATE TABLE IF NOT EXISTS training_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        model_name VARCHAR(50),
        model_path TEXT,
        accuracy REAL,
        precision REAL,
        recall REAL,
        f1 REAL,
        trained_at DATETIME,
        data_points INTEGER,
        habitable INTEGER
    );
    `
	if _, err := database.Exec(query); err != nil {
		database.Close()
		return nil, err
	}
	return &Store{database: database}, nil
}

// Close 关闭数据库
func (s *Store) Close() error {
	if s == nil || s.database == nil {
		return nil
	}
	return s.database.Close()
}

// PredictionRecord one served prediction.
type PredictionRecord struct {
	ID             int64     `json:"id"`
	Radius         float64   `json:"radius"`
	EqTemp         float64   `json:"temp"`
	Insolation     float64   `json:"flux"`
	StellarTemp    float64   `json:"star_temp"`
	PredictedLabel int       `json:"prediction"`
	Probability    float64   `json:"probability"`
	Source         string    `json:"source"`
	CreatedAt      time.Time `json:"created_at"`
}

func (s *Store) SavePrediction(p PredictionRecord) error {
	if s == nil || s.database == nil {
		return errors.New("database not initialized")
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.database.Exec(`
        INSERT INTO predictions (
            radius, eq_temp, insolation, stellar_temp,
            predicted_label, probability, source, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `,
		p.Radius,
		p.EqTemp,
		p.Insolation,
		p.StellarTemp,
		p.PredictedLabel,
		p.Probability,
		p.Source,
		p.CreatedAt,
	)
	return err
}

// QueryPredictions returns the latest predictions, newest first.
func (s *Store) QueryPredictions(limit int) ([]PredictionRecord, error) {
	if s == nil || s.database == nil {
		return nil, errors.New("database not initialized")
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.database.Query(`
        SELECT id, radius, eq_temp, insolation, stellar_temp,
               predicted_label, probability, source, created_at
        FROM predictions
        ORDER BY id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]PredictionRecord, 0)
	for rows.Next() {
		var p PredictionRecord
		var source sql.NullString
		if err := rows.Scan(&p.ID, &p.Radius, &p.EqTemp, &p.Insolation, &p.StellarTemp,
			&p.PredictedLabel, &p.Probability, &source, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Source = source.String
		records = append(records, p)
	}
	return records, rows.Err()
}

type TrainingLog struct {
	ModelName  string    `json:"model_name"`
	ModelPath  string    `json:"model_path"`
	Accuracy   float64   `json:"accuracy"`
	Precision  float64   `json:"precision"`
	Recall     float64   `json:"recall"`
	F1         float64   `json:"f1"`
	TrainedAt  time.Time `json:"trained_at"`
	DataPoints int       `json:"data_points"`
	Habitable  int       `json:"habitable"`
}

func (s *Store) SaveTrainingLog(log TrainingLog) error {
	if s == nil || s.database == nil {
		return errors.New("database not initialized")
	}
	if log.TrainedAt.IsZero() {
		log.TrainedAt = time.Now().UTC()
	}
	_, err := s.database.Exec(`
        INSERT INTO training_log (
            model_name, model_path, accuracy, precision, recall, f1,
            trained_at, data_points, habitable
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `,
		log.ModelName,
		log.ModelPath,
		log.Accuracy,
		log.Precision,
		log.Recall,
		log.F1,
		log.TrainedAt,
		log.DataPoints,
		log.Habitable,
	)
	return err
}

func (s *Store) LoadTrainingLog() ([]TrainingLog, error) {
	if s == nil || s.database == nil {
		return nil, errors.New("database not initialized")
	}
	rows, err := s.database.Query(`
        SELECT model_name, model_path, accuracy, precision, recall, f1,
               trained_at, data_points, habitable
        FROM training_log
        ORDER BY trained_at DESC, id DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]TrainingLog, 0)
	for rows.Next() {
		var log TrainingLog
		var modelPath sql.NullString
		if err := rows.Scan(&log.ModelName, &modelPath, &log.Accuracy, &log.Precision, &log.Recall, &log.F1,
			&log.TrainedAt, &log.DataPoints, &log.Habitable); err != nil {
			return nil, err
		}
		log.ModelPath = modelPath.String
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
