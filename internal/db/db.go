// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

// Package db persists analysis reports and edit audit trails in a
// local SQLite database so forensic sessions survive across runs.
package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dotandev/simantix/internal/bhav"
	"github.com/dotandev/simantix/internal/errors"
)

// Report is one stored validation or analysis run.
type Report struct {
	ID          int64             `json:"id"`
	GraphID     uint16            `json:"graph_id"`
	Kind        string            `json:"kind"`
	Diagnostics []bhav.Diagnostic `json:"diagnostics"`
	Metrics     json.RawMessage   `json:"metrics,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// Audit is one committed rewiring operation.
type Audit struct {
	ID        int64     `json:"id"`
	GraphID   uint16    `json:"graph_id"`
	Operation string    `json:"operation"`
	Log       []string  `json:"log"`
	Warnings  []string  `json:"warnings"`
	Timestamp time.Time `json:"timestamp"`
}

// Store handles database operations.
type Store struct {
	db *sql.DB
}

// Open initializes the SQLite database at path, creating parent
// directories and the schema when needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.WrapStoreFailed(err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapStoreFailed(err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		graph_id INTEGER NOT NULL,
		kind TEXT NOT NULL,
		diagnostics TEXT,
		metrics TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_reports_graph ON reports(graph_id);
	CREATE TABLE IF NOT EXISTS audits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		graph_id INTEGER NOT NULL,
		operation TEXT NOT NULL,
		log TEXT,
		warnings TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audits_graph ON audits(graph_id);
	`
	if _, err := db.Exec(query); err != nil {
		return errors.WrapStoreFailed(fmt.Errorf("init schema: %w", err))
	}
	return nil
}

// SaveReport persists one run and returns its row id.
func (s *Store) SaveReport(r *Report) (int64, error) {
	diagJSON, err := json.Marshal(r.Diagnostics)
	if err != nil {
		return 0, errors.WrapStoreFailed(err)
	}
	res, err := s.db.Exec(
		`INSERT INTO reports (graph_id, kind, diagnostics, metrics) VALUES (?, ?, ?, ?)`,
		int64(r.GraphID), r.Kind, string(diagJSON), string(r.Metrics))
	if err != nil {
		return 0, errors.WrapStoreFailed(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.WrapStoreFailed(err)
	}
	return id, nil
}

// SaveAudit appends one committed edit to the audit trail.
func (s *Store) SaveAudit(a *Audit) (int64, error) {
	logJSON, err := json.Marshal(a.Log)
	if err != nil {
		return 0, errors.WrapStoreFailed(err)
	}
	warnJSON, err := json.Marshal(a.Warnings)
	if err != nil {
		return 0, errors.WrapStoreFailed(err)
	}
	res, err := s.db.Exec(
		`INSERT INTO audits (graph_id, operation, log, warnings) VALUES (?, ?, ?, ?)`,
		int64(a.GraphID), a.Operation, string(logJSON), string(warnJSON))
	if err != nil {
		return 0, errors.WrapStoreFailed(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.WrapStoreFailed(err)
	}
	return id, nil
}

// ListReports returns the most recent runs, newest first.
func (s *Store) ListReports(limit int) ([]Report, error) {
	rows, err := s.db.Query(
		`SELECT id, graph_id, kind, diagnostics, metrics, timestamp
		 FROM reports ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.WrapStoreFailed(err)
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		var (
			r        Report
			graphID  int64
			diagJSON string
			metrics  sql.NullString
		)
		if err := rows.Scan(&r.ID, &graphID, &r.Kind, &diagJSON, &metrics, &r.Timestamp); err != nil {
			return nil, errors.WrapStoreFailed(err)
		}
		r.GraphID = uint16(graphID)
		if diagJSON != "" {
			if err := json.Unmarshal([]byte(diagJSON), &r.Diagnostics); err != nil {
				return nil, errors.WrapStoreFailed(err)
			}
		}
		if metrics.Valid && metrics.String != "" {
			r.Metrics = json.RawMessage(metrics.String)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetReport fetches one stored run by row id.
func (s *Store) GetReport(id int64) (*Report, error) {
	row := s.db.QueryRow(
		`SELECT id, graph_id, kind, diagnostics, metrics, timestamp FROM reports WHERE id = ?`, id)
	var (
		r        Report
		graphID  int64
		diagJSON string
		metrics  sql.NullString
	)
	if err := row.Scan(&r.ID, &graphID, &r.Kind, &diagJSON, &metrics, &r.Timestamp); err != nil {
		return nil, errors.WrapStoreFailed(err)
	}
	r.GraphID = uint16(graphID)
	if diagJSON != "" {
		if err := json.Unmarshal([]byte(diagJSON), &r.Diagnostics); err != nil {
			return nil, errors.WrapStoreFailed(err)
		}
	}
	if metrics.Valid && metrics.String != "" {
		r.Metrics = json.RawMessage(metrics.String)
	}
	return &r, nil
}

// ListAudits returns the edit history of one graph, newest first.
func (s *Store) ListAudits(graphID uint16, limit int) ([]Audit, error) {
	rows, err := s.db.Query(
		`SELECT id, graph_id, operation, log, warnings, timestamp
		 FROM audits WHERE graph_id = ? ORDER BY id DESC LIMIT ?`, int64(graphID), limit)
	if err != nil {
		return nil, errors.WrapStoreFailed(err)
	}
	defer rows.Close()

	var out []Audit
	for rows.Next() {
		var (
			a        Audit
			gid      int64
			logJSON  string
			warnJSON string
		)
		if err := rows.Scan(&a.ID, &gid, &a.Operation, &logJSON, &warnJSON, &a.Timestamp); err != nil {
			return nil, errors.WrapStoreFailed(err)
		}
		a.GraphID = uint16(gid)
		if logJSON != "" {
			if err := json.Unmarshal([]byte(logJSON), &a.Log); err != nil {
				return nil, errors.WrapStoreFailed(err)
			}
		}
		if warnJSON != "" {
			if err := json.Unmarshal([]byte(warnJSON), &a.Warnings); err != nil {
				return nil, errors.WrapStoreFailed(err)
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
