package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/homestock/internal/model"
)

type BackupStore struct {
	db DBTX
}

func NewBackupStore(db DBTX) *BackupStore {
	return &BackupStore{db: db}
}

func scanBackup(scanner interface{ Scan(...any) error }) (*model.Backup, error) {
	var b model.Backup
	var target, status string
	var completedAt sql.NullInt64
	var createdAt int64

	err := scanner.Scan(&b.ID, &b.Filename, &target, &b.Location, &b.SizeBytes, &status, &b.ErrorMessage, &completedAt, &createdAt)
	if err != nil {
		return nil, err
	}

	b.Target = model.BackupTarget(target)
	b.Status = model.BackupStatus(status)
	b.CreatedAt = fromMillis(createdAt)
	if completedAt.Valid {
		t := fromMillis(completedAt.Int64)
		b.CompletedAt = &t
	}
	return &b, nil
}

const backupCols = `id, filename, target, location, size_bytes, status, error_message, completed_at, created_at`

func (s *BackupStore) Create(filename string, target model.BackupTarget) (*model.Backup, error) {
	now := time.Now().UTC()
	result, err := s.db.Exec(
		`INSERT INTO backups (filename, target, status, created_at) VALUES (?, ?, ?, ?)`,
		filename, string(target), string(model.BackupStatusPending), toMillis(now),
	)
	if err != nil {
		return nil, fmt.Errorf("create backup: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &model.Backup{
		ID:        id,
		Filename:  filename,
		Target:    target,
		Status:    model.BackupStatusPending,
		CreatedAt: now,
	}, nil
}

func (s *BackupStore) GetByID(id int64) (*model.Backup, error) {
	row := s.db.QueryRow(`SELECT `+backupCols+` FROM backups WHERE id = ?`, id)
	b, err := scanBackup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get backup %d: %w", id, err)
	}
	return b, nil
}

func (s *BackupStore) List(limit int) ([]model.Backup, error) {
	rows, err := s.db.Query(`SELECT `+backupCols+` FROM backups ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	var backups []model.Backup
	for rows.Next() {
		b, err := scanBackup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan backup: %w", err)
		}
		backups = append(backups, *b)
	}
	return backups, rows.Err()
}

func (s *BackupStore) UpdateStatus(id int64, status model.BackupStatus, errorMsg string) error {
	_, err := s.db.Exec(
		`UPDATE backups SET status = ?, error_message = ? WHERE id = ?`,
		string(status), errorMsg, id,
	)
	if err != nil {
		return fmt.Errorf("update backup status: %w", err)
	}
	return nil
}

func (s *BackupStore) UpdateCompleted(id, sizeBytes int64, location string) error {
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`UPDATE backups SET status = ?, size_bytes = ?, location = ?, completed_at = ? WHERE id = ?`,
		string(model.BackupStatusCompleted), sizeBytes, location, toMillis(now), id,
	)
	if err != nil {
		return fmt.Errorf("update backup completed: %w", err)
	}
	return nil
}

func (s *BackupStore) LatestCompleted() (*model.Backup, error) {
	row := s.db.QueryRow(
		`SELECT `+backupCols+` FROM backups WHERE status = ? ORDER BY completed_at DESC, id DESC LIMIT 1`,
		string(model.BackupStatusCompleted),
	)
	b, err := scanBackup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest completed backup: %w", err)
	}
	return b, nil
}

func (s *BackupStore) Count() (int64, error) {
	var count int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM backups`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count backups: %w", err)
	}
	return count, nil
}

func (s *BackupStore) TotalSize() (int64, error) {
	var total sql.NullInt64
	err := s.db.QueryRow(
		`SELECT SUM(size_bytes) FROM backups WHERE status = ?`,
		string(model.BackupStatusCompleted),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total backup size: %w", err)
	}
	return total.Int64, nil
}
