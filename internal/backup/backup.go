package backup

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dukerupert/homestock/internal/model"
	"github.com/dukerupert/homestock/internal/store"
	_ "modernc.org/sqlite"
)

var (
	ErrNotConfigured      = errors.New("backup not configured: set an S3 bucket or a backup directory")
	ErrPassphraseRequired = errors.New("backup passphrase is required")
	ErrInProgress         = errors.New("backup already in progress")
	ErrNotFound           = errors.New("backup not found")
	ErrRestoreDirRequired = errors.New("restore directory not configured")
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

func (c S3Config) complete() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// Config holds backup manager configuration. S3 wins when both targets are set.
type Config struct {
	S3  S3Config
	Dir string

	// Interval and Passphrase enable scheduled backups when both are set.
	Interval   time.Duration
	Passphrase string

	// RestoreDir receives decrypted copies. The live database is never replaced.
	RestoreDir string
}

type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateDisabled State = "disabled"
	StateError    State = "error"
)

type Status struct {
	State      State              `json:"state"`
	Target     model.BackupTarget `json:"target,omitempty"`
	LastBackup *time.Time         `json:"last_backup,omitempty"`
	Error      string             `json:"error,omitempty"`
	InProgress bool               `json:"in_progress"`
}

// Overview is the manager status plus totals from the backups table.
type Overview struct {
	Status
	Count          int64 `json:"count"`
	TotalSizeBytes int64 `json:"total_size_bytes"`
}

// StatusCallback is called whenever the backup state changes.
type StatusCallback func(Status)

// Manager writes encrypted snapshots of the database to S3 or a local directory.
type Manager struct {
	mu       sync.RWMutex
	cfg      Config
	status   Status
	callback StatusCallback
	logger   *slog.Logger

	db          *sql.DB
	backupStore *store.BackupStore
	client      s3Client

	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager(cfg Config, db *sql.DB, bs *store.BackupStore, logger *slog.Logger, callback StatusCallback) *Manager {
	m := &Manager{
		cfg:         cfg,
		db:          db,
		backupStore: bs,
		logger:      logger,
		callback:    callback,
		status:      Status{State: StateDisabled},
	}

	switch {
	case cfg.S3.complete():
		m.client = newS3Client(cfg.S3)
		m.status = Status{State: StateIdle, Target: model.BackupTargetS3}
	case cfg.Dir != "":
		m.status = Status{State: StateIdle, Target: model.BackupTargetLocal}
	}
	return m
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Start runs scheduled backups every cfg.Interval until ctx is done or Stop
// is called. It does nothing unless a target, an interval and a passphrase
// are all configured.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.status.State == StateDisabled || m.cfg.Interval <= 0 || m.cfg.Passphrase == "" {
		m.mu.Unlock()
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	interval := m.cfg.Interval
	passphrase := m.cfg.Passphrase
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := m.RunNow(ctx, passphrase); err != nil {
					m.logger.Error("scheduled backup failed", "error", err)
				}
			}
		}
	}()
}

// Stop halts the schedule and waits for an in-flight run to finish.
func (m *Manager) Stop() {
	m.mu.RLock()
	cancel := m.cancel
	done := m.done
	m.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Manager) setStatus(s Status) {
	m.mu.Lock()
	s.Target = m.status.Target
	if s.LastBackup == nil {
		s.LastBackup = m.status.LastBackup
	}
	m.status = s
	m.mu.Unlock()
	if m.callback != nil {
		m.callback(s)
	}
}

// Overview adds the last completed backup and the table totals to the live status.
func (m *Manager) Overview() (Overview, error) {
	o := Overview{Status: m.Status()}

	latest, err := m.backupStore.LatestCompleted()
	if err != nil {
		return Overview{}, err
	}
	if latest != nil {
		o.LastBackup = latest.CompletedAt
	}
	if o.Count, err = m.backupStore.Count(); err != nil {
		return Overview{}, err
	}
	if o.TotalSizeBytes, err = m.backupStore.TotalSize(); err != nil {
		return Overview{}, err
	}
	return o, nil
}

func (m *Manager) List(limit int) ([]model.Backup, error) {
	return m.backupStore.List(limit)
}

// RunNow snapshots the database with VACUUM INTO, encrypts the copy with a
// fresh salt and writes it to the configured target.
func (m *Manager) RunNow(ctx context.Context, passphrase string) (*model.Backup, error) {
	if passphrase == "" {
		return nil, ErrPassphraseRequired
	}

	m.mu.Lock()
	switch {
	case m.status.State == StateDisabled:
		m.mu.Unlock()
		return nil, ErrNotConfigured
	case m.status.InProgress:
		m.mu.Unlock()
		return nil, ErrInProgress
	}
	m.status.InProgress = true
	client := m.client
	bucket := m.cfg.S3.Bucket
	dir := m.cfg.Dir
	target := m.status.Target
	m.mu.Unlock()

	m.setStatus(Status{State: StateRunning, InProgress: true})

	filename := fmt.Sprintf("homestock-%s.db.enc", time.Now().UTC().Format("20060102-150405.000"))
	record, err := m.backupStore.Create(filename, target)
	if err != nil {
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return nil, fmt.Errorf("create backup record: %w", err)
	}

	fail := func(stage string, err error) (*model.Backup, error) {
		if uerr := m.backupStore.UpdateStatus(record.ID, model.BackupStatusFailed, err.Error()); uerr != nil {
			m.logger.Error("record backup failure", "id", record.ID, "error", uerr)
		}
		m.setStatus(Status{State: StateError, Error: err.Error()})
		return nil, fmt.Errorf("%s: %w", stage, err)
	}

	sealed, err := m.snapshot(ctx, passphrase)
	if err != nil {
		return fail("snapshot", err)
	}

	if err := m.backupStore.UpdateStatus(record.ID, model.BackupStatusUploading, ""); err != nil {
		return fail("update status", err)
	}

	var location string
	switch target {
	case model.BackupTargetS3:
		location = filename
		_, err = client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(bucket),
			Key:           aws.String(location),
			Body:          bytes.NewReader(sealed),
			ContentLength: aws.Int64(int64(len(sealed))),
		})
		if err != nil {
			return fail("upload to s3", err)
		}
	default:
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fail("create backup dir", err)
		}
		location = filepath.Join(dir, filename)
		if err := os.WriteFile(location, sealed, 0o600); err != nil {
			return fail("write backup", err)
		}
	}

	if err := m.backupStore.UpdateCompleted(record.ID, int64(len(sealed)), location); err != nil {
		return fail("update completed", err)
	}

	now := time.Now().UTC()
	m.setStatus(Status{State: StateIdle, LastBackup: &now})
	m.logger.Info("backup completed", "id", record.ID, "target", string(target), "bytes", len(sealed))

	return m.backupStore.GetByID(record.ID)
}

// snapshot returns an encrypted, consistent copy of the live database.
func (m *Manager) snapshot(ctx context.Context, passphrase string) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "homestock-backup-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if _, err := m.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return nil, fmt.Errorf("wal checkpoint: %w", err)
	}

	copyPath := filepath.Join(tmpDir, "snapshot.db")
	if _, err := m.db.ExecContext(ctx, "VACUUM INTO ?", copyPath); err != nil {
		return nil, fmt.Errorf("vacuum into: %w", err)
	}

	plaintext, err := os.ReadFile(copyPath)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	salt, err := GenerateSalt()
	if err != nil {
		return nil, err
	}
	return Seal(plaintext, passphrase, salt)
}

// Restore decrypts backup id into cfg.RestoreDir after checking its integrity
// and returns the path of the restored file. Swap it in while the server is down.
func (m *Manager) Restore(ctx context.Context, id int64, passphrase string) (string, error) {
	if passphrase == "" {
		return "", ErrPassphraseRequired
	}
	m.mu.RLock()
	dir := m.cfg.RestoreDir
	m.mu.RUnlock()
	if dir == "" {
		return "", ErrRestoreDirRequired
	}

	record, err := m.backupStore.GetByID(id)
	if err != nil {
		return "", fmt.Errorf("get backup: %w", err)
	}
	if record == nil || record.Status != model.BackupStatusCompleted {
		return "", ErrNotFound
	}

	sealed, err := m.fetch(ctx, record)
	if err != nil {
		return "", err
	}
	plaintext, err := Open(sealed, passphrase)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("create restore dir: %w", err)
	}
	dstPath := filepath.Join(dir, fmt.Sprintf("homestock-restore-%d.db", id))
	tmpPath := dstPath + ".restore"
	if err := os.WriteFile(tmpPath, plaintext, 0o600); err != nil {
		return "", fmt.Errorf("write restored db: %w", err)
	}
	defer os.Remove(tmpPath)

	if err := checkIntegrity(tmpPath); err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, dstPath); err != nil {
		return "", fmt.Errorf("move restored db: %w", err)
	}

	m.logger.Info("backup restored", "id", id, "path", dstPath)
	return dstPath, nil
}

func (m *Manager) fetch(ctx context.Context, record *model.Backup) ([]byte, error) {
	if record.Target == model.BackupTargetLocal {
		data, err := os.ReadFile(record.Location)
		if err != nil {
			return nil, fmt.Errorf("read backup file: %w", err)
		}
		return data, nil
	}

	m.mu.RLock()
	client := m.client
	bucket := m.cfg.S3.Bucket
	m.mu.RUnlock()
	if client == nil {
		return nil, ErrNotConfigured
	}

	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(record.Location),
	})
	if err != nil {
		return nil, fmt.Errorf("download from s3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3 object: %w", err)
	}
	return data, nil
}

func checkIntegrity(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open restored db: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}
