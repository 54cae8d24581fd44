package model

import "time"

type BackupStatus string

const (
	BackupStatusPending   BackupStatus = "pending"
	BackupStatusUploading BackupStatus = "uploading"
	BackupStatusCompleted BackupStatus = "completed"
	BackupStatusFailed    BackupStatus = "failed"
)

// BackupTarget says where the encrypted snapshot was written.
type BackupTarget string

const (
	BackupTargetS3    BackupTarget = "s3"
	BackupTargetLocal BackupTarget = "local"
)

type Backup struct {
	ID           int64        `json:"id"`
	Filename     string       `json:"filename"`
	Target       BackupTarget `json:"target"`
	Location     string       `json:"location"`
	SizeBytes    int64        `json:"size_bytes"`
	Status       BackupStatus `json:"status"`
	ErrorMessage string       `json:"error_message,omitempty"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}
