package objects

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// UploadRecord is one row of the upload audit trail.
type UploadRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Bucket       string    `gorm:"size:255;index" json:"bucket"`
	ObjectKey    string    `gorm:"size:1024" json:"key"`
	Size         int64     `json:"size"`
	Source       string    `gorm:"size:1024" json:"source"`
	RemovedLocal bool      `json:"removed_local"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName overrides the default pluralized name.
func (UploadRecord) TableName() string {
	return "upload_records"
}

// AuditLog writes upload records. A nil *AuditLog or one without a DB does nothing.
type AuditLog struct {
	db *gorm.DB
}

// NewAuditLog returns nil when db is nil, which disables auditing.
func NewAuditLog(db *gorm.DB) *AuditLog {
	if db == nil {
		return nil
	}
	return &AuditLog{db: db}
}

// Migrate creates or updates the audit table.
func (a *AuditLog) Migrate() error {
	if a == nil {
		return nil
	}
	return a.db.AutoMigrate(&UploadRecord{})
}

// Record stores rec.
func (a *AuditLog) Record(ctx context.Context, rec *UploadRecord) error {
	if a == nil {
		return nil
	}
	return a.db.WithContext(ctx).Create(rec).Error
}

// Recent returns the newest records for bucket, newest first.
func (a *AuditLog) Recent(ctx context.Context, bucket string, limit int) ([]UploadRecord, error) {
	if a == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	var recs []UploadRecord
	err := a.db.WithContext(ctx).
		Where("bucket = ?", bucket).
		Order("created_at desc").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}
