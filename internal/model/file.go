package model

import "time"

// StoredObject keeps object bytes in the database when no cloud bucket is configured.
// Bucket and ObjectName together identify an object, the same way a bucket path does in cloud storage.
type StoredObject struct {
	ID           uint      `gorm:"primaryKey"`
	Bucket       string    `gorm:"uniqueIndex:idx_bucket_object;not null"`
	ObjectName   string    `gorm:"uniqueIndex:idx_bucket_object;not null"`
	Content      []byte    `gorm:"type:bytea"`
	ContentType  string
	CacheControl string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
