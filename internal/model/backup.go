package model

import "time"

// Backup describes one export snapshot uploaded to object storage.
type Backup struct {
	Bucket     string    `json:"bucket"`
	Key        string    `json:"key"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}
