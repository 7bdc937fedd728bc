package entity

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	UploadStatusCompleted = "COMPLETED"
	UploadStatusPartial   = "PARTIAL"
	UploadStatusFailed    = "FAILED"
)

// UploadHistoryEntry resume um upload de planilha.
type UploadHistoryEntry struct {
	ID             string    `json:"id"`
	FileName       string    `json:"fileName"`
	FileSize       int64     `json:"fileSize"`
	TotalRows      int       `json:"totalRows"`
	ValidRows      int       `json:"validRows"`
	InsertedRows   int       `json:"insertedRows"`
	UpdatedRows    int       `json:"updatedRows"`
	SkippedRows    int       `json:"skippedRows"`
	ErrorRows      int       `json:"errorRows"`
	SuccessRate    float64   `json:"successRate"`
	ProcessingTime int64     `json:"processingTime"` // ms
	Status         string    `json:"status"`
	UploadedAt     time.Time `json:"uploadedAt"`
}

func NewUploadHistoryEntry(fileName string, fileSize int64) *UploadHistoryEntry {
	return &UploadHistoryEntry{
		ID:         uuid.New().String(),
		FileName:   fileName,
		FileSize:   fileSize,
		UploadedAt: time.Now(),
	}
}

// UploadStats agrega o histórico de uploads.
type UploadStats struct {
	TotalUploads       int        `json:"totalUploads"`
	TotalRows          int        `json:"totalRows"`
	TotalInserted      int        `json:"totalInserted"`
	TotalUpdated       int        `json:"totalUpdated"`
	TotalErrors        int        `json:"totalErrors"`
	AverageSuccessRate float64    `json:"averageSuccessRate"`
	LastUploadAt       *time.Time `json:"lastUploadAt,omitempty"`
}

// SummarizeUploads agrega uma lista de entradas do histórico.
func SummarizeUploads(entries []UploadHistoryEntry) UploadStats {
	stats := UploadStats{TotalUploads: len(entries)}
	if len(entries) == 0 {
		return stats
	}

	var rateSum float64
	for i := range entries {
		e := entries[i]
		stats.TotalRows += e.TotalRows
		stats.TotalInserted += e.InsertedRows
		stats.TotalUpdated += e.UpdatedRows
		stats.TotalErrors += e.ErrorRows
		rateSum += e.SuccessRate
		if stats.LastUploadAt == nil || e.UploadedAt.After(*stats.LastUploadAt) {
			t := e.UploadedAt
			stats.LastUploadAt = &t
		}
	}
	stats.AverageSuccessRate = math.Round(rateSum/float64(len(entries))*100) / 100
	return stats
}
