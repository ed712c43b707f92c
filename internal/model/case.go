package model

import "time"

// CaseRecord is one row of the shared case spreadsheet ("expediente").
// Optional dates and the derived day count are nil when absent.
// This is a pure domain model; column naming lives in the schema package.
type CaseRecord struct {
	CaseID          string     `json:"case_id"`
	Office          string     `json:"office"`
	OriginationDate *time.Time `json:"origination_date"`
	DaysRemaining   *int       `json:"days_remaining"`
	ProcessType     string     `json:"process_type"`
	QualityType     string     `json:"quality_type"`
	StageStartDate  *time.Time `json:"stage_start_date"`
	StageEndDate    *time.Time `json:"stage_end_date"`
	Status          string     `json:"status"`
	ForwardedDate   *time.Time `json:"forwarded_date"`

	// Row is the zero-based data row in the backing sheet the record was read from.
	Row int `json:"-"`
}

// AuditEntry records one successful forwarded-date update.
type AuditEntry struct {
	Timestamp     time.Time `json:"timestamp"`
	Office        string    `json:"office"`
	CaseID        string    `json:"case_id"`
	ForwardedDate time.Time `json:"forwarded_date"`
}
