package domain

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

type PageFetcher interface {
	// FetchFirst returns the raw payload (HTML or JSON text) of the first request
	// that is not answered with "not found".
	FetchFirst(ctx context.Context, reqs []FetchRequest) (string, error)
}

type RunHistory interface {
	// Write paths
	RecordRun(ctx context.Context, r RunRecord) error
	LogMiss(ctx context.Context, m Miss) error

	// Read paths
	ListRuns(ctx context.Context, source string, limit int) ([]RunRecord, error)
	ListMisses(ctx context.Context, source string, date DateColumn) ([]Miss, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type FetchRequest struct {
	Method  string
	URL     string
	Body    string
	Headers map[string]string
}

// Run outcome classification derived from the saved ledger.
type RunStatus string

const (
	RunOK      RunStatus = "ok"
	RunWarning RunStatus = "warning"
	RunFailed  RunStatus = "failed"
)

type RunRecord struct {
	ID         string
	Source     string
	Date       DateColumn
	Status     RunStatus
	Scored     int
	Total      int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Miss reasons
const (
	MissNoTarget = "no-target"
	MissFetch    = "fetch"
	MissNoMatch  = "no-candidate"
	MissRange    = "range"
)

type Miss struct {
	Source string
	Hotel  HotelKey
	Date   DateColumn
	Reason string
}

// Read models
type LedgerView struct {
	Source string
	Dates  []DateColumn
	Rows   []LedgerRowView
}

type LedgerRowView struct {
	Hotel   HotelKey
	Scores  map[DateColumn]float64
	Average *float64
}

type CellView struct {
	Source  string
	Hotel   HotelKey
	Date    DateColumn
	Value   *float64
	Missing bool
}

type RunStatusView struct {
	Source  string
	Date    DateColumn
	Status  RunStatus
	Exists  bool
	HasDate bool
	Scored  int
	Total   int
}
