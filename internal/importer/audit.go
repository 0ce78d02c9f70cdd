package importer

import (
	"context"
	"time"
)

// ImportRun is the audit record of one bulk import request: who ran it,
// against which branch, from which input source, and how it ended.
type ImportRun struct {
	ID        string    `json:"id"`
	BranchID  string    `json:"branchId"`
	ActorID   string    `json:"actorId"`
	Source    string    `json:"source"`
	Rows      int       `json:"rows"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	CreatedAt time.Time `json:"createdAt"`
}

// Input sources recorded on an ImportRun.
const (
	SourceText = "text"
	SourceGrid = "grid"
	SourceXLSX = "xlsx"
)

// RunStore persists and queries the import audit trail.
type RunStore interface {
	Record(ctx context.Context, run ImportRun) (*ImportRun, error)
	ListRecent(ctx context.Context, branchID string, limit int) ([]ImportRun, error)
}
