package web

// handlers.go implements the import API endpoints. All three endpoints share
// the same pipeline: parse the input into raw rows, run the cleaner, run the
// validator, and (for the import endpoints) hand the valid rows to the
// orchestrator. Identity comes from headers; auth itself lives in front of
// this service.

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/finvolo/ledger/internal/apperr"
	"github.com/finvolo/ledger/internal/clean"
	"github.com/finvolo/ledger/internal/importer"
	"github.com/finvolo/ledger/internal/logging"
	"github.com/finvolo/ledger/internal/parse"
	"github.com/finvolo/ledger/internal/validate"
)

// Identity headers. Authentication and role checks happen upstream; these
// carry the already-authenticated actor and branch.
const (
	headerActorID  = "X-Actor-ID"
	headerBranchID = "X-Branch-ID"
)

// ImportRequest is the JSON body for the validate and import endpoints.
// Exactly one of Text or Grid should be set; Text wins when both are.
type ImportRequest struct {
	// Text is a pasted tab- or comma-delimited block.
	Text string `json:"text,omitempty"`

	// Grid is a spreadsheet-derived 2-D array including a header row.
	Grid [][]string `json:"grid,omitempty"`
}

// ValidateResponse is the dry-run preview result.
type ValidateResponse struct {
	Rows       int             `json:"rows"`
	Cleaning   clean.Report    `json:"cleaning"`
	Validation validate.Result `json:"validation"`
}

// ImportResponse is the final import outcome.
type ImportResponse struct {
	Rows      int                    `json:"rows"`
	Imported  int                    `json:"imported"`
	Successes []importer.Transaction `json:"successes"`
	Errors    []apperr.ImportError   `json:"errors"`
	Warnings  []apperr.ImportError   `json:"warnings"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"activeImports": s.limiter.activeCount(),
	})
}

// handleValidate runs parse → clean → validate without writing anything.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	rows, _, ok := s.decodeRows(w, r)
	if !ok {
		return
	}

	_, report, result := s.runPipeline(rows)

	respondJSON(w, http.StatusOK, ValidateResponse{
		Rows:       len(rows),
		Cleaning:   report,
		Validation: result,
	})
}

// handleImport runs the full pipeline and imports every valid row. Rows with
// validation errors are skipped and reported; they never block the rest.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	rows, source, ok := s.decodeRows(w, r)
	if !ok {
		return
	}
	s.runImport(w, r, rows, source)
}

// handleImportXLSX accepts a multipart workbook upload and imports the first
// sheet, which must carry a header row.
func (s *Server) handleImportXLSX(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.cfg.Import.MaxBodySize); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	defer file.Close()

	wb, err := excelize.OpenReader(file)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	defer wb.Close()

	grid, err := wb.GetRows(wb.GetSheetName(0))
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	rows, err := parse.ParseGrid(grid)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	s.runImport(w, r, rows, importer.SourceXLSX)
}

// handleHistory returns the branch's recent import audit trail.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	branchID := r.Header.Get(headerBranchID)
	if branchID == "" {
		respondError(w, r, errors.New("missing branch identity header"), http.StatusBadRequest)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	runs := []importer.ImportRun{}
	if s.runs != nil {
		listed, err := s.runs.ListRecent(r.Context(), branchID, limit)
		if err != nil {
			respondError(w, r, err, http.StatusInternalServerError)
			return
		}
		if listed != nil {
			runs = listed
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// runImport is the shared import path once rows are parsed.
func (s *Server) runImport(w http.ResponseWriter, r *http.Request, rows []parse.RawRow, source string) {
	branchID := r.Header.Get(headerBranchID)
	actorID := r.Header.Get(headerActorID)
	if branchID == "" || actorID == "" {
		respondError(w, r, errors.New("missing actor or branch identity headers"), http.StatusBadRequest)
		return
	}

	if err := s.limiter.acquire(r.Context()); err != nil {
		respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	defer s.limiter.release()

	cleaned, _, result := s.runPipeline(rows)

	// Keep only rows with no validation errors; warnings do not block.
	valid := cleaned[:0:0]
	for _, row := range cleaned {
		if result.Summary.ErrorsByRow[row.Line] == 0 {
			valid = append(valid, row)
		}
	}

	log := logging.WithFields(r.Context(), "branch_id", branchID, "actor_id", actorID)
	log.Info("import requested", "rows", len(rows), "valid", len(valid))

	outcome := s.importerForRequest(log).BulkImport(r.Context(), valid, branchID, actorID)

	s.recordRun(r.Context(), log, importer.ImportRun{
		BranchID:  branchID,
		ActorID:   actorID,
		Source:    source,
		Rows:      len(rows),
		Succeeded: len(outcome.Successes),
		Failed:    len(result.Errors) + len(outcome.Errors),
	})

	respondJSON(w, http.StatusOK, ImportResponse{
		Rows:      len(rows),
		Imported:  len(outcome.Successes),
		Successes: outcome.Successes,
		Errors:    append(result.Errors, outcome.Errors...),
		Warnings:  result.Warnings,
	})
}

// runPipeline cleans rows with the configured options and validates them
// against the transaction rule set.
func (s *Server) runPipeline(rows []parse.RawRow) ([]parse.RawRow, clean.Report, validate.Result) {
	opts := clean.DefaultOptions()
	opts.DayFirst = s.cfg.Import.DayFirst

	cleaned, report := clean.Dataset(rows, opts, nil)
	result := validate.Dataset(cleaned, validate.TransactionRules(), &validate.Context{DayFirst: opts.DayFirst})
	return cleaned, report, result
}

// recordRun writes the audit entry for a finished import. Recording is best
// effort: a failed write is logged, never surfaced to the client.
func (s *Server) recordRun(ctx context.Context, log *slog.Logger, run importer.ImportRun) {
	if s.runs == nil {
		return
	}
	if _, err := s.runs.Record(ctx, run); err != nil {
		log.Warn("import audit record failed", "error", err)
	}
}

// decodeRows reads an ImportRequest body and parses it into raw rows,
// answering the client directly on failure.
func (s *Server) decodeRows(w http.ResponseWriter, r *http.Request) ([]parse.RawRow, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxBodySize)

	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return nil, "", false
	}

	var (
		rows   []parse.RawRow
		source string
		err    error
	)
	switch {
	case req.Text != "":
		rows, err = parse.ParseText(req.Text)
		source = importer.SourceText
	case len(req.Grid) > 0:
		rows, err = parse.ParseGrid(req.Grid)
		source = importer.SourceGrid
	default:
		err = parse.ErrEmptyInput
	}
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return nil, "", false
	}

	return rows, source, true
}

// importerForRequest attaches a request-scoped logger to the shared importer.
func (s *Server) importerForRequest(log *slog.Logger) *importer.Importer {
	imp := *s.importer
	imp.Log = log
	return &imp
}
