package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/onyx-team/studymate/internal/study"
)

const historySheet = "History"

// handleHistoryExport serves the session's run history as an XLSX workbook.
func (s *Server) handleHistoryExport(w http.ResponseWriter, r *http.Request) {
	session, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	f, err := historyWorkbook(session.History)
	if err != nil {
		s.logger.Error("building history workbook", "session", session.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "building export")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="history.xlsx"`)
	if err := f.Write(w); err != nil {
		s.logger.Warn("writing history export", "session", session.ID, "error", err)
	}
}

// historyWorkbook builds a one-sheet workbook with a header row followed by
// one row per run, oldest first.
func historyWorkbook(entries []study.HistoryEntry) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		f.Close()
		return nil, err
	}

	header := []any{"Timestamp", "Subject", "Chapter", "Engine", "Help Types"}
	if err := f.SetSheetRow(historySheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}

	for i, entry := range entries {
		helpTypes := make([]string, len(entry.HelpTypes))
		for j, ht := range entry.HelpTypes {
			helpTypes[j] = string(ht)
		}
		row := []any{
			entry.Timestamp.Format(time.RFC3339),
			entry.Subject,
			entry.Chapter,
			entry.EngineLabel,
			strings.Join(helpTypes, ", "),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(historySheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}
