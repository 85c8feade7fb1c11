// Package export renders inspection listings to CSV for external reporting.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"officine.org/internal/grid"
	"officine.org/internal/inspection"
	"officine.org/internal/kpi"
)

var csvHeader = []string{
	"Établissement", "Grille", "Inspecteur(s)", "Date", "Statut",
	"Total critères", "Réponses", "Conforme", "Non-conforme", "% Conformité",
}

// InspectionsCSV renders the listing with grid names resolved through the
// static catalog and a compliance rate per row. Returns the empty string for
// an empty listing.
func InspectionsCSV(inspections []inspection.Inspection) (string, error) {
	if len(inspections) == 0 {
		return "", nil
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("export: write header: %w", err)
	}
	for _, insp := range inspections {
		gridName := insp.GridID
		if g, ok := grid.Find(insp.GridID); ok {
			gridName = g.Name
		}
		row := []string{
			insp.Establishment,
			gridName,
			strings.Join(insp.Inspectors, ", "),
			insp.DateInspection,
			statusLabel(insp.Status),
			strconv.Itoa(insp.Progress.Total),
			strconv.Itoa(insp.Progress.Answered),
			strconv.Itoa(insp.Progress.Conforme),
			strconv.Itoa(insp.Progress.NonConforme),
			strconv.Itoa(kpi.ComplianceRate(insp.Progress)),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("export: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("export: flush: %w", err)
	}
	return buf.String(), nil
}

func statusLabel(s inspection.Status) string {
	switch s {
	case inspection.StatusDraft:
		return "Brouillon"
	case inspection.StatusInProgress:
		return "En cours"
	case inspection.StatusCompleted:
		return "Terminée"
	case inspection.StatusValidated:
		return "Validée"
	case inspection.StatusArchived:
		return "Archivée"
	}
	return string(s)
}
