// Package grid holds the static checklist catalog: the ordered sections and
// criteria that make up an inspection grid per establishment type. The
// catalog is reference data, loaded once and read-only; the persistence core
// never validates criterion ids against it.
package grid

// Info describes one inspection grid.
type Info struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Version     string    `json:"version"`
	Description string    `json:"description"`
	Sections    []Section `json:"sections"`
}

// Section groups criteria under one heading.
type Section struct {
	ID    int         `json:"id"`
	Title string      `json:"title"`
	Items []Criterion `json:"items"`
}

// Criterion is one checklist question, identified by a numeric id scoped to
// its grid. PreOpening marks items verified before an establishment opens.
type Criterion struct {
	ID          int    `json:"id"`
	Reference   string `json:"reference"`
	Description string `json:"description"`
	PreOpening  bool   `json:"pre_opening"`
}

// Summary is the compact projection used for grid selection.
type Summary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Code          string `json:"code"`
	Description   string `json:"description"`
	CriteriaCount int    `json:"criteria_count"`
	SectionCount  int    `json:"section_count"`
}

// CriteriaCount returns the number of criteria across all sections.
func (g Info) CriteriaCount() int {
	n := 0
	for _, s := range g.Sections {
		n += len(s.Items)
	}
	return n
}

// Summarize projects the grid for selection lists.
func (g Info) Summarize() Summary {
	return Summary{
		ID:            g.ID,
		Name:          g.Name,
		Code:          g.Code,
		Description:   g.Description,
		CriteriaCount: g.CriteriaCount(),
		SectionCount:  len(g.Sections),
	}
}

// builder assigns sequential criterion ids within one grid.
type builder struct {
	counter int
}

func (b *builder) next(reference, description string, preOpening bool) Criterion {
	b.counter++
	return Criterion{
		ID:          b.counter,
		Reference:   reference,
		Description: description,
		PreOpening:  preOpening,
	}
}

func (b *builder) item(reference, description string) Criterion {
	return b.next(reference, description, false)
}

// pre marks a pre-opening item.
func (b *builder) pre(reference, description string) Criterion {
	return b.next(reference, description, true)
}
