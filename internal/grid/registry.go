package grid

// All returns every available grid in registry order.
func All() []Info {
	return []Info{
		officine(),
		grossiste(),
	}
}

// Find returns the grid with the given id, or false when absent.
func Find(id string) (Info, bool) {
	for _, g := range All() {
		if g.ID == id {
			return g, true
		}
	}
	return Info{}, false
}

// Summaries projects every grid for selection lists.
func Summaries() []Summary {
	grids := All()
	out := make([]Summary, 0, len(grids))
	for _, g := range grids {
		out = append(out, g.Summarize())
	}
	return out
}
