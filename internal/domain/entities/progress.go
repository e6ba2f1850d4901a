package entities

// ModuleStatus maps module id to its completion flag.
type ModuleStatus map[string]bool

// Progress is the persisted learner progress record.
// CourseTotals is always recomputed from the catalog on load.
type Progress struct {
	ModuleStatus ModuleStatus   `json:"moduleStatus"`
	CourseTotals map[string]int `json:"courseTotals"`
}

// NewProgress returns empty progress with the current course totals.
func NewProgress() *Progress {
	return &Progress{
		ModuleStatus: ModuleStatus{},
		CourseTotals: CourseTotals(),
	}
}

// IsComplete reports whether the module id is marked complete.
func (p *Progress) IsComplete(moduleID string) bool {
	return p.ModuleStatus[moduleID]
}

// MarkComplete marks the module id complete and reports whether it changed.
func (p *Progress) MarkComplete(moduleID string) bool {
	if p.ModuleStatus == nil {
		p.ModuleStatus = ModuleStatus{}
	}
	if p.ModuleStatus[moduleID] {
		return false
	}
	p.ModuleStatus[moduleID] = true
	return true
}

// CompletedCounts counts completed modules per recognized course key.
// Module ids whose course key is not in CourseTotals are ignored.
func (p *Progress) CompletedCounts() map[string]int {
	counts := make(map[string]int, len(p.CourseTotals))
	for key := range p.CourseTotals {
		counts[key] = 0
	}

	for moduleID, done := range p.ModuleStatus {
		if !done {
			continue
		}
		key := CourseKeyOf(moduleID)
		if _, ok := counts[key]; ok {
			counts[key]++
		}
	}

	return counts
}
