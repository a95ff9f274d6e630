package model

// Statistics aggregates a person's guardian links across schools.
type Statistics struct {
	TotalChildren  int               `json:"total_children"`
	ActiveChildren int               `json:"active_children"`
	SchoolsCount   int               `json:"schools_count"`
	PerSchool      []SchoolBreakdown `json:"per_school_breakdown"`
}

// SchoolBreakdown counts children within one school.
type SchoolBreakdown struct {
	School         SchoolRef `json:"school"`
	TotalChildren  int       `json:"total_children"`
	ActiveChildren int       `json:"active_children"`
}

// EmptyStatistics returns zeroed statistics with a non-nil breakdown.
func EmptyStatistics() Statistics {
	return Statistics{PerSchool: []SchoolBreakdown{}}
}
