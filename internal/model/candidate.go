package model

// RelationshipSummary condenses a person's active relationships for display next to a
// search or resolver hit.
type RelationshipSummary struct {
	StudentNames  []string    `json:"student_names"`
	Schools       []SchoolRef `json:"schools"`
	TotalChildren int         `json:"total_children"`
	TotalSchools  int         `json:"total_schools"`
}

// EmptySummary returns a summary with non-nil slices.
func EmptySummary() RelationshipSummary {
	return RelationshipSummary{StudentNames: []string{}, Schools: []SchoolRef{}}
}

// PersonCandidate is a possible existing person together with their relationship summary.
type PersonCandidate struct {
	Person  Person              `json:"person"`
	Summary RelationshipSummary `json:"summary"`
}

// SummaryRow is one active relationship as loaded for summaries.
// Student fields are empty for staff assignments.
type SummaryRow struct {
	PersonID         string
	StudentID        string
	StudentFirstName string
	StudentLastName  string
	School           SchoolRef
}
