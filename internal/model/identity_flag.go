package model

import "time"

// IdentityFlag records a registration that matched an existing person on contact details
// while carrying a different name. Flags are reviewed by an operator, never auto-merged.
type IdentityFlag struct {
	ID                 string     `json:"id"`
	PersonID           string     `json:"person_id"`
	SubmittedFirstName string     `json:"submitted_first_name"`
	SubmittedLastName  string     `json:"submitted_last_name"`
	SubmittedEmail     *string    `json:"submitted_email,omitempty"`
	SubmittedPhone     *string    `json:"submitted_phone,omitempty"`
	Reason             string     `json:"reason"`
	CreatedAt          time.Time  `json:"created_at"`
	ResolvedAt         *time.Time `json:"resolved_at,omitempty"`
}

// FlagReasonNameMismatch is recorded when contact details match but the name does not.
const FlagReasonNameMismatch = "name_mismatch"
