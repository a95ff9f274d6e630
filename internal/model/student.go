package model

import "time"

// Student is enrolled in exactly one school at a time.
type Student struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	SchoolID  string    `json:"school_id"`
	ClassName string    `json:"class_name"`
	CreatedAt time.Time `json:"created_at"`
}

// FullName joins first and last name.
func (s *Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}
