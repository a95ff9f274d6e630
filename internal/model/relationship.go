package model

import "time"

// RelationshipType is the role a person plays towards a student or school.
type RelationshipType string

const (
	RelationshipParent      RelationshipType = "parent"
	RelationshipGuardian    RelationshipType = "guardian"
	RelationshipGrandparent RelationshipType = "grandparent"
	RelationshipSibling     RelationshipType = "sibling"
	RelationshipOther       RelationshipType = "other"
	RelationshipTeacher     RelationshipType = "teacher"
	RelationshipStaff       RelationshipType = "staff"
)

// GuardianTypes lists the roles allowed on a person-student link.
var GuardianTypes = []RelationshipType{
	RelationshipParent, RelationshipGuardian, RelationshipGrandparent, RelationshipSibling, RelationshipOther,
}

// StaffTypes lists the roles allowed on a person-school assignment.
var StaffTypes = []RelationshipType{RelationshipTeacher, RelationshipStaff}

// IsGuardianType reports whether t may be used on a guardian link.
func IsGuardianType(t RelationshipType) bool {
	return contains(GuardianTypes, t)
}

// IsStaffType reports whether t may be used on a staff assignment.
func IsStaffType(t RelationshipType) bool {
	return contains(StaffTypes, t)
}

func contains(list []RelationshipType, t RelationshipType) bool {
	for _, v := range list {
		if v == t {
			return true
		}
	}
	return false
}

// Relationship joins a person to a student within a school (guardian case, StudentID set)
// or to a school class/subject (staff case, StudentID nil). Rows are deactivated, never
// deleted.
type Relationship struct {
	ID               string           `json:"id"`
	PersonID         string           `json:"person_id"`
	StudentID        *string          `json:"student_id,omitempty"`
	SchoolID         string           `json:"school_id"`
	RelationshipType RelationshipType `json:"relationship_type"`
	IsPrimaryContact bool             `json:"is_primary_contact"`
	CanPickup        bool             `json:"can_pickup"`
	EmergencyContact bool             `json:"emergency_contact"`
	ClassName        *string          `json:"class_name,omitempty"`
	Subject          *string          `json:"subject,omitempty"`
	IsActive         bool             `json:"is_active"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// IsGuardian reports whether the relationship targets a student.
func (r *Relationship) IsGuardian() bool {
	return r.StudentID != nil
}

// GuardianAttributes are the role flags of a guardian link.
type GuardianAttributes struct {
	RelationshipType RelationshipType `json:"relationship_type" binding:"required,relationship_type"`
	IsPrimaryContact bool             `json:"is_primary_contact"`
	CanPickup        bool             `json:"can_pickup"`
	EmergencyContact bool             `json:"emergency_contact"`
}

// ClassAssignment is the target of a staff link.
type ClassAssignment struct {
	RelationshipType RelationshipType `json:"relationship_type" binding:"omitempty,relationship_type"`
	ClassName        string           `json:"class_name" binding:"required,min=1,max=50"`
	Subject          string           `json:"subject" binding:"required,min=1,max=100"`
}

// LinkGuardianRequest is the payload for linking a person to a student in a school.
type LinkGuardianRequest struct {
	PersonID  string `json:"person_id" binding:"required,uuid"`
	StudentID string `json:"student_id" binding:"required,uuid"`
	GuardianAttributes
}

// LinkStaffRequest is the payload for assigning a person to a school class/subject.
type LinkStaffRequest struct {
	PersonID string `json:"person_id" binding:"required,uuid"`
	ClassAssignment
}

// LinkResult is returned by the linker. Created is false when an existing row with the
// same key was updated instead.
type LinkResult struct {
	Relationship *Relationship `json:"relationship"`
	Created      bool          `json:"created"`
}

// RelationshipDetail is a relationship together with the records it points at.
type RelationshipDetail struct {
	Relationship Relationship `json:"relationship"`
	Student      *Student     `json:"student,omitempty"`
	School       School       `json:"school"`
}
