package model

import "time"

// Person is the tenant-agnostic identity of a guardian or staff member.
// Email is unique ignoring case and phone is unique; either may be absent.
type Person struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      *string   `json:"email,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	Profession *string   `json:"profession,omitempty"`
	Address    *string   `json:"address,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FullName joins first and last name.
func (p *Person) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// RegisterPersonRequest is the payload for registering (or reusing) a person.
type RegisterPersonRequest struct {
	FirstName  string `json:"first_name" binding:"required,min=1,max=100"`
	LastName   string `json:"last_name" binding:"required,min=1,max=100"`
	Email      string `json:"email" binding:"omitempty,max=255"`
	Phone      string `json:"phone" binding:"omitempty,max=25"`
	Profession string `json:"profession" binding:"omitempty,max=100"`
	Address    string `json:"address" binding:"omitempty,max=255"`
}

// UpdateContactRequest is the payload for changing a person's contact details.
type UpdateContactRequest struct {
	Email      string `json:"email" binding:"omitempty,max=255"`
	Phone      string `json:"phone" binding:"omitempty,max=25"`
	Profession string `json:"profession" binding:"omitempty,max=100"`
	Address    string `json:"address" binding:"omitempty,max=255"`
}

// CheckExistingRequest is the payload for an exact identity lookup.
type CheckExistingRequest struct {
	Email string `json:"email" binding:"omitempty,max=255"`
	Phone string `json:"phone" binding:"omitempty,max=25"`
}

// RegisterResult reports what the registration step did.
type RegisterResult struct {
	Person  *Person `json:"person"`
	Created bool    `json:"created"`
	// Flagged is set when an existing person matched on contact details but the
	// submitted name differs; an identity flag was queued for operator review.
	Flagged bool `json:"flagged"`
}
