package model

import "time"

// School is a tenant. Students and staff assignments belong to exactly one school.
type School struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	CreatedAt time.Time `json:"created_at"`
}

// SchoolRef is the short form of a school used in summaries.
type SchoolRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	City string `json:"city"`
}
