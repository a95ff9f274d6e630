package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionPersonsRead allows searching people and viewing their relationships.
	PermissionPersonsRead Permission = "persons:read"

	// PermissionPersonsWrite allows registering people and editing contact details.
	PermissionPersonsWrite Permission = "persons:write"

	// PermissionRelationshipsWrite allows linking and deactivating relationships.
	PermissionRelationshipsWrite Permission = "relationships:write"

	// PermissionIdentityFlagsReview allows reviewing flagged identity matches.
	PermissionIdentityFlagsReview Permission = "identity_flags:review"
)

// AllPermissions is a slice of all available permissions.
var AllPermissions = []Permission{
	PermissionPersonsRead,
	PermissionPersonsWrite,
	PermissionRelationshipsWrite,
	PermissionIdentityFlagsReview,
}

// AllSchools is the school scope wildcard carried by operators of every tenant.
const AllSchools = "*"
