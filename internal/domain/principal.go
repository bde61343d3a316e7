package domain

// Role is the platform-level role carried by an authenticated session.
type Role string

const (
	RoleAdmin          Role = "admin"
	RoleFoundationUser Role = "foundation_user"
	RoleExternal       Role = "external"
)

// Principal is the authenticated caller. A zero Principal means no session.
type Principal struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

func (p Principal) IsZero() bool {
	return p.UserID == ""
}

// ActorSide distinguishes which party of a request an actor operates as.
type ActorSide string

const (
	SideFoundation ActorSide = "foundation"
	SideAdopter    ActorSide = "adopter"
)

type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleEditor MemberRole = "editor"
	MemberRoleViewer MemberRole = "viewer"
)

// Membership grants a user staff-level access to one foundation.
type Membership struct {
	UserID       string     `json:"userId"`
	FoundationID int64      `json:"foundationId"`
	Role         MemberRole `json:"role"`
}

// CanWrite reports whether the member sub-role grants mutations.
func (m Membership) CanWrite() bool {
	return m.Role == MemberRoleOwner || m.Role == MemberRoleEditor
}

// AccessInfo is the minimal projection used for authorization checks.
// It must never leak beyond the access resolver.
type AccessInfo struct {
	RequestID     int64  `json:"requestId"`
	FoundationID  int64  `json:"foundationId"`
	AdopterUserID string `json:"adopterUserId"`
}

// Grant is the resolved outcome of a successful access check.
// FoundationID is only set for foundation-side grants.
type Grant struct {
	Side         ActorSide `json:"side"`
	FoundationID int64     `json:"foundationId,omitempty"`
}
