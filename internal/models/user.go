package models

type Role int

// Role constants. Super admins can do everything admins can, plus
// password resets and capability management.
const (
	RoleLearner    Role = 1
	RoleAdmin      Role = 2
	RoleSuperAdmin Role = 3
)

// User represents a platform account (learner or administrator)
type User struct {
	ID           int    `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	School       string `json:"school,omitempty"`
	ClassName    string `json:"class_name,omitempty"`
	PasswordHash string `json:"-"` // Never serialize password hash
	Role         Role   `json:"role"`
}

// LoginRequest represents a login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenPair carries the access and refresh tokens issued on login or refresh
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// CreateLearnerRequest represents the admin add-learner payload
type CreateLearnerRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	School    string `json:"school,omitempty"`
	ClassName string `json:"class_name,omitempty"`
	Password  string `json:"password,omitempty"`
}

// CreateLearnerResult is returned after a learner account is created
type CreateLearnerResult struct {
	Success bool   `json:"success"`
	UserID  int    `json:"user_id"`
	Email   string `json:"email"`
}

// InviteUsersRequest represents a bulk invitation payload
type InviteUsersRequest struct {
	Users []CreateLearnerRequest `json:"users"`
}

// InviteUserResult holds the outcome for a single invited user
type InviteUserResult struct {
	Email   string `json:"email"`
	Success bool   `json:"success"`
	UserID  int    `json:"user_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// InviteUsersResult aggregates per-user results and a summary
type InviteUsersResult struct {
	Results []InviteUserResult `json:"results"`
	Total   int                `json:"total"`
	Created int                `json:"created"`
	Failed  int                `json:"failed"`
}
