package models

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the wire shape returned by POST /auth/login.
type LoginResponse struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// Session pairs the bearer token with the profile it was issued for. The two
// fields are persisted and cleared together; a token without a profile (or
// the reverse) is never observable.
type Session struct {
	Token string      `json:"token"`
	User  UserProfile `json:"user"`
}

// ConnectivityReport is the payload of the unauthenticated /test route.
type ConnectivityReport struct {
	Message   string `json:"message"`
	Origin    string `json:"origin"`
	Timestamp string `json:"timestamp"`
}
