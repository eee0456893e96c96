package domain

import "time"

// Role is the closed set of platform roles. It is validated at every
// boundary crossing (request bodies, cache payloads, token claims) rather
// than trusted as an opaque string.
type Role string

const (
	RolePassenger    Role = "passenger"
	RoleDriver       Role = "driver"
	RoleDispatcher   Role = "dispatcher"
	RoleSupport      Role = "support"
	RoleFleetManager Role = "fleet_manager"
	RoleAdmin        Role = "admin"
	RoleSuperAdmin   Role = "super_admin"
)

// ParseRole validates a raw role string against the closed enum.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RolePassenger, RoleDriver, RoleDispatcher, RoleSupport,
		RoleFleetManager, RoleAdmin, RoleSuperAdmin:
		return Role(raw), nil
	}
	return "", ErrInvalidInput.WithMessage("unknown role: " + raw)
}

// Status is the identity lifecycle state. pending→active happens only
// through successful code verification; suspended and inactive are reachable
// only by privileged operation and never auto-recover.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusInactive  Status = "inactive"
)

// Identity is a platform account keyed by its canonical identifier
// (E.164 phone or lowercased email). Rows are never physically deleted;
// deactivation flips status only.
type Identity struct {
	ID             string     `json:"id"`
	PhoneNumber    string     `json:"phone_number"`
	Email          string     `json:"email,omitempty"`
	PasswordHash   string     `json:"-"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Role           Role       `json:"role"`
	Status         Status     `json:"status"`
	DateOfBirth    string     `json:"date_of_birth,omitempty"` // YYYY-MM-DD
	Gender         string     `json:"gender,omitempty"`
	TokenVersion   int        `json:"-"`
	FaydaID        string     `json:"fayda_id,omitempty"`
	FaydaFrontURL  string     `json:"fayda_id_front_url,omitempty"`
	FaydaBackURL   string     `json:"fayda_id_back_url,omitempty"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// DeliveryAddress returns the address codes should be sent to: the email on
// file when present, otherwise the phone number (SMS).
func (i *Identity) DeliveryAddress() (addr string, viaEmail bool) {
	if i.Email != "" {
		return i.Email, true
	}
	return i.PhoneNumber, false
}

// RegisterRequest carries the registration payload.
type RegisterRequest struct {
	Phone         string `json:"phone" validate:"required"`
	Password      string `json:"password" validate:"required,min=8,max=72"`
	FirstName     string `json:"first_name" validate:"required"`
	LastName      string `json:"last_name" validate:"required"`
	Role          string `json:"role"`
	Email         string `json:"email" validate:"omitempty,email"`
	DateOfBirth   string `json:"date_of_birth"` // expected format: YYYY-MM-DD
	Gender        string `json:"gender"`
	FaydaID       string `json:"fayda_id"`
	FaydaFrontURL string `json:"fayda_id_front_url"`
	FaydaBackURL  string `json:"fayda_id_back_url"`
}

// PassengerProfile is the role-specific row created alongside passenger
// identities in the registration transaction.
type PassengerProfile struct {
	IdentityID string    `json:"identity_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// DriverProfile is the role-specific row created alongside driver identities.
type DriverProfile struct {
	IdentityID string    `json:"identity_id"`
	CreatedAt  time.Time `json:"created_at"`
}
