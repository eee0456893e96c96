package domain

import "time"

// VerificationKind tags what an identity proved control of.
type VerificationKind string

const (
	VerificationPhone    VerificationKind = "phone"
	VerificationEmail    VerificationKind = "email"
	VerificationDocument VerificationKind = "document"
)

// OTCPurpose distinguishes concurrent code use-cases sharing one identifier.
type OTCPurpose string

const (
	PurposeRegistration OTCPurpose = "registration"
	PurposeLogin        OTCPurpose = "login"
	PurposeReset        OTCPurpose = "reset"
)

// ParsePurpose validates a raw purpose string.
func ParsePurpose(raw string) (OTCPurpose, error) {
	switch OTCPurpose(raw) {
	case PurposeRegistration, PurposeLogin, PurposeReset:
		return OTCPurpose(raw), nil
	}
	return "", ErrInvalidInput.WithMessage("unknown purpose: " + raw)
}

// VerificationRecord is the durable audit row mirroring an issued code.
// At most one unverified record per (identity, kind) exists at a time;
// issuing a new code replaces prior unverified records of the same kind.
// A record is mutated exactly once, to flip verified=true.
type VerificationRecord struct {
	ID         string           `json:"id"`
	IdentityID string           `json:"identity_id"`
	Kind       VerificationKind `json:"kind"`
	Code       string           `json:"-"`
	Verified   bool             `json:"verified"`
	VerifiedAt *time.Time       `json:"verified_at,omitempty"`
	ExpiresAt  time.Time        `json:"expires_at"`
	CreatedAt  time.Time        `json:"created_at"`
}
