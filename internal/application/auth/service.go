// Package auth orchestrates registration, code delivery, verification,
// login, password reset and session refresh on top of the otc engine, the
// identity store and the session minter.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bahir-ride/api/internal/application/otc"
	"github.com/bahir-ride/api/internal/application/session"
	"github.com/bahir-ride/api/internal/domain"
	"github.com/bahir-ride/api/internal/pkg/id"
	"github.com/bahir-ride/api/internal/pkg/phone"
	"github.com/bahir-ride/api/internal/pkg/validate"
)

// IdentityStore is the durable identity repository the service drives.
type IdentityStore interface {
	GetByIdentifier(ctx context.Context, identifier string) (*domain.Identity, error)
	Get(ctx context.Context, identityID string) (*domain.Identity, error)
	CreateWithProfile(ctx context.Context, u *domain.Identity) error
	Activate(ctx context.Context, identifier string, kind domain.VerificationKind) (*domain.Identity, error)
	TouchLastLogin(ctx context.Context, identityID string) error
	UpdatePasswordHash(ctx context.Context, identityID, hash string) error
	UpdateStatus(ctx context.Context, identityID string, status domain.Status) error
	BumpTokenVersion(ctx context.Context, identityID string) error
	GetPassengerProfile(ctx context.Context, identityID string) (*domain.PassengerProfile, error)
	GetDriverProfile(ctx context.Context, identityID string) (*domain.DriverProfile, error)
}

// VerificationStore mirrors issued codes into the durable audit table.
type VerificationStore interface {
	Replace(ctx context.Context, identityID string, kind domain.VerificationKind, code string, expiresAt time.Time) error
}

// Mailer delivers codes over email.
type Mailer interface {
	SendEmail(to, subject, textBody, htmlBody string) error
}

// SMSSender delivers codes over SMS.
type SMSSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// normalizeIdentifier canonicalizes a raw phone or email and rejects
// blanks before they reach a store lookup.
func normalizeIdentifier(raw string) (string, error) {
	identifier := phone.Normalize(raw)
	if identifier == "" {
		return "", domain.ErrInvalidInput.WithMessage("identifier is required")
	}
	return identifier, nil
}

// VerifyResult is returned from a successful code verification: the
// (possibly just activated) identity plus a fresh session.
type VerifyResult struct {
	Activated bool               `json:"activated"`
	Identity  *domain.Identity   `json:"user"`
	Tokens    *session.TokenPair `json:"tokens"`
}

// Service wires the engine together. All collaborators are injected so
// tests swap real infrastructure for doubles.
type Service struct {
	ids      IdentityStore
	records  VerificationStore
	codes    otc.Service
	limiter  *otc.RateLimiter
	sessions *session.Service
	mailer   Mailer
	sms      SMSSender
	maxPerHr int64
	log      *slog.Logger
}

func NewService(
	ids IdentityStore,
	records VerificationStore,
	codes otc.Service,
	limiter *otc.RateLimiter,
	sessions *session.Service,
	mailer Mailer,
	sms SMSSender,
	maxPerHour int,
	log *slog.Logger,
) *Service {
	return &Service{
		ids:      ids,
		records:  records,
		codes:    codes,
		limiter:  limiter,
		sessions: sessions,
		mailer:   mailer,
		sms:      sms,
		maxPerHr: int64(maxPerHour),
		log:      log,
	}
}

// Register creates a pending identity with its role profile row and sends
// the registration code to the account's delivery address.
func (s *Service) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.Identity, error) {
	if err := validate.Struct(req); err != nil {
		return nil, domain.ErrInvalidInput.WithMessage(err.Error())
	}

	identifier, err := normalizeIdentifier(req.Phone)
	if err != nil {
		return nil, err
	}

	role := domain.RolePassenger
	if req.Role != "" {
		role, err = domain.ParseRole(req.Role)
		if err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	identity := &domain.Identity{
		ID:            id.New(),
		PhoneNumber:   identifier,
		Email:         req.Email,
		PasswordHash:  string(hash),
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Role:          role,
		Status:        domain.StatusPending,
		DateOfBirth:   req.DateOfBirth,
		Gender:        req.Gender,
		FaydaID:       req.FaydaID,
		FaydaFrontURL: req.FaydaFrontURL,
		FaydaBackURL:  req.FaydaBackURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.ids.CreateWithProfile(ctx, identity); err != nil {
		return nil, err
	}

	if err := s.issueAndDeliver(ctx, identity, domain.PurposeRegistration); err != nil {
		return nil, err
	}
	return identity, nil
}

// RequestCode issues a fresh code for an existing identity. Reissuing
// invalidates any prior unconsumed code for the same identifier and
// purpose.
func (s *Service) RequestCode(ctx context.Context, rawIdentifier string, purpose domain.OTCPurpose) error {
	identifier, err := normalizeIdentifier(rawIdentifier)
	if err != nil {
		return err
	}

	identity, err := s.ids.GetByIdentifier(ctx, identifier)
	if err != nil {
		return err
	}
	if identity.Status == domain.StatusSuspended || identity.Status == domain.StatusInactive {
		return domain.ErrUserSuspended
	}

	return s.issueAndDeliver(ctx, identity, purpose)
}

// ResendCode is RequestCode under the name clients know it by.
func (s *Service) ResendCode(ctx context.Context, rawIdentifier string, purpose domain.OTCPurpose) error {
	return s.RequestCode(ctx, rawIdentifier, purpose)
}

func (s *Service) issueAndDeliver(ctx context.Context, identity *domain.Identity, purpose domain.OTCPurpose) error {
	count, err := s.limiter.CheckAndIncrement(ctx, identity.PhoneNumber, purpose)
	if err != nil {
		return domain.ErrStoreUnavailable
	}
	if count > s.maxPerHr {
		return domain.ErrRateLimited
	}

	code, ttl, err := s.codes.Issue(ctx, identity.PhoneNumber, purpose, string(identity.Role))
	if err != nil {
		return err
	}

	addr, viaEmail := identity.DeliveryAddress()
	kind := domain.VerificationPhone
	if viaEmail {
		kind = domain.VerificationEmail
	}

	// The audit mirror is best-effort: the cache row is authoritative and a
	// transient database failure must not block the user from receiving
	// their code.
	if err := s.records.Replace(ctx, identity.ID, kind, code, time.Now().UTC().Add(ttl)); err != nil {
		s.log.Warn("verification mirror write failed",
			"identity_id", identity.ID, "kind", string(kind), "error", err)
	}

	// Delivery is best-effort too: the code is already issued and the
	// client can hit resend, so a provider outage must not roll back the
	// operation that requested the code.
	if viaEmail {
		subject, text, html := codeEmail(identity.FirstName, code, purpose, ttl)
		if err := s.mailer.SendEmail(addr, subject, text, html); err != nil {
			s.log.Warn("verification email delivery failed",
				"identity_id", identity.ID, "error", err)
		}
		return nil
	}
	if err := s.sms.SendSMS(ctx, addr, codeSMS(code, purpose, ttl)); err != nil {
		s.log.Warn("verification sms delivery failed",
			"identity_id", identity.ID, "error", err)
	}
	return nil
}

// VerifyCode consumes the code for identifier+purpose, activates the
// identity when it was pending, and returns a fresh session.
func (s *Service) VerifyCode(ctx context.Context, rawIdentifier string, purpose domain.OTCPurpose, code string) (*VerifyResult, error) {
	identifier, err := normalizeIdentifier(rawIdentifier)
	if err != nil {
		return nil, err
	}

	// Codes are always cached under the account's phone number, whichever
	// identifier the client submitted; resolve it before the cache read.
	owner, err := s.ids.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}

	entry, err := s.codes.Verify(ctx, owner.PhoneNumber, purpose, code)
	if err != nil {
		return nil, err
	}
	if entry.Tag != "" {
		if _, err := domain.ParseRole(entry.Tag); err != nil {
			return nil, domain.ErrCodeInvalid
		}
	}

	kind := domain.VerificationPhone
	if phone.IsEmail(identifier) {
		kind = domain.VerificationEmail
	}
	identity, err := s.ids.Activate(ctx, identifier, kind)
	if err != nil {
		return nil, err
	}

	tokens, err := s.sessions.Issue(identity)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{
		Activated: identity.Status == domain.StatusActive,
		Identity:  identity,
		Tokens:    tokens,
	}, nil
}

// Login authenticates by identifier and password. Pending identities must
// verify first; suspended and inactive identities are refused outright.
func (s *Service) Login(ctx context.Context, rawIdentifier, password string) (*VerifyResult, error) {
	identifier, err := normalizeIdentifier(rawIdentifier)
	if err != nil {
		return nil, err
	}

	identity, err := s.ids.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Same error as a wrong password so probes can't tell accounts
			// apart from passwords.
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	// Status is checked before the password so a pending account gets a
	// verification redirect instead of a misleading wrong-password message.
	switch identity.Status {
	case domain.StatusPending:
		return nil, domain.ErrNotVerified
	case domain.StatusSuspended, domain.StatusInactive:
		return nil, domain.ErrUserSuspended
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	tokens, err := s.sessions.Issue(identity)
	if err != nil {
		return nil, err
	}
	if err := s.ids.TouchLastLogin(ctx, identity.ID); err != nil {
		s.log.Warn("last login stamp failed", "identity_id", identity.ID, "error", err)
	}
	return &VerifyResult{Activated: true, Identity: identity, Tokens: tokens}, nil
}

// Refresh rotates a refresh token into a new session pair.
func (s *Service) Refresh(refreshToken string) (*session.TokenPair, error) {
	return s.sessions.Rotate(refreshToken)
}

// RequestPasswordReset issues a reset code. It reports success even for
// unknown identifiers so the endpoint can't be used to enumerate accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, rawIdentifier string) error {
	identifier, err := normalizeIdentifier(rawIdentifier)
	if err != nil {
		return err
	}

	identity, err := s.ids.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Info("reset requested for unknown identifier")
			return nil
		}
		return err
	}
	if identity.Status == domain.StatusSuspended || identity.Status == domain.StatusInactive {
		return nil
	}

	return s.issueAndDeliver(ctx, identity, domain.PurposeReset)
}

// VerifyResetCode checks a reset code without consuming it, so the client
// can gate the new-password screen before the final submit.
func (s *Service) VerifyResetCode(ctx context.Context, rawIdentifier, code string) error {
	identifier, err := normalizeIdentifier(rawIdentifier)
	if err != nil {
		return err
	}
	owner, err := s.ids.GetByIdentifier(ctx, identifier)
	if err != nil {
		return err
	}
	return s.codes.Peek(ctx, owner.PhoneNumber, domain.PurposeReset, code)
}

// ConfirmPasswordReset consumes the reset code, replaces the password hash
// and bumps the token version so existing sessions die with the old
// password.
func (s *Service) ConfirmPasswordReset(ctx context.Context, rawIdentifier, code, newPassword string) error {
	identifier, err := normalizeIdentifier(rawIdentifier)
	if err != nil {
		return err
	}
	if len(newPassword) < 8 {
		return domain.ErrInvalidInput.WithMessage("password must be at least 8 characters")
	}

	identity, err := s.ids.GetByIdentifier(ctx, identifier)
	if err != nil {
		return err
	}

	if _, err := s.codes.Verify(ctx, identity.PhoneNumber, domain.PurposeReset, code); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.ids.UpdatePasswordHash(ctx, identity.ID, string(hash)); err != nil {
		return err
	}
	if err := s.ids.BumpTokenVersion(ctx, identity.ID); err != nil {
		s.log.Warn("token version bump failed", "identity_id", identity.ID, "error", err)
	}
	return nil
}

// CurrentUser is the identity together with its role-specific profile row.
type CurrentUser struct {
	Identity  *domain.Identity         `json:"identity"`
	Passenger *domain.PassengerProfile `json:"passenger,omitempty"`
	Driver    *domain.DriverProfile    `json:"driver,omitempty"`
}

// GetCurrentUser loads the authenticated identity and its profile row. A
// missing profile row is tolerated: the identity is still returned.
func (s *Service) GetCurrentUser(ctx context.Context, identityID string) (*CurrentUser, error) {
	identity, err := s.ids.Get(ctx, identityID)
	if err != nil {
		return nil, err
	}
	cu := &CurrentUser{Identity: identity}
	switch identity.Role {
	case domain.RolePassenger:
		if p, err := s.ids.GetPassengerProfile(ctx, identity.ID); err == nil {
			cu.Passenger = p
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
	case domain.RoleDriver:
		if d, err := s.ids.GetDriverProfile(ctx, identity.ID); err == nil {
			cu.Driver = d
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
	}
	return cu, nil
}

// SetStatus is the privileged lifecycle transition. Suspension also bumps
// the token version so a suspended account's outstanding refresh tokens
// stop rotating.
func (s *Service) SetStatus(ctx context.Context, identityID string, status domain.Status) error {
	if err := s.ids.UpdateStatus(ctx, identityID, status); err != nil {
		return err
	}
	if status == domain.StatusSuspended || status == domain.StatusInactive {
		if err := s.ids.BumpTokenVersion(ctx, identityID); err != nil {
			s.log.Warn("token version bump failed", "identity_id", identityID, "error", err)
		}
	}
	return nil
}
