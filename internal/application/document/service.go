// Package document handles Fayda national ID intake: the front and back
// images land in object storage and a document verification record is
// opened for manual review.
package document

import (
	"context"
	"fmt"
	"time"

	"github.com/bahir-ride/api/internal/domain"
	"github.com/bahir-ride/api/internal/pkg/id"
)

// ObjectStore is the document image sink.
type ObjectStore interface {
	UploadBase64(ctx context.Context, key, b64Data string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// IdentityStore persists the stored image URLs on the identity row.
type IdentityStore interface {
	Get(ctx context.Context, identityID string) (*domain.Identity, error)
	UpdateDocuments(ctx context.Context, identityID, frontURL, backURL string) error
}

// RecordStore opens the audit record for the pending document review.
type RecordStore interface {
	Create(ctx context.Context, rec *domain.VerificationRecord) error
}

// UploadInput carries both ID faces as base64 data URIs plus the printed
// Fayda number.
type UploadInput struct {
	IdentityID string `json:"-"`
	FaydaID    string `json:"fayda_id" validate:"required"`
	FrontImage string `json:"front_image" validate:"required"`
	BackImage  string `json:"back_image" validate:"required"`
}

const reviewWindow = 72 * time.Hour

type Service struct {
	objects ObjectStore
	ids     IdentityStore
	records RecordStore
}

func NewService(objects ObjectStore, ids IdentityStore, records RecordStore) *Service {
	return &Service{objects: objects, ids: ids, records: records}
}

// Upload stores both ID faces and opens an unverified document record.
// The record stays unverified until a support operator approves it.
func (s *Service) Upload(ctx context.Context, input UploadInput) (*domain.Identity, error) {
	if input.FaydaID == "" || input.FrontImage == "" || input.BackImage == "" {
		return nil, domain.ErrInvalidInput.WithMessage("fayda_id, front_image and back_image are required")
	}

	identity, err := s.ids.Get(ctx, input.IdentityID)
	if err != nil {
		return nil, err
	}

	frontKey := fmt.Sprintf("documents/%s/fayda-front", identity.ID)
	backKey := fmt.Sprintf("documents/%s/fayda-back", identity.ID)

	frontURL, err := s.objects.UploadBase64(ctx, frontKey, input.FrontImage)
	if err != nil {
		return nil, err
	}
	backURL, err := s.objects.UploadBase64(ctx, backKey, input.BackImage)
	if err != nil {
		// Don't leave a half-uploaded pair behind.
		_ = s.objects.Delete(ctx, frontKey)
		return nil, err
	}

	if err := s.ids.UpdateDocuments(ctx, identity.ID, frontURL, backURL); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	rec := &domain.VerificationRecord{
		ID:         id.New(),
		IdentityID: identity.ID,
		Kind:       domain.VerificationDocument,
		ExpiresAt:  now.Add(reviewWindow),
		CreatedAt:  now,
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, err
	}

	identity.FaydaID = input.FaydaID
	identity.FaydaFrontURL = frontURL
	identity.FaydaBackURL = backURL
	return identity, nil
}

// ViewURLs returns short-lived presigned links to the stored ID faces for
// the review tooling.
func (s *Service) ViewURLs(ctx context.Context, identityID string) (front, back string, err error) {
	if _, err = s.ids.Get(ctx, identityID); err != nil {
		return "", "", err
	}
	front, err = s.objects.PresignedURL(ctx, fmt.Sprintf("documents/%s/fayda-front", identityID), 15*time.Minute)
	if err != nil {
		return "", "", err
	}
	back, err = s.objects.PresignedURL(ctx, fmt.Sprintf("documents/%s/fayda-back", identityID), 15*time.Minute)
	if err != nil {
		return "", "", err
	}
	return front, back, nil
}
