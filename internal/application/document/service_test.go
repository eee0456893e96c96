package document

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bahir-ride/api/internal/domain"
)

type mockObjectStore struct{ mock.Mock }

func (m *mockObjectStore) UploadBase64(ctx context.Context, key, b64Data string) (string, error) {
	args := m.Called(ctx, key, b64Data)
	return args.String(0), args.Error(1)
}

func (m *mockObjectStore) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

func (m *mockObjectStore) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type mockIdentityStore struct{ mock.Mock }

func (m *mockIdentityStore) Get(ctx context.Context, identityID string) (*domain.Identity, error) {
	args := m.Called(ctx, identityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *mockIdentityStore) UpdateDocuments(ctx context.Context, identityID, frontURL, backURL string) error {
	return m.Called(ctx, identityID, frontURL, backURL).Error(0)
}

type mockRecordStore struct{ mock.Mock }

func (m *mockRecordStore) Create(ctx context.Context, rec *domain.VerificationRecord) error {
	return m.Called(ctx, rec).Error(0)
}

func TestUploadStoresBothFacesAndOpensRecord(t *testing.T) {
	objects := &mockObjectStore{}
	ids := &mockIdentityStore{}
	records := &mockRecordStore{}
	svc := NewService(objects, ids, records)
	ctx := context.Background()

	ids.On("Get", mock.Anything, "id-1").Return(&domain.Identity{ID: "id-1"}, nil)
	objects.On("UploadBase64", mock.Anything, "documents/id-1/fayda-front", "front-data").Return("https://cdn/front", nil)
	objects.On("UploadBase64", mock.Anything, "documents/id-1/fayda-back", "back-data").Return("https://cdn/back", nil)
	ids.On("UpdateDocuments", mock.Anything, "id-1", "https://cdn/front", "https://cdn/back").Return(nil)
	records.On("Create", mock.Anything, mock.MatchedBy(func(rec *domain.VerificationRecord) bool {
		return rec.Kind == domain.VerificationDocument && rec.IdentityID == "id-1" && !rec.Verified
	})).Return(nil)

	identity, err := svc.Upload(ctx, UploadInput{
		IdentityID: "id-1",
		FaydaID:    "6140-1234-5678",
		FrontImage: "front-data",
		BackImage:  "back-data",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/front", identity.FaydaFrontURL)
	assert.Equal(t, "https://cdn/back", identity.FaydaBackURL)
	assert.Equal(t, "6140-1234-5678", identity.FaydaID)
}

func TestUploadCleansUpOnBackFailure(t *testing.T) {
	objects := &mockObjectStore{}
	ids := &mockIdentityStore{}
	records := &mockRecordStore{}
	svc := NewService(objects, ids, records)

	ids.On("Get", mock.Anything, "id-1").Return(&domain.Identity{ID: "id-1"}, nil)
	objects.On("UploadBase64", mock.Anything, "documents/id-1/fayda-front", mock.Anything).Return("https://cdn/front", nil)
	objects.On("UploadBase64", mock.Anything, "documents/id-1/fayda-back", mock.Anything).Return("", assert.AnError)
	objects.On("Delete", mock.Anything, "documents/id-1/fayda-front").Return(nil)

	_, err := svc.Upload(context.Background(), UploadInput{
		IdentityID: "id-1",
		FaydaID:    "6140-1234-5678",
		FrontImage: "front-data",
		BackImage:  "back-data",
	})
	require.Error(t, err)
	objects.AssertCalled(t, "Delete", mock.Anything, "documents/id-1/fayda-front")
	ids.AssertNotCalled(t, "UpdateDocuments", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadRejectsMissingFields(t *testing.T) {
	svc := NewService(&mockObjectStore{}, &mockIdentityStore{}, &mockRecordStore{})

	_, err := svc.Upload(context.Background(), UploadInput{IdentityID: "id-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
