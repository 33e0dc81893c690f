package service

import (
	"context"
	"testing"

	"studyhub/internal/models"
	"studyhub/internal/repository"
	"studyhub/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestProfileService_UpdateProfile(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewProfileService(repository.NewUserRepository(db))
	ctx := context.Background()
	dana := testutil.CreateProfile(t, db, "dana", "Dana Scully")
	testutil.CreateProfile(t, db, "fox", "Fox Mulder")

	updated, err := svc.UpdateProfile(ctx, dana.ID, models.ProfilePatch{
		FullName: ptr("Dr. Dana Scully"),
		Bio:      ptr("Forensic pathology"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Dana Scully", updated.FullName)
	assert.Equal(t, "Forensic pathology", updated.Bio)
	assert.Equal(t, "dana", updated.Username)

	_, err = svc.UpdateProfile(ctx, dana.ID, models.ProfilePatch{Username: ptr("fox")})
	assert.True(t, models.HasCode(err, models.CodeDuplicateConstraint))

	_, err = svc.UpdateProfile(ctx, dana.ID, models.ProfilePatch{Username: ptr("_bad")})
	assert.True(t, models.HasCode(err, models.CodeValidation))

	unchanged, err := svc.UpdateProfile(ctx, dana.ID, models.ProfilePatch{})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Dana Scully", unchanged.FullName)
}

func TestProfileService_GetProfile(t *testing.T) {
	db := testutil.NewTestDB(t)
	svc := NewProfileService(repository.NewUserRepository(db))
	ctx := context.Background()

	_, err := svc.GetProfile(ctx, 0)
	assert.True(t, models.HasCode(err, models.CodeNotAuthenticated))

	_, err = svc.GetProfile(ctx, 99)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}
