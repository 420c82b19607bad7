package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledgehub/internal/domain"
)

func TestUserRepository_GetByToken(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	user := &domain.User{Email: "alice@corp.test", Role: domain.RoleHR}
	require.NoError(t, repo.Create(user, "token-alice"))

	got, err := repo.GetByToken("token-alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, domain.RoleHR, got.Role)

	missing, err := repo.GetByToken("token-nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepository_UnassignedRole(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	user := &domain.User{Email: "bob@corp.test"}
	require.NoError(t, repo.Create(user, "token-bob"))

	got, err := repo.GetByToken("token-bob")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.Role)
	assert.Equal(t, []domain.Category{domain.CategoryGeneral}, got.Role.AllowedCategories())
}
