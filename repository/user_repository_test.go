package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/electoralbackend/models"
	"github.com/camden-git/electoralbackend/testutil"
)

func newUser(t *testing.T, username, password string, roleID uint) *models.User {
	t.Helper()
	u := &models.User{Username: username, RoleID: roleID}
	require.NoError(t, u.SetPassword(password))
	return u
}

func TestUserCreateRejectsDuplicates(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()
	role := testutil.RoleByName(t, db, models.OperatorRoleName)

	first := newUser(t, "jperez", "x", role.ID)
	require.NoError(t, repo.Create(ctx, first))
	require.NotNil(t, first.Role)
	assert.Equal(t, models.OperatorRoleName, first.Role.Name)

	err := repo.Create(ctx, newUser(t, "jperez", "y", role.ID))
	var cErr *ConflictError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, "El nombre de usuario ya existe", cErr.Message)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUserCreateRequiresExistingRole(t *testing.T) {
	repo := NewGormUserRepository(testutil.NewTestDB(t))

	err := repo.Create(context.Background(), newUser(t, "ana", "x", 99))
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "id_rol", vErr.Field)
}

func TestUserUpdatePasswordHandling(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()
	operator := testutil.RoleByName(t, db, models.OperatorRoleName)
	supervisor := testutil.RoleByName(t, db, models.SupervisorRoleName)

	user := newUser(t, "mlopez", "original", operator.ID)
	require.NoError(t, repo.Create(ctx, user))
	originalHash := user.PasswordHash

	updated, err := repo.Update(ctx, user.ID, UserChanges{Username: "mlopez2", RoleID: supervisor.ID, Password: "   "})
	require.NoError(t, err)
	assert.Equal(t, "mlopez2", updated.Username)
	assert.Equal(t, models.SupervisorRoleName, updated.Role.Name)

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, originalHash, stored.PasswordHash, "blank password keeps the hash")

	_, err = repo.Update(ctx, user.ID, UserChanges{Username: "mlopez2", RoleID: supervisor.ID, Password: "original"})
	require.NoError(t, err)
	stored, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, originalHash, stored.PasswordHash, "a supplied password is always rehashed")
	assert.True(t, stored.CheckPassword("original"))
}

func TestUserUpdateUniquenessExcludesSelf(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()
	role := testutil.RoleByName(t, db, models.OperatorRoleName)

	a := newUser(t, "a", "x", role.ID)
	b := newUser(t, "b", "x", role.ID)
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	_, err := repo.Update(ctx, a.ID, UserChanges{Username: "a", RoleID: role.ID})
	assert.NoError(t, err)

	_, err = repo.Update(ctx, a.ID, UserChanges{Username: "b", RoleID: role.ID})
	var cErr *ConflictError
	assert.ErrorAs(t, err, &cErr)

	_, err = repo.Update(ctx, 404, UserChanges{Username: "c", RoleID: role.ID})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserExpiryAndActiveFlag(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()
	role := testutil.RoleByName(t, db, models.OperatorRoleName)
	now := time.Now()

	user := newUser(t, "temporal", "x", role.ID)
	require.NoError(t, repo.Create(ctx, user))
	assert.True(t, user.IsActive(now))

	past := now.Add(-time.Hour)
	updated, err := repo.Update(ctx, user.ID, UserChanges{Username: "temporal", RoleID: role.ID, ExpiresAt: &past, SetExpiry: true})
	require.NoError(t, err)
	assert.False(t, updated.IsActive(now))

	future := now.Add(time.Hour)
	updated, err = repo.Update(ctx, user.ID, UserChanges{Username: "temporal", RoleID: role.ID, ExpiresAt: &future, SetExpiry: true})
	require.NoError(t, err)
	assert.True(t, updated.IsActive(now))

	// without SetExpiry the stored value is kept
	updated, err = repo.Update(ctx, user.ID, UserChanges{Username: "temporal", RoleID: role.ID})
	require.NoError(t, err)
	require.NotNil(t, updated.ExpiresAt)
}

func TestUserDeleteIsPermanent(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormUserRepository(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "borrar", "x", models.OperatorRoleName)

	deleted, err := repo.Delete(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "borrar", deleted.Username)

	_, err = repo.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.Delete(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// the name is free again
	require.NoError(t, repo.Create(ctx, newUser(t, "borrar", "x", user.RoleID)))
}

func TestUserListNewestFirstWithRole(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormUserRepository(db)
	testutil.CreateUser(t, db, "primero", "x", models.OperatorRoleName)
	testutil.CreateUser(t, db, "segundo", "x", models.AdminRoleName)

	users, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "segundo", users[0].Username)
	require.NotNil(t, users[0].Role)
	assert.Equal(t, models.AdminRoleName, users[0].Role.Name)

	byName, err := repo.GetByUsername(context.Background(), "primero")
	require.NoError(t, err)
	assert.Equal(t, models.OperatorRoleName, byName.Role.Name)
}

func TestRoleRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormRoleRepository(db)
	ctx := context.Background()

	roles, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 3)
	assert.Equal(t, models.AdminRoleName, roles[0].Name)

	admin, err := repo.GetByName(ctx, models.AdminRoleName)
	require.NoError(t, err)
	assert.True(t, admin.HasPermission("user.manage"))

	_, err = repo.GetByName(ctx, "Invitado")
	assert.ErrorIs(t, err, ErrNotFound)
}
