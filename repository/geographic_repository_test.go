package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camden-git/electoralbackend/models"
	"github.com/camden-git/electoralbackend/testutil"
)

func TestGeographicCreateAndList(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormGeographicRepository(db)
	ctx := context.Background()

	parent := &models.GeographicEntity{Name: "Cercado", Type: "Provincia", Code: testutil.Ptr("CBBA-01")}
	require.NoError(t, repo.Create(ctx, parent))
	assert.NotZero(t, parent.ID)
	assert.Nil(t, parent.ParentName)

	child := &models.GeographicEntity{Name: "Zona Norte", Type: "Distrito", ParentID: &parent.ID}
	require.NoError(t, repo.Create(ctx, child))
	require.NotNil(t, child.ParentName)
	assert.Equal(t, "Cercado", *child.ParentName)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, child.ID, list[0].ID, "newest first")
	require.NotNil(t, list[0].ParentName)
	assert.Equal(t, "Cercado", *list[0].ParentName)
	assert.Nil(t, list[1].ParentName)

	candidates, err := repo.ListParentCandidates(ctx)
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "Cercado", candidates[0].Name)
	assert.Equal(t, "Zona Norte", candidates[1].Name)

	got, err := repo.GetByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, "Distrito", got.Type)
	assert.Equal(t, "Cercado", *got.ParentName)

	_, err = repo.GetByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGeographicCreateWithMissingParent(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormGeographicRepository(db)

	err := repo.Create(context.Background(), &models.GeographicEntity{Name: "Huérfano", Type: "Distrito", ParentID: testutil.Ptr(uint(42))})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "fk_id_geografico", vErr.Field)

	var count int64
	db.Model(&models.GeographicEntity{}).Count(&count)
	assert.Zero(t, count)
}

func TestGeographicDeleteGuardsChildren(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormGeographicRepository(db)
	ctx := context.Background()

	parent := testutil.CreateGeographic(t, db, "La Paz", "Departamento", nil)
	for _, name := range []string{"Murillo", "Omasuyos", "Pacajes"} {
		testutil.CreateGeographic(t, db, name, "Provincia", &parent.ID)
	}

	_, err := repo.Delete(ctx, parent.ID)
	var cErr *ConflictError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, int64(3), cErr.Data["totalHijos"])
	assert.Contains(t, cErr.Message, "3 hijo(s)")

	_, err = repo.GetByID(ctx, parent.ID)
	assert.NoError(t, err, "parent must survive a refused delete")
}

func TestGeographicDeleteGuardsPollingPlaces(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormGeographicRepository(db)

	district := testutil.CreateGeographic(t, db, "Distrito 1", "Distrito", nil)
	testutil.CreatePollingPlace(t, db, "Unidad Educativa Bolívar", district.ID)

	_, err := repo.Delete(context.Background(), district.ID)
	var cErr *ConflictError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, int64(1), cErr.Data["totalRecintos"])
}

func TestGeographicDeleteLeafThenParent(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormGeographicRepository(db)
	ctx := context.Background()

	parent := testutil.CreateGeographic(t, db, "Cercado", "Provincia", nil)
	child := testutil.CreateGeographic(t, db, "Zona Norte", "Distrito", &parent.ID)

	deleted, err := repo.Delete(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, "Zona Norte", deleted.Name)

	_, err = repo.Delete(ctx, parent.ID)
	require.NoError(t, err)

	_, err = repo.Delete(ctx, parent.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGeographicUpdateReplacesAllFields(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormGeographicRepository(db)
	ctx := context.Background()

	root := testutil.CreateGeographic(t, db, "Bolivia", "País", nil)
	entity := &models.GeographicEntity{Name: "Sacaba", Type: "Municipio", Code: testutil.Ptr("S-1"), Location: testutil.Ptr("Valle"), ParentID: &root.ID}
	require.NoError(t, repo.Create(ctx, entity))

	update := &models.GeographicEntity{ID: entity.ID, Name: "Sacaba Centro", Type: "Distrito"}
	require.NoError(t, repo.Update(ctx, update))

	got, err := repo.GetByID(ctx, entity.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sacaba Centro", got.Name)
	assert.Equal(t, "Distrito", got.Type)
	assert.Nil(t, got.Code)
	assert.Nil(t, got.Location)
	assert.Nil(t, got.ParentID)

	err = repo.Update(ctx, &models.GeographicEntity{ID: 777, Name: "x", Type: "y"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGeographicUpdatePreventsCycles(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewGormGeographicRepository(db)
	ctx := context.Background()

	a := testutil.CreateGeographic(t, db, "A", "Departamento", nil)
	b := testutil.CreateGeographic(t, db, "B", "Provincia", &a.ID)
	c := testutil.CreateGeographic(t, db, "C", "Municipio", &b.ID)

	tests := []struct {
		name     string
		id       uint
		parentID uint
	}{
		{"self parent", a.ID, a.ID},
		{"child as parent", a.ID, b.ID},
		{"grandchild as parent", a.ID, c.ID},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := repo.Update(ctx, &models.GeographicEntity{ID: tc.id, Name: "A", Type: "Departamento", ParentID: testutil.Ptr(tc.parentID)})
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, "fk_id_geografico", vErr.Field)
		})
	}

	// moving a leaf under a sibling branch is fine
	d := testutil.CreateGeographic(t, db, "D", "Provincia", &a.ID)
	require.NoError(t, repo.Update(ctx, &models.GeographicEntity{ID: c.ID, Name: "C", Type: "Municipio", ParentID: &d.ID}))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, d.ID, *got.ParentID)
	assert.Equal(t, "D", *got.ParentName)
}
