package database

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"org-dashboard-backend/pkg/models"
)

func strPtr(s string) *string { return &s }

func TestPostsCRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)

	p1 := &models.Post{Title: "First", AuthorID: "u1", OrganizationID: "org1"}
	require.NoError(t, db.CreatePost(ctx, p1))
	p2 := &models.Post{Title: "Second", Content: strPtr("body"), AuthorID: "u2", OrganizationID: "org1"}
	require.NoError(t, db.CreatePost(ctx, p2))
	require.NoError(t, db.CreatePost(ctx, &models.Post{Title: "Other org", AuthorID: "u1", OrganizationID: "org2"}))

	assert.Equal(t, "id-1", p1.ID)
	assert.Equal(t, "id-2", p2.ID)
	assert.True(t, p2.CreatedAt.After(p1.CreatedAt))

	posts, err := db.ListPosts(ctx, "org1", PostFilter{})
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, p2.ID, posts[0].ID, "newest first")
	assert.Equal(t, p1.ID, posts[1].ID)
	assert.Equal(t, "body", *posts[0].Content)
	assert.Nil(t, posts[1].Content)

	byAuthor, err := db.ListPosts(ctx, "org1", PostFilter{AuthorID: "u1"})
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, p1.ID, byAuthor[0].ID)

	got, err := db.GetPost(ctx, p1.ID, "org1")
	require.NoError(t, err)
	assert.True(t, p1.CreatedAt.Equal(got.CreatedAt))

	_, err = db.GetPost(ctx, p1.ID, "org2")
	assert.ErrorIs(t, err, ErrNotFound)

	var patch Patch
	patch.Set("published", true)
	updated, err := db.UpdatePost(ctx, p1.ID, "org1", patch)
	require.NoError(t, err)
	assert.True(t, updated.Published)
	assert.Equal(t, "First", updated.Title)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	untouched, err := db.GetPost(ctx, p2.ID, "org1")
	require.NoError(t, err)
	assert.False(t, untouched.Published)

	published := true
	n, err := db.CountPosts(ctx, "org1", PostFilter{Published: &published})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, db.DeletePost(ctx, p1.ID, "org1"))
	_, err = db.GetPost(ctx, p1.ID, "org1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, db.DeletePost(ctx, p1.ID, "org1"), ErrNotFound)
}

func TestEmptyPatchChangesNothing(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)

	task := &models.Task{Title: "T", Status: models.TaskStatusTodo, AuthorID: "u1", OrganizationID: "org1"}
	require.NoError(t, db.CreateTask(ctx, task))

	got, err := db.UpdateTask(ctx, task.ID, "org1", nil)
	require.NoError(t, err)
	assert.True(t, task.UpdatedAt.Equal(got.UpdatedAt))
	assert.Equal(t, task.Title, got.Title)

	_, err = db.UpdateTask(ctx, task.ID, "org2", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateRejectsUnknownColumn(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	post := &models.Post{Title: "P", AuthorID: "u1", OrganizationID: "org1"}
	require.NoError(t, db.CreatePost(ctx, post))

	var patch Patch
	patch.Set("organization_id", "org2")
	_, err := db.UpdatePost(ctx, post.ID, "org1", patch)
	assert.Error(t, err)
}

func TestProductPriceRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)

	product := &models.Product{
		Name:           "Desk",
		Price:          decimal.RequireFromString("199.99"),
		Category:       "Furniture",
		AuthorID:       "u1",
		OrganizationID: "org1",
	}
	require.NoError(t, db.CreateProduct(ctx, product))

	got, err := db.GetProduct(ctx, product.ID, "org1")
	require.NoError(t, err)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("199.99")))
	assert.Nil(t, got.PhotoURL)

	byCategory, err := db.ListProducts(ctx, "org1", ProductFilter{Category: "Books"})
	require.NoError(t, err)
	assert.Empty(t, byCategory)

	var patch Patch
	patch.Set("photo_url", nullString(strPtr("https://example.com/desk.png")))
	updated, err := db.UpdateProduct(ctx, product.ID, "org1", patch)
	require.NoError(t, err)
	require.NotNil(t, updated.PhotoURL)
	assert.Equal(t, "https://example.com/desk.png", *updated.PhotoURL)
}

func TestTaskWithoutColumn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)

	task := &models.Task{Title: "Loose", Status: models.TaskStatusTodo, AuthorID: "u1", OrganizationID: "org1"}
	require.NoError(t, db.CreateTask(ctx, task))

	tasks, err := db.ListTasks(ctx, "org1", TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Nil(t, tasks[0].ColumnID)

	done, err := db.ListTasks(ctx, "org1", TaskFilter{Status: models.TaskStatusDone})
	require.NoError(t, err)
	assert.Empty(t, done)
}

func seedColumns(t *testing.T, db *SQLDatabase, orgID string, titles ...string) []string {
	t.Helper()
	ids := make([]string, 0, len(titles))
	for i, title := range titles {
		c := &models.Column{Title: title, Color: models.DefaultColumnColor, Order: i, OrganizationID: orgID}
		require.NoError(t, db.CreateColumn(context.Background(), c))
		ids = append(ids, c.ID)
	}
	return ids
}

func columnIDs(t *testing.T, db *SQLDatabase, orgID string) []string {
	t.Helper()
	cols, err := db.ListColumns(context.Background(), orgID)
	require.NoError(t, err)
	ids := make([]string, 0, len(cols))
	for _, c := range cols {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestReorderColumns(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)

	ids := seedColumns(t, db, "org1", "c1", "c2", "c3")
	c1, c2, c3 := ids[0], ids[1], ids[2]

	require.NoError(t, db.ReorderColumns(ctx, "org1", []string{c3, c1, c2}))
	assert.Equal(t, []string{c3, c1, c2}, columnIDs(t, db, "org1"))

	cols, err := db.ListColumns(ctx, "org1")
	require.NoError(t, err)
	for i, c := range cols {
		assert.Equal(t, i, c.Order)
	}
}

func TestReorderColumnsIsAtomic(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)

	ids := seedColumns(t, db, "org1", "c1", "c2")
	foreign := seedColumns(t, db, "org2", "x")

	err := db.ReorderColumns(ctx, "org1", []string{ids[1], foreign[0], ids[0]})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, ids, columnIDs(t, db, "org1"), "failed batch leaves order untouched")

	require.NoError(t, db.ReorderColumns(ctx, "org1", nil))
}

func TestDeleteColumnUnassignsTasks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)

	ids := seedColumns(t, db, "org1", "todo")
	task := &models.Task{Title: "T", Status: models.TaskStatusTodo, ColumnID: &ids[0], AuthorID: "u1", OrganizationID: "org1"}
	require.NoError(t, db.CreateTask(ctx, task))

	assert.ErrorIs(t, db.DeleteColumn(ctx, ids[0], "org2"), ErrNotFound)
	got, err := db.GetTask(ctx, task.ID, "org1")
	require.NoError(t, err)
	require.NotNil(t, got.ColumnID)

	require.NoError(t, db.DeleteColumn(ctx, ids[0], "org1"))
	got, err = db.GetTask(ctx, task.ID, "org1")
	require.NoError(t, err)
	assert.Nil(t, got.ColumnID)

	n, err := db.CountColumns(ctx, "org1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestVerifyTables(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	seedColumns(t, db, "org1", "a", "b")

	counts, err := db.VerifyTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, counts["board_columns"])
	assert.Equal(t, 0, counts["posts"])
	require.NoError(t, db.HealthCheck(context.Background()))
}
