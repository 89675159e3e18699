package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"org-dashboard-backend/pkg/apperror"
	"org-dashboard-backend/pkg/database"
	"org-dashboard-backend/pkg/models"
)

func newTestStore(t *testing.T) database.DatabaseInterface {
	t.Helper()
	var mu sync.Mutex
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	db, err := database.NewSQLiteDatabase(context.Background(), ":memory:", database.WithClock(func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func ptr[T any](v T) *T { return &v }

func TestPostScenario(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	posts := NewPostService(newTestStore(t))

	p1, err := posts.Create(ctx, models.CreatePostInput{Title: "P1"}, "user-a", "org-a")
	require.NoError(t, err)
	p2, err := posts.Create(ctx, models.CreatePostInput{Title: "P2", Content: ptr("hello")}, "user-b", "org-a")
	require.NoError(t, err)
	assert.False(t, p1.Published)

	list, err := posts.List(ctx, "org-a")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, p2.ID, list[0].ID)
	assert.Equal(t, p1.ID, list[1].ID)

	updated, err := posts.Update(ctx, p1.ID, "org-a", models.UpdatePostInput{Published: ptr(true)})
	require.NoError(t, err)
	assert.True(t, updated.Published)

	other, err := posts.GetByID(ctx, p2.ID, "org-a")
	require.NoError(t, err)
	assert.False(t, other.Published)
	assert.Equal(t, "hello", *other.Content)

	mine, err := posts.ListByAuthor(ctx, "user-a", "org-a")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, p1.ID, mine[0].ID)
}

func TestCrossOrgIsNotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestStore(t)
	posts := NewPostService(db)
	tasks := NewTaskService(db)

	post, err := posts.Create(ctx, models.CreatePostInput{Title: "secret"}, "u", "org-a")
	require.NoError(t, err)

	_, err = posts.GetByID(ctx, post.ID, "org-b")
	assert.ErrorIs(t, err, ErrPostNotFound)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = posts.GetByID(ctx, "missing", "org-a")
	assert.Equal(t, "Post not found", err.Error(), "absent and foreign are indistinguishable")

	_, err = posts.Update(ctx, post.ID, "org-b", models.UpdatePostInput{Title: ptr("stolen")})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.ErrorIs(t, posts.Delete(ctx, post.ID, "org-b"), apperror.ErrNotFound)

	_, err = tasks.GetByID(ctx, "nope", "org-a")
	assert.Equal(t, "Task not found", err.Error())
}

func TestEmptyUpdateKeepsEverything(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	products := NewProductService(newTestStore(t))

	p, err := products.Create(ctx, models.CreateProductInput{
		Name:        "Lamp",
		Description: ptr("warm light"),
		Price:       decimal.RequireFromString("25.50"),
		Category:    "Furniture",
	}, "u", "org-a")
	require.NoError(t, err)

	got, err := products.Update(ctx, p.ID, "org-a", models.UpdateProductInput{})
	require.NoError(t, err)
	assert.Equal(t, p.Name, got.Name)
	assert.Equal(t, *p.Description, *got.Description)
	assert.True(t, p.Price.Equal(got.Price))
	assert.Equal(t, p.Category, got.Category)
	assert.True(t, p.UpdatedAt.Equal(got.UpdatedAt))

	// Empty name/category are skipped; explicit null clears the description.
	got, err = products.Update(ctx, p.ID, "org-a", models.UpdateProductInput{
		Name:        ptr(""),
		Category:    ptr(""),
		Description: models.Null[string](),
	})
	require.NoError(t, err)
	assert.Equal(t, "Lamp", got.Name)
	assert.Equal(t, "Furniture", got.Category)
	assert.Nil(t, got.Description)
}

func TestDeleteThenGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	products := NewProductService(newTestStore(t))

	p, err := products.Create(ctx, models.CreateProductInput{Name: "Book", Category: "Books"}, "u", "org-a")
	require.NoError(t, err)
	require.NoError(t, products.Delete(ctx, p.ID, "org-a"))

	_, err = products.GetByID(ctx, p.ID, "org-a")
	assert.ErrorIs(t, err, ErrProductNotFound)

	books, err := products.ListByCategory(ctx, "Books", "org-a")
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestTaskColumnAssignment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestStore(t)
	tasks := NewTaskService(db)
	columns := NewColumnService(db)

	task, err := tasks.Create(ctx, models.CreateTaskInput{Title: "Write docs", Status: models.TaskStatusTodo}, "u", "org-a")
	require.NoError(t, err)
	assert.Nil(t, task.ColumnID)

	list, err := tasks.List(ctx, "org-a")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].ColumnID)

	col, err := columns.Create(ctx, models.CreateColumnInput{Title: "Doing"}, "org-a")
	require.NoError(t, err)
	foreign, err := columns.Create(ctx, models.CreateColumnInput{Title: "Theirs"}, "org-b")
	require.NoError(t, err)

	moved, err := tasks.Update(ctx, task.ID, "org-a", models.UpdateTaskInput{ColumnID: models.NewNullable(col.ID)})
	require.NoError(t, err)
	assert.True(t, moved.InColumn(col.ID))

	_, err = tasks.Update(ctx, task.ID, "org-a", models.UpdateTaskInput{ColumnID: models.NewNullable(foreign.ID)})
	assert.ErrorIs(t, err, ErrColumnNotFound)

	cleared, err := tasks.Update(ctx, task.ID, "org-a", models.UpdateTaskInput{ColumnID: models.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, cleared.ColumnID)

	inProgress := models.TaskStatusInProgress
	_, err = tasks.Update(ctx, task.ID, "org-a", models.UpdateTaskInput{Status: &inProgress})
	require.NoError(t, err)
	byStatus, err := tasks.ListByStatus(ctx, models.TaskStatusInProgress, "org-a")
	require.NoError(t, err)
	assert.Len(t, byStatus, 1)
}

func TestColumnDefaultsAndReorder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	columns := NewColumnService(newTestStore(t))

	var ids []string
	for i, title := range []string{"c1", "c2", "c3"} {
		c, err := columns.Create(ctx, models.CreateColumnInput{Title: title, Order: ptr(i)}, "org-a")
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	first, err := columns.GetByID(ctx, ids[0], "org-a")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultColumnColor, first.Color)

	require.NoError(t, columns.Reorder(ctx, "org-a", []string{ids[2], ids[0], ids[1]}))
	list, err := columns.List(ctx, "org-a")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{ids[2], ids[0], ids[1]}, []string{list[0].ID, list[1].ID, list[2].ID})

	err = columns.Reorder(ctx, "org-a", []string{ids[0], ids[0]})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	err = columns.Reorder(ctx, "org-b", ids)
	assert.ErrorIs(t, err, ErrColumnNotFound)

	assert.NoError(t, columns.Reorder(ctx, "org-a", nil))
}

func TestOverview(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestStore(t)
	posts := NewPostService(db)
	tasks := NewTaskService(db)

	_, err := posts.Create(ctx, models.CreatePostInput{Title: "a", Published: ptr(true)}, "u", "org-a")
	require.NoError(t, err)
	_, err = posts.Create(ctx, models.CreatePostInput{Title: "b"}, "u", "org-a")
	require.NoError(t, err)
	_, err = tasks.Create(ctx, models.CreateTaskInput{Title: "t", Status: models.TaskStatusDone}, "u", "org-a")
	require.NoError(t, err)
	_, err = tasks.Create(ctx, models.CreateTaskInput{Title: "x", Status: models.TaskStatusTodo}, "u", "org-b")
	require.NoError(t, err)

	overview, err := NewOverviewService(db).Get(ctx, "org-a")
	require.NoError(t, err)
	assert.Equal(t, 2, overview.Posts)
	assert.Equal(t, 1, overview.PublishedPosts)
	assert.Equal(t, 1, overview.Tasks)
	assert.Equal(t, 1, overview.TasksByStatus[models.TaskStatusDone])
	assert.Equal(t, 0, overview.TasksByStatus[models.TaskStatusTodo])
}
