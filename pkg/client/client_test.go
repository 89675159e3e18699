package client

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	handler "org-dashboard-backend/api"
	"org-dashboard-backend/pkg/apperror"
	"org-dashboard-backend/pkg/config"
	"org-dashboard-backend/pkg/database"
	"org-dashboard-backend/pkg/invalidation"
	"org-dashboard-backend/pkg/kanban"
	"org-dashboard-backend/pkg/models"
	"org-dashboard-backend/pkg/querycache"
	"org-dashboard-backend/pkg/utils"
)

const secret = "client-test-secret"

var member = models.Session{UserID: "user-1", OrgID: "org-1"}

type harness struct {
	server    *httptest.Server
	bus       *invalidation.LocalBus
	taskLists atomic.Int32
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := database.NewSQLiteDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	h := &harness{bus: invalidation.NewLocalBus()}
	router := handler.NewRouter(handler.Deps{
		Config: &config.Config{
			Environment:    "test",
			JWTSecret:      secret,
			AllowedOrigins: []string{"*"},
			RequestTimeout: 5 * time.Second,
		},
		DB:        db,
		Publisher: h.bus,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	h.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/api/tasks" {
			h.taskLists.Add(1)
		}
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(h.server.Close)
	return h
}

func (h *harness) client(t *testing.T, sess models.Session) *Client {
	t.Helper()
	tok, _, err := utils.NewJWTService(secret).GenerateAccessToken(sess)
	require.NoError(t, err)
	return New(h.server.URL, tok, WithHTTPClient(h.server.Client()))
}

func ptr[T any](v T) *T { return &v }

func TestClientRoundTrip(t *testing.T) {
	h := newHarness(t)
	c := h.client(t, member)
	ctx := context.Background()

	product, err := c.CreateProduct(ctx, models.CreateProductInput{
		Name: "Desk", Price: decimal.RequireFromString("120.50"), Category: "Furniture",
	})
	require.NoError(t, err)
	assert.True(t, product.Price.Equal(decimal.RequireFromString("120.50")))

	byCategory, err := c.ProductsByCategory(ctx, "Furniture")
	require.NoError(t, err)
	require.Len(t, byCategory, 1)

	categories, err := c.ProductCategories(ctx)
	require.NoError(t, err)
	assert.Contains(t, categories, "Books")

	post, err := c.CreatePost(ctx, models.CreatePostInput{Title: "Draft", Content: ptr("body")})
	require.NoError(t, err)

	updated, err := c.UpdatePost(ctx, post.ID, models.UpdatePostInput{Content: models.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, updated.Content)
	assert.Equal(t, "Draft", updated.Title)

	require.NoError(t, c.DeletePost(ctx, post.ID))
	_, err = c.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, "Post not found", err.Error())
}

func TestClientErrorKinds(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.client(t, member).CreateTask(ctx, models.CreateTaskInput{Title: "x", Status: "LATER"})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = New(h.server.URL, "bogus", WithHTTPClient(h.server.Client())).ListTasks(ctx)
	assert.ErrorIs(t, err, apperror.ErrAuth)

	_, err = h.client(t, models.Session{UserID: "u"}).ListTasks(ctx)
	assert.ErrorIs(t, err, apperror.ErrAuth)
	assert.Equal(t, "Organization not found", err.Error())
}

func TestQueriesCacheReads(t *testing.T) {
	h := newHarness(t)
	q := NewQueries(h.client(t, member), querycache.New(), member.OrgID)
	ctx := context.Background()

	_, err := q.Tasks(ctx)
	require.NoError(t, err)
	_, err = q.Tasks(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, h.taskLists.Load())
}

func TestCreateTaskAppendsToCachedList(t *testing.T) {
	h := newHarness(t)
	q := NewQueries(h.client(t, member), querycache.New(), member.OrgID)
	ctx := context.Background()

	tasks, err := q.Tasks(ctx)
	require.NoError(t, err)
	require.Empty(t, tasks)

	created, err := q.CreateTask(ctx, models.CreateTaskInput{Title: "New", Status: models.TaskStatusTodo})
	require.NoError(t, err)

	tasks, err = q.Tasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, created.ID, tasks[0].ID)
	assert.EqualValues(t, 1, h.taskLists.Load(), "append must not refetch")
}

func TestUpdateTaskRollsBackOnFailure(t *testing.T) {
	h := newHarness(t)
	q := NewQueries(h.client(t, member), querycache.New(), member.OrgID)
	ctx := context.Background()

	task, err := q.CreateTask(ctx, models.CreateTaskInput{Title: "Card", Status: models.TaskStatusTodo})
	require.NoError(t, err)
	_, err = q.Tasks(ctx)
	require.NoError(t, err)

	// Unknown column: the server rejects the move
	err = q.MoveTask(ctx, task.ID, "no-such-column")
	require.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, querycache.RolledBack, q.TaskUpdateState())
	assert.False(t, q.IsPending())

	listKey := querycache.ListKey(invalidation.EntityTasks, member.OrgID)
	cached, ok := querycache.Get[[]models.Task](q.Cache(), listKey)
	require.True(t, ok)
	assert.Nil(t, cached[0].ColumnID)
	assert.False(t, q.Cache().IsStale(listKey))
}

func TestUpdateTaskCommitsAndInvalidates(t *testing.T) {
	h := newHarness(t)
	c := h.client(t, member)
	q := NewQueries(c, querycache.New(), member.OrgID)
	ctx := context.Background()

	column, err := c.CreateColumn(ctx, models.CreateColumnInput{Title: "Doing"})
	require.NoError(t, err)
	task, err := q.CreateTask(ctx, models.CreateTaskInput{Title: "Card", Status: models.TaskStatusTodo})
	require.NoError(t, err)
	_, err = q.Tasks(ctx)
	require.NoError(t, err)
	_, err = q.Task(ctx, task.ID)
	require.NoError(t, err)

	require.NoError(t, q.MoveTask(ctx, task.ID, column.ID))
	assert.Equal(t, querycache.Committed, q.TaskUpdateState())

	listKey := querycache.ListKey(invalidation.EntityTasks, member.OrgID)
	assert.True(t, q.Cache().IsStale(listKey))
	assert.True(t, q.Cache().IsStale(querycache.DetailKey(invalidation.EntityTasks, member.OrgID, task.ID)))

	tasks, err := q.Tasks(ctx)
	require.NoError(t, err)
	assert.True(t, tasks[0].InColumn(column.ID))
}

func TestReorderColumnsThroughQueries(t *testing.T) {
	h := newHarness(t)
	c := h.client(t, member)
	q := NewQueries(c, querycache.New(), member.OrgID)
	ctx := context.Background()

	var ids []string
	for i, title := range []string{"A", "B", "C"} {
		col, err := c.CreateColumn(ctx, models.CreateColumnInput{Title: title, Order: ptr(i)})
		require.NoError(t, err)
		ids = append(ids, col.ID)
	}
	_, err := q.Columns(ctx)
	require.NoError(t, err)

	require.NoError(t, q.ReorderColumns(ctx, []string{ids[2], ids[0], ids[1]}))
	columns, err := q.Columns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{ids[2], ids[0], ids[1]}, []string{columns[0].ID, columns[1].ID, columns[2].ID})

	// A foreign ID fails the whole batch and the cached order is restored
	err = q.ReorderColumns(ctx, []string{ids[0], "foreign"})
	require.ErrorIs(t, err, apperror.ErrNotFound)
	columns, err = q.Columns(ctx)
	require.NoError(t, err)
	assert.Equal(t, ids[2], columns[0].ID)
}

func TestListenMarksStale(t *testing.T) {
	h := newHarness(t)
	q := NewQueries(h.client(t, member), querycache.New(), member.OrgID)
	other := h.client(t, models.Session{UserID: "user-2", OrgID: member.OrgID})
	ctx := context.Background()

	cancel, err := q.Listen(h.bus)
	require.NoError(t, err)
	defer cancel()

	_, err = q.Posts(ctx)
	require.NoError(t, err)

	_, err = other.CreatePost(ctx, models.CreatePostInput{Title: "From a colleague"})
	require.NoError(t, err)

	assert.True(t, q.Cache().IsStale(querycache.ListKey(invalidation.EntityPosts, member.OrgID)))
	posts, err := q.Posts(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestDragOverThenCancelKeepsServerAssignment(t *testing.T) {
	h := newHarness(t)
	c := h.client(t, member)
	q := NewQueries(c, querycache.New(), member.OrgID)
	ctx := context.Background()

	c1, err := c.CreateColumn(ctx, models.CreateColumnInput{Title: "C1", Order: ptr(0)})
	require.NoError(t, err)
	c2, err := c.CreateColumn(ctx, models.CreateColumnInput{Title: "C2", Order: ptr(1)})
	require.NoError(t, err)
	task, err := c.CreateTask(ctx, models.CreateTaskInput{Title: "T", Status: models.TaskStatusTodo, ColumnID: &c1.ID})
	require.NoError(t, err)

	columns, err := q.Columns(ctx)
	require.NoError(t, err)
	tasks, err := q.Tasks(ctx)
	require.NoError(t, err)

	engine := kanban.NewEngine(kanban.NewBoard(columns, tasks), q)
	require.NoError(t, engine.DragStart(kanban.TaskItem{ID: task.ID, ColumnID: c1.ID}))
	require.NoError(t, engine.DragOver(ctx, kanban.ColumnItem{ID: c2.ID}))
	_, err = engine.DragCancel()
	require.NoError(t, err)

	stored, err := c.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, stored.InColumn(c2.ID))
}

func TestClientAuthorFilters(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	mine := h.client(t, member)
	theirs := h.client(t, models.Session{UserID: "user-2", OrgID: member.OrgID})

	_, err := mine.CreatePost(ctx, models.CreatePostInput{Title: "Mine"})
	require.NoError(t, err)
	_, err = theirs.CreatePost(ctx, models.CreatePostInput{Title: "Theirs"})
	require.NoError(t, err)
	_, err = theirs.CreateTask(ctx, models.CreateTaskInput{Title: "Theirs", Status: models.TaskStatusTodo})
	require.NoError(t, err)
	_, err = theirs.CreateProduct(ctx, models.CreateProductInput{
		Name: "Lamp", Price: decimal.RequireFromString("15"), Category: "Furniture",
	})
	require.NoError(t, err)

	posts, err := mine.PostsByAuthor(ctx, "user-2")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Theirs", posts[0].Title)

	tasks, err := mine.TasksByAuthor(ctx, member.UserID)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	products, err := mine.ProductsByAuthor(ctx, "user-2")
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestTaskWritesRefreshFilteredLists(t *testing.T) {
	h := newHarness(t)
	q := NewQueries(h.client(t, member), querycache.New(), member.OrgID)
	ctx := context.Background()

	task, err := q.CreateTask(ctx, models.CreateTaskInput{Title: "Card", Status: models.TaskStatusTodo})
	require.NoError(t, err)
	todo, err := q.TasksByStatus(ctx, models.TaskStatusTodo)
	require.NoError(t, err)
	require.Len(t, todo, 1)

	_, err = q.UpdateTask(ctx, task.ID, models.UpdateTaskInput{Status: ptr(models.TaskStatusDone)})
	require.NoError(t, err)
	todo, err = q.TasksByStatus(ctx, models.TaskStatusTodo)
	require.NoError(t, err)
	assert.Empty(t, todo)
	done, err := q.TasksByStatus(ctx, models.TaskStatusDone)
	require.NoError(t, err)
	assert.Len(t, done, 1)

	second, err := q.CreateTask(ctx, models.CreateTaskInput{Title: "Second", Status: models.TaskStatusTodo})
	require.NoError(t, err)
	todo, err = q.TasksByStatus(ctx, models.TaskStatusTodo)
	require.NoError(t, err)
	require.Len(t, todo, 1)
	assert.Equal(t, second.ID, todo[0].ID)

	require.NoError(t, q.DeleteTask(ctx, second.ID))
	todo, err = q.TasksByStatus(ctx, models.TaskStatusTodo)
	require.NoError(t, err)
	assert.Empty(t, todo)
}
