package client

import (
	"context"
	"slices"

	"org-dashboard-backend/pkg/invalidation"
	"org-dashboard-backend/pkg/models"
	"org-dashboard-backend/pkg/querycache"
)

// TaskUpdate is the input of the optimistic task update mutation
type TaskUpdate struct {
	ID    string
	Input models.UpdateTaskInput
}

// Queries serves reads from the cache and runs writes as cache-aware
// mutations for one organization. It satisfies the kanban engine's Mutator.
type Queries struct {
	client *Client
	cache  *querycache.Cache
	orgID  string

	createTask     *querycache.Mutation[models.CreateTaskInput, *models.Task]
	updateTask     *querycache.Mutation[TaskUpdate, *models.Task]
	deleteTask     *querycache.Mutation[string, struct{}]
	reorderColumns *querycache.Mutation[[]string, []models.Column]
}

// NewQueries binds client and cache to orgID
func NewQueries(client *Client, cache *querycache.Cache, orgID string) *Queries {
	q := &Queries{client: client, cache: cache, orgID: orgID}

	q.createTask = querycache.NewMutation(cache,
		func(ctx context.Context, in models.CreateTaskInput) (*models.Task, error) {
			return client.CreateTask(ctx, in)
		},
		querycache.MutationOptions[models.CreateTaskInput, *models.Task]{
			OnSuccess: func(c *querycache.Cache, _ models.CreateTaskInput, task *models.Task) {
				querycache.Update(c, q.list(invalidation.EntityTasks), func(tasks []models.Task) []models.Task {
					return append(slices.Clone(tasks), *task)
				})
				// the new task may belong to any filtered view
				c.InvalidateFiltered(invalidation.EntityTasks, q.orgID)
			},
		})

	q.updateTask = querycache.NewMutation(cache,
		func(ctx context.Context, in TaskUpdate) (*models.Task, error) {
			return client.UpdateTask(ctx, in.ID, in.Input)
		},
		querycache.MutationOptions[TaskUpdate, *models.Task]{
			Affected: func(in TaskUpdate) []querycache.Key {
				return []querycache.Key{q.list(invalidation.EntityTasks), q.detail(invalidation.EntityTasks, in.ID)}
			},
			Optimistic: func(c *querycache.Cache, in TaskUpdate) {
				querycache.Update(c, q.list(invalidation.EntityTasks), func(tasks []models.Task) []models.Task {
					out := slices.Clone(tasks)
					for i := range out {
						if out[i].ID == in.ID {
							out[i] = in.Input.Apply(out[i])
						}
					}
					return out
				})
				querycache.Update(c, q.detail(invalidation.EntityTasks, in.ID), func(task *models.Task) *models.Task {
					next := in.Input.Apply(*task)
					return &next
				})
			},
			OnSuccess: func(c *querycache.Cache, in TaskUpdate, _ *models.Task) {
				c.InvalidateCollections(invalidation.EntityTasks, q.orgID)
				c.Invalidate(q.detail(invalidation.EntityTasks, in.ID))
			},
		})

	q.deleteTask = querycache.NewMutation(cache,
		func(ctx context.Context, id string) (struct{}, error) {
			return struct{}{}, client.DeleteTask(ctx, id)
		},
		querycache.MutationOptions[string, struct{}]{
			OnSuccess: func(c *querycache.Cache, id string, _ struct{}) {
				c.InvalidateCollections(invalidation.EntityTasks, q.orgID)
				c.Remove(q.detail(invalidation.EntityTasks, id))
			},
		})

	q.reorderColumns = querycache.NewMutation(cache,
		func(ctx context.Context, ids []string) ([]models.Column, error) {
			return client.ReorderColumns(ctx, ids)
		},
		querycache.MutationOptions[[]string, []models.Column]{
			Affected: func([]string) []querycache.Key {
				return []querycache.Key{q.list(invalidation.EntityColumns)}
			},
			Optimistic: func(c *querycache.Cache, ids []string) {
				querycache.Update(c, q.list(invalidation.EntityColumns), func(columns []models.Column) []models.Column {
					return reorder(columns, ids)
				})
			},
			OnSuccess: func(c *querycache.Cache, _ []string, columns []models.Column) {
				querycache.Set(c, q.list(invalidation.EntityColumns), columns)
			},
		})

	return q
}

func (q *Queries) list(entity string) querycache.Key {
	return querycache.ListKey(entity, q.orgID)
}

func (q *Queries) detail(entity, id string) querycache.Key {
	return querycache.DetailKey(entity, q.orgID, id)
}

// Listen keeps the cache in step with server invalidation events; onApplied
// runs after each event has marked the cache
func (q *Queries) Listen(sub invalidation.Subscriber, onApplied ...func(invalidation.Event)) (cancel func(), err error) {
	return q.cache.Listen(sub, q.orgID, onApplied...)
}

// InvalidateBoard marks cached task and column lists stale so the next read refetches
func (q *Queries) InvalidateBoard() {
	q.cache.InvalidateCollections(invalidation.EntityTasks, q.orgID)
	q.cache.InvalidateCollections(invalidation.EntityColumns, q.orgID)
}

// Cache exposes the underlying cache
func (q *Queries) Cache() *querycache.Cache {
	return q.cache
}

// IsPending reports whether any task or column mutation is in flight
func (q *Queries) IsPending() bool {
	return q.createTask.IsPending() || q.updateTask.IsPending() ||
		q.deleteTask.IsPending() || q.reorderColumns.IsPending()
}

// TaskUpdateState is the lifecycle state of the task update mutation
func (q *Queries) TaskUpdateState() querycache.MutationState {
	return q.updateTask.State()
}

// Reads

func (q *Queries) Posts(ctx context.Context) ([]models.Post, error) {
	return querycache.Fetch(ctx, q.cache, q.list(invalidation.EntityPosts), q.client.ListPosts)
}

func (q *Queries) Post(ctx context.Context, id string) (*models.Post, error) {
	return querycache.Fetch(ctx, q.cache, q.detail(invalidation.EntityPosts, id), func(ctx context.Context) (*models.Post, error) {
		return q.client.GetPost(ctx, id)
	})
}

func (q *Queries) Products(ctx context.Context) ([]models.Product, error) {
	return querycache.Fetch(ctx, q.cache, q.list(invalidation.EntityProducts), q.client.ListProducts)
}

func (q *Queries) ProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	key := querycache.FilterKey(invalidation.EntityProducts, q.orgID, "category", category)
	return querycache.Fetch(ctx, q.cache, key, func(ctx context.Context) ([]models.Product, error) {
		return q.client.ProductsByCategory(ctx, category)
	})
}

func (q *Queries) Tasks(ctx context.Context) ([]models.Task, error) {
	return querycache.Fetch(ctx, q.cache, q.list(invalidation.EntityTasks), q.client.ListTasks)
}

func (q *Queries) Task(ctx context.Context, id string) (*models.Task, error) {
	return querycache.Fetch(ctx, q.cache, q.detail(invalidation.EntityTasks, id), func(ctx context.Context) (*models.Task, error) {
		return q.client.GetTask(ctx, id)
	})
}

func (q *Queries) TasksByStatus(ctx context.Context, status models.TaskStatus) ([]models.Task, error) {
	key := querycache.FilterKey(invalidation.EntityTasks, q.orgID, "status", string(status))
	return querycache.Fetch(ctx, q.cache, key, func(ctx context.Context) ([]models.Task, error) {
		return q.client.TasksByStatus(ctx, status)
	})
}

func (q *Queries) Columns(ctx context.Context) ([]models.Column, error) {
	return querycache.Fetch(ctx, q.cache, q.list(invalidation.EntityColumns), q.client.ListColumns)
}

// Writes

// CreateTask appends the created task to the cached list on success
func (q *Queries) CreateTask(ctx context.Context, input models.CreateTaskInput) (*models.Task, error) {
	return q.createTask.Run(ctx, input)
}

// UpdateTask applies the patch optimistically and rolls back on failure
func (q *Queries) UpdateTask(ctx context.Context, id string, input models.UpdateTaskInput) (*models.Task, error) {
	return q.updateTask.Run(ctx, TaskUpdate{ID: id, Input: input})
}

// MoveTask reassigns a task to columnID; an empty columnID unassigns it
func (q *Queries) MoveTask(ctx context.Context, taskID, columnID string) error {
	input := models.UpdateTaskInput{ColumnID: models.Null[string]()}
	if columnID != "" {
		input.ColumnID = models.NewNullable(columnID)
	}
	_, err := q.UpdateTask(ctx, taskID, input)
	return err
}

func (q *Queries) DeleteTask(ctx context.Context, id string) error {
	_, err := q.deleteTask.Run(ctx, id)
	return err
}

// ReorderColumns reorders the cached columns immediately and stores the
// server's answer, restoring the previous order on failure.
func (q *Queries) ReorderColumns(ctx context.Context, ids []string) error {
	_, err := q.reorderColumns.Run(ctx, ids)
	return err
}

// CreateColumn invalidates the column lists. Every write below is invalidate-only.
func (q *Queries) CreateColumn(ctx context.Context, input models.CreateColumnInput) (*models.Column, error) {
	column, err := q.client.CreateColumn(ctx, input)
	if err != nil {
		return nil, err
	}
	q.cache.InvalidateCollections(invalidation.EntityColumns, q.orgID)
	return column, nil
}

func (q *Queries) UpdateColumn(ctx context.Context, id string, input models.UpdateColumnInput) (*models.Column, error) {
	column, err := q.client.UpdateColumn(ctx, id, input)
	if err != nil {
		return nil, err
	}
	q.cache.InvalidateCollections(invalidation.EntityColumns, q.orgID)
	q.cache.Invalidate(q.detail(invalidation.EntityColumns, id))
	return column, nil
}

func (q *Queries) DeleteColumn(ctx context.Context, id string) error {
	if err := q.client.DeleteColumn(ctx, id); err != nil {
		return err
	}
	q.cache.InvalidateCollections(invalidation.EntityColumns, q.orgID)
	// Its tasks were unassigned server-side
	q.cache.InvalidateEntity(invalidation.EntityTasks, q.orgID)
	return nil
}

func (q *Queries) CreatePost(ctx context.Context, input models.CreatePostInput) (*models.Post, error) {
	post, err := q.client.CreatePost(ctx, input)
	if err != nil {
		return nil, err
	}
	q.cache.InvalidateCollections(invalidation.EntityPosts, q.orgID)
	return post, nil
}

func (q *Queries) UpdatePost(ctx context.Context, id string, input models.UpdatePostInput) (*models.Post, error) {
	post, err := q.client.UpdatePost(ctx, id, input)
	if err != nil {
		return nil, err
	}
	q.cache.InvalidateCollections(invalidation.EntityPosts, q.orgID)
	q.cache.Invalidate(q.detail(invalidation.EntityPosts, id))
	return post, nil
}

func (q *Queries) DeletePost(ctx context.Context, id string) error {
	if err := q.client.DeletePost(ctx, id); err != nil {
		return err
	}
	q.cache.InvalidateCollections(invalidation.EntityPosts, q.orgID)
	q.cache.Remove(q.detail(invalidation.EntityPosts, id))
	return nil
}

func (q *Queries) CreateProduct(ctx context.Context, input models.CreateProductInput) (*models.Product, error) {
	product, err := q.client.CreateProduct(ctx, input)
	if err != nil {
		return nil, err
	}
	q.cache.InvalidateCollections(invalidation.EntityProducts, q.orgID)
	return product, nil
}

func (q *Queries) UpdateProduct(ctx context.Context, id string, input models.UpdateProductInput) (*models.Product, error) {
	product, err := q.client.UpdateProduct(ctx, id, input)
	if err != nil {
		return nil, err
	}
	q.cache.InvalidateCollections(invalidation.EntityProducts, q.orgID)
	q.cache.Invalidate(q.detail(invalidation.EntityProducts, id))
	return product, nil
}

func (q *Queries) DeleteProduct(ctx context.Context, id string) error {
	if err := q.client.DeleteProduct(ctx, id); err != nil {
		return err
	}
	q.cache.InvalidateCollections(invalidation.EntityProducts, q.orgID)
	q.cache.Remove(q.detail(invalidation.EntityProducts, id))
	return nil
}

// reorder returns columns in ids order with Order set to the index.
// Columns missing from ids keep their relative order after the listed ones.
func reorder(columns []models.Column, ids []string) []models.Column {
	out := make([]models.Column, 0, len(columns))
	for _, id := range ids {
		if i := slices.IndexFunc(columns, func(c models.Column) bool { return c.ID == id }); i >= 0 {
			out = append(out, columns[i])
		}
	}
	for _, c := range columns {
		if !slices.Contains(ids, c.ID) {
			out = append(out, c)
		}
	}
	for i := range out {
		out[i].Order = i
	}
	return out
}
