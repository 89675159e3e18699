package actions

import (
	"context"

	"org-dashboard-backend/pkg/invalidation"
	"org-dashboard-backend/pkg/models"
)

// ListPosts returns the organization's posts, newest first
func (a *Actions) ListPosts(ctx context.Context, sess models.Session) ([]models.Post, error) {
	return run(ctx, a, "listPosts", "Failed to fetch posts", func(ctx context.Context) ([]models.Post, error) {
		if err := requireOrg(sess); err != nil {
			return nil, err
		}
		return a.posts.List(ctx, sess.OrgID)
	})
}

// GetPostsByAuthor returns posts written by authorID
func (a *Actions) GetPostsByAuthor(ctx context.Context, sess models.Session, authorID string) ([]models.Post, error) {
	return run(ctx, a, "getPostsByAuthor", "Failed to fetch posts", func(ctx context.Context) ([]models.Post, error) {
		if err := requireOrg(sess); err != nil {
			return nil, err
		}
		return a.posts.ListByAuthor(ctx, authorID, sess.OrgID)
	})
}

// GetPost returns one post of the organization
func (a *Actions) GetPost(ctx context.Context, sess models.Session, id string) (*models.Post, error) {
	return run(ctx, a, "getPost", "Failed to fetch post", func(ctx context.Context) (*models.Post, error) {
		if err := requireOrg(sess); err != nil {
			return nil, err
		}
		return a.posts.GetByID(ctx, id, sess.OrgID)
	})
}

// CreatePost validates input and records the caller as author
func (a *Actions) CreatePost(ctx context.Context, sess models.Session, input models.CreatePostInput) (*models.Post, error) {
	return run(ctx, a, "createPost", "Failed to create post", func(ctx context.Context) (*models.Post, error) {
		if err := requireMember(sess); err != nil {
			return nil, err
		}
		if err := a.validate(input); err != nil {
			return nil, err
		}
		post, err := a.posts.Create(ctx, input, sess.UserID, sess.OrgID)
		if err != nil {
			return nil, err
		}
		a.invalidate(ctx, sess.OrgID, collection(invalidation.EntityPosts))
		return post, nil
	})
}

// UpdatePost applies a partial update
func (a *Actions) UpdatePost(ctx context.Context, sess models.Session, id string, input models.UpdatePostInput) (*models.Post, error) {
	return run(ctx, a, "updatePost", "Failed to update post", func(ctx context.Context) (*models.Post, error) {
		if err := requireOrg(sess); err != nil {
			return nil, err
		}
		if err := a.validate(input); err != nil {
			return nil, err
		}
		post, err := a.posts.Update(ctx, id, sess.OrgID, input)
		if err != nil {
			return nil, err
		}
		a.invalidate(ctx, sess.OrgID, collection(invalidation.EntityPosts), record(invalidation.EntityPosts, id))
		return post, nil
	})
}

// DeletePost removes a post
func (a *Actions) DeletePost(ctx context.Context, sess models.Session, id string) error {
	_, err := run(ctx, a, "deletePost", "Failed to delete post", func(ctx context.Context) (struct{}, error) {
		if err := requireOrg(sess); err != nil {
			return struct{}{}, err
		}
		if err := a.posts.Delete(ctx, id, sess.OrgID); err != nil {
			return struct{}{}, err
		}
		a.invalidate(ctx, sess.OrgID, collection(invalidation.EntityPosts), record(invalidation.EntityPosts, id))
		return struct{}{}, nil
	})
	return err
}
