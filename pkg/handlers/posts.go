package handlers

import (
	"net/http"

	"org-dashboard-backend/pkg/actions"
	"org-dashboard-backend/pkg/config"
	"org-dashboard-backend/pkg/models"
	"org-dashboard-backend/pkg/utils"
)

// PostHandler 文章处理器
type PostHandler struct {
	config  *config.Config
	actions *actions.Actions
}

// NewPostHandler 创建文章处理器
func NewPostHandler(cfg *config.Config, a *actions.Actions) *PostHandler {
	return &PostHandler{config: cfg, actions: a}
}

// ListPosts 列出组织的文章, optionally filtered by ?author_id=
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	var (
		posts []models.Post
		err   error
	)
	if authorID := utils.GetQueryParam(r, "author_id", ""); authorID != "" {
		posts, err = h.actions.GetPostsByAuthor(r.Context(), session(r), authorID)
	} else {
		posts, err = h.actions.ListPosts(r.Context(), session(r))
	}
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	writeList(w, posts)
}

// GetPost 获取指定文章
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.actions.GetPost(r.Context(), session(r), idParam(r))
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, post)
}

// CreatePost 创建文章
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var input models.CreatePostInput
	if !decodeBody(h.config, w, r, &input) {
		return
	}
	post, err := h.actions.CreatePost(r.Context(), session(r), input)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteCreatedResponse(w, post)
}

// UpdatePost 更新文章
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var input models.UpdatePostInput
	if !decodeBody(h.config, w, r, &input) {
		return
	}
	post, err := h.actions.UpdatePost(r.Context(), session(r), idParam(r), input)
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, post)
}

// DeletePost 删除文章
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id := idParam(r)
	if err := h.actions.DeletePost(r.Context(), session(r), id); err != nil {
		utils.WriteAppError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, map[string]string{"id": id})
}
