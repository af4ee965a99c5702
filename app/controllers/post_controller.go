package controllers

import (
	"net/http"

	"blogapi/app/metrics"
	"blogapi/app/models"
	"blogapi/app/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// PostController handles HTTP requests for blog posts
type PostController struct {
	responder
	postService *services.PostService
	metrics     *metrics.Metrics
}

// NewPostController creates a new PostController. m may be nil.
func NewPostController(postService *services.PostService, logger *zap.Logger, m *metrics.Metrics) *PostController {
	return &PostController{
		responder:   responder{logger: logger},
		postService: postService,
		metrics:     m,
	}
}

// Index handles listing all posts
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := pc.postService.ListPosts(r.Context())
	if err != nil {
		pc.sendError(w, r, err, false)
		return
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	pc.sendJSON(w, http.StatusOK, posts)
}

// Show handles displaying a single post
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	post, err := pc.postService.GetPost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		pc.sendError(w, r, err, false)
		return
	}
	pc.sendJSON(w, http.StatusOK, post)
}

// Create handles creating a new post
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r, "post")
	if err != nil {
		pc.sendError(w, r, bodyError(err), false)
		return
	}

	post, err := pc.postService.CreatePost(r.Context(), postParams(fields))
	if err != nil {
		pc.sendError(w, r, err, false)
		return
	}

	pc.metrics.RecordWrite(metrics.EntityPost, metrics.OpCreate)
	pc.logger.Debug("Post created", zap.String("post_id", post.ID))
	pc.sendJSON(w, http.StatusCreated, post)
}

// Update handles editing an existing post. Only supplied fields change.
func (pc *PostController) Update(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r, "post")
	if err != nil {
		pc.sendError(w, r, bodyError(err), false)
		return
	}

	post, err := pc.postService.UpdatePost(r.Context(), mux.Vars(r)["id"], postParams(fields))
	if err != nil {
		pc.sendError(w, r, err, false)
		return
	}

	pc.metrics.RecordWrite(metrics.EntityPost, metrics.OpUpdate)
	pc.sendJSON(w, http.StatusOK, post)
}

// Delete handles deleting a post and its comments
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := pc.postService.DeletePost(r.Context(), id); err != nil {
		pc.sendError(w, r, err, false)
		return
	}

	pc.metrics.RecordWrite(metrics.EntityPost, metrics.OpDelete)
	pc.logger.Debug("Post deleted", zap.String("post_id", id))
	w.WriteHeader(http.StatusNoContent)
}
