package controllers

import (
	"net/http"

	"blogapi/app/metrics"
	"blogapi/app/models"
	"blogapi/app/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	responder
	commentService *services.CommentService
	metrics        *metrics.Metrics
}

// NewCommentController creates a new CommentController. m may be nil.
func NewCommentController(commentService *services.CommentService, logger *zap.Logger, m *metrics.Metrics) *CommentController {
	return &CommentController{
		responder:      responder{logger: logger},
		commentService: commentService,
		metrics:        m,
	}
}

// Index lists the comments of a post
func (cc *CommentController) Index(w http.ResponseWriter, r *http.Request) {
	comments, err := cc.commentService.ListPostComments(r.Context(), mux.Vars(r)["post_id"])
	if err != nil {
		cc.sendError(w, r, err, true)
		return
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	cc.sendJSON(w, http.StatusOK, comments)
}

// Show returns a single comment
func (cc *CommentController) Show(w http.ResponseWriter, r *http.Request) {
	comment, err := cc.commentService.GetComment(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		cc.sendError(w, r, err, true)
		return
	}
	cc.sendJSON(w, http.StatusOK, comment)
}

// Create adds a comment to a post
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	postID := mux.Vars(r)["post_id"]

	fields, err := decodeFields(r, "comment")
	if err != nil {
		cc.sendError(w, r, bodyError(err), true)
		return
	}

	comment, err := cc.commentService.CreateComment(r.Context(), postID, commentParams(fields))
	if err != nil {
		cc.sendError(w, r, err, true)
		return
	}

	cc.metrics.RecordWrite(metrics.EntityComment, metrics.OpCreate)
	cc.logger.Debug("Comment created",
		zap.String("comment_id", comment.ID),
		zap.String("post_id", postID),
	)
	cc.sendJSON(w, http.StatusCreated, comment)
}

// Update edits a comment's author or body
func (cc *CommentController) Update(w http.ResponseWriter, r *http.Request) {
	fields, err := decodeFields(r, "comment")
	if err != nil {
		cc.sendError(w, r, bodyError(err), true)
		return
	}

	comment, err := cc.commentService.UpdateComment(r.Context(), mux.Vars(r)["id"], commentParams(fields))
	if err != nil {
		cc.sendError(w, r, err, true)
		return
	}

	cc.metrics.RecordWrite(metrics.EntityComment, metrics.OpUpdate)
	cc.sendJSON(w, http.StatusOK, comment)
}

// Delete removes a comment
func (cc *CommentController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := cc.commentService.DeleteComment(r.Context(), mux.Vars(r)["id"]); err != nil {
		cc.sendError(w, r, err, true)
		return
	}

	cc.metrics.RecordWrite(metrics.EntityComment, metrics.OpDelete)
	w.WriteHeader(http.StatusNoContent)
}
