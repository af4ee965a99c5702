package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"blogapi/app/models"
	"blogapi/app/repositories/mock"
	"blogapi/app/services"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	router   *mux.Router
	posts    *mock.PostRepository
	comments *mock.CommentRepository
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, posts, comments := mock.NewStore()
	logger := zap.NewNop()

	pc := NewPostController(services.NewPostService(store.Posts), logger, nil)
	cc := NewCommentController(services.NewCommentService(store.Comments, store.Posts), logger, nil)

	router := mux.NewRouter()
	router.HandleFunc("/posts", pc.Index).Methods("GET")
	router.HandleFunc("/posts", pc.Create).Methods("POST")
	router.HandleFunc("/posts/{id}", pc.Show).Methods("GET")
	router.HandleFunc("/posts/{id}", pc.Update).Methods("PUT", "PATCH")
	router.HandleFunc("/posts/{id}", pc.Delete).Methods("DELETE")
	router.HandleFunc("/posts/{post_id}/comments", cc.Index).Methods("GET")
	router.HandleFunc("/posts/{post_id}/comments", cc.Create).Methods("POST")
	router.HandleFunc("/comments/{id}", cc.Show).Methods("GET")
	router.HandleFunc("/comments/{id}", cc.Update).Methods("PUT", "PATCH")
	router.HandleFunc("/comments/{id}", cc.Delete).Methods("DELETE")

	return &testEnv{router: router, posts: posts, comments: comments}
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) createPost(t *testing.T) models.Post {
	t.Helper()
	w := e.do("POST", "/posts", `{"title":"Sample Post","author":"John Doe","body":"This is a sample post."}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var post models.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &post))
	return post
}

func (e *testEnv) createComment(t *testing.T, postID string) models.Comment {
	t.Helper()
	w := e.do("POST", "/posts/"+postID+"/comments", `{"author":"Jane Smith","body":"Great post!"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var comment models.Comment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &comment))
	return comment
}
