package post

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/inkpress/core/internal/middleware"
	"github.com/inkpress/core/internal/models"
	"github.com/inkpress/core/internal/pkg/jwt"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api")
	api.Use(middleware.Session())
	NewHandler(svc).RegisterRoutes(api)
	return r
}

func sessionToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := jwt.Sign(userID, time.Minute)
	require.NoError(t, err)
	return token
}

func multipartBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func createFields() map[string]string {
	return map[string]string{
		"title":       "Hello",
		"content":     "Body",
		"author":      "jane",
		"category":    primitive.NewObjectID().Hex(),
		"subcategory": primitive.NewObjectID().Hex(),
	}
}

func TestHandlerListShape(t *testing.T) {
	svc, posts, _, _ := newTestService()
	posts.rows = []models.PostDetail{{
		Post: models.Post{
			ID:          primitive.NewObjectID(),
			Title:       "First",
			Status:      models.StatusPublished,
			PublishDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		},
	}}
	posts.total = 7
	r := newTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/posts?page=1&limit=3", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Posts      []map[string]any `json:"posts"`
		TotalPages int              `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 3, body.TotalPages)
	require.Len(t, body.Posts, 1)
	assert.Equal(t, "02-01-2024", body.Posts[0]["publish_date"])
	assert.Nil(t, body.Posts[0]["category"])
	assert.Nil(t, body.Posts[0]["categoryName"])
}

func TestHandlerCreateMissingField(t *testing.T) {
	svc, _, _, _ := newTestService()
	r := newTestRouter(svc)

	fields := createFields()
	delete(fields, "title")
	buf, ct := multipartBody(t, fields)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/posts", buf)
	req.Header.Set("Content-Type", ct)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "title is required")
}

func TestHandlerCreateWithoutSession(t *testing.T) {
	svc, _, _, _ := newTestService()
	r := newTestRouter(svc)

	buf, ct := multipartBody(t, createFields())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/posts", buf)
	req.Header.Set("Content-Type", ct)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandlerCreateAuthenticated(t *testing.T) {
	svc, posts, _, _ := newTestService()
	r := newTestRouter(svc)

	buf, ct := multipartBody(t, createFields())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/posts", buf)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, "u1"))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Post created successfully")
	assert.Len(t, posts.inserts, 1)
}

func TestHandlerCreateUnknownUser(t *testing.T) {
	svc, _, _, _ := newTestService()
	r := newTestRouter(svc)

	buf, ct := multipartBody(t, createFields())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/posts", buf)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, "ghost"))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "user not found")
}

func TestHandlerUpdateMissingTarget(t *testing.T) {
	svc, _, _, _ := newTestService()
	r := newTestRouter(svc)

	fields := createFields()
	fields["_id"] = primitive.NewObjectID().Hex()
	buf, ct := multipartBody(t, fields)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/posts", buf)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, "u1"))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "post not found")
}

func TestHandlerDelete(t *testing.T) {
	svc, posts, _, _ := newTestService()
	id := primitive.NewObjectID()
	posts.byID[id] = &models.Post{ID: id}
	r := newTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/posts",
		strings.NewReader(`{"id":"`+id.Hex()+`"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, "u1"))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Post deleted successfully")
	assert.Equal(t, []primitive.ObjectID{id}, posts.deleted)
}

func TestHandlerDeleteEmptyBody(t *testing.T) {
	svc, _, _, _ := newTestService()
	r := newTestRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/posts", nil)
	req.Header.Set("Authorization", "Bearer "+sessionToken(t, "u1"))
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "post id is required")
}
