package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeJSON(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, out))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestGetPostsListsOnlyPublished(t *testing.T) {
	_, app, db := newTestServer(t)
	seedPost(t, db, &models.Post{Title: "Public", Status: models.PostStatusPublished})
	seedPost(t, db, &models.Post{Title: "Hidden", Status: models.PostStatusDraft})

	resp := doRequest(t, app, http.MethodGet, "/api/posts/", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var posts []models.Post
	decodeJSON(t, resp, &posts)
	require.Len(t, posts, 1)
	assert.Equal(t, "Public", posts[0].Title)
}

func TestGetPostVisibilityMasking(t *testing.T) {
	s, app, db := newTestServer(t)
	adaToken := registerUser(t, s, "ada")
	bobToken := registerUser(t, s, "bob")
	post := seedPost(t, db, &models.Post{Author: "ada", Status: models.PostStatusDraft})

	anonResp := doRequest(t, app, http.MethodGet, "/api/posts/1", "", nil)
	require.Equal(t, http.StatusNotFound, anonResp.StatusCode)
	anonBody := readBody(t, anonResp)

	bobResp := doRequest(t, app, http.MethodGet, "/api/posts/1", bobToken, nil)
	require.Equal(t, http.StatusNotFound, bobResp.StatusCode)

	adaResp := doRequest(t, app, http.MethodGet, "/api/posts/1", adaToken, nil)
	require.Equal(t, http.StatusOK, adaResp.StatusCode)

	var got models.Post
	decodeJSON(t, adaResp, &got)
	assert.Equal(t, post.ID, got.ID)
	assert.NotEmpty(t, got.ContentHTML)

	// After the post is truly gone, the genuine miss is byte-identical to
	// the earlier masked denial.
	require.NoError(t, db.Delete(&models.Post{}, post.ID).Error)
	missingResp := doRequest(t, app, http.MethodGet, "/api/posts/1", "", nil)
	require.Equal(t, http.StatusNotFound, missingResp.StatusCode)
	assert.Equal(t, anonBody, readBody(t, missingResp))
}

func TestCreatePostRequiresAuth(t *testing.T) {
	_, app, _ := newTestServer(t)

	resp := doRequest(t, app, http.MethodPost, "/api/posts/", "",
		strings.NewReader(`{"title":"T","content":"C"}`))
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreatePost(t *testing.T) {
	s, app, _ := newTestServer(t)
	token := registerUser(t, s, "ada")

	resp := doRequest(t, app, http.MethodPost, "/api/posts/", token,
		strings.NewReader(`{"title":"First","content":"Hello world","tags":["Go","go"]}`))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var post models.Post
	decodeJSON(t, resp, &post)
	assert.Equal(t, "ada", post.Author)
	assert.Equal(t, models.PostStatusPublished, post.Status)
	assert.NotNil(t, post.PublishedAt)
	assert.Equal(t, []string{"go"}, post.Tags)
	assert.NotEmpty(t, post.Excerpt)

	badResp := doRequest(t, app, http.MethodPost, "/api/posts/", token,
		strings.NewReader(`{"content":"no title"}`))
	defer func() { _ = badResp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, badResp.StatusCode)
}

func TestCreateScheduledPost(t *testing.T) {
	s, app, _ := newTestServer(t)
	token := registerUser(t, s, "ada")

	resp := doRequest(t, app, http.MethodPost, "/api/posts/", token,
		strings.NewReader(`{"title":"Later","content":"body","status":"scheduled","scheduled_at":"2031-01-01T10:00:00Z"}`))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var post models.Post
	decodeJSON(t, resp, &post)
	assert.Equal(t, models.PostStatusScheduled, post.Status)
	require.NotNil(t, post.ScheduledAt)
	assert.Nil(t, post.PublishedAt)

	// Missing due time is rejected.
	badResp := doRequest(t, app, http.MethodPost, "/api/posts/", token,
		strings.NewReader(`{"title":"Later","content":"body","status":"scheduled"}`))
	defer func() { _ = badResp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, badResp.StatusCode)
}

func TestUpdatePostOwnership(t *testing.T) {
	s, app, db := newTestServer(t)
	adaToken := registerUser(t, s, "ada")
	bobToken := registerUser(t, s, "bob")
	seedPost(t, db, &models.Post{Author: "ada", Status: models.PostStatusPublished})

	bobResp := doRequest(t, app, http.MethodPut, "/api/posts/1", bobToken,
		strings.NewReader(`{"title":"Hijacked"}`))
	defer func() { _ = bobResp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, bobResp.StatusCode)

	adaResp := doRequest(t, app, http.MethodPut, "/api/posts/1", adaToken,
		strings.NewReader(`{"title":"Renamed"}`))
	require.Equal(t, http.StatusOK, adaResp.StatusCode)

	var post models.Post
	decodeJSON(t, adaResp, &post)
	assert.Equal(t, "Renamed", post.Title)
}

func TestDeletePost(t *testing.T) {
	s, app, db := newTestServer(t)
	token := registerUser(t, s, "ada")
	seedPost(t, db, &models.Post{Author: "ada", Status: models.PostStatusPublished})

	resp := doRequest(t, app, http.MethodDelete, "/api/posts/1", token, nil)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	getResp := doRequest(t, app, http.MethodGet, "/api/posts/1", token, nil)
	defer func() { _ = getResp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestGetAuthorPostsRequiresSelf(t *testing.T) {
	s, app, db := newTestServer(t)
	adaToken := registerUser(t, s, "ada")
	bobToken := registerUser(t, s, "bob")
	seedPost(t, db, &models.Post{Author: "ada", Status: models.PostStatusDraft})
	seedPost(t, db, &models.Post{Author: "ada", Status: models.PostStatusPublished})

	// A foreign listing looks exactly like a listing for an author that
	// does not exist.
	bobResp := doRequest(t, app, http.MethodGet, "/api/posts/author/ada", bobToken, nil)
	defer func() { _ = bobResp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, bobResp.StatusCode)

	ghostResp := doRequest(t, app, http.MethodGet, "/api/posts/author/ghost", bobToken, nil)
	defer func() { _ = ghostResp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, ghostResp.StatusCode)

	adaResp := doRequest(t, app, http.MethodGet, "/api/posts/author/ada", adaToken, nil)
	require.Equal(t, http.StatusOK, adaResp.StatusCode)

	var posts []models.Post
	decodeJSON(t, adaResp, &posts)
	assert.Len(t, posts, 2)
}

// multipartPostRequest builds a post create/update request with form
// fields and an optional cover file.
func multipartPostRequest(t *testing.T, method, path, token string, fields map[string]string, cover []byte) *http.Request {
	t.Helper()
	body := bytes.NewBuffer(nil)
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if cover != nil {
		part, err := writer.CreateFormFile("cover", "cover.png")
		require.NoError(t, err)
		_, err = part.Write(cover)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestCreatePostWithCoverUpload(t *testing.T) {
	s, app, _ := newTestServer(t)
	token := registerUser(t, s, "ada")

	req := multipartPostRequest(t, http.MethodPost, "/api/posts/", token,
		map[string]string{"title": "Illustrated", "content": "body"}, smallPNG(t))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var post models.Post
	decodeJSON(t, resp, &post)
	assert.Equal(t, "Illustrated", post.Title)
	require.NotEmpty(t, post.CoverImageURL)

	// The stored cover URL is directly servable.
	serveResp := doRequest(t, app, http.MethodGet, post.CoverImageURL, "", nil)
	defer func() { _ = serveResp.Body.Close() }()
	assert.Equal(t, http.StatusOK, serveResp.StatusCode)
}

func TestCreatePostAbortsWhenCoverFails(t *testing.T) {
	s, app, db := newTestServer(t)
	token := registerUser(t, s, "ada")

	req := multipartPostRequest(t, http.MethodPost, "/api/posts/", token,
		map[string]string{"title": "Illustrated", "content": "body"}, []byte("not an image"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Zero(t, count, "a failed cover upload must not commit the post")
}

func TestCreatePostRejectsDanglingCoverURL(t *testing.T) {
	s, app, db := newTestServer(t)
	token := registerUser(t, s, "ada")

	ghost := strings.Repeat("0", 64)
	resp := doRequest(t, app, http.MethodPost, "/api/posts/", token,
		strings.NewReader(`{"title":"T","content":"body","cover_image_url":"/media/i/`+ghost+`/1080.webp"}`))
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.Post{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdatePostCoverViaMultipart(t *testing.T) {
	s, app, db := newTestServer(t)
	token := registerUser(t, s, "ada")
	seedPost(t, db, &models.Post{Author: "ada", Status: models.PostStatusPublished})

	req := multipartPostRequest(t, http.MethodPut, "/api/posts/1", token,
		map[string]string{"title": "Illustrated"}, smallPNG(t))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var post models.Post
	decodeJSON(t, resp, &post)
	assert.Equal(t, "Illustrated", post.Title)
	assert.NotEmpty(t, post.CoverImageURL)
}

func TestUpdatePostRejectsDanglingCoverURL(t *testing.T) {
	s, app, db := newTestServer(t)
	token := registerUser(t, s, "ada")
	seedPost(t, db, &models.Post{Author: "ada", Status: models.PostStatusPublished})

	ghost := strings.Repeat("0", 64)
	resp := doRequest(t, app, http.MethodPut, "/api/posts/1", token,
		strings.NewReader(`{"cover_image_url":"/media/i/`+ghost+`/640.jpg"}`))
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var post models.Post
	require.NoError(t, db.First(&post, 1).Error)
	assert.Empty(t, post.CoverImageURL, "the dangling reference must not be saved")
}

func TestParseIDRejectsGarbage(t *testing.T) {
	_, app, _ := newTestServer(t)

	resp := doRequest(t, app, http.MethodGet, "/api/posts/banana", "", nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
