package server

import (
	"net/http"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveRestoreRoundTrip(t *testing.T) {
	s, app, db := newTestServer(t)
	token := registerUser(t, s, "ada")
	post := seedPost(t, db, &models.Post{Author: "ada", Status: models.PostStatusPublished})

	// Archive.
	archResp := doRequest(t, app, http.MethodPost, "/api/posts/archive/1", token, nil)
	require.Equal(t, http.StatusOK, archResp.StatusCode)

	var archived models.ArchivedPost
	decodeJSON(t, archResp, &archived)
	assert.NotEmpty(t, archived.UID)
	assert.Equal(t, post.ID, archived.OriginalID)
	assert.Equal(t, "ada", archived.ArchivedBy)

	// The active post is gone, even for its author.
	getResp := doRequest(t, app, http.MethodGet, "/api/posts/1", token, nil)
	defer func() { _ = getResp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)

	// It shows up in the author's archive list.
	listResp := doRequest(t, app, http.MethodGet, "/api/posts/archives", token, nil)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var list []models.ArchivedPost
	decodeJSON(t, listResp, &list)
	require.Len(t, list, 1)
	assert.Equal(t, archived.UID, list[0].UID)

	// Restore: same ID, back as a draft.
	restoreResp := doRequest(t, app, http.MethodPost, "/api/posts/restore/"+archived.UID, token, nil)
	require.Equal(t, http.StatusOK, restoreResp.StatusCode)
	var restored models.Post
	decodeJSON(t, restoreResp, &restored)
	assert.Equal(t, post.ID, restored.ID)
	assert.Equal(t, models.PostStatusDraft, restored.Status)

	// The archive copy is consumed.
	emptyResp := doRequest(t, app, http.MethodGet, "/api/posts/archives", token, nil)
	require.Equal(t, http.StatusOK, emptyResp.StatusCode)
	var empty []models.ArchivedPost
	decodeJSON(t, emptyResp, &empty)
	assert.Empty(t, empty)
}

func TestArchiveRequiresOwnership(t *testing.T) {
	s, app, db := newTestServer(t)
	registerUser(t, s, "ada")
	bobToken := registerUser(t, s, "bob")
	seedPost(t, db, &models.Post{Author: "ada", Status: models.PostStatusPublished})

	resp := doRequest(t, app, http.MethodPost, "/api/posts/archive/1", bobToken, nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestArchiveHiddenPostLooksAbsent(t *testing.T) {
	s, app, db := newTestServer(t)
	registerUser(t, s, "ada")
	bobToken := registerUser(t, s, "bob")
	seedPost(t, db, &models.Post{Author: "ada", Status: models.PostStatusDraft})

	resp := doRequest(t, app, http.MethodPost, "/api/posts/archive/1", bobToken, nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRestoreSomeoneElsesArchiveLooksAbsent(t *testing.T) {
	s, app, db := newTestServer(t)
	adaToken := registerUser(t, s, "ada")
	bobToken := registerUser(t, s, "bob")
	seedPost(t, db, &models.Post{Author: "ada", Status: models.PostStatusPublished})

	archResp := doRequest(t, app, http.MethodPost, "/api/posts/archive/1", adaToken, nil)
	require.Equal(t, http.StatusOK, archResp.StatusCode)
	var archived models.ArchivedPost
	decodeJSON(t, archResp, &archived)

	resp := doRequest(t, app, http.MethodPost, "/api/posts/restore/"+archived.UID, bobToken, nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRestoreConflictWhenIDOccupied(t *testing.T) {
	s, app, db := newTestServer(t)
	token := registerUser(t, s, "ada")
	seedPost(t, db, &models.Post{Author: "ada", Status: models.PostStatusPublished})

	archResp := doRequest(t, app, http.MethodPost, "/api/posts/archive/1", token, nil)
	require.Equal(t, http.StatusOK, archResp.StatusCode)
	var archived models.ArchivedPost
	decodeJSON(t, archResp, &archived)

	// Another post takes the freed identifier.
	seedPost(t, db, &models.Post{ID: archived.OriginalID, Author: "ada"})

	resp := doRequest(t, app, http.MethodPost, "/api/posts/restore/"+archived.UID, token, nil)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
