package service

import (
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanView(t *testing.T) {
	tests := []struct {
		name      string
		status    models.PostStatus
		author    string
		requester string
		want      bool
	}{
		{"published visible to anonymous", models.PostStatusPublished, "ada", "", true},
		{"published visible to anyone", models.PostStatusPublished, "ada", "bob", true},
		{"draft hidden from anonymous", models.PostStatusDraft, "ada", "", false},
		{"draft hidden from others", models.PostStatusDraft, "ada", "bob", false},
		{"draft visible to author", models.PostStatusDraft, "ada", "ada", true},
		{"scheduled hidden from others", models.PostStatusScheduled, "ada", "bob", false},
		{"scheduled visible to author", models.PostStatusScheduled, "ada", "ada", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post := &models.Post{Author: tt.author, Status: tt.status}
			assert.Equal(t, tt.want, CanView(post, tt.requester))
		})
	}
}
