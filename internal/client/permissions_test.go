package client

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/edushare-client/internal/models"
)

func TestCanDelete(t *testing.T) {
	admin := &models.UserProfile{ID: "a1", Role: models.RoleAdmin}
	owner := &models.UserProfile{ID: "u1", Role: models.RoleUser}
	other := &models.UserProfile{ID: "u2", Role: models.RoleUser}

	doc := &models.Document{ID: "d1", UploadedBy: &models.Uploader{ID: "u1"}}
	orphan := &models.Document{ID: "d2"}

	assert.True(t, CanDelete(admin, doc))
	assert.True(t, CanDelete(admin, orphan))
	assert.True(t, CanDelete(owner, doc))
	assert.False(t, CanDelete(other, doc))
	assert.False(t, CanDelete(owner, orphan))
	assert.False(t, CanDelete(nil, doc))
	assert.False(t, CanDelete(owner, nil))
}
