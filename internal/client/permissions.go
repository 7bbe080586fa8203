package client

import "github.com/noah-isme/edushare-client/internal/models"

// CanDelete reports whether the user may delete the document: admins may
// delete anything, other users only their own uploads.
//
// This predicate is advisory. It decides whether the delete affordance is
// shown; the server remains authoritative and may still answer FORBIDDEN.
func CanDelete(user *models.UserProfile, doc *models.Document) bool {
	if user == nil || doc == nil {
		return false
	}
	if user.IsAdmin() {
		return true
	}
	return doc.UploadedBy != nil && doc.UploadedBy.ID == user.ID
}
