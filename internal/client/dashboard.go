package client

import "github.com/noah-isme/edushare-client/internal/models"

// DashboardStats aggregates the corpus for the portal's landing view.
type DashboardStats struct {
	Subjects  int
	Documents int
	Downloads int
	Recent    []models.Document
}

// BuildDashboard reduces a document listing into dashboard statistics:
// distinct subject count, document count, total downloads and the recentN
// most recent uploads (sorted client-side, the server promises no order).
func BuildDashboard(docs []models.Document, recentN int) DashboardStats {
	subjects := make(map[string]struct{}, len(docs))
	downloads := 0
	for _, doc := range docs {
		subjects[doc.Subject] = struct{}{}
		downloads += doc.Downloads
	}

	recent := make([]models.Document, len(docs))
	copy(recent, docs)
	SortByNewest(recent)
	if recentN >= 0 && recentN < len(recent) {
		recent = recent[:recentN]
	}

	return DashboardStats{
		Subjects:  len(subjects),
		Documents: len(docs),
		Downloads: downloads,
		Recent:    recent,
	}
}
