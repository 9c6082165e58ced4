package category

import "time"

// Category groups properties for browsing and SEO landing pages.
type Category struct {
	ID        string
	Name      string
	SEOTitle  string
	CreatedAt time.Time
}
