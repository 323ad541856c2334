package domain

import "time"

// Product is one normalized row of the catalog feed
type Product struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Brand       string            `json:"brand"`
	Category    string            `json:"category"`
	Image       string            `json:"image"` // empty when the feed cell is not an image reference
	Price       float64           `json:"price"`
	Raw         map[string]string `json:"raw,omitempty"` // normalized header -> cell
}

// VisibilityFlags controls which product attributes are exposed.
// Derived from the control row of each feed load.
type VisibilityFlags struct {
	ShowImage       bool `json:"showImage"`
	ShowName        bool `json:"showName"`
	ShowDescription bool `json:"showDescription"`
	ShowBrand       bool `json:"showBrand"`
	ShowCategory    bool `json:"showCategory"`
	ShowPrice       bool `json:"showPrice"`
}

// DefaultVisibility returns flags with every column visible
func DefaultVisibility() VisibilityFlags {
	return VisibilityFlags{
		ShowImage:       true,
		ShowName:        true,
		ShowDescription: true,
		ShowBrand:       true,
		ShowCategory:    true,
		ShowPrice:       true,
	}
}

// Catalog is the result of interpreting one feed payload
type Catalog struct {
	Products   []Product       `json:"products"`
	Visibility VisibilityFlags `json:"visibility"`
}

// Snapshot is a loaded catalog together with its load time
type Snapshot struct {
	Catalog
	LoadedAt time.Time `json:"loadedAt"`
}

// CategoryCount is a distinct category with the number of products in it
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Filter narrows a catalog listing. Empty fields match everything.
type Filter struct {
	Query    string `form:"q" json:"query,omitempty"`
	Category string `form:"category" json:"category,omitempty"`
}
