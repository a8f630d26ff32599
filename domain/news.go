package domain

// Article is one entry of the public news feed.
type Article struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Timestamp   string `json:"timestamp"`
	ImageURL    string `json:"imageUrl,omitempty"`
}
