package oembed

// Constant fields of every response document
const (
	ResponseType = "rich"
	Version      = "1.0"
	FormatJSON   = "json"
)

// Request is a single oEmbed lookup.
// MaxWidth and MaxHeight of zero mean the bound was not supplied.
type Request struct {
	URL       string
	Format    string
	MaxWidth  int
	MaxHeight int
	Iframe    bool
}

// Bounds is the caller-supplied bounding box; zero components are absent.
type Bounds struct {
	MaxWidth  int
	MaxHeight int
}

// IsZero reports whether no bound was supplied at all
func (b Bounds) IsZero() bool {
	return b.MaxWidth <= 0 && b.MaxHeight <= 0
}

// Dimensions is a rendered size in pixels
type Dimensions struct {
	Width  int
	Height int
}

// Response is the oEmbed JSON document. Field order is the serialized order.
type Response struct {
	Type            string `json:"type"`
	Version         string `json:"version"`
	ProviderName    string `json:"provider_name"`
	ProviderURL     string `json:"provider_url"`
	Title           string `json:"title"`
	HTML            string `json:"html"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	AuthorName      string `json:"author_name,omitempty"`
	ThumbnailURL    string `json:"thumbnail_url,omitempty"`
	ThumbnailWidth  int    `json:"thumbnail_width,omitempty"`
	ThumbnailHeight int    `json:"thumbnail_height,omitempty"`
}
