package charts

import "math"

// PublishedStep is the last_edit_step value a chart holds once the publish
// workflow has completed. Any other value means the chart is not public.
const PublishedStep = 5

// Embed code keys looked up in the publish metadata.
const (
	EmbedCodeResponsive      = "embed-method-responsive"
	embedCodeResponsiveShort = "responsive"
)

// Chart is the read-only view of a chart needed to build an embed document.
type Chart struct {
	Owner        *Owner
	ID           string
	Title        string
	PublicURL    string
	Metadata     Metadata
	LastEditStep int
	Deleted      bool
}

// Owner is the user a chart belongs to.
type Owner struct {
	Name       string
	ID         int64
	CanPublish bool
}

// Metadata is the subset of the chart metadata document used for embedding.
type Metadata struct {
	Publish PublishMetadata `json:"publish"`
}

// PublishMetadata holds the natural embed size and the stored embed code variants.
type PublishMetadata struct {
	EmbedCodes  map[string]string `json:"embed-codes,omitempty"`
	EmbedWidth  float64           `json:"embed-width"`
	EmbedHeight float64           `json:"embed-height"`
}

// IsPublished reports whether the chart finished publishing and was not deleted.
func (c *Chart) IsPublished() bool {
	return !c.Deleted && c.LastEditStep == PublishedStep
}

// AuthorName returns the owner's display name, or "" when unknown.
func (c *Chart) AuthorName() string {
	if c.Owner == nil {
		return ""
	}
	return c.Owner.Name
}

// EmbedSize returns the natural embed width and height in whole pixels.
func (p PublishMetadata) EmbedSize() (width, height int) {
	return int(math.Round(p.EmbedWidth)), int(math.Round(p.EmbedHeight))
}

// ResponsiveEmbed returns the stored responsive embed snippet, if any.
func (p PublishMetadata) ResponsiveEmbed() (string, bool) {
	for _, key := range []string{EmbedCodeResponsive, embedCodeResponsiveShort} {
		if code, ok := p.EmbedCodes[key]; ok && code != "" {
			return code, true
		}
	}
	return "", false
}
