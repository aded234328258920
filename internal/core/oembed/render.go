package oembed

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"ChartEmbed/internal/core/charts"
)

// DefaultElementIDPrefix prefixes the chart id in the iframe element id
const DefaultElementIDPrefix = "datawrapper-chart-"

// Renderer produces the html field of the response
type Renderer struct {
	elementIDPrefix string
}

// NewRenderer creates a renderer; an empty prefix selects DefaultElementIDPrefix
func NewRenderer(elementIDPrefix string) Renderer {
	if elementIDPrefix == "" {
		elementIDPrefix = DefaultElementIDPrefix
	}
	return Renderer{elementIDPrefix: elementIDPrefix}
}

// Render returns the stored responsive snippet verbatim unless the caller
// forced iframe mode or no snippet exists, in which case an iframe is generated.
func (r Renderer) Render(chart *charts.Chart, dims Dimensions, forceIframe bool) string {
	if !forceIframe {
		if code, ok := chart.Metadata.Publish.ResponsiveEmbed(); ok {
			return code
		}
	}
	return r.Iframe(chart.PublicURL, chart.ID, dims.Height)
}

// Iframe returns the fallback embed markup. Width is fluid (100% of the
// container); only the height is fixed.
func (r Renderer) Iframe(publicURL, chartID string, height int) string {
	var b strings.Builder
	b.WriteString(`<iframe src="`)
	b.WriteString(html.EscapeString(publicURL))
	b.WriteString(`" frameborder="0" id="`)
	b.WriteString(html.EscapeString(r.elementIDPrefix + chartID))
	b.WriteString(`" scrolling="no" height="`)
	b.WriteString(strconv.Itoa(height))
	b.WriteString(`" style="width: 0; min-width: 100% !important;" ></iframe>`)
	return b.String()
}
