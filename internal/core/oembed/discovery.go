package oembed

import (
	"errors"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"ChartEmbed/internal/core/charts"
)

// EndpointPath is where the oEmbed endpoint is mounted below the provider URL
const EndpointPath = "/oembed"

// DiscoveryLink renders the <link> tag a chart page puts in its head so that
// consumers can find this endpoint. The href uses the same url/format query
// contract the endpoint accepts.
func DiscoveryLink(providerURL string, chart *charts.Chart) string {
	href := strings.TrimRight(providerURL, "/") + EndpointPath +
		"?url=" + url.QueryEscape(chart.PublicURL) + "&format=" + FormatJSON

	var b strings.Builder
	b.WriteString(`<link rel="alternate" type="application/json+oembed" href="`)
	b.WriteString(html.EscapeString(href))
	b.WriteString(`" title="`)
	b.WriteString(html.EscapeString(plainTitle(chart.Title)))
	b.WriteString(`" />`)
	return b.String()
}

// plainTitle strips markup from a chart title. Line breaks become " - ".
func plainTitle(title string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(title))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != nil && !errors.Is(err, io.EOF) {
				return strings.TrimSpace(title)
			}
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			if name, _ := z.TagName(); string(name) == "br" {
				b.WriteString(" - ")
			}
		}
	}
}
