// Package oembed provides the HTTP handlers of the chart oEmbed endpoint.
package oembed

import (
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"

	"ChartEmbed/internal/core/oembed"
)

// Handler serves oEmbed documents and discovery links
type Handler struct {
	service oembed.Service
}

// NewHandler creates a new oEmbed handler
func NewHandler(service oembed.Service) *Handler {
	return &Handler{service: service}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// getValidator returns the shared query validator. Field errors carry the
// query parameter name instead of the Go field name.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			if name := f.Tag.Get("query"); name != "" {
				return name
			}
			return f.Name
		})
	})
	return validate
}
