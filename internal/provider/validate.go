package provider

import (
	"context"
	"net/url"

	"creativesync/internal/imagecheck"
	"creativesync/internal/models"
)

// Validator decides whether a decoded creative is storable. Checks run in a
// fixed order from cheapest to most expensive; the deep image reachability
// probe at the end is optional and, when it errors, resolves per the
// configured fail-open policy.
type Validator struct {
	images    imagecheck.Service
	deepCheck bool
	failOpen  bool
}

// NewValidator creates a creative validator. deepCheck enables the HTTP
// image reachability probe; failOpen keeps creatives whose probe errored
// instead of dropping them.
func NewValidator(images imagecheck.Service, deepCheck, failOpen bool) *Validator {
	return &Validator{
		images:    images,
		deepCheck: deepCheck,
		failOpen:  failOpen,
	}
}

// IsValid runs the ordered validity checks for one record against the
// owning adapter's format allowlist
func (v *Validator) IsValid(ctx context.Context, record *models.CreativeRecord, allowedFormats []models.AdFormat) bool {
	if record == nil || record.ExternalID == 0 {
		return false
	}

	if record.CountryCode == "" {
		return false
	}

	if record.Title == "" && record.Text == "" {
		return false
	}

	hasIcon := hasImageFileName(record.IconURL)
	hasMain := hasImageFileName(record.ImageURL)
	if !hasIcon && !hasMain {
		return false
	}

	if record.TargetURL != "" && !isWellFormedURL(record.TargetURL) {
		return false
	}

	if !formatAllowed(record.Format, allowedFormats) {
		return false
	}

	if v.deepCheck {
		return v.imagesReachable(ctx, record)
	}

	return true
}

// imagesReachable confirms at least one image URL answers over HTTP. A probe
// that could not run at all resolves via the fail-open flag.
func (v *Validator) imagesReachable(ctx context.Context, record *models.CreativeRecord) bool {
	urls := make([]string, 0, 2)
	if record.IconURL != "" {
		urls = append(urls, record.IconURL)
	}
	if record.ImageURL != "" {
		urls = append(urls, record.ImageURL)
	}

	results, err := v.images.Check(ctx, urls)
	if err != nil {
		return v.failOpen
	}

	for _, ok := range results {
		if ok {
			return true
		}
	}
	return false
}

func formatAllowed(format models.AdFormat, allowed []models.AdFormat) bool {
	for _, f := range allowed {
		if f == format {
			return true
		}
	}
	return false
}

func isWellFormedURL(raw string) bool {
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
