package provider

import (
	"context"
	"errors"
	"testing"

	"creativesync/internal/models"

	"github.com/stretchr/testify/assert"
)

// stubImageCheck returns canned reachability results or a canned error
type stubImageCheck struct {
	results map[string]bool
	err     error
	calls   int
}

func (s *stubImageCheck) Check(ctx context.Context, urls []string) (map[string]bool, error) {
	s.calls++
	return s.results, s.err
}

func validRecord() *models.CreativeRecord {
	return &models.CreativeRecord{
		ExternalID:  77,
		Title:       "Offer",
		IconURL:     "https://cdn.x.com/icons/77.png",
		ImageURL:    "https://cdn.x.com/imgs/77.jpg",
		TargetURL:   "https://lp.x.com/offer",
		CountryCode: "US",
		Format:      models.FormatPush,
		Source:      models.SourcePushHouse,
	}
}

var allFormats = []models.AdFormat{models.FormatPush, models.FormatInpage}

func TestIsValid_OrderedChecks(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.CreativeRecord)
		valid  bool
	}{
		{"complete record", func(r *models.CreativeRecord) {}, true},
		{"zero external id", func(r *models.CreativeRecord) { r.ExternalID = 0 }, false},
		{"missing country", func(r *models.CreativeRecord) { r.CountryCode = "" }, false},
		{"no title but has text", func(r *models.CreativeRecord) { r.Title = ""; r.Text = "body" }, true},
		{"no title and no text", func(r *models.CreativeRecord) { r.Title = "" }, false},
		{"no usable images", func(r *models.CreativeRecord) { r.IconURL = ""; r.ImageURL = "https://cdn.x.com/dir/" }, false},
		{"icon only is enough", func(r *models.CreativeRecord) { r.ImageURL = "" }, true},
		{"malformed target url", func(r *models.CreativeRecord) { r.TargetURL = "not a url" }, false},
		{"ftp target url", func(r *models.CreativeRecord) { r.TargetURL = "ftp://x.com/file" }, false},
		{"empty target url allowed", func(r *models.CreativeRecord) { r.TargetURL = "" }, true},
	}

	validator := NewValidator(&stubImageCheck{}, false, true)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := validRecord()
			tt.mutate(record)
			assert.Equal(t, tt.valid, validator.IsValid(context.Background(), record, allFormats))
		})
	}
}

func TestIsValid_UnsupportedFormatRejected(t *testing.T) {
	validator := NewValidator(&stubImageCheck{}, false, true)

	record := validRecord()
	record.Format = models.FormatInpage

	assert.False(t, validator.IsValid(context.Background(), record, []models.AdFormat{models.FormatPush}))
	assert.True(t, validator.IsValid(context.Background(), record, allFormats))
}

func TestIsValid_DeepCheckDisabledSkipsProbe(t *testing.T) {
	images := &stubImageCheck{}
	validator := NewValidator(images, false, true)

	assert.True(t, validator.IsValid(context.Background(), validRecord(), allFormats))
	assert.Equal(t, 0, images.calls)
}

func TestIsValid_DeepCheckOneReachableImagePasses(t *testing.T) {
	record := validRecord()
	images := &stubImageCheck{results: map[string]bool{
		record.IconURL:  false,
		record.ImageURL: true,
	}}
	validator := NewValidator(images, true, true)

	assert.True(t, validator.IsValid(context.Background(), record, allFormats))
	assert.Equal(t, 1, images.calls)
}

func TestIsValid_DeepCheckNoReachableImagesFails(t *testing.T) {
	record := validRecord()
	images := &stubImageCheck{results: map[string]bool{
		record.IconURL:  false,
		record.ImageURL: false,
	}}
	validator := NewValidator(images, true, true)

	assert.False(t, validator.IsValid(context.Background(), record, allFormats))
}

func TestIsValid_ProbeErrorFailOpenPolicy(t *testing.T) {
	images := &stubImageCheck{err: errors.New("probe down")}

	failOpen := NewValidator(images, true, true)
	assert.True(t, failOpen.IsValid(context.Background(), validRecord(), allFormats))

	failClosed := NewValidator(images, true, false)
	assert.False(t, failClosed.IsValid(context.Background(), validRecord(), allFormats))
}
