package provider

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"creativesync/internal/models"
	"creativesync/internal/normalizer"
)

type feedHousePayload struct {
	ID         flexInt64 `json:"id"`
	Title      string    `json:"title"`
	Text       string    `json:"text"`
	Icon       string    `json:"icon"`
	Image      string    `json:"image"`
	URL        string    `json:"url"`
	CountryIso string    `json:"countryIso"`
	Format     string    `json:"format"`
	AdNetwork  string    `json:"adNetwork"`
	Browser    string    `json:"browser"`
	OS         string    `json:"os"`
	DeviceType string    `json:"deviceType"`
	Status     string    `json:"status"`
	CreatedAt  string    `json:"createdAt"`
	SeenCount  flexInt64 `json:"seenCount"`
	LastSeenAt string    `json:"lastSeenAt"`
}

// FeedHouseAdapter decodes FeedHouse business-API creative payloads. The
// feed aggregates multiple downstream networks, so each record carries its
// own adNetwork name plus browser/os/device metadata.
type FeedHouseAdapter struct {
	now func() time.Time
}

// NewFeedHouseAdapter creates the FeedHouse payload adapter
func NewFeedHouseAdapter() *FeedHouseAdapter {
	return &FeedHouseAdapter{now: time.Now}
}

func (a *FeedHouseAdapter) Source() string {
	return models.SourceFeedHouse
}

func (a *FeedHouseAdapter) SupportedFormats() []models.AdFormat {
	return []models.AdFormat{models.FormatPush, models.FormatInpage}
}

func (a *FeedHouseAdapter) Decode(raw json.RawMessage) (*models.CreativeRecord, error) {
	var payload feedHousePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidRecord, err)
	}

	adNetwork := payload.AdNetwork
	if adNetwork == "" {
		adNetwork = "unknown"
	}

	return &models.CreativeRecord{
		ExternalID:  int64(payload.ID),
		Title:       payload.Title,
		Text:        payload.Text,
		IconURL:     payload.Icon,
		ImageURL:    payload.Image,
		TargetURL:   payload.URL,
		CountryCode: strings.ToUpper(strings.TrimSpace(payload.CountryIso)),
		Platform:    normalizer.Platform(payload.OS, payload.DeviceType),
		Format:      normalizer.Format(payload.Format),
		AdNetwork:   adNetwork,
		Browser:     payload.Browser,
		OS:          payload.OS,
		DeviceType:  payload.DeviceType,
		IsAdult:     normalizer.IsAdultContent(payload.Title, payload.Text),
		IsActive:    strings.EqualFold(strings.TrimSpace(payload.Status), "active"),
		CreatedAt:   parseCreatedAt(payload.CreatedAt, a.now()),
		SeenCount:   int64(payload.SeenCount),
		LastSeenAt:  parseOptionalTime(payload.LastSeenAt),
		Source:      models.SourceFeedHouse,
	}, nil
}
