package provider

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"creativesync/internal/models"
	"creativesync/internal/normalizer"
)

// pushHouseNetworkName is the ad-network name recorded for every creative
// fetched from this provider
const pushHouseNetworkName = "pushhouse"

// pushHousePayload covers both the current API shape and the legacy keys
// (res_uniq_id, price_cpc) the provider still emits on some endpoints.
type pushHousePayload struct {
	ID        flexInt64   `json:"id"`
	ResUniqID flexInt64   `json:"res_uniq_id"`
	Title     string      `json:"title"`
	Text      string      `json:"text"`
	Icon      string      `json:"icon"`
	Img       string      `json:"img"`
	URL       string      `json:"url"`
	CPC       flexFloat64 `json:"cpc"`
	PriceCPC  flexFloat64 `json:"price_cpc"`
	Country   string      `json:"country"`
	Platform  string      `json:"platform"`
	IsAdult   *bool       `json:"isAdult"`
	IsActive  *bool       `json:"isActive"`
	CreatedAt string      `json:"created_at"`
}

// PushHouseAdapter decodes Push.House creative payloads
type PushHouseAdapter struct {
	now func() time.Time
}

// NewPushHouseAdapter creates the Push.House payload adapter
func NewPushHouseAdapter() *PushHouseAdapter {
	return &PushHouseAdapter{now: time.Now}
}

func (a *PushHouseAdapter) Source() string {
	return models.SourcePushHouse
}

func (a *PushHouseAdapter) SupportedFormats() []models.AdFormat {
	return []models.AdFormat{models.FormatPush, models.FormatInpage}
}

func (a *PushHouseAdapter) Decode(raw json.RawMessage) (*models.CreativeRecord, error) {
	var payload pushHousePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidRecord, err)
	}

	externalID := int64(payload.ID)
	if externalID == 0 {
		externalID = int64(payload.ResUniqID)
	}

	cpc := float64(payload.CPC)
	if cpc == 0 {
		cpc = float64(payload.PriceCPC)
	}

	isAdult := false
	if payload.IsAdult != nil {
		isAdult = *payload.IsAdult
	}

	// Missing isActive means the listing endpoint only returns live
	// creatives, so active is the safe default
	isActive := true
	if payload.IsActive != nil {
		isActive = *payload.IsActive
	}

	record := &models.CreativeRecord{
		ExternalID:  externalID,
		Title:       payload.Title,
		Text:        payload.Text,
		IconURL:     payload.Icon,
		ImageURL:    payload.Img,
		TargetURL:   payload.URL,
		CPC:         cpc,
		CountryCode: strings.ToUpper(strings.TrimSpace(payload.Country)),
		Platform:    a.platform(payload.Platform),
		AdNetwork:   pushHouseNetworkName,
		IsAdult:     isAdult,
		IsActive:    isActive,
		CreatedAt:   parseCreatedAt(payload.CreatedAt, a.now()),
		Source:      models.SourcePushHouse,
	}
	record.Format = a.deriveFormat(record)

	return record, nil
}

// platform maps the provider's platform field when present; older payloads
// without the field are all mobile traffic
func (a *PushHouseAdapter) platform(raw string) models.Platform {
	if strings.TrimSpace(raw) == "" {
		return models.PlatformMobile
	}
	return normalizer.Platform(raw, "")
}

// deriveFormat infers the format from which image URLs carry a real file
// name: a creative with only an icon is an in-page placement, everything
// else renders as push.
func (a *PushHouseAdapter) deriveFormat(record *models.CreativeRecord) models.AdFormat {
	hasIcon := hasImageFileName(record.IconURL)
	hasMain := hasImageFileName(record.ImageURL)

	if hasIcon && !hasMain {
		return models.FormatInpage
	}
	return models.FormatPush
}
