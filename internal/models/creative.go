package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Platform classifies the device class a creative targets
type Platform string

const (
	PlatformMobile  Platform = "mobile"
	PlatformDesktop Platform = "desktop"
)

// AdFormat classifies the ad placement format of a creative
type AdFormat string

const (
	FormatPush   AdFormat = "push"
	FormatInpage AdFormat = "inpage"
)

// AdvertisingStatus is the stored lifecycle status of a creative row
type AdvertisingStatus string

const (
	StatusActive   AdvertisingStatus = "active"
	StatusInactive AdvertisingStatus = "inactive"
)

// Known provider source names
const (
	SourcePushHouse = "push_house"
	SourceFeedHouse = "feedhouse"
)

// CreativeRecord is the unified in-memory representation of one creative,
// independent of the provider that produced it. Records are constructed
// fresh on every ingestion run and never mutated across runs.
type CreativeRecord struct {
	ExternalID  int64      `json:"external_id"`
	Title       string     `json:"title"`
	Text        string     `json:"text"`
	IconURL     string     `json:"icon_url"`
	ImageURL    string     `json:"image_url"`
	TargetURL   string     `json:"target_url"`
	CPC         float64    `json:"cpc"`
	CountryCode string     `json:"country_code"`
	Platform    Platform   `json:"platform"`
	Format      AdFormat   `json:"format"`
	AdNetwork   string     `json:"ad_network"`
	Browser     string     `json:"browser"`
	OS          string     `json:"os"`
	DeviceType  string     `json:"device_type"`
	IsAdult     bool       `json:"is_adult"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	SeenCount   int64      `json:"seen_count"`
	LastSeenAt  *time.Time `json:"last_seen_at,omitempty"`
	Source      string     `json:"source"`
}

// hashTuple is the stable identity tuple hashed into the dedup key.
// Field order matters: encoding/json marshals struct fields in declaration
// order, which keeps the digest stable across runs.
type hashTuple struct {
	ExternalID int64  `json:"external_id"`
	Source     string `json:"source"`
	Title      string `json:"title"`
	Text       string `json:"text"`
	Country    string `json:"country"`
	AdNetwork  string `json:"adNetwork"`
}

// CombinedHash returns the SHA-256 content fingerprint used as the
// dedup/identity key for this creative in storage.
func (r *CreativeRecord) CombinedHash() string {
	data, _ := json.Marshal(hashTuple{
		ExternalID: r.ExternalID,
		Source:     r.Source,
		Title:      r.Title,
		Text:       r.Text,
		Country:    r.CountryCode,
		AdNetwork:  r.AdNetwork,
	})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// StorageRow is a creative projected into the shape of the creatives table,
// ready for a bulk insert. Nullable foreign keys stay nil when the lookup
// tables have no mapping for the raw value.
type StorageRow struct {
	ExternalID        int64
	Source            string
	Title             string
	Description       string
	IconURL           *string
	MainImageURL      *string
	LandingURL        string
	CPC               float64
	Platform          Platform
	Format            AdFormat
	OperationSystem   string
	IsAdult           bool
	Status            AdvertisingStatus
	CombinedHash      string
	ExternalCreatedAt time.Time
	SourceID          *int64
	CountryID         *int64
	BrowserID         *int64
	AdNetworkID       *int64
	Metadata          map[string]interface{}
}
