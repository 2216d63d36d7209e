package models

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/storeduty/internal/constants"
)

// Settings represents application-wide settings
type Settings struct {
	Timezone       string `json:"timezone"`        // IANA name of the stores' local zone, or "Local"
	PhotoMaxEdge   int    `json:"photo_max_edge"`  // longest edge in pixels after compression, 0 keeps size
	PhotoQuality   int    `json:"photo_quality"`   // JPEG quality 1-100
	StrictEvidence bool   `json:"strict_evidence"` // reject photos without capture metadata
}

// DefaultSettings returns the settings a fresh store starts with.
func DefaultSettings() Settings {
	return Settings{
		Timezone:       constants.DefaultTimezone,
		PhotoMaxEdge:   constants.DefaultPhotoMaxEdge,
		PhotoQuality:   constants.DefaultPhotoQuality,
		StrictEvidence: constants.DefaultStrictEvidence,
	}
}

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingPhotoMaxEdge:
			n, err := strconv.Atoi(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
			settings.PhotoMaxEdge = n
		case constants.SettingPhotoQuality:
			n, err := strconv.Atoi(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", key, err)
			}
			settings.PhotoQuality = n
		case constants.SettingStrictEvidence:
			settings.StrictEvidence = value == "true"
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTimezone:       settings.Timezone,
		constants.SettingPhotoMaxEdge:   strconv.Itoa(settings.PhotoMaxEdge),
		constants.SettingPhotoQuality:   strconv.Itoa(settings.PhotoQuality),
		constants.SettingStrictEvidence: strconv.FormatBool(settings.StrictEvidence),
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.PhotoQuality <= 0 || settings.PhotoQuality > 100 {
		settings.PhotoQuality = constants.DefaultPhotoQuality
	}
	if settings.PhotoMaxEdge < 0 {
		settings.PhotoMaxEdge = constants.DefaultPhotoMaxEdge
	}
}
