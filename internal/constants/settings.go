package constants

const (
	SettingTimezone       = "timezone"
	SettingPhotoMaxEdge   = "photo_max_edge"
	SettingPhotoQuality   = "photo_quality"
	SettingStrictEvidence = "strict_evidence"

	DefaultTimezone       = "Asia/Taipei"
	DefaultPhotoMaxEdge   = 1600
	DefaultPhotoQuality   = 80
	DefaultStrictEvidence = false
)
