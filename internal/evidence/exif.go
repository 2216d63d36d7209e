package evidence

import (
	"bytes"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/julianstephens/storeduty/internal/constants"
	"github.com/julianstephens/storeduty/internal/models"
)

const exifTimeLayout = "2006:01:02 15:04:05"

// CaptureTime reads DateTimeOriginal, falling back to DateTime, from the
// photo's EXIF block. EXIF times carry no zone, so they are read in loc.
func CaptureTime(data []byte, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return time.Time{}, false
	}

	for _, field := range []exif.FieldName{exif.DateTimeOriginal, exif.DateTime} {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		value, err := tag.StringVal()
		if err != nil {
			continue
		}
		value = strings.TrimRight(strings.TrimSpace(value), "\x00")
		if t, err := time.ParseInLocation(exifTimeLayout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Check compares the photo's capture day against today (YYYY-MM-DD in loc).
func Check(data []byte, today string, loc *time.Location) models.EvidenceCheck {
	taken, ok := CaptureTime(data, loc)
	if !ok {
		return models.EvidenceUnverifiable
	}
	if loc == nil {
		loc = time.Local
	}
	if taken.In(loc).Format(constants.DateFormat) == today {
		return models.EvidenceVerifiedToday
	}
	return models.EvidenceVerifiedMismatch
}
