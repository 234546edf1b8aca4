package rdp

import "time"

// startLayout renders microseconds; the platform expects nanoseconds, so the
// three trailing zeros and the UTC designator are appended literally.
const startLayout = "2006-01-02T15:04:05.000000"

// FormatStart renders t in UTC as YYYY-MM-DDTHH:MM:SS.mmmmmm000Z.
func FormatStart(t time.Time) string {
	return t.UTC().Format(startLayout) + "000Z"
}
