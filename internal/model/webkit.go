package model

import "time"

// webkitEpochOffset is the number of microseconds between 1601-01-01 and the
// Unix epoch. Chromium stores bookmark dates relative to 1601.
const webkitEpochOffset = 11644473600000000

// FromWebKit converts a Chromium timestamp in microseconds since 1601.
func FromWebKit(us int64) time.Time {
	if us <= 0 {
		return time.Time{}
	}
	return time.UnixMicro(us - webkitEpochOffset)
}

// ToWebKit converts t to microseconds since 1601.
func ToWebKit(t time.Time) int64 {
	return t.UnixMicro() + webkitEpochOffset
}
