package format

import "time"

// DateLayout is the dd.mm.yyyy layout used for deadlines in chat.
const DateLayout = "02.01.2006"

// DateOr formats t with DateLayout or returns fallback when t is nil.
func DateOr(t *time.Time, fallback string) string {
	if t == nil {
		return fallback
	}
	return t.UTC().Format(DateLayout)
}

// StringOr returns *s or fallback when s is nil or empty.
func StringOr(s *string, fallback string) string {
	if s != nil && *s != "" {
		return *s
	}
	return fallback
}
