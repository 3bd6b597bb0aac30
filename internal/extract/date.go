package extract

import (
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/dgallion1/contractgest/internal/layout"
)

// ISODate is the output layout for effective dates.
const ISODate = "2006-01-02"

var datePattern = regexp.MustCompile(`(?i)\b(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)\s+\d{1,2},\s+\d{4}\b|\b\d{4}-\d{2}-\d{2}\b|\b\d{4}\.\d{2}\.\d{2}\b`)

// dateLayouts are tried in order; the first successful parse wins.
var dateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01-02",
	"2006.01.02",
}

// FindDate returns the first date-looking substring of text.
func FindDate(text string) (string, bool) {
	m := datePattern.FindString(text)
	return m, m != ""
}

// NormalizeDate parses s with the supported layouts and formats it as YYYY-MM-DD.
func NormalizeDate(s string) (string, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(ISODate), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", s)
}

// ExtractEffectiveDate returns the first recognizable date on the first
// page, normalized, or nil. Failures are logged, never returned.
func ExtractEffectiveDate(page *layout.Page, log *slog.Logger) (date *string) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("effective date extraction failed", "error", fmt.Sprint(r))
			date = nil
		}
	}()

	if page == nil {
		return nil
	}
	raw, ok := FindDate(CleanText(page.Text()))
	if !ok {
		log.Debug("no effective date found")
		return nil
	}
	iso, err := NormalizeDate(raw)
	if err != nil {
		log.Warn("effective date not parsed", "match", raw, "error", err)
		return nil
	}
	return &iso
}
