package unleashed

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var dotNetDatePattern = regexp.MustCompile(`^/Date\((-?\d+)\)/$`)

// DotNetTime unmarshals the vendor's legacy `/Date(milliseconds)/` JSON date
// encoding, falling back to RFC 3339 for endpoints that already emit ISO
// timestamps. Null and empty values decode to the zero time.
type DotNetTime struct {
	time.Time
}

func (t *DotNetTime) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "null" || raw == "" {
		t.Time = time.Time{}
		return nil
	}
	raw = strings.ReplaceAll(raw, `\/`, `/`)

	if match := dotNetDatePattern.FindStringSubmatch(raw); match != nil {
		millis, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			return fmt.Errorf("unleashed: invalid date %q: %w", raw, err)
		}
		t.Time = time.UnixMilli(millis).UTC()
		return nil
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("unleashed: invalid date %q: %w", raw, err)
	}
	t.Time = parsed
	return nil
}

func (t DotNetTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(time.RFC3339) + `"`), nil
}
