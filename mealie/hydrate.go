package mealie

import (
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// hydrate decodes an already-normalized payload into out using the json
// struct tags. It must not normalize again: keys are snake_case already.
func hydrate(payload any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("build decoder: %w", err)
	}
	if err := dec.Decode(payload); err != nil {
		return fmt.Errorf("hydrate %T: %w", out, err)
	}
	return nil
}

// Date layouts seen in Mealie payloads.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate parses a Mealie date or timestamp string. Invalid or empty
// input returns the zero time.
func ParseDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// dateLayout is the wire format for plain dates.
const dateLayout = "2006-01-02"
