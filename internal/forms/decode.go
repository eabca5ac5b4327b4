package forms

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/form"

	"github.com/jonathan/employee-directory/internal/types"
)

var decoder = newDecoder()

func newDecoder() *form.Decoder {
	d := form.NewDecoder()
	d.SetTagName("form")
	return d
}

// DecodeCreateForm decodes raw submitted values into a CreateForm.
// Multi-valued fields accept repeated keys or a single comma-separated value.
func DecodeCreateForm(values url.Values) (types.CreateForm, error) {
	var f types.CreateForm
	if err := decoder.Decode(&f, normalizeValues(values)); err != nil {
		return types.CreateForm{}, fmt.Errorf("failed to decode create form: %w", err)
	}
	f.Skills = orEmpty(f.Skills)
	f.NotificationPreferences = orEmpty(f.NotificationPreferences)
	return f, nil
}

// DecodeProfileForm decodes raw submitted values into a ProfileForm.
func DecodeProfileForm(values url.Values) (types.ProfileForm, error) {
	var f types.ProfileForm
	if err := decoder.Decode(&f, normalizeValues(values)); err != nil {
		return types.ProfileForm{}, fmt.Errorf("failed to decode profile form: %w", err)
	}
	f.Skills = orEmpty(f.Skills)
	f.NotificationPreferences = orEmpty(f.NotificationPreferences)
	return f, nil
}

// normalizeValues expands comma-separated multi-value fields, drops blank numeric
// values and maps checkbox "on" to "true".
func normalizeValues(values url.Values) url.Values {
	out := make(url.Values, len(values))
	for key, vals := range values {
		switch key {
		case "skills":
			out[key] = SplitSkills(strings.Join(vals, ","))
		case "notification_preferences":
			var prefs []string
			for _, v := range vals {
				for _, p := range strings.Split(v, ",") {
					if p = strings.TrimSpace(p); p != "" {
						prefs = append(prefs, p)
					}
				}
			}
			out[key] = prefs
		case "performance_rating", "years_of_experience":
			if len(vals) > 0 && strings.TrimSpace(vals[len(vals)-1]) != "" {
				out[key] = []string{strings.TrimSpace(vals[len(vals)-1])}
			}
		case "is_remote":
			if len(vals) > 0 && strings.EqualFold(vals[len(vals)-1], "on") {
				out[key] = []string{"true"}
			} else {
				out[key] = vals
			}
		default:
			out[key] = vals
		}
	}
	return out
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
