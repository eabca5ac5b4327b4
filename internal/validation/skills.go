package validation

import (
	"slices"
	"strings"
)

// AddSkill appends candidate to skills when it is non-blank and not already present,
// comparing case-insensitively. The input slice is never modified.
func AddSkill(skills []string, candidate string) ([]string, error) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return skills, ErrEmptySkill
	}
	if containsFold(skills, candidate) {
		return skills, ErrDuplicateSkill
	}
	out := make([]string, 0, len(skills)+1)
	out = append(out, skills...)
	return append(out, candidate), nil
}

// RemoveSkill returns skills without the entry at index. Out-of-range indexes are a no-op.
func RemoveSkill(skills []string, index int) []string {
	if index < 0 || index >= len(skills) {
		return slices.Clone(skills)
	}
	out := make([]string, 0, len(skills)-1)
	out = append(out, skills[:index]...)
	return append(out, skills[index+1:]...)
}

// ToggleNotification adds pref when enabled and removes it otherwise, keeping order.
func ToggleNotification(prefs []string, pref string, enabled bool) []string {
	out := make([]string, 0, len(prefs)+1)
	for _, p := range prefs {
		if p != pref {
			out = append(out, p)
		}
	}
	if enabled {
		out = append(out, pref)
	}
	return out
}

func containsFold(skills []string, candidate string) bool {
	for _, s := range skills {
		if strings.EqualFold(strings.TrimSpace(s), candidate) {
			return true
		}
	}
	return false
}

func hasDuplicateSkill(skills []string) bool {
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			return true
		}
		seen[key] = struct{}{}
	}
	return false
}
