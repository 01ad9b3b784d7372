package usecase

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/hairstory/backend/internal/domain"
)

// requiredProfileFields must all be present for a profile to count as complete
var requiredProfileFields = []string{"hair_type", "scalp_condition", "hair_length"}

// recommendationRequestKeywords in the user's latest message trigger a recommendation
var recommendationRequestKeywords = []string{
	"recommend", "suggest", "help", "routine", "products", "what should", "need", "give me",
}

// ProfileString renders a profile as "Field Name: value" pairs joined by "; ".
// Fields are sorted so the output is stable.
func ProfileString(profile domain.HairProfile) string {
	if len(profile) == 0 {
		return "No profile information available"
	}

	keys := make([]string, 0, len(profile))
	for k := range profile {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var parts []string
	for _, k := range keys {
		value := profileValue(profile[k])
		if value == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fieldTitle(k), value))
	}
	if len(parts) == 0 {
		return "No profile information available"
	}
	return strings.Join(parts, "; ")
}

// ProfileLines lists the non-empty profile fields as "Hair type: value",
// sorted by field name.
func ProfileLines(profile domain.HairProfile) []string {
	keys := make([]string, 0, len(profile))
	for k := range profile {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		value := profileValue(profile[k])
		if value == "" {
			continue
		}
		label := strings.ToLower(strings.ReplaceAll(k, "_", " "))
		if label == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s%s: %s", strings.ToUpper(label[:1]), label[1:], value))
	}
	return lines
}

// IsProfileComplete reports whether the profile has every required field
func IsProfileComplete(profile domain.HairProfile) bool {
	for _, f := range requiredProfileFields {
		if profileValue(profile[f]) == "" {
			return false
		}
	}
	return true
}

// ParseProfile reads the first JSON object in an extraction reply. Replies
// without a parseable object yield an empty profile.
func ParseProfile(reply string) domain.HairProfile {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return domain.HairProfile{}
	}

	var profile domain.HairProfile
	if err := json.Unmarshal([]byte(reply[start:end+1]), &profile); err != nil {
		return domain.HairProfile{}
	}

	for k, v := range profile {
		if profileValue(v) == "" {
			delete(profile, k)
		}
	}
	return profile
}

// MergeProfile returns base updated with the non-empty fields of update
func MergeProfile(base, update domain.HairProfile) domain.HairProfile {
	merged := make(domain.HairProfile, len(base)+len(update))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range update {
		if profileValue(v) != "" {
			merged[k] = v
		}
	}
	return merged
}

// profileValue flattens a profile value to display text
func profileValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case []interface{}, []string:
		return metadataString(val)
	case bool:
		if val {
			return "yes"
		}
		return ""
	default:
		return fmt.Sprint(val)
	}
}

// fieldTitle turns "hair_type" into "Hair Type"
func fieldTitle(field string) string {
	words := strings.Fields(strings.ReplaceAll(field, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}
