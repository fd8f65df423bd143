// internal/preferences/parse.go
package preferences

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"homematch-workers/internal/models"
)

var ErrInvalidPreferences = errors.New("INVALID_PREFERENCES")

// Raw preference keys, shared with the JSON form of models.PreferenceSet.
const (
	KeyBudget         = "budget"
	KeyVibes          = "vibes"
	KeyFaculty        = "faculty"
	KeyNeedsAirCon    = "needsAirCon"
	KeyNeedsMeals     = "needsMeals"
	KeyWantsModules   = "wantsModules"
	KeyRoomPreference = "roomPreference"
)

var (
	vibeLookup    = lookup(models.DesiredVibeOptions)
	facultyLookup = lookup(models.FacultyOptions)
	roomLookup    = lookup(models.RoomOptions)
)

func lookup(options []string) map[string]string {
	m := make(map[string]string, len(options))
	for _, o := range options {
		m[strings.ToLower(o)] = o
	}
	return m
}

// Parse builds a PreferenceSet from loosely typed filter input. Missing
// keys keep their reset-state value. Values of the wrong shape, unknown
// vibes, faculties or rooms, and negative or non-finite budgets are
// rejected with ErrInvalidPreferences.
func Parse(raw map[string]interface{}) (models.PreferenceSet, error) {
	prefs := models.DefaultPreferences()
	if raw == nil {
		return prefs, nil
	}

	if v, ok := raw[KeyBudget]; ok && v != nil {
		budget, err := parseFloat(v)
		if err != nil {
			return prefs, fmt.Errorf("%w: budget: %v", ErrInvalidPreferences, err)
		}
		if budget < 0 || math.IsNaN(budget) || math.IsInf(budget, 0) {
			return prefs, fmt.Errorf("%w: budget must be a non-negative number, got %v", ErrInvalidPreferences, v)
		}
		prefs.Budget = budget
	}

	if v, ok := raw[KeyVibes]; ok && v != nil {
		vibes, err := parseStringArray(v)
		if err != nil {
			return prefs, fmt.Errorf("%w: vibes: %v", ErrInvalidPreferences, err)
		}
		for i, vibe := range vibes {
			canonical, known := vibeLookup[strings.ToLower(vibe)]
			if !known {
				return prefs, fmt.Errorf("%w: unknown vibe '%s'", ErrInvalidPreferences, vibe)
			}
			vibes[i] = canonical
		}
		prefs.Vibes = dedupe(vibes)
	}

	if v, ok := raw[KeyFaculty]; ok && v != nil {
		s, isString := v.(string)
		if !isString {
			return prefs, fmt.Errorf("%w: faculty must be a string", ErrInvalidPreferences)
		}
		if s = strings.TrimSpace(s); s != "" {
			canonical, known := facultyLookup[strings.ToLower(s)]
			if !known {
				return prefs, fmt.Errorf("%w: unknown faculty '%s'", ErrInvalidPreferences, s)
			}
			prefs.Faculty = canonical
		}
	}

	flags := []struct {
		key string
		dst *bool
	}{
		{KeyNeedsAirCon, &prefs.NeedsAirCon},
		{KeyNeedsMeals, &prefs.NeedsMeals},
		{KeyWantsModules, &prefs.WantsModules},
	}
	for _, f := range flags {
		v, ok := raw[f.key]
		if !ok || v == nil {
			continue
		}
		b, err := parseBool(v)
		if err != nil {
			return prefs, fmt.Errorf("%w: %s: %v", ErrInvalidPreferences, f.key, err)
		}
		*f.dst = b
	}

	if v, ok := raw[KeyRoomPreference]; ok && v != nil {
		s, isString := v.(string)
		if !isString {
			return prefs, fmt.Errorf("%w: roomPreference must be a string", ErrInvalidPreferences)
		}
		if s = strings.TrimSpace(s); s != "" {
			canonical, known := roomLookup[strings.ToLower(s)]
			if !known {
				return prefs, fmt.Errorf("%w: unknown room preference '%s'", ErrInvalidPreferences, s)
			}
			prefs.RoomPreference = canonical
		}
	}

	return prefs, nil
}

// ToMap is the inverse of Parse, used to hand a parsed set back to a
// process as plain variables.
func ToMap(p models.PreferenceSet) map[string]interface{} {
	vibes := make([]interface{}, len(p.Vibes))
	for i, v := range p.Vibes {
		vibes[i] = v
	}
	return map[string]interface{}{
		KeyBudget:         p.Budget,
		KeyVibes:          vibes,
		KeyFaculty:        p.Faculty,
		KeyNeedsAirCon:    p.NeedsAirCon,
		KeyNeedsMeals:     p.NeedsMeals,
		KeyWantsModules:   p.WantsModules,
		KeyRoomPreference: p.RoomPreference,
	}
}

func parseFloat(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		s := strings.TrimSpace(strings.NewReplacer("S$", "", "$", "", ",", "").Replace(v))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("'%s' is not a number", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unsupported type %T", raw)
	}
}

func parseBool(raw interface{}) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return false, fmt.Errorf("'%s' is not a boolean", v)
		}
		return b, nil
	default:
		return false, fmt.Errorf("unsupported type %T", raw)
	}
}

func parseStringArray(raw interface{}) ([]string, error) {
	result := []string{}
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			result = append(result, s)
		}
	}

	switch v := raw.(type) {
	case string:
		for _, s := range strings.Split(v, ",") {
			add(s)
		}
	case []string:
		for _, s := range v {
			add(s)
		}
	case []interface{}:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected strings, got %T", item)
			}
			add(s)
		}
	default:
		return nil, fmt.Errorf("unsupported type %T", raw)
	}
	return result, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
