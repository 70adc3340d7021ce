// Package resolve extracts a territory identity from heterogeneous GeoJSON
// feature properties. Upstream providers disagree on property names, so each
// field is probed against an ordered candidate list.
package resolve

import (
	"fmt"

	"github.com/diag360/territory-cli/internal/model"
)

var (
	codeCandidates = []string{
		"epci_code", "epci_siren", "siren", "code_siren", "code_epci", "code",
	}
	nameCandidates = []string{
		"epci_name", "nom_epci", "nom", "libepci", "lib_epci",
	}
	typeCandidates = []string{
		"epci_type", "nature_epci", "nature",
	}
)

// Identity resolves the code, display name and territory type from feature
// properties. The code falls back to the supplied fallback (typically a
// feature index key) when no candidate matches; name and type have fixed
// defaults so the result is always renderable.
func Identity(props map[string]any, fallbackCode string) model.ResolvedIdentity {
	return model.ResolvedIdentity{
		Code: firstString(props, codeCandidates, fallbackCode),
		Name: firstString(props, nameCandidates, "Inconnu"),
		Type: firstString(props, typeCandidates, "EPCI"),
	}
}

// firstString walks the candidate keys in order and returns the first value
// that renders to a non-empty string. Array values resolve to their first
// element, matching how some providers wrap scalar attributes.
func firstString(props map[string]any, keys []string, fallback string) string {
	for _, key := range keys {
		v, ok := props[key]
		if !ok {
			continue
		}
		if s := render(v); s != "" {
			return s
		}
	}
	return fallback
}

func render(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		if len(t) == 0 {
			return ""
		}
		return render(t[0])
	case float64:
		// JSON numbers decode as float64; SIREN codes are integral.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
