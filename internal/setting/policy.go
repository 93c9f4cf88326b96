package setting

import (
	"slices"

	"github.com/ovaphlow/pitchfork/service-voidsight/internal/setting/entity"
)

// Privileges are the two independent gates of a configuration write or read.
type Privileges struct {
	Member  bool
	Premium bool
}

// Sanitize keeps only the keys the caller may write. Forbidden keys are
// dropped without error. A style object is re-derived with SanitizeStyle;
// a style value that is not an object is dropped.
func Sanitize(in entity.Document, p Privileges) entity.Document {
	out := entity.Document{}
	allowed := allowedKeys(p)
	for _, k := range allowed {
		v, ok := in[k]
		if !ok {
			continue
		}
		if k == entity.StyleKey {
			style, ok := v.(map[string]any)
			if !ok {
				continue
			}
			out[k] = SanitizeStyle(style, p.Premium)
			continue
		}
		out[k] = v
	}
	return out
}

func allowedKeys(p Privileges) []string {
	keys := slices.Clone(entity.OpenKeys)
	if p.Member {
		keys = append(keys, entity.MemberKeys...)
	}
	return keys
}

// SanitizeStyle rebuilds a style object field by field so that premium
// customization never reaches a non-subscriber's document.
func SanitizeStyle(in map[string]any, premium bool) map[string]any {
	out := map[string]any{
		entity.StyleTheme: entity.DefaultTheme,
		entity.StyleFont:  entity.DefaultFont,
	}

	if theme, ok := in[entity.StyleTheme].(string); ok && theme != "" {
		if premium || slices.Contains(entity.FreeThemes, theme) {
			out[entity.StyleTheme] = theme
		}
	}
	if !premium {
		return out
	}

	if font, ok := in[entity.StyleFont].(string); ok && font != "" {
		out[entity.StyleFont] = font
	}
	for _, f := range entity.PremiumColorFields {
		out[f] = entity.DefaultGradientColor
		if c, ok := in[f].(string); ok && c != "" {
			out[f] = c
		}
	}
	for _, f := range entity.PremiumToggleFields {
		b, _ := in[f].(bool)
		out[f] = b
	}
	return out
}

// Merge returns base with override applied. Nested objects merge key by key;
// arrays and scalars in override replace the base value. Neither argument is
// modified.
func Merge(base, override map[string]any) map[string]any {
	result := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		result[k] = v
	}
	for k, v := range override {
		ov, okO := v.(map[string]any)
		bv, okB := base[k].(map[string]any)
		if okO && okB {
			result[k] = Merge(bv, ov)
			continue
		}
		result[k] = v
	}
	return result
}

// Project hides what the caller may not currently read. Stored data is not
// modified: members regain gated keys once the role returns.
func Project(doc entity.Document, p Privileges) entity.Document {
	out := make(entity.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	if !p.Member {
		for _, k := range entity.MemberKeys {
			delete(out, k)
		}
	}
	if !p.Premium {
		if style, ok := out[entity.StyleKey].(map[string]any); ok {
			trimmed := make(map[string]any, len(style))
			for k, v := range style {
				trimmed[k] = v
			}
			for _, f := range entity.PremiumColorFields {
				delete(trimmed, f)
			}
			for _, f := range entity.PremiumToggleFields {
				delete(trimmed, f)
			}
			out[entity.StyleKey] = trimmed
		}
	}
	return out
}
