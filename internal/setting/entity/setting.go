package entity

// Document is a user's configuration document as decoded from JSON.
type Document = map[string]any

// Top-level keys any authenticated caller may write.
var OpenKeys = []string{
	"tabFormat",
	"customFormat",
	"nickDetect",
	"sniperAlert",
	"colorThresholds",
	"autoGG",
	"autoGGMessage",
	"autoGL",
	"autoGLMessage",
	"style",
}

// Top-level keys that require the member role.
var MemberKeys = []string{"tags", "blacklist", "friends"}

const StyleKey = "style"

// Style fields.
const (
	StyleTheme            = "theme"
	StyleFont             = "font"
	StyleNameGradient     = "nameGradient"
	StyleNameGradientFrom = "nameGradientFrom"
	StyleNameGradientTo   = "nameGradientTo"
	StyleTagGradient      = "tagGradient"
	StyleTagGradientFrom  = "tagGradientFrom"
	StyleTagGradientTo    = "tagGradientTo"
)

const (
	DefaultTheme         = "void"
	DefaultFont          = "default"
	DefaultGradientColor = "#8b5cf6"
)

// FreeThemes may be chosen without a subscription.
var FreeThemes = []string{"void", "acid", "mono"}

// PremiumColorFields and PremiumToggleFields are the style fields only subscribers may set.
var (
	PremiumColorFields  = []string{StyleNameGradientFrom, StyleNameGradientTo, StyleTagGradientFrom, StyleTagGradientTo}
	PremiumToggleFields = []string{StyleNameGradient, StyleTagGradient}
)

// Meta is attached to every configuration response as "_meta".
type Meta struct {
	IsMember  bool     `json:"isMember"`
	IsPremium bool     `json:"isPremium"`
	Roles     []string `json:"roles"`
}

// State is what the service reads from the directory for one user.
type State struct {
	Config  Document
	Roles   []string
	Premium bool
}

func threshold(min float64, color string) map[string]any {
	return map[string]any{"min": min, "color": color}
}

// DefaultDocument is written for a user at first login.
func DefaultDocument() Document {
	return Document{
		"tabFormat":    float64(1),
		"customFormat": "",
		"nickDetect":   true,
		"sniperAlert":  map[string]any{"minFkdr": float64(5), "minStars": float64(200)},
		"colorThresholds": map[string]any{
			"fkdr": []any{threshold(0, "§a"), threshold(2, "§e"), threshold(5, "§6"), threshold(10, "§c")},
			"wlr":  []any{threshold(0, "§a"), threshold(1, "§e"), threshold(3, "§6"), threshold(7, "§c")},
			"kdr":  []any{threshold(0, "§a"), threshold(2, "§e"), threshold(5, "§6"), threshold(10, "§c")},
		},
		"autoGG":        false,
		"autoGGMessage": "",
		"autoGL":        false,
		"autoGLMessage": "",
		"style":         map[string]any{StyleTheme: DefaultTheme, StyleFont: DefaultFont},
		"tags":          map[string]any{},
		"blacklist":     []any{},
		"friends":       []any{},
	}
}
