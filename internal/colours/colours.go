package colours

const (
	// Standard colors
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Gray    = "\033[90m" // Bright black, often appears as gray

	// Inverse video colors
	RedInverse    = "\033[7;31m"
	GreenInverse  = "\033[7;32m"
	YellowInverse = "\033[7;33m"

	ResetColor = "\033[0m" // Reset to default color
)

// MethodColors is used when logging routes and outbound API calls
var MethodColors = map[string]string{
	"GET":    Green,
	"POST":   Blue,
	"PUT":    Cyan,
	"DELETE": Yellow,
	"PATCH":  Magenta,
}

// Method returns the method padded and wrapped in its colour
func Method(method string) string {
	color, ok := MethodColors[method]
	if !ok {
		color = Gray
	}
	return color + padMethod(method) + ResetColor
}

// Wrap surrounds s with color when enabled
func Wrap(color, s string, enabled bool) string {
	if !enabled || color == "" {
		return s
	}
	return color + s + ResetColor
}

func padMethod(method string) string {
	const width = 7
	padded := " " + method
	for len(padded) < width+1 {
		padded += " "
	}
	return padded
}
