package resumes

import "strings"

// Supported enhancement styles. The set is closed on purpose: the instruction
// files handed to the generator reference these names verbatim.
const (
	StyleProfessional = "professional"
	StyleModern       = "modern"
	StyleExecutive    = "executive"
	StyleTechnical    = "technical"
	StyleCreative     = "creative"
)

var styleOrder = []string{
	StyleProfessional,
	StyleModern,
	StyleExecutive,
	StyleTechnical,
	StyleCreative,
}

// ValidStyle reports whether name is one of the supported styles.
func ValidStyle(name string) bool {
	for _, s := range styleOrder {
		if s == name {
			return true
		}
	}
	return false
}

// StyleNames returns the supported styles for error messages.
func StyleNames() string {
	return strings.Join(styleOrder, ", ")
}
