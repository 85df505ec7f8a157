package mode

// Mode is the search entry path.
type Mode string

// Search path constants.
const (
	// Natural interprets a free-text query into keyword and filters.
	Natural Mode = "natural"
	// Structured takes keyword and filters directly from form parameters.
	Structured Mode = "structured"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Natural || m == Structured
}
