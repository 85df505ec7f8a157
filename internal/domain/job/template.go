package job

import "fmt"

// Template selects which attributes feed the embedding text.
type Template string

const (
	// TemplateDetailed includes category, business type and location lines when present.
	TemplateDetailed Template = "detailed"
	// TemplateBasic uses title and description only.
	TemplateBasic Template = "basic"
)

// ParseTemplate validates a template name. Empty selects TemplateDetailed.
func ParseTemplate(s string) (Template, error) {
	switch Template(s) {
	case "":
		return TemplateDetailed, nil
	case TemplateDetailed, TemplateBasic:
		return Template(s), nil
	}
	return "", fmt.Errorf("unknown embedding template %q (want %q or %q)", s, TemplateDetailed, TemplateBasic)
}
