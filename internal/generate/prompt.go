// internal/generate/prompt.go
package generate

import (
	"fmt"
	"strings"

	"github.com/zhangxinyong12/auto-fill-extension/internal/fields"
)

// defaultSystemPrompt instructs the model to answer with a bare JSON object
// keyed exactly by the field keys. Labels may be in any language; values
// should match the label's language.
const defaultSystemPrompt = `You generate realistic test data for web forms.
Given a list of form fields, reply with a single JSON object and nothing else.
Use exactly the given key for each field. Values must be plausible for the
field label and type, and written in the same language as the label.
Dates use the YYYY-MM-DD format. Do not add commentary or markdown fences.`

// BuildPrompt renders the user instruction for a descriptor list. Keys
// follow the descriptor key convention (name, then id, then field<N>), so
// the returned map can be matched back to controls by identity.
func BuildPrompt(descs []fields.Descriptor) string {
	keys := fields.Keys(descs)

	var b strings.Builder
	b.WriteString("Fill in values for the following form fields:\n")
	for i, d := range descs {
		b.WriteString(fmt.Sprintf("- %s: %s (type: %s", keys[i], d.Label, d.Type))
		if d.Required {
			b.WriteString(", required")
		}
		b.WriteString(")\n")
	}
	b.WriteString("\nReply with one JSON object mapping each key to its value.")
	return b.String()
}
