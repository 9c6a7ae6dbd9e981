package application

import (
	"strings"

	"loanintake/internal/reference"
)

// IsMarried reports whether a marital status denotes a married party. value
// may be a catalog code or a label; the resolved label must mention
// "married" but not "unmarried".
func IsMarried(value string, statuses []reference.Option) bool {
	label := value
	if opt, ok := reference.FindOption(statuses, value); ok {
		label = opt.Label
	}
	label = strings.ToLower(label)
	return strings.Contains(label, "married") && !strings.Contains(label, "unmarried")
}
