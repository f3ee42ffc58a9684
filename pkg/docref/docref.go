// Package docref derives human-facing document references from allocated
// sequence numbers, e.g. "TF-2025-0004".
package docref

import (
	"fmt"

	pkgerrors "github.com/calebmorton/tradedocs-backend/pkg/errors"
)

// Format zero-pads sequence to width digits. Sequences wider than width are
// left unpadded rather than truncated.
func Format(prefix string, year int, sequence int64, width int) (string, error) {
	if width < 1 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("reference width must be at least 1, got %d", width))
	}
	return fmt.Sprintf("%s-%d-%0*d", prefix, year, width, sequence), nil
}
