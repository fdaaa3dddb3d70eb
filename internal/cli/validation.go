package cli

import (
	"fmt"
	"regexp"

	"github.com/example/routecard/internal/core/barcode"
)

var digitsOnly = regexp.MustCompile(`^\d+$`)

// validateCardRef checks refs that look like barcodes before they reach the
// service, so a mistyped scan gets a precise message instead of "not found".
func validateCardRef(ref string) error {
	if ref == "" {
		return fmt.Errorf("card reference is required")
	}
	if !digitsOnly.MatchString(ref) {
		return nil // Card ID, let the service resolve it
	}
	if len(ref) != 13 {
		return fmt.Errorf("invalid barcode '%s'. Barcodes have 13 digits, got %d", ref, len(ref))
	}
	if !barcode.Valid(ref) {
		return fmt.Errorf("invalid barcode '%s'. Check digit does not match; rescan the card", ref)
	}
	return nil
}
