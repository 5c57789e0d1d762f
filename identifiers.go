package aajourney

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Identifier types the AA network uses for account discovery.
const (
	IdentifierTypeMobile = "MOBILE"
	IdentifierTypePAN    = "PAN"
	IdentifierTypeDOB    = "DOB"
	IdentifierTypeEmail  = "EMAIL"
)

var (
	mobilePattern = regexp.MustCompile(`^\d{10}$`)
	panPattern    = regexp.MustCompile(`^[A-Z]{5}\d{4}[A-Z]$`)
	emailPattern  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// requiredIdentifiers derives the identifier set a FIP demands for
// discovery: the category×type pairs across all FI types, de-duplicated,
// in a stable order.
func requiredIdentifiers(details *FipDetails) []TypeIdentifier {
	if details == nil {
		return nil
	}

	seen := make(map[string]struct{})
	var required []TypeIdentifier
	for _, fi := range details.TypeIdentifiers {
		for _, ti := range fi.Identifiers {
			key := ti.Category + "|" + ti.Type
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			required = append(required, ti)
		}
	}

	sort.Slice(required, func(i, j int) bool {
		if required[i].Category != required[j].Category {
			return required[i].Category < required[j].Category
		}
		return required[i].Type < required[j].Type
	})

	return required
}

// fiTypesOf lists the FI types named by the FIP details, de-duplicated,
// preserving first-seen order.
func fiTypesOf(details *FipDetails) []string {
	if details == nil {
		return nil
	}

	seen := make(map[string]struct{})
	var types []string
	for _, fi := range details.TypeIdentifiers {
		if _, ok := seen[fi.FIType]; ok {
			continue
		}
		seen[fi.FIType] = struct{}{}
		types = append(types, fi.FIType)
	}
	return types
}

// validateIdentifiers checks every required identifier is supplied and
// matches its type-specific pattern. It fails before any network call: a
// discovery request with a missing or malformed identifier never leaves the
// process.
func validateIdentifiers(required []TypeIdentifier, supplied []Identifier) error {
	byType := make(map[string]Identifier, len(supplied))
	for _, id := range supplied {
		byType[id.Type] = id
	}

	for _, req := range required {
		id, ok := byType[req.Type]
		if !ok || strings.TrimSpace(id.Value) == "" {
			return fmt.Errorf("%w: %s not supplied", ErrIdentifiersIncomplete, req.Type)
		}
		if err := validateIdentifierValue(req.Type, id.Value); err != nil {
			return err
		}
	}
	return nil
}

func validateIdentifierValue(idType, value string) error {
	switch idType {
	case IdentifierTypeMobile:
		if !mobilePattern.MatchString(value) {
			return fmt.Errorf("%w: %s must be 10 digits", ErrIdentifiersIncomplete, idType)
		}
	case IdentifierTypePAN:
		if !panPattern.MatchString(strings.ToUpper(value)) {
			return fmt.Errorf("%w: %s format invalid", ErrIdentifiersIncomplete, idType)
		}
	case IdentifierTypeDOB:
		if _, err := time.Parse("2006-01-02", value); err != nil {
			return fmt.Errorf("%w: %s must be an ISO date", ErrIdentifiersIncomplete, idType)
		}
	case IdentifierTypeEmail:
		if !emailPattern.MatchString(value) {
			return fmt.Errorf("%w: %s format invalid", ErrIdentifiersIncomplete, idType)
		}
	default:
		// Unknown identifier types pass through; the FIP validates them
		// remotely.
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s not supplied", ErrIdentifiersIncomplete, idType)
		}
	}
	return nil
}

// validMobile reports whether a login mobile number is exactly 10 digits.
func validMobile(mobile string) bool {
	return mobilePattern.MatchString(mobile)
}

// validOTP reports whether otp is exactly digits numeric digits.
func validOTP(otp string, digits int) bool {
	if len(otp) != digits {
		return false
	}
	for i := 0; i < len(otp); i++ {
		if otp[i] < '0' || otp[i] > '9' {
			return false
		}
	}
	return true
}
