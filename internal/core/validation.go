package core

// validation.go provides static checks over a full mapping set before
// generation.
//
// Every rule is evaluated and every violation is reported, so a review UI can
// show all problems at once and let the user fix mappings interactively.
// Validation never fails with an error value; the outcome is a
// ValidationResult.

import (
	"fmt"
	"strings"
)

// Validation messages. Callers match on these strings for display.
const (
	msgValueRequired     = "At least one indicator-values mapping is required."
	msgDimensionRequired = "At least one dimension mapping (other than indicator values) is required."
	msgDuplicateRoles    = "Duplicate dimension types found: %s"
	msgCustomName        = "Additional dimensions must have a custom name"
	msgInvalidSubKind    = "Invalid sub-type %s for %s"
	msgUnknownRole       = "Unknown dimension type %s"
	msgEmptyRegion       = "Mapping %s has no selected cells"
)

// ValidationResult is the outcome of Validate.
type ValidationResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// Validate checks mappings against the mapping-set rules:
//
//  1. at least one indicator-value mapping
//  2. at least one mapping with another role
//  3. no non-value role appears twice
//  4. custom mappings carry a non-blank custom name
//  5. time and location sub-kinds come from their vocabulary
//  6. roles are known and regions have selected cells
//
// It is a pure function of its input.
func Validate(mappings []Mapping) ValidationResult {
	errs := []string{}

	var values, dimensions int
	counts := make(map[Role]int)
	var roleOrder []Role
	customNameMissing := false

	for _, m := range mappings {
		if m.IsValue() {
			values++
		} else {
			dimensions++
			if counts[m.Role] == 0 {
				roleOrder = append(roleOrder, m.Role)
			}
			counts[m.Role]++
		}

		if m.Role == RoleCustom && strings.TrimSpace(m.CustomName) == "" {
			customNameMissing = true
		}
	}

	if values == 0 {
		errs = append(errs, msgValueRequired)
	}
	if dimensions == 0 {
		errs = append(errs, msgDimensionRequired)
	}

	var duplicates []string
	for _, role := range roleOrder {
		if counts[role] > 1 {
			duplicates = append(duplicates, string(role))
		}
	}
	if len(duplicates) > 0 {
		errs = append(errs, fmt.Sprintf(msgDuplicateRoles, strings.Join(duplicates, ", ")))
	}

	if customNameMissing {
		errs = append(errs, msgCustomName)
	}

	for _, m := range mappings {
		if !m.Role.Valid() {
			errs = append(errs, fmt.Sprintf(msgUnknownRole, m.Role))
			continue
		}
		if !ValidSubKind(m.Role, m.SubKind) {
			errs = append(errs, fmt.Sprintf(msgInvalidSubKind, m.SubKind, m.Role))
		}
		if len(m.Region.Cells) == 0 {
			errs = append(errs, fmt.Sprintf(msgEmptyRegion, m.ID))
		}
	}

	return ValidationResult{
		IsValid: len(errs) == 0,
		Errors:  errs,
	}
}
