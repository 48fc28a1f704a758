package core

import "errors"

var (
	// ErrMissingValueMapping is returned by Generate when the mapping set has
	// no indicator-value mapping.
	ErrMissingValueMapping = errors.New("missing value mapping: at least one indicator-values mapping is required")

	// ErrDuplicateRole is returned by MappingSet.Add when a non-value role is
	// already mapped.
	ErrDuplicateRole = errors.New("duplicate dimension type")

	// ErrCustomNameRequired is returned by MappingSet.Add for a custom mapping
	// without a name.
	ErrCustomNameRequired = errors.New("additional dimensions must have a custom name")

	// ErrUnknownRole is returned by MappingSet.Add for an unrecognized role.
	ErrUnknownRole = errors.New("unknown dimension type")

	// ErrMappingNotFound is returned when a mapping id is not in the set.
	ErrMappingNotFound = errors.New("mapping not found")

	// ErrTemplateNotFound is returned when a template id does not exist.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrTemplateExists is returned when a template name is already taken.
	ErrTemplateExists = errors.New("template already exists")

	// ErrTemplateNameRequired is returned when creating a template without a name.
	ErrTemplateNameRequired = errors.New("template name is required")

	// ErrTemplatesUnavailable is returned when no database is configured.
	ErrTemplatesUnavailable = errors.New("templates unavailable: no database configured")
)
