package domain

import "errors"

var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrVersionNotFound     = errors.New("version not found")
	ErrBaseVersionNotFound = errors.New("base version not found")

	ErrDuplicateID            = errors.New("duplicate id")
	ErrDuplicateVersionNumber = errors.New("duplicate version number")
	ErrInvalidStatus          = errors.New("invalid version status")
	ErrInvalidInput           = errors.New("invalid input")
)

// ErrActiveConflict is returned when an insert would leave a project with two
// active versions.
var ErrActiveConflict = errors.New("project already has an active version")
