package svgdoc

import (
	"fmt"
	"strings"
)

const (
	// RootID names the document root as a container
	RootID = "root"

	// EndPrefix is reserved for the closing entries of groups in the source view
	EndPrefix = "END_"

	// MaxIDLength bounds object and point ids
	MaxIDLength = 64
)

// ValidateID rejects ids that would collide with reserved source view ids
func ValidateID(id string) error {
	switch {
	case id == "":
		return fmt.Errorf("id cannot be empty")
	case id == RootID:
		return fmt.Errorf("id %q is reserved", id)
	case strings.HasPrefix(id, EndPrefix):
		return fmt.Errorf("id %q uses reserved prefix %q", id, EndPrefix)
	case len(id) > MaxIDLength:
		return fmt.Errorf("id exceeds %d characters", MaxIDLength)
	case strings.ContainsRune(id, 0):
		return fmt.Errorf("id contains a NUL byte")
	}
	return nil
}
