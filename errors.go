package supercluster

import (
	"errors"
	"fmt"
)

var (
	// ErrOddCoordinates is returned by Load when the coordinate buffer
	// does not hold complete lng,lat pairs.
	ErrOddCoordinates = errors.New("coordinate buffer length must be even")
)

// ErrInvalidZoomRange indicates an unusable MinZoom/MaxZoom pair.
type ErrInvalidZoomRange struct {
	MinZoom int
	MaxZoom int
}

func (e *ErrInvalidZoomRange) Error() string {
	return fmt.Sprintf("invalid zoom range [%d, %d]: need 0 <= MinZoom <= MaxZoom <= 30", e.MinZoom, e.MaxZoom)
}

// ErrInvalidOption indicates an option value outside its valid domain.
type ErrInvalidOption struct {
	Name  string
	Value any
}

func (e *ErrInvalidOption) Error() string {
	return fmt.Sprintf("invalid option %s: %v", e.Name, e.Value)
}
