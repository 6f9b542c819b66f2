package calenv

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable reports a source that could not be reached:
	// network, authentication or HTTP status failure.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrMalformedSource reports a source that answered with an
	// unexpected structure.
	ErrMalformedSource = errors.New("malformed source")
	// ErrComputationFault reports an astronomical computation that
	// produced no answer. It is never recovered.
	ErrComputationFault = errors.New("computation fault")
)

func SourceUnavailable(source string, cause error) error {
	return fmt.Errorf("%s: %w: %w", source, ErrSourceUnavailable, cause)
}

func MalformedSource(source string, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", source, ErrMalformedSource, fmt.Sprintf(format, args...))
}

func ComputationFault(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrComputationFault, fmt.Sprintf(format, args...))
}
