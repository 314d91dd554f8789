package pixelperfect

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNoImage is returned when there is no image to process: a nil or empty
// input, or a source that could not be decoded.
var ErrNoImage = errors.New("pixelperfect: no image to process")

// DecodeError reports that a source could not be turned into pixels.
// It matches ErrNoImage under errors.Is.
type DecodeError struct {
	// MIME is the sniffed media type of the source, if any.
	MIME string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.MIME != "" {
		return fmt.Sprintf("pixelperfect: decode %s: %v", e.MIME, e.Err)
	}
	return fmt.Sprintf("pixelperfect: decode: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is reports ErrNoImage equivalence.
func (e *DecodeError) Is(target error) bool { return target == ErrNoImage }

// EncodeError reports a codec failure. It is fatal for the call and is never
// retried: the same input fails the same way.
type EncodeError struct {
	Format Format
	Reason string
	Err    error
}

func (e *EncodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("pixelperfect: encode %s: %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("pixelperfect: encode %s: %s", e.Format, e.Reason)
}

func (e *EncodeError) Unwrap() error { return e.Err }
