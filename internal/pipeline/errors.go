package pipeline

import "fmt"

// AcquisitionError means the source page was unreachable. It aborts the
// run; absent optional signals (no image, no transcript) are partial
// content, not errors.
type AcquisitionError struct {
	URL string
	Err error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquisition failed for %s: %v", e.URL, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// SynthesisError means the completion service failed or returned output
// that does not conform to the recipe schema. No repair is attempted.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis failed: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// RenderError means an artifact could not be produced. It is hard for
// that artifact only; a failed thumbnail does not abort the run.
type RenderError struct {
	Artifact string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s failed: %v", e.Artifact, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
