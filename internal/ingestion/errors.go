package ingestion

import "fmt"

// UnsupportedFormatError is returned for documents whose type cannot be extracted.
type UnsupportedFormatError struct {
	Name      string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Extension == "" {
		return fmt.Sprintf("unsupported file type: %q has no extension", e.Name)
	}
	return fmt.Sprintf("unsupported file type: %s", e.Extension)
}

// ExtractionError wraps a failure to read a supported document.
type ExtractionError struct {
	Format Format
	Cause  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s text: %v", e.Format, e.Cause)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
