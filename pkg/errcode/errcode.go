// Package errcode defines the error codes reported by the archive pipeline.
// Errors are github.com/jmgilman/go/errors PlatformErrors carrying one of
// the codes below, so callers can branch on the failure kind with Is.
package errcode

import (
	stderrors "errors"

	"github.com/jmgilman/go/errors"
)

const (
	// IOFailure indicates an underlying read, write, create or delete failed.
	IOFailure errors.ErrorCode = "IO_FAILURE"

	// UnsupportedInputKind indicates the source is not a directory,
	// regular file or symlink.
	UnsupportedInputKind errors.ErrorCode = "UNSUPPORTED_INPUT_KIND"

	// InvalidCompressedStream indicates the decompression input is not a
	// valid stream for any supported codec.
	InvalidCompressedStream errors.ErrorCode = "INVALID_COMPRESSED_STREAM"

	// ExtractionFailed indicates a tar entry could not be written.
	ExtractionFailed errors.ErrorCode = "EXTRACTION_FAILED"

	// StagingCleanupFailed indicates the staged tar file could not be removed.
	StagingCleanupFailed errors.ErrorCode = "STAGING_CLEANUP_FAILED"

	// InvalidInput is re-exported for invalid levels, formats and paths.
	InvalidInput = errors.CodeInvalidInput
)

// Is reports whether any PlatformError in err's chain carries code.
func Is(err error, code errors.ErrorCode) bool {
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		if pe, ok := e.(errors.PlatformError); ok && pe.Code() == code {
			return true
		}
	}
	return false
}

// Ensure wraps err with code unless it already carries a code.
// Lower layers classify their own failures; the orchestration layer uses
// Ensure so those classifications survive.
func Ensure(err error, code errors.ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	if errors.GetCode(err) != errors.CodeUnknown {
		return err
	}
	return errors.Wrap(err, code, message)
}
