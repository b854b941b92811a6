package filestore

// Error codes for filestore operations.
const (
	// CodeFileNotFound is returned when a file does not exist at the specified path.
	CodeFileNotFound = "FILE_NOT_FOUND"

	// CodeFileEmpty is returned when an uploaded file has no content.
	CodeFileEmpty = "FILE_EMPTY"

	// CodeFileTooLarge is returned when the file exceeds the maximum allowed size.
	CodeFileTooLarge = "FILE_TOO_LARGE"
)
