package domain

import "errors"

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrEmptyFile           = errors.New("uploaded file is empty")
	ErrInvalidReportInput  = errors.New("report payload does not match expected format")
)
