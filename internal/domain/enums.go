package domain

// FileType represents the allowed file types for analysis.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// ExtractionQuality is the extractor's own assessment of how legible the
// source document was. It is reported upstream and never recomputed here.
type ExtractionQuality string

const (
	QualityHigh   ExtractionQuality = "high"
	QualityMedium ExtractionQuality = "medium"
	QualityLow    ExtractionQuality = "low"
)

// ConfidenceBand is the display tier derived from a normalized 0-1 confidence.
type ConfidenceBand string

const (
	BandHigh   ConfidenceBand = "high"
	BandMedium ConfidenceBand = "medium"
	BandLow    ConfidenceBand = "low"
)

// ErrorKind classifies pipeline-stage failures for callers.
type ErrorKind string

const (
	ErrKindAdmissionDenied   ErrorKind = "admission_denied"
	ErrKindUpstreamAuth      ErrorKind = "upstream_auth"
	ErrKindUpstreamRateLimit ErrorKind = "upstream_rate_limit"
	ErrKindMalformedResponse ErrorKind = "malformed_response"
	ErrKindUpstreamFailure   ErrorKind = "upstream_failure"
)
