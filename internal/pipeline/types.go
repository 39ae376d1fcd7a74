package pipeline

// Stage names the step of a scan strategy that produced the outcome.
type Stage string

const (
	// StageNone means no stage produced a code.
	StageNone Stage = "none"
	// StageRaw is the detector run on the unmodified frame.
	StageRaw Stage = "raw"
	// StageCropped is the detector run on the top-right region.
	StageCropped Stage = "cropped"
	// StageCroppedContrast is the top-right region after contrast enhancement.
	StageCroppedContrast Stage = "cropped_contrast"
	// StageFullContrast is the whole frame after contrast enhancement.
	StageFullContrast Stage = "full_contrast"
)

// Path identifies which scan strategy ran.
type Path string

const (
	// PathRawLuma scans a pre-decoded luminance buffer: raw, then the
	// contrast-enhanced top-right region.
	PathRawLuma Path = "raw_luma"
	// PathImageBytes scans compressed image bytes: raw, the top-right region,
	// then the contrast-enhanced full frame.
	PathImageBytes Path = "image_bytes"
)

// Result is the detailed outcome of a scan.
type Result struct {
	Text  string `json:"text,omitempty"`
	Found bool   `json:"found"`
	Stage Stage  `json:"stage"`
	// Attempts counts detector invocations; skipped stages do not count.
	Attempts int `json:"attempts"`
	// Err is set when the input bytes could not be decoded as an image.
	Err error `json:"-"`
}

// NotFound reports whether the scan ended without a code.
func (r Result) NotFound() bool { return !r.Found }
