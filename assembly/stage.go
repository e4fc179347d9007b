package assembly

// Outcome is the result of one pipeline stage.
type Outcome string

const (
	// Applied means the stage changed the document as intended.
	Applied Outcome = "applied"
	// Fallback means the marker was consumed with substitute content.
	Fallback Outcome = "fallback"
	// Skipped means an expected absence: no marker, no asset, no entries.
	Skipped Outcome = "skip"
	// Failed means an unexpected problem such as a corrupt image. The
	// document is left as it was before the stage.
	Failed Outcome = "fail"
)

// State is the position of a generation in the pipeline.
type State string

const (
	StateLoaded             State = "LOADED"
	StateSubstituted        State = "SUBSTITUTED"
	StateDetailsInserted    State = "DETAILS_INSERTED"
	StateImagesInserted     State = "IMAGES_INSERTED"
	StateGalleryInserted    State = "GALLERY_INSERTED"
	StateAttendanceInserted State = "ATTENDANCE_INSERTED"
	StateFeedbackInserted   State = "FEEDBACK_INSERTED"
	StateSerialized         State = "SERIALIZED"
)

// Stage names as reported in results, logs and metrics.
const (
	StageSubstitute   = "substitute"
	StageDetails      = "details"
	StagePermission   = "image_permission"
	StageInvitation   = "image_invitation"
	StageNotice       = "image_notice"
	StageAppreciation = "image_appreciation"
	StageGallery      = "gallery"
	StageAttendance   = "attendance"
	StageFeedback     = "feedback"
)

// StageResult records what one stage did.
type StageResult struct {
	Stage   string  `json:"stage"`
	Marker  string  `json:"marker,omitempty"`
	Outcome Outcome `json:"outcome"`
	Err     error   `json:"-"`
	Detail  string  `json:"detail,omitempty"`
}
