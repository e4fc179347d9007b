package assembly

// Markers recognised in templates. Matching is case-sensitive.
const (
	MarkerEventDetails      = "<<EVENT_DETAILS>>"
	MarkerImagePermission   = "<<IMAGE_PERMISSION>>"
	MarkerImageInvitation   = "<<IMAGE_INVITATION>>"
	MarkerImageNotice       = "<<IMAGE_NOTICE>>"
	MarkerImageAppreciation = "<<IMAGE_APPRECIATION>>"
	MarkerEventPhotos       = "<<EVENT_PHOTOS>>"
	MarkerAttendanceFile    = "<<ATTENDANCE_FILE>>"
	MarkerFeedbackTable     = "<<FEEDBACK_TABLE>>"
)

// Markers lists every marker in pipeline order.
var Markers = []string{
	MarkerEventDetails,
	MarkerImagePermission,
	MarkerImageInvitation,
	MarkerImageNotice,
	MarkerImageAppreciation,
	MarkerEventPhotos,
	MarkerAttendanceFile,
	MarkerFeedbackTable,
}
