package constants

// Submission status labels. A submission starts as StatusSubmitted and only
// an audit adjustment moves it to one of the others.
const (
	StatusSubmitted  = "submitted"
	StatusApproved   = "approved"
	StatusMinorFault = "minor_fault"
	StatusMajorFault = "major_fault"
	StatusCorrected  = "corrected"
)
