package handlers

// Common error message constants shared across handlers
const (
	ErrMsgInvalidRequestBody  = "Invalid request body"
	ErrMsgUnauthorized        = "Unauthorized"
	ErrMsgUserIDNotFound      = "User ID not found"
	ErrMsgFormNotFound        = "Form not found"
	ErrMsgSubmissionNotFound  = "Submission not found"
	ErrMsgInvalidSubmissionID = "Invalid submission ID"
	ErrMsgAlreadyDecided      = "Submission has already been decided"
	ErrMsgInternalError       = "Internal server error"
)
