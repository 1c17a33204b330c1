package service

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthorized       = errors.New("unauthorized access")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrClassNotFound      = errors.New("class not found")
	ErrNotMember          = errors.New("not a member of this class")
	ErrMemberNotFound     = errors.New("member not found")
	ErrAlreadyMember      = errors.New("already a member of this class")
	ErrInvalidJoinCode    = errors.New("invalid join code")
	ErrOwnerProtected     = errors.New("the class owner cannot be changed or removed")
	ErrPostNotFound       = errors.New("post not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrAnswerNotFound     = errors.New("answer not found")
	ErrPlaylistNotFound   = errors.New("playlist not found")
	ErrFileNotFound       = errors.New("file not found")
	ErrAlreadyInPlaylist  = errors.New("file already in playlist")
	ErrRateLimited        = errors.New("rate limit exceeded")
	ErrUpstream           = errors.New("upstream service error")
)

type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }
func (e *validationError) Unwrap() error { return ErrValidation }

// validation reports a form-level problem; errors.Is(err, ErrValidation) holds.
func validation(msg string) error {
	return &validationError{msg: msg}
}
