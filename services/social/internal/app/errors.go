package app

import "errors"

// Sentinel errors the HTTP layer maps to response statuses.
var (
	ErrNotAuthenticated     = errors.New("caller has no profile")
	ErrRoundNotFound        = errors.New("round not found")
	ErrRoundFull            = errors.New("round is full")
	ErrAlreadyJoined        = errors.New("already joined this round")
	ErrNotParticipant       = errors.New("not a participant of this round")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrCourseNotFound       = errors.New("course not found")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrInvalidRating        = errors.New("rating must be between 1 and 5")
	ErrSelfReview           = errors.New("cannot review yourself")
	ErrValidation           = errors.New("invalid input")
)
