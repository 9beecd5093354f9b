package store

import (
	"strings"

	"teeup/pkg/domain"
)

// ProfileUpdate carries the editable profile fields; nil means unchanged.
type ProfileUpdate struct {
	Name      *string
	Handicap  *int
	HomeClub  *string
	Bio       *string
	AvatarURL *string
}

// Store defines persistence for profiles, rounds, conversations and reviews.
// The remote schema exists in two generations (see IsMissingParticipationStatus
// and IsSchemaCompat); callers branch on the classifiers, not on raw errors.
type Store interface {
	// profiles
	SaveProfile(p domain.Profile) error
	GetProfileByUserID(userID string) (domain.Profile, bool, error)
	GetProfileByID(id string) (domain.Profile, bool, error)
	UpdateProfile(id string, updates ProfileUpdate) error

	// courses
	SaveCourse(c domain.Course) error
	ListCourses() ([]domain.Course, error)
	GetCourse(id string) (domain.Course, bool, error)

	// rounds
	CreateRound(r domain.Round) error
	SetRoundStatus(roundID string, status domain.RoundStatus) error
	GetRoundDetails(id string) (domain.RoundDetails, bool, error)
	ListRoundDetails(ids ...string) ([]domain.RoundDetails, error)
	ListRoundIDsForProfile(profileID string) ([]string, error)
	SetRoundOrganizer(roundID, profileID string) error
	DeleteRound(id string) error

	// round players
	InsertRoundPlayer(p domain.RoundPlayer) error
	InsertRoundPlayerLegacy(roundID, profileID string) error
	RemoveRoundPlayer(roundID, profileID string) error
	EarliestOtherPlayer(roundID, excludeProfileID string) (string, bool, error)
	CountCompletedRounds(profileID string) (int, error)
	RecentAttendance(profileID string, limit int) ([]domain.ParticipationStatus, error)

	// conversations
	CreateConversation(c domain.Conversation, participantIDs ...string) error
	AddConversationParticipant(conversationID, profileID string) error
	RemoveConversationParticipant(conversationID, profileID string) error
	ListConversationIDsForProfile(profileID string) ([]string, error)
	ListConversationsByIDs(ids []string) ([]domain.Conversation, error)
	ListConversationParticipants(ids []string) (map[string][]domain.Profile, error)
	GetRoundConversation(roundID string) (string, bool, error)

	// messages
	InsertMessage(m domain.Message) error
	ListMessages(conversationID string) ([]domain.Message, error)
	LastMessage(conversationID string) (domain.Message, bool, error)

	// reviews
	UpsertReview(r domain.Review) (domain.Review, error)
	ListRatings(reviewedUserID string) ([]int, error)
	ListProfileReviews(reviewedUserID string) ([]domain.ProfileReview, error)
	ListRoundReviewsByReviewer(roundID, reviewerID string) ([]domain.Review, error)
}

// IsMissingParticipationStatus reports whether err is the one known failure
// of inserting a participant with a status into a pre-migration schema. The
// allow-list is deliberately narrow: both the column and the table name must
// appear in the message.
func IsMissingParticipationStatus(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "participation_status") && strings.Contains(msg, "round_players")
}

// IsSchemaCompat reports whether err looks like a missing column or table,
// i.e. a schema generation the migration has not reached yet.
func IsSchemaCompat(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "does not exist") ||
		strings.Contains(msg, "column") ||
		strings.Contains(msg, "relation")
}
