package domain

import "time"

type RoundStatus string

const (
	RoundOpen      RoundStatus = "open"
	RoundFull      RoundStatus = "full"
	RoundCompleted RoundStatus = "completed"
	RoundCancelled RoundStatus = "cancelled"
)

type GameFormat string

const (
	FormatStrokePlay GameFormat = "stroke_play"
	FormatStableford GameFormat = "stableford"
	FormatMatchPlay  GameFormat = "match_play"
	FormatBestBall   GameFormat = "best_ball"
	FormatScramble   GameFormat = "scramble"
	FormatSkins      GameFormat = "skins"
)

// KnownFormat reports whether f is one of the supported game formats.
func KnownFormat(f GameFormat) bool {
	switch f {
	case FormatStrokePlay, FormatStableford, FormatMatchPlay, FormatBestBall, FormatScramble, FormatSkins:
		return true
	}
	return false
}

type ParticipationStatus string

const (
	ParticipationJoined  ParticipationStatus = "joined"
	ParticipationPresent ParticipationStatus = "present"
	ParticipationNoShow  ParticipationStatus = "no_show"
	ParticipationLeft    ParticipationStatus = "left"
)

type ConversationType string

const (
	ConversationDM    ConversationType = "dm"
	ConversationRound ConversationType = "round"
)

// Profile is the player-facing identity, linked 1:1 to an authenticated user.
type Profile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Handicap  int       `json:"handicap"`
	HomeClub  string    `json:"homeClub"`
	Bio       string    `json:"bio,omitempty"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Course is immutable reference data.
type Course struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Holes    int    `json:"holes"`
	Par      int    `json:"par"`
}

// Round is a scheduled outing. MinHandicap/MaxHandicap are the current schema;
// HandicapRange carries the legacy string band for rows written before the
// numeric columns existed.
type Round struct {
	ID            string      `json:"id"`
	CourseID      string      `json:"courseId"`
	OrganizerID   string      `json:"organizerId"`
	Date          string      `json:"date"` // YYYY-MM-DD
	Time          string      `json:"time"` // HH:MM
	Format        GameFormat  `json:"format"`
	PlayersNeeded int         `json:"playersNeeded"`
	HandicapRange string      `json:"handicapRange,omitempty"`
	MinHandicap   *int        `json:"minHandicap,omitempty"`
	MaxHandicap   *int        `json:"maxHandicap,omitempty"`
	Description   string      `json:"description,omitempty"`
	Status        RoundStatus `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// RoundPlayer joins a profile to a round, unique per (round, profile).
type RoundPlayer struct {
	RoundID             string              `json:"roundId"`
	ProfileID           string              `json:"profileId"`
	ParticipationStatus ParticipationStatus `json:"participationStatus,omitempty"`
	JoinedAt            time.Time           `json:"joinedAt"`
}

// RoundDetails is a round with its organizer, course and player profiles joined.
type RoundDetails struct {
	Round
	Organizer Profile   `json:"organizer"`
	Course    Course    `json:"course"`
	Players   []Profile `json:"players"`
}

type Conversation struct {
	ID        string           `json:"id"`
	Type      ConversationType `json:"type"`
	RoundID   string           `json:"roundId,omitempty"` // set iff Type == ConversationRound
	CreatedAt time.Time        `json:"createdAt"`
}

type ConversationParticipant struct {
	ConversationID string    `json:"conversationId"`
	ProfileID      string    `json:"profileId"`
	JoinedAt       time.Time `json:"joinedAt"`
}

// Message is append-only chat content; never edited or deleted.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
	Sender         *Profile  `json:"sender,omitempty"`
}

// ConversationDetails enriches a conversation for list views. Conversations
// without a message yet are never surfaced.
type ConversationDetails struct {
	Conversation
	Participants []Profile `json:"participants"`
	LastMessage  *Message  `json:"lastMessage,omitempty"`
	RoundName    string    `json:"roundName,omitempty"`
}

// Review rates a co-participant for one round, unique per
// (round, reviewer, reviewed user).
type Review struct {
	ID             string    `json:"id"`
	RoundID        string    `json:"roundId"`
	ReviewerID     string    `json:"reviewerId"`
	ReviewedUserID string    `json:"reviewedUserId"`
	Rating         int       `json:"rating"`
	Comment        string    `json:"comment,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ProfileReview is a review enriched for a profile's review feed.
type ProfileReview struct {
	Review
	Reviewer       Profile `json:"reviewer"`
	RoundDate      string  `json:"roundDate,omitempty"`
	CourseName     string  `json:"courseName,omitempty"`
	CourseLocation string  `json:"courseLocation,omitempty"`
}

// ReputationKpis aggregates a profile's playing history.
type ReputationKpis struct {
	RoundsPlayed          int      `json:"roundsPlayed"`
	ReliabilityPercent    *int     `json:"reliabilityPercent"`
	ReliabilitySampleSize int      `json:"reliabilitySampleSize"`
	AverageRating         *float64 `json:"averageRating"`
	ReviewsCount          int      `json:"reviewsCount"`
}

// ReviewTarget is a co-participant the caller may rate, with any review the
// caller already wrote for them.
type ReviewTarget struct {
	ProfileID       string  `json:"profileId"`
	Name            string  `json:"name"`
	AvatarURL       string  `json:"avatarUrl,omitempty"`
	ExistingRating  *int    `json:"existingRating,omitempty"`
	ExistingComment *string `json:"existingComment,omitempty"`
}
