package store

import "time"

// GORM models used for persistence. Table names match the managed schema the
// mobile clients were built against.

type ProfileModel struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"uniqueIndex;not null"`
	Name      string `gorm:"not null"`
	Handicap  int    `gorm:"not null"`
	HomeClub  string
	Bio       string
	AvatarURL string
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time
}

func (ProfileModel) TableName() string { return "profiles" }

type CourseModel struct {
	ID       string `gorm:"primaryKey"`
	Name     string `gorm:"not null"`
	Location string `gorm:"not null"`
	Holes    int    `gorm:"not null"`
	Par      int    `gorm:"not null"`
}

func (CourseModel) TableName() string { return "golf_courses" }

type RoundModel struct {
	ID            string `gorm:"primaryKey"`
	CourseID      string `gorm:"not null;index"`
	OrganizerID   string `gorm:"not null;index"`
	Date          string `gorm:"not null;index"`
	Time          string `gorm:"not null"`
	Format        string `gorm:"not null"`
	PlayersNeeded int    `gorm:"not null"`
	HandicapRange string
	MinHandicap   *int
	MaxHandicap   *int
	Description   string
	Status        string    `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time
}

func (RoundModel) TableName() string { return "golf_rounds" }

type RoundPlayerModel struct {
	RoundID             string `gorm:"primaryKey"`
	ProfileID           string `gorm:"primaryKey"`
	ParticipationStatus string
	JoinedAt            time.Time `gorm:"not null;index"`
}

func (RoundPlayerModel) TableName() string { return "round_players" }

type ConversationModel struct {
	ID        string `gorm:"primaryKey"`
	Type      string `gorm:"not null"`
	RoundID   string `gorm:"index"`
	CreatedAt time.Time `gorm:"not null"`
}

func (ConversationModel) TableName() string { return "conversations" }

type ConversationParticipantModel struct {
	ConversationID string    `gorm:"primaryKey"`
	ProfileID      string    `gorm:"primaryKey;index"`
	JoinedAt       time.Time `gorm:"not null"`
}

func (ConversationParticipantModel) TableName() string { return "conversation_participants" }

type MessageModel struct {
	ID             string    `gorm:"primaryKey"`
	ConversationID string    `gorm:"not null;index"`
	SenderID       string    `gorm:"not null"`
	Content        string    `gorm:"type:text;not null"`
	CreatedAt      time.Time `gorm:"not null;index"`
}

func (MessageModel) TableName() string { return "messages" }

type ReviewModel struct {
	ID             string `gorm:"primaryKey"`
	RoundID        string `gorm:"not null;uniqueIndex:idx_reviews_round_reviewer_reviewed"`
	ReviewerID     string `gorm:"not null;uniqueIndex:idx_reviews_round_reviewer_reviewed"`
	ReviewedUserID string `gorm:"not null;uniqueIndex:idx_reviews_round_reviewer_reviewed;index"`
	Rating         int    `gorm:"not null"`
	Comment        *string
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time
}

func (ReviewModel) TableName() string { return "reviews" }
