package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"teeup/pkg/domain"
)

const migrateLockID int64 = 81290412

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations under an advisory lock
// so concurrent replicas do not race the migration.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, func(tx *gorm.DB) error {
		return tx.AutoMigrate(
			&ProfileModel{},
			&CourseModel{},
			&RoundModel{},
			&RoundPlayerModel{},
			&ConversationModel{},
			&ConversationParticipantModel{},
			&MessageModel{},
			&ReviewModel{},
		)
	}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)"); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)")
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string) error {
	_, err := conn.ExecContext(ctx, query, migrateLockID)
	return err
}

// SaveProfile inserts or updates a profile row.
func (s *GormStore) SaveProfile(p domain.Profile) error {
	model := profileToModel(p)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "handicap", "home_club", "bio", "avatar_url", "updated_at"}),
	}).Create(&model).Error
}

// GetProfileByUserID resolves the caller profile from the authenticated user id.
func (s *GormStore) GetProfileByUserID(userID string) (domain.Profile, bool, error) {
	var model ProfileModel
	if err := s.db.Where("user_id = ?", userID).First(&model).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Profile{}, false, nil
		}
		return domain.Profile{}, false, err
	}
	return profileFromModel(model), true, nil
}

// GetProfileByID returns a profile by primary key.
func (s *GormStore) GetProfileByID(id string) (domain.Profile, bool, error) {
	var model ProfileModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Profile{}, false, nil
		}
		return domain.Profile{}, false, err
	}
	return profileFromModel(model), true, nil
}

// UpdateProfile applies the non-nil fields of updates.
func (s *GormStore) UpdateProfile(id string, updates ProfileUpdate) error {
	fields := map[string]any{"updated_at": time.Now().UTC()}
	if updates.Name != nil {
		fields["name"] = *updates.Name
	}
	if updates.Handicap != nil {
		fields["handicap"] = *updates.Handicap
	}
	if updates.HomeClub != nil {
		fields["home_club"] = *updates.HomeClub
	}
	if updates.Bio != nil {
		fields["bio"] = *updates.Bio
	}
	if updates.AvatarURL != nil {
		fields["avatar_url"] = *updates.AvatarURL
	}
	return s.db.Model(&ProfileModel{}).Where("id = ?", id).Updates(fields).Error
}

// SaveCourse inserts or replaces course reference data.
func (s *GormStore) SaveCourse(c domain.Course) error {
	model := CourseModel(c)
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "location", "holes", "par"}),
	}).Create(&model).Error
}

// ListCourses returns all courses ordered by name.
func (s *GormStore) ListCourses() ([]domain.Course, error) {
	var models []CourseModel
	if err := s.db.Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Course, 0, len(models))
	for _, m := range models {
		res = append(res, domain.Course(m))
	}
	return res, nil
}

// GetCourse returns a course by id.
func (s *GormStore) GetCourse(id string) (domain.Course, bool, error) {
	var model CourseModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Course{}, false, nil
		}
		return domain.Course{}, false, err
	}
	return domain.Course(model), true, nil
}

// CreateRound inserts the round row.
func (s *GormStore) CreateRound(r domain.Round) error {
	model := roundToModel(r)
	return s.db.Create(&model).Error
}

// SetRoundStatus applies an externally driven status transition.
func (s *GormStore) SetRoundStatus(roundID string, status domain.RoundStatus) error {
	return s.db.Model(&RoundModel{}).Where("id = ?", roundID).
		Updates(map[string]any{"status": string(status), "updated_at": time.Now().UTC()}).Error
}

// GetRoundDetails returns one round with organizer, course and players joined.
func (s *GormStore) GetRoundDetails(id string) (domain.RoundDetails, bool, error) {
	var model RoundModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.RoundDetails{}, false, nil
		}
		return domain.RoundDetails{}, false, err
	}
	details, err := s.assembleRounds([]RoundModel{model})
	if err != nil {
		return domain.RoundDetails{}, false, err
	}
	return details[0], true, nil
}

// ListRoundDetails returns rounds ordered by date, restricted to ids when given.
func (s *GormStore) ListRoundDetails(ids ...string) ([]domain.RoundDetails, error) {
	var models []RoundModel
	tx := s.db.Order("date ASC, time ASC")
	if len(ids) > 0 {
		tx = tx.Where("id IN ?", ids)
	}
	if err := tx.Find(&models).Error; err != nil {
		return nil, err
	}
	return s.assembleRounds(models)
}

func (s *GormStore) assembleRounds(models []RoundModel) ([]domain.RoundDetails, error) {
	if len(models) == 0 {
		return []domain.RoundDetails{}, nil
	}
	roundIDs := make([]string, 0, len(models))
	courseIDs := make([]string, 0, len(models))
	profileIDs := make([]string, 0, len(models))
	for _, m := range models {
		roundIDs = append(roundIDs, m.ID)
		courseIDs = append(courseIDs, m.CourseID)
		profileIDs = append(profileIDs, m.OrganizerID)
	}

	var players []RoundPlayerModel
	if err := s.db.Where("round_id IN ?", roundIDs).Order("joined_at ASC, profile_id ASC").Find(&players).Error; err != nil {
		return nil, err
	}
	for _, p := range players {
		profileIDs = append(profileIDs, p.ProfileID)
	}

	profiles, err := s.profilesByID(profileIDs)
	if err != nil {
		return nil, err
	}
	var courses []CourseModel
	if err := s.db.Where("id IN ?", courseIDs).Find(&courses).Error; err != nil {
		return nil, err
	}
	courseByID := make(map[string]domain.Course, len(courses))
	for _, c := range courses {
		courseByID[c.ID] = domain.Course(c)
	}
	playersByRound := make(map[string][]domain.Profile)
	for _, p := range players {
		if prof, ok := profiles[p.ProfileID]; ok {
			playersByRound[p.RoundID] = append(playersByRound[p.RoundID], prof)
		}
	}

	res := make([]domain.RoundDetails, 0, len(models))
	for _, m := range models {
		d := domain.RoundDetails{
			Round:     roundFromModel(m),
			Organizer: profiles[m.OrganizerID],
			Course:    courseByID[m.CourseID],
			Players:   playersByRound[m.ID],
		}
		if d.Players == nil {
			d.Players = []domain.Profile{}
		}
		res = append(res, d)
	}
	return res, nil
}

func (s *GormStore) profilesByID(ids []string) (map[string]domain.Profile, error) {
	if len(ids) == 0 {
		return map[string]domain.Profile{}, nil
	}
	var models []ProfileModel
	if err := s.db.Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	res := make(map[string]domain.Profile, len(models))
	for _, m := range models {
		res[m.ID] = profileFromModel(m)
	}
	return res, nil
}

// ListRoundIDsForProfile returns ids of rounds the profile organizes or plays in.
func (s *GormStore) ListRoundIDsForProfile(profileID string) ([]string, error) {
	var organized []string
	if err := s.db.Model(&RoundModel{}).Where("organizer_id = ?", profileID).Pluck("id", &organized).Error; err != nil {
		return nil, err
	}
	var joined []string
	if err := s.db.Model(&RoundPlayerModel{}).Where("profile_id = ?", profileID).Pluck("round_id", &joined).Error; err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(organized)+len(joined))
	res := make([]string, 0, len(organized)+len(joined))
	for _, id := range append(organized, joined...) {
		if !seen[id] {
			seen[id] = true
			res = append(res, id)
		}
	}
	sort.Strings(res)
	return res, nil
}

// SetRoundOrganizer reassigns the host.
func (s *GormStore) SetRoundOrganizer(roundID, profileID string) error {
	return s.db.Model(&RoundModel{}).Where("id = ?", roundID).
		Updates(map[string]any{"organizer_id": profileID, "updated_at": time.Now().UTC()}).Error
}

// DeleteRound removes the round, its participants, its conversation and that
// conversation's participants and messages in one transaction.
func (s *GormStore) DeleteRound(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var convIDs []string
		if err := tx.Model(&ConversationModel{}).Where("round_id = ?", id).Pluck("id", &convIDs).Error; err != nil {
			return err
		}
		if len(convIDs) > 0 {
			if err := tx.Delete(&MessageModel{}, "conversation_id IN ?", convIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&ConversationParticipantModel{}, "conversation_id IN ?", convIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&ConversationModel{}, "id IN ?", convIDs).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&RoundPlayerModel{}, "round_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&RoundModel{}, "id = ?", id).Error
	})
}

// InsertRoundPlayer writes a participant row including its participation status.
func (s *GormStore) InsertRoundPlayer(p domain.RoundPlayer) error {
	model := RoundPlayerModel{
		RoundID:             p.RoundID,
		ProfileID:           p.ProfileID,
		ParticipationStatus: string(p.ParticipationStatus),
		JoinedAt:            p.JoinedAt,
	}
	if model.JoinedAt.IsZero() {
		model.JoinedAt = time.Now().UTC()
	}
	return s.db.Create(&model).Error
}

// InsertRoundPlayerLegacy writes a participant row without the status column,
// for schemas where the participation_status migration is not applied yet.
func (s *GormStore) InsertRoundPlayerLegacy(roundID, profileID string) error {
	model := RoundPlayerModel{RoundID: roundID, ProfileID: profileID, JoinedAt: time.Now().UTC()}
	return s.db.Omit("participation_status").Create(&model).Error
}

// RemoveRoundPlayer deletes the participant row.
func (s *GormStore) RemoveRoundPlayer(roundID, profileID string) error {
	return s.db.Delete(&RoundPlayerModel{}, "round_id = ? AND profile_id = ?", roundID, profileID).Error
}

// EarliestOtherPlayer returns the participant with the earliest joined_at
// excluding the given profile; ties break on profile id for a stable result.
func (s *GormStore) EarliestOtherPlayer(roundID, excludeProfileID string) (string, bool, error) {
	var model RoundPlayerModel
	err := s.db.Where("round_id = ? AND profile_id <> ?", roundID, excludeProfileID).
		Order("joined_at ASC, profile_id ASC").
		First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", false, nil
		}
		return "", false, err
	}
	return model.ProfileID, true, nil
}

// CountCompletedRounds counts participations in completed rounds.
func (s *GormStore) CountCompletedRounds(profileID string) (int, error) {
	var count int64
	err := s.db.Model(&RoundPlayerModel{}).
		Joins("JOIN golf_rounds ON golf_rounds.id = round_players.round_id").
		Where("round_players.profile_id = ? AND golf_rounds.status = ?", profileID, string(domain.RoundCompleted)).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// RecentAttendance returns the latest present/no_show statuses for completed
// rounds, newest first.
func (s *GormStore) RecentAttendance(profileID string, limit int) ([]domain.ParticipationStatus, error) {
	var statuses []string
	err := s.db.Model(&RoundPlayerModel{}).
		Joins("JOIN golf_rounds ON golf_rounds.id = round_players.round_id").
		Where("round_players.profile_id = ?", profileID).
		Where("round_players.participation_status IN ?", []string{string(domain.ParticipationPresent), string(domain.ParticipationNoShow)}).
		Where("golf_rounds.status = ?", string(domain.RoundCompleted)).
		Order("round_players.joined_at DESC").
		Limit(limit).
		Pluck("round_players.participation_status", &statuses).Error
	if err != nil {
		return nil, err
	}
	res := make([]domain.ParticipationStatus, 0, len(statuses))
	for _, st := range statuses {
		res = append(res, domain.ParticipationStatus(st))
	}
	return res, nil
}

// CreateConversation inserts the conversation and its initial participants.
func (s *GormStore) CreateConversation(c domain.Conversation, participantIDs ...string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		model := ConversationModel{ID: c.ID, Type: string(c.Type), RoundID: c.RoundID, CreatedAt: c.CreatedAt}
		if model.CreatedAt.IsZero() {
			model.CreatedAt = time.Now().UTC()
		}
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		for _, pid := range participantIDs {
			p := ConversationParticipantModel{ConversationID: c.ID, ProfileID: pid, JoinedAt: time.Now().UTC()}
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// AddConversationParticipant is idempotent on the composite key.
func (s *GormStore) AddConversationParticipant(conversationID, profileID string) error {
	model := ConversationParticipantModel{ConversationID: conversationID, ProfileID: profileID, JoinedAt: time.Now().UTC()}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model).Error
}

// RemoveConversationParticipant deletes the membership row.
func (s *GormStore) RemoveConversationParticipant(conversationID, profileID string) error {
	return s.db.Delete(&ConversationParticipantModel{}, "conversation_id = ? AND profile_id = ?", conversationID, profileID).Error
}

// ListConversationIDsForProfile returns ids of conversations the profile is in.
func (s *GormStore) ListConversationIDsForProfile(profileID string) ([]string, error) {
	var ids []string
	err := s.db.Model(&ConversationParticipantModel{}).
		Where("profile_id = ?", profileID).
		Pluck("conversation_id", &ids).Error
	return ids, err
}

// ListConversationsByIDs returns conversation rows for the given ids.
func (s *GormStore) ListConversationsByIDs(ids []string) ([]domain.Conversation, error) {
	if len(ids) == 0 {
		return []domain.Conversation{}, nil
	}
	var models []ConversationModel
	if err := s.db.Where("id IN ?", ids).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Conversation, 0, len(models))
	for _, m := range models {
		res = append(res, domain.Conversation{ID: m.ID, Type: domain.ConversationType(m.Type), RoundID: m.RoundID, CreatedAt: m.CreatedAt})
	}
	return res, nil
}

// ListConversationParticipants returns participant profiles grouped by conversation.
func (s *GormStore) ListConversationParticipants(ids []string) (map[string][]domain.Profile, error) {
	res := make(map[string][]domain.Profile)
	if len(ids) == 0 {
		return res, nil
	}
	var rows []ConversationParticipantModel
	if err := s.db.Where("conversation_id IN ?", ids).Order("joined_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	profileIDs := make([]string, 0, len(rows))
	for _, r := range rows {
		profileIDs = append(profileIDs, r.ProfileID)
	}
	profiles, err := s.profilesByID(profileIDs)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if p, ok := profiles[r.ProfileID]; ok {
			res[r.ConversationID] = append(res[r.ConversationID], p)
		}
	}
	return res, nil
}

// GetRoundConversation returns the id of a round's group conversation.
func (s *GormStore) GetRoundConversation(roundID string) (string, bool, error) {
	var model ConversationModel
	err := s.db.Where("round_id = ? AND type = ?", roundID, string(domain.ConversationRound)).First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", false, nil
		}
		return "", false, err
	}
	return model.ID, true, nil
}

// InsertMessage appends a chat message.
func (s *GormStore) InsertMessage(m domain.Message) error {
	model := MessageModel{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now().UTC()
	}
	return s.db.Create(&model).Error
}

// ListMessages returns a conversation's messages oldest first, sender joined.
func (s *GormStore) ListMessages(conversationID string) ([]domain.Message, error) {
	var models []MessageModel
	if err := s.db.Where("conversation_id = ?", conversationID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	senderIDs := make([]string, 0, len(models))
	for _, m := range models {
		senderIDs = append(senderIDs, m.SenderID)
	}
	profiles, err := s.profilesByID(senderIDs)
	if err != nil {
		return nil, err
	}
	res := make([]domain.Message, 0, len(models))
	for _, m := range models {
		msg := messageFromModel(m)
		if p, ok := profiles[m.SenderID]; ok {
			sender := p
			msg.Sender = &sender
		}
		res = append(res, msg)
	}
	return res, nil
}

// LastMessage returns the newest message of a conversation, if any.
func (s *GormStore) LastMessage(conversationID string) (domain.Message, bool, error) {
	var model MessageModel
	err := s.db.Where("conversation_id = ?", conversationID).Order("created_at DESC").First(&model).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return domain.Message{}, false, nil
		}
		return domain.Message{}, false, err
	}
	return messageFromModel(model), true, nil
}

// UpsertReview writes or overwrites the review keyed by
// (round, reviewer, reviewed user) and returns the stored row.
func (s *GormStore) UpsertReview(r domain.Review) (domain.Review, error) {
	model := reviewToModel(r)
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "round_id"}, {Name: "reviewer_id"}, {Name: "reviewed_user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
	}).Create(&model).Error
	if err != nil {
		return domain.Review{}, err
	}
	var stored ReviewModel
	err = s.db.Where("round_id = ? AND reviewer_id = ? AND reviewed_user_id = ?",
		r.RoundID, r.ReviewerID, r.ReviewedUserID).First(&stored).Error
	if err != nil {
		return domain.Review{}, err
	}
	return reviewFromModel(stored), nil
}

// ListRatings returns all ratings received by a profile.
func (s *GormStore) ListRatings(reviewedUserID string) ([]int, error) {
	var ratings []int
	err := s.db.Model(&ReviewModel{}).Where("reviewed_user_id = ?", reviewedUserID).Pluck("rating", &ratings).Error
	return ratings, err
}

// ListProfileReviews returns a profile's received reviews newest first, with
// reviewer and round context joined.
func (s *GormStore) ListProfileReviews(reviewedUserID string) ([]domain.ProfileReview, error) {
	var models []ReviewModel
	if err := s.db.Where("reviewed_user_id = ?", reviewedUserID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	reviewerIDs := make([]string, 0, len(models))
	roundIDs := make([]string, 0, len(models))
	for _, m := range models {
		reviewerIDs = append(reviewerIDs, m.ReviewerID)
		roundIDs = append(roundIDs, m.RoundID)
	}
	reviewers, err := s.profilesByID(reviewerIDs)
	if err != nil {
		return nil, err
	}
	var rounds []RoundModel
	if len(roundIDs) > 0 {
		if err := s.db.Where("id IN ?", roundIDs).Find(&rounds).Error; err != nil {
			return nil, err
		}
	}
	courseIDs := make([]string, 0, len(rounds))
	roundByID := make(map[string]RoundModel, len(rounds))
	for _, r := range rounds {
		roundByID[r.ID] = r
		courseIDs = append(courseIDs, r.CourseID)
	}
	var courses []CourseModel
	if len(courseIDs) > 0 {
		if err := s.db.Where("id IN ?", courseIDs).Find(&courses).Error; err != nil {
			return nil, err
		}
	}
	courseByID := make(map[string]CourseModel, len(courses))
	for _, c := range courses {
		courseByID[c.ID] = c
	}

	res := make([]domain.ProfileReview, 0, len(models))
	for _, m := range models {
		pr := domain.ProfileReview{Review: reviewFromModel(m), Reviewer: reviewers[m.ReviewerID]}
		if round, ok := roundByID[m.RoundID]; ok {
			pr.RoundDate = round.Date
			if course, ok := courseByID[round.CourseID]; ok {
				pr.CourseName = course.Name
				pr.CourseLocation = course.Location
			}
		}
		res = append(res, pr)
	}
	return res, nil
}

// ListRoundReviewsByReviewer returns reviews one profile wrote for a round.
func (s *GormStore) ListRoundReviewsByReviewer(roundID, reviewerID string) ([]domain.Review, error) {
	var models []ReviewModel
	if err := s.db.Where("round_id = ? AND reviewer_id = ?", roundID, reviewerID).Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Review, 0, len(models))
	for _, m := range models {
		res = append(res, reviewFromModel(m))
	}
	return res, nil
}

func profileToModel(p domain.Profile) ProfileModel {
	return ProfileModel{
		ID:        p.ID,
		UserID:    p.UserID,
		Name:      p.Name,
		Handicap:  p.Handicap,
		HomeClub:  p.HomeClub,
		Bio:       p.Bio,
		AvatarURL: p.AvatarURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func profileFromModel(m ProfileModel) domain.Profile {
	return domain.Profile{
		ID:        m.ID,
		UserID:    m.UserID,
		Name:      m.Name,
		Handicap:  m.Handicap,
		HomeClub:  m.HomeClub,
		Bio:       m.Bio,
		AvatarURL: m.AvatarURL,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func roundToModel(r domain.Round) RoundModel {
	return RoundModel{
		ID:            r.ID,
		CourseID:      r.CourseID,
		OrganizerID:   r.OrganizerID,
		Date:          r.Date,
		Time:          r.Time,
		Format:        string(r.Format),
		PlayersNeeded: r.PlayersNeeded,
		HandicapRange: r.HandicapRange,
		MinHandicap:   r.MinHandicap,
		MaxHandicap:   r.MaxHandicap,
		Description:   r.Description,
		Status:        string(r.Status),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func roundFromModel(m RoundModel) domain.Round {
	return domain.Round{
		ID:            m.ID,
		CourseID:      m.CourseID,
		OrganizerID:   m.OrganizerID,
		Date:          m.Date,
		Time:          m.Time,
		Format:        domain.GameFormat(m.Format),
		PlayersNeeded: m.PlayersNeeded,
		HandicapRange: m.HandicapRange,
		MinHandicap:   m.MinHandicap,
		MaxHandicap:   m.MaxHandicap,
		Description:   m.Description,
		Status:        domain.RoundStatus(m.Status),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func messageFromModel(m MessageModel) domain.Message {
	return domain.Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

func reviewToModel(r domain.Review) ReviewModel {
	model := ReviewModel{
		ID:             r.ID,
		RoundID:        r.RoundID,
		ReviewerID:     r.ReviewerID,
		ReviewedUserID: r.ReviewedUserID,
		Rating:         r.Rating,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.Comment != "" {
		comment := r.Comment
		model.Comment = &comment
	}
	return model
}

func reviewFromModel(m ReviewModel) domain.Review {
	r := domain.Review{
		ID:             m.ID,
		RoundID:        m.RoundID,
		ReviewerID:     m.ReviewerID,
		ReviewedUserID: m.ReviewedUserID,
		Rating:         m.Rating,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.Comment != nil {
		r.Comment = *m.Comment
	}
	return r
}
