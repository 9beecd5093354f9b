package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"teeup/pkg/domain"
)

var (
	errLegacyParticipation = errors.New(`column "participation_status" of relation "round_players" does not exist`)
	errReviewsMissing      = errors.New(`relation "reviews" does not exist`)
)

// MemoryStore keeps all rows in-process. It backs the app tests and can
// simulate the two known legacy schema generations.
type MemoryStore struct {
	mu                  sync.RWMutex
	profiles            map[string]domain.Profile
	courses             map[string]domain.Course
	rounds              map[string]domain.Round
	roundPlayers        map[string][]domain.RoundPlayer // round id -> players, join order
	conversations       map[string]domain.Conversation
	convParticipants    map[string][]domain.ConversationParticipant
	messages            map[string][]domain.Message // conversation id -> messages, append order
	reviews             []domain.Review
	legacyParticipation bool
	reviewsMissing      bool
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles:         make(map[string]domain.Profile),
		courses:          make(map[string]domain.Course),
		rounds:           make(map[string]domain.Round),
		roundPlayers:     make(map[string][]domain.RoundPlayer),
		conversations:    make(map[string]domain.Conversation),
		convParticipants: make(map[string][]domain.ConversationParticipant),
		messages:         make(map[string][]domain.Message),
	}
}

// SimulateLegacyParticipationColumn makes status-bearing participant inserts
// and attendance reads fail the way a pre-migration schema does.
func (m *MemoryStore) SimulateLegacyParticipationColumn() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.legacyParticipation = true
}

// SimulateMissingReviewsTable makes review reads/writes fail as if the
// reviews migration were not applied.
func (m *MemoryStore) SimulateMissingReviewsTable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviewsMissing = true
}

func (m *MemoryStore) SaveProfile(p domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = p
	return nil
}

func (m *MemoryStore) GetProfileByUserID(userID string) (domain.Profile, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.profiles {
		if p.UserID == userID {
			return p, true, nil
		}
	}
	return domain.Profile{}, false, nil
}

func (m *MemoryStore) GetProfileByID(id string) (domain.Profile, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[id]
	return p, ok, nil
}

func (m *MemoryStore) UpdateProfile(id string, updates ProfileUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil
	}
	if updates.Name != nil {
		p.Name = *updates.Name
	}
	if updates.Handicap != nil {
		p.Handicap = *updates.Handicap
	}
	if updates.HomeClub != nil {
		p.HomeClub = *updates.HomeClub
	}
	if updates.Bio != nil {
		p.Bio = *updates.Bio
	}
	if updates.AvatarURL != nil {
		p.AvatarURL = *updates.AvatarURL
	}
	p.UpdatedAt = time.Now().UTC()
	m.profiles[id] = p
	return nil
}

func (m *MemoryStore) SaveCourse(c domain.Course) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.courses[c.ID] = c
	return nil
}

func (m *MemoryStore) ListCourses() ([]domain.Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Course, 0, len(m.courses))
	for _, c := range m.courses {
		res = append(res, c)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (m *MemoryStore) GetCourse(id string) (domain.Course, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.courses[id]
	return c, ok, nil
}

func (m *MemoryStore) CreateRound(r domain.Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	m.rounds[r.ID] = r
	return nil
}

// SetRoundStatus applies an externally driven status transition.
func (m *MemoryStore) SetRoundStatus(roundID string, status domain.RoundStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[roundID]
	if !ok {
		return nil
	}
	r.Status = status
	m.rounds[roundID] = r
	return nil
}

func (m *MemoryStore) GetRoundDetails(id string) (domain.RoundDetails, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rounds[id]
	if !ok {
		return domain.RoundDetails{}, false, nil
	}
	return m.assembleRound(r), true, nil
}

func (m *MemoryStore) ListRoundDetails(ids ...string) ([]domain.RoundDetails, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keep := map[string]bool{}
	for _, id := range ids {
		keep[id] = true
	}
	res := make([]domain.RoundDetails, 0, len(m.rounds))
	for id, r := range m.rounds {
		if len(ids) > 0 && !keep[id] {
			continue
		}
		res = append(res, m.assembleRound(r))
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Date != res[j].Date {
			return res[i].Date < res[j].Date
		}
		return res[i].Time < res[j].Time
	})
	return res, nil
}

func (m *MemoryStore) assembleRound(r domain.Round) domain.RoundDetails {
	d := domain.RoundDetails{
		Round:     r,
		Organizer: m.profiles[r.OrganizerID],
		Course:    m.courses[r.CourseID],
		Players:   []domain.Profile{},
	}
	for _, p := range m.sortedPlayers(r.ID) {
		if prof, ok := m.profiles[p.ProfileID]; ok {
			d.Players = append(d.Players, prof)
		}
	}
	return d
}

func (m *MemoryStore) sortedPlayers(roundID string) []domain.RoundPlayer {
	players := append([]domain.RoundPlayer(nil), m.roundPlayers[roundID]...)
	sort.SliceStable(players, func(i, j int) bool {
		if !players[i].JoinedAt.Equal(players[j].JoinedAt) {
			return players[i].JoinedAt.Before(players[j].JoinedAt)
		}
		return players[i].ProfileID < players[j].ProfileID
	})
	return players
}

func (m *MemoryStore) ListRoundIDsForProfile(profileID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := map[string]bool{}
	var res []string
	for id, r := range m.rounds {
		if r.OrganizerID == profileID && !seen[id] {
			seen[id] = true
			res = append(res, id)
		}
	}
	for id, players := range m.roundPlayers {
		for _, p := range players {
			if p.ProfileID == profileID && !seen[id] {
				seen[id] = true
				res = append(res, id)
			}
		}
	}
	sort.Strings(res)
	return res, nil
}

func (m *MemoryStore) SetRoundOrganizer(roundID, profileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[roundID]
	if !ok {
		return nil
	}
	r.OrganizerID = profileID
	r.UpdatedAt = time.Now().UTC()
	m.rounds[roundID] = r
	return nil
}

func (m *MemoryStore) DeleteRound(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rounds, id)
	delete(m.roundPlayers, id)
	for convID, c := range m.conversations {
		if c.RoundID == id {
			delete(m.conversations, convID)
			delete(m.convParticipants, convID)
			delete(m.messages, convID)
		}
	}
	return nil
}

func (m *MemoryStore) InsertRoundPlayer(p domain.RoundPlayer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.legacyParticipation {
		return errLegacyParticipation
	}
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now().UTC()
	}
	m.roundPlayers[p.RoundID] = append(m.roundPlayers[p.RoundID], p)
	return nil
}

func (m *MemoryStore) InsertRoundPlayerLegacy(roundID, profileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := domain.RoundPlayer{RoundID: roundID, ProfileID: profileID, JoinedAt: time.Now().UTC()}
	m.roundPlayers[roundID] = append(m.roundPlayers[roundID], p)
	return nil
}

func (m *MemoryStore) RemoveRoundPlayer(roundID, profileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	players := m.roundPlayers[roundID]
	filtered := players[:0]
	for _, p := range players {
		if p.ProfileID != profileID {
			filtered = append(filtered, p)
		}
	}
	m.roundPlayers[roundID] = filtered
	return nil
}

func (m *MemoryStore) EarliestOtherPlayer(roundID, excludeProfileID string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.sortedPlayers(roundID) {
		if p.ProfileID != excludeProfileID {
			return p.ProfileID, true, nil
		}
	}
	return "", false, nil
}

func (m *MemoryStore) CountCompletedRounds(profileID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for roundID, players := range m.roundPlayers {
		r, ok := m.rounds[roundID]
		if !ok || r.Status != domain.RoundCompleted {
			continue
		}
		for _, p := range players {
			if p.ProfileID == profileID {
				count++
			}
		}
	}
	return count, nil
}

func (m *MemoryStore) RecentAttendance(profileID string, limit int) ([]domain.ParticipationStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.legacyParticipation {
		return nil, errLegacyParticipation
	}
	var rows []domain.RoundPlayer
	for roundID, players := range m.roundPlayers {
		r, ok := m.rounds[roundID]
		if !ok || r.Status != domain.RoundCompleted {
			continue
		}
		for _, p := range players {
			if p.ProfileID != profileID {
				continue
			}
			if p.ParticipationStatus == domain.ParticipationPresent || p.ParticipationStatus == domain.ParticipationNoShow {
				rows = append(rows, p)
			}
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].JoinedAt.After(rows[j].JoinedAt) })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	res := make([]domain.ParticipationStatus, 0, len(rows))
	for _, p := range rows {
		res = append(res, p.ParticipationStatus)
	}
	return res, nil
}

func (m *MemoryStore) CreateConversation(c domain.Conversation, participantIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	m.conversations[c.ID] = c
	for _, pid := range participantIDs {
		m.convParticipants[c.ID] = append(m.convParticipants[c.ID], domain.ConversationParticipant{
			ConversationID: c.ID,
			ProfileID:      pid,
			JoinedAt:       time.Now().UTC(),
		})
	}
	return nil
}

func (m *MemoryStore) AddConversationParticipant(conversationID, profileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.convParticipants[conversationID] {
		if p.ProfileID == profileID {
			return nil
		}
	}
	m.convParticipants[conversationID] = append(m.convParticipants[conversationID], domain.ConversationParticipant{
		ConversationID: conversationID,
		ProfileID:      profileID,
		JoinedAt:       time.Now().UTC(),
	})
	return nil
}

func (m *MemoryStore) RemoveConversationParticipant(conversationID, profileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	participants := m.convParticipants[conversationID]
	filtered := participants[:0]
	for _, p := range participants {
		if p.ProfileID != profileID {
			filtered = append(filtered, p)
		}
	}
	m.convParticipants[conversationID] = filtered
	return nil
}

func (m *MemoryStore) ListConversationIDsForProfile(profileID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var res []string
	for convID, participants := range m.convParticipants {
		for _, p := range participants {
			if p.ProfileID == profileID {
				res = append(res, convID)
				break
			}
		}
	}
	sort.Strings(res)
	return res, nil
}

func (m *MemoryStore) ListConversationsByIDs(ids []string) ([]domain.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Conversation, 0, len(ids))
	for _, id := range ids {
		if c, ok := m.conversations[id]; ok {
			res = append(res, c)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (m *MemoryStore) ListConversationParticipants(ids []string) (map[string][]domain.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make(map[string][]domain.Profile)
	for _, id := range ids {
		for _, p := range m.convParticipants[id] {
			if prof, ok := m.profiles[p.ProfileID]; ok {
				res[id] = append(res[id], prof)
			}
		}
	}
	return res, nil
}

func (m *MemoryStore) GetRoundConversation(roundID string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.conversations {
		if c.Type == domain.ConversationRound && c.RoundID == roundID {
			return c.ID, true, nil
		}
	}
	return "", false, nil
}

func (m *MemoryStore) InsertMessage(msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	m.messages[msg.ConversationID] = append(m.messages[msg.ConversationID], msg)
	return nil
}

func (m *MemoryStore) ListMessages(conversationID string) ([]domain.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := append([]domain.Message(nil), m.messages[conversationID]...)
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
	for i := range msgs {
		if p, ok := m.profiles[msgs[i].SenderID]; ok {
			sender := p
			msgs[i].Sender = &sender
		}
	}
	return msgs, nil
}

func (m *MemoryStore) LastMessage(conversationID string) (domain.Message, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := m.messages[conversationID]
	if len(msgs) == 0 {
		return domain.Message{}, false, nil
	}
	last := msgs[0]
	for _, msg := range msgs[1:] {
		if !msg.CreatedAt.Before(last.CreatedAt) {
			last = msg
		}
	}
	return last, true, nil
}

func (m *MemoryStore) UpsertReview(r domain.Review) (domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reviewsMissing {
		return domain.Review{}, errReviewsMissing
	}
	now := time.Now().UTC()
	for i, existing := range m.reviews {
		if existing.RoundID == r.RoundID && existing.ReviewerID == r.ReviewerID && existing.ReviewedUserID == r.ReviewedUserID {
			existing.Rating = r.Rating
			existing.Comment = r.Comment
			existing.UpdatedAt = now
			m.reviews[i] = existing
			return existing, nil
		}
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	m.reviews = append(m.reviews, r)
	return r, nil
}

func (m *MemoryStore) ListRatings(reviewedUserID string) ([]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.reviewsMissing {
		return nil, errReviewsMissing
	}
	var res []int
	for _, r := range m.reviews {
		if r.ReviewedUserID == reviewedUserID {
			res = append(res, r.Rating)
		}
	}
	return res, nil
}

func (m *MemoryStore) ListProfileReviews(reviewedUserID string) ([]domain.ProfileReview, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.reviewsMissing {
		return nil, errReviewsMissing
	}
	var res []domain.ProfileReview
	for _, r := range m.reviews {
		if r.ReviewedUserID != reviewedUserID {
			continue
		}
		pr := domain.ProfileReview{Review: r, Reviewer: m.profiles[r.ReviewerID]}
		if round, ok := m.rounds[r.RoundID]; ok {
			pr.RoundDate = round.Date
			if course, ok := m.courses[round.CourseID]; ok {
				pr.CourseName = course.Name
				pr.CourseLocation = course.Location
			}
		}
		res = append(res, pr)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}

func (m *MemoryStore) ListRoundReviewsByReviewer(roundID, reviewerID string) ([]domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.reviewsMissing {
		return nil, errReviewsMissing
	}
	var res []domain.Review
	for _, r := range m.reviews {
		if r.RoundID == roundID && r.ReviewerID == reviewerID {
			res = append(res, r)
		}
	}
	return res, nil
}

// PlayerStatuses exposes a round's raw participant rows for tests.
func (m *MemoryStore) PlayerStatuses(roundID string) []domain.RoundPlayer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedPlayers(roundID)
}
