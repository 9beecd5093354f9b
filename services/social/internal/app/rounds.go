package app

import (
	"context"
	"fmt"
	"sort"
	"time"

	"teeup/internal/util"
	"teeup/pkg/domain"
	"teeup/pkg/events"
	"teeup/pkg/handicap"
	"teeup/pkg/store"
)

// LeaveOutcome tells the caller what leaving did to the round.
type LeaveOutcome string

const (
	LeaveOutcomeLeft    LeaveOutcome = "left"
	LeaveOutcomeDeleted LeaveOutcome = "deleted"
)

// CreateRoundInput is the validated payload for creating a round.
type CreateRoundInput struct {
	CourseID      string
	Date          string // YYYY-MM-DD
	Time          string // HH:MM
	Format        domain.GameFormat
	PlayersNeeded int
	MinHandicap   *int
	MaxHandicap   *int
	Description   string
}

// MyRounds splits the caller's rounds into upcoming and past.
type MyRounds struct {
	Upcoming []domain.RoundDetails `json:"upcoming"`
	Past     []domain.RoundDetails `json:"past"`
}

// CreateRound creates a round organized by the caller, joins the organizer as
// the first participant and opens the round's group conversation.
func (a *App) CreateRound(ctx context.Context, callerProfileID string, in CreateRoundInput) (domain.RoundDetails, error) {
	if callerProfileID == "" {
		return domain.RoundDetails{}, ErrNotAuthenticated
	}
	if err := validateRoundInput(in); err != nil {
		return domain.RoundDetails{}, err
	}
	if _, ok, err := a.store.GetCourse(in.CourseID); err != nil {
		return domain.RoundDetails{}, fmt.Errorf("check course: %w", err)
	} else if !ok {
		return domain.RoundDetails{}, ErrCourseNotFound
	}

	now := a.now()
	rng := handicap.ResolveFromRow(in.MinHandicap, in.MaxHandicap, "")
	minH, maxH := rng.Min, rng.Max
	round := domain.Round{
		ID:            a.newID(),
		CourseID:      in.CourseID,
		OrganizerID:   callerProfileID,
		Date:          in.Date,
		Time:          in.Time,
		Format:        in.Format,
		PlayersNeeded: in.PlayersNeeded,
		HandicapRange: handicap.ToLegacyLabel(rng.Min, rng.Max),
		MinHandicap:   &minH,
		MaxHandicap:   &maxH,
		Description:   in.Description,
		Status:        domain.RoundOpen,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := a.store.CreateRound(round); err != nil {
		return domain.RoundDetails{}, fmt.Errorf("create round: %w", err)
	}
	if err := a.insertParticipant(round.ID, callerProfileID); err != nil {
		return domain.RoundDetails{}, fmt.Errorf("join organizer: %w", err)
	}
	conv := domain.Conversation{
		ID:        a.newID(),
		Type:      domain.ConversationRound,
		RoundID:   round.ID,
		CreatedAt: now,
	}
	if err := a.store.CreateConversation(conv, callerProfileID); err != nil {
		return domain.RoundDetails{}, fmt.Errorf("create round conversation: %w", err)
	}

	a.emit(ctx, events.KeyRoundCreated, events.RoundEvent{
		RoundID:     round.ID,
		OrganizerID: callerProfileID,
		OccurredAt:  now,
	})

	details, ok, err := a.store.GetRoundDetails(round.ID)
	if err != nil {
		return domain.RoundDetails{}, fmt.Errorf("load round: %w", err)
	}
	if !ok {
		return domain.RoundDetails{}, ErrRoundNotFound
	}
	return details, nil
}

// JoinRound adds the caller to an open round and its group conversation.
func (a *App) JoinRound(ctx context.Context, callerProfileID, roundID string) error {
	if callerProfileID == "" {
		return ErrNotAuthenticated
	}
	details, ok, err := a.store.GetRoundDetails(roundID)
	if err != nil {
		return fmt.Errorf("load round: %w", err)
	}
	if !ok {
		return ErrRoundNotFound
	}
	for _, p := range details.Players {
		if p.ID == callerProfileID {
			return ErrAlreadyJoined
		}
	}
	if len(details.Players) >= details.PlayersNeeded {
		return ErrRoundFull
	}
	if err := a.insertParticipant(roundID, callerProfileID); err != nil {
		return fmt.Errorf("join round: %w", err)
	}
	if len(details.Players)+1 >= details.PlayersNeeded {
		if err := a.store.SetRoundStatus(roundID, domain.RoundFull); err != nil {
			return fmt.Errorf("mark round full: %w", err)
		}
	}
	if convID, ok, err := a.store.GetRoundConversation(roundID); err != nil {
		return fmt.Errorf("find round conversation: %w", err)
	} else if ok {
		if err := a.store.AddConversationParticipant(convID, callerProfileID); err != nil {
			return fmt.Errorf("join round conversation: %w", err)
		}
	}

	a.emit(ctx, events.KeyRoundJoined, events.RoundEvent{
		RoundID:    roundID,
		ProfileID:  callerProfileID,
		OccurredAt: a.now(),
	})
	return nil
}

// LeaveRound removes the caller from a round. An organizer leaving an
// otherwise empty round deletes it entirely; an organizer leaving a populated
// round first hands the organizer role to the longest-standing other player.
func (a *App) LeaveRound(ctx context.Context, callerProfileID, roundID string) (LeaveOutcome, error) {
	if callerProfileID == "" {
		return "", ErrNotAuthenticated
	}
	details, ok, err := a.store.GetRoundDetails(roundID)
	if err != nil {
		return "", fmt.Errorf("load round: %w", err)
	}
	if !ok {
		return "", ErrRoundNotFound
	}
	member := false
	for _, p := range details.Players {
		if p.ID == callerProfileID {
			member = true
			break
		}
	}
	if !member {
		return "", ErrNotParticipant
	}

	if details.OrganizerID == callerProfileID {
		successorID, found, err := a.store.EarliestOtherPlayer(roundID, callerProfileID)
		if err != nil {
			return "", fmt.Errorf("find successor: %w", err)
		}
		if !found {
			// Organizer is the last player standing: the round and its
			// conversation go away together.
			if err := a.store.DeleteRound(roundID); err != nil {
				return "", fmt.Errorf("delete round: %w", err)
			}
			a.emit(ctx, events.KeyRoundDeleted, events.RoundEvent{
				RoundID:     roundID,
				OrganizerID: callerProfileID,
				OccurredAt:  a.now(),
			})
			return LeaveOutcomeDeleted, nil
		}
		// Reassign before removing so the round never lacks an organizer.
		if err := a.store.SetRoundOrganizer(roundID, successorID); err != nil {
			return "", fmt.Errorf("transfer organizer: %w", err)
		}
		a.emit(ctx, events.KeyRoundTransferred, events.RoundEvent{
			RoundID:     roundID,
			OrganizerID: successorID,
			OccurredAt:  a.now(),
		})
	}

	if err := a.store.RemoveRoundPlayer(roundID, callerProfileID); err != nil {
		return "", fmt.Errorf("leave round: %w", err)
	}
	if details.Status == domain.RoundFull {
		if err := a.store.SetRoundStatus(roundID, domain.RoundOpen); err != nil {
			return "", fmt.Errorf("reopen round: %w", err)
		}
	}
	if convID, ok, err := a.store.GetRoundConversation(roundID); err != nil {
		return "", fmt.Errorf("find round conversation: %w", err)
	} else if ok {
		if err := a.store.RemoveConversationParticipant(convID, callerProfileID); err != nil {
			return "", fmt.Errorf("leave round conversation: %w", err)
		}
	}

	a.emit(ctx, events.KeyRoundLeft, events.RoundEvent{
		RoundID:    roundID,
		ProfileID:  callerProfileID,
		OccurredAt: a.now(),
	})
	return LeaveOutcomeLeft, nil
}

// ListRounds returns every round with organizer, course and players joined.
func (a *App) ListRounds(ctx context.Context) ([]domain.RoundDetails, error) {
	return a.store.ListRoundDetails()
}

// GetRound returns one round with joins, or ErrRoundNotFound.
func (a *App) GetRound(ctx context.Context, roundID string) (domain.RoundDetails, error) {
	details, ok, err := a.store.GetRoundDetails(roundID)
	if err != nil {
		return domain.RoundDetails{}, err
	}
	if !ok {
		return domain.RoundDetails{}, ErrRoundNotFound
	}
	return details, nil
}

// MyRounds splits the caller's rounds around now: completed rounds and rounds
// whose tee time has passed are past, everything else upcoming. Upcoming is
// soonest-first, past most-recent-first.
func (a *App) MyRounds(ctx context.Context, callerProfileID string) (MyRounds, error) {
	if callerProfileID == "" {
		return MyRounds{}, ErrNotAuthenticated
	}
	ids, err := a.store.ListRoundIDsForProfile(callerProfileID)
	if err != nil {
		return MyRounds{}, fmt.Errorf("list joined rounds: %w", err)
	}
	res := MyRounds{Upcoming: []domain.RoundDetails{}, Past: []domain.RoundDetails{}}
	if len(ids) == 0 {
		return res, nil
	}
	rounds, err := a.store.ListRoundDetails(ids...)
	if err != nil {
		return MyRounds{}, fmt.Errorf("load rounds: %w", err)
	}
	now := a.now()
	for _, r := range rounds {
		if r.Status == domain.RoundCompleted || teeTime(r.Round).Before(now) {
			res.Past = append(res.Past, r)
		} else {
			res.Upcoming = append(res.Upcoming, r)
		}
	}
	sort.Slice(res.Upcoming, func(i, j int) bool {
		return teeTime(res.Upcoming[i].Round).Before(teeTime(res.Upcoming[j].Round))
	})
	sort.Slice(res.Past, func(i, j int) bool {
		return teeTime(res.Past[j].Round).Before(teeTime(res.Past[i].Round))
	})
	return res, nil
}

// ListCourses returns the course catalogue.
func (a *App) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return a.store.ListCourses()
}

// insertParticipant writes a round player with a participation status, falling
// back to the pre-migration insert when the remote schema predates the status
// column. Any other failure propagates unchanged.
func (a *App) insertParticipant(roundID, profileID string) error {
	err := a.store.InsertRoundPlayer(domain.RoundPlayer{
		RoundID:             roundID,
		ProfileID:           profileID,
		ParticipationStatus: domain.ParticipationJoined,
		JoinedAt:            a.now(),
	})
	if err == nil {
		return nil
	}
	if store.IsMissingParticipationStatus(err) {
		return a.store.InsertRoundPlayerLegacy(roundID, profileID)
	}
	return err
}

func (a *App) emit(ctx context.Context, key string, v any) {
	if err := a.events.Emit(ctx, key, v); err != nil {
		util.LoggerFromContext(ctx).Warn("event emit failed", "key", key, "error", err)
	}
}

func validateRoundInput(in CreateRoundInput) error {
	if in.CourseID == "" {
		return fmt.Errorf("%w: courseId is required", ErrValidation)
	}
	if in.PlayersNeeded < 2 || in.PlayersNeeded > 4 {
		return fmt.Errorf("%w: playersNeeded must be 2, 3 or 4", ErrValidation)
	}
	if !domain.KnownFormat(in.Format) {
		return fmt.Errorf("%w: unknown format %q", ErrValidation, in.Format)
	}
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	if _, err := time.Parse("15:04", in.Time); err != nil {
		return fmt.Errorf("%w: time must be HH:MM", ErrValidation)
	}
	return nil
}

// teeTime composes the round's date and time; rounds with malformed values
// sort as past so they never clutter the upcoming list.
func teeTime(r domain.Round) time.Time {
	t, err := time.Parse("2006-01-02 15:04", r.Date+" "+r.Time)
	if err != nil {
		return time.Time{}
	}
	return t
}
