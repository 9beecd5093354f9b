package app

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"teeup/pkg/domain"
	"teeup/pkg/store"
)

// ReliabilityWindow is how many recent completed-round participations feed
// the reliability percentage.
const ReliabilityWindow = 20

// Reputation aggregates a profile's playing history. The three source queries
// run concurrently; a sub-query hitting a schema generation without its
// column or table contributes its zero value instead of failing the whole
// aggregate.
func (a *App) Reputation(ctx context.Context, profileID string) (domain.ReputationKpis, error) {
	var (
		kpis       domain.ReputationKpis
		attendance []domain.ParticipationStatus
		ratings    []int
	)
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := a.store.CountCompletedRounds(profileID)
		if err != nil {
			if store.IsSchemaCompat(err) {
				return nil
			}
			return fmt.Errorf("count completed rounds: %w", err)
		}
		kpis.RoundsPlayed = n
		return nil
	})
	g.Go(func() error {
		sample, err := a.store.RecentAttendance(profileID, ReliabilityWindow)
		if err != nil {
			if store.IsSchemaCompat(err) {
				return nil
			}
			return fmt.Errorf("load attendance: %w", err)
		}
		attendance = sample
		return nil
	})
	g.Go(func() error {
		rs, err := a.store.ListRatings(profileID)
		if err != nil {
			if store.IsSchemaCompat(err) {
				return nil
			}
			return fmt.Errorf("load ratings: %w", err)
		}
		ratings = rs
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.ReputationKpis{}, err
	}

	if len(attendance) > 0 {
		present := 0
		for _, s := range attendance {
			if s == domain.ParticipationPresent {
				present++
			}
		}
		pct := int(math.Round(100 * float64(present) / float64(len(attendance))))
		kpis.ReliabilityPercent = &pct
		kpis.ReliabilitySampleSize = len(attendance)
	}
	if len(ratings) > 0 {
		sum := 0
		for _, r := range ratings {
			sum += r
		}
		avg := math.Round(10*float64(sum)/float64(len(ratings))) / 10
		kpis.AverageRating = &avg
		kpis.ReviewsCount = len(ratings)
	}
	return kpis, nil
}

// ProfileReviews returns the reviews written about a profile, enriched with
// reviewer and round context for the profile page.
func (a *App) ProfileReviews(ctx context.Context, profileID string) ([]domain.ProfileReview, error) {
	reviews, err := a.store.ListProfileReviews(profileID)
	if err != nil {
		if store.IsSchemaCompat(err) {
			return []domain.ProfileReview{}, nil
		}
		return nil, fmt.Errorf("load profile reviews: %w", err)
	}
	return reviews, nil
}

// RoundReviewTargets lists the caller's co-participants in a round together
// with any review the caller already wrote for each of them.
func (a *App) RoundReviewTargets(ctx context.Context, callerProfileID, roundID string) ([]domain.ReviewTarget, error) {
	if callerProfileID == "" {
		return nil, ErrNotAuthenticated
	}
	details, ok, err := a.store.GetRoundDetails(roundID)
	if err != nil {
		return nil, fmt.Errorf("load round: %w", err)
	}
	if !ok {
		return nil, ErrRoundNotFound
	}
	existing, err := a.store.ListRoundReviewsByReviewer(roundID, callerProfileID)
	if err != nil && !store.IsSchemaCompat(err) {
		return nil, fmt.Errorf("load existing reviews: %w", err)
	}
	byReviewed := make(map[string]domain.Review, len(existing))
	for _, r := range existing {
		byReviewed[r.ReviewedUserID] = r
	}

	targets := make([]domain.ReviewTarget, 0, len(details.Players))
	for _, p := range details.Players {
		if p.ID == callerProfileID {
			continue
		}
		target := domain.ReviewTarget{
			ProfileID: p.ID,
			Name:      p.Name,
			AvatarURL: p.AvatarURL,
		}
		if r, ok := byReviewed[p.ID]; ok {
			rating := r.Rating
			target.ExistingRating = &rating
			if r.Comment != "" {
				comment := r.Comment
				target.ExistingComment = &comment
			}
		}
		targets = append(targets, target)
	}
	return targets, nil
}
