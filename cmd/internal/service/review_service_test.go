package service

import (
	"testing"
	"wemakedo/cmd/internal/config"
	"wemakedo/cmd/internal/domain/entity"
	"wemakedo/cmd/internal/utils/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func joinedGathering(t *testing.T, f *fixture, guests ...string) int64 {
	t.Helper()
	id := f.createGathering(t, len(guests)+1)
	for _, guest := range guests {
		_, apierr := f.joins.JoinOrApply(id, guest)
		require.Nil(t, apierr)
	}
	return id
}

func mannerScore(t *testing.T, f *fixture, userID string) float64 {
	t.Helper()
	user, err := f.users.FindByID(userID)
	require.NoError(t, err)
	return user.MannerScore
}

func TestSubmitReviewMovesMannerScore(t *testing.T) {
	f := newFixture(t, config.JoinPolicyDirect)
	id := joinedGathering(t, f, aliceID, bobID)

	require.Nil(t, f.reviews.SubmitReview(id, &ReviewRequest{RevieweeID: aliceID, Score: 1}, hostID))
	require.Nil(t, f.reviews.SubmitReview(id, &ReviewRequest{RevieweeID: aliceID, Score: 1}, bobID))
	require.Nil(t, f.reviews.SubmitReview(id, &ReviewRequest{RevieweeID: bobID, Score: -1}, aliceID))

	assert.InDelta(t, entity.DefaultMannerScore+1.0, mannerScore(t, f, aliceID), 1e-9)
	assert.InDelta(t, entity.DefaultMannerScore-0.5, mannerScore(t, f, bobID), 1e-9)
	assert.Contains(t, f.unreadTypes(t, aliceID), entity.NotifyReviewReceived)

	mine, apierr := f.reviews.ListMyReviews(id, aliceID)
	require.Nil(t, apierr)
	assert.Equal(t, []*ReviewResponse{{RevieweeID: bobID, Score: -1}}, mine)
}

func TestSubmitReviewTwiceIsAlreadyReviewed(t *testing.T) {
	f := newFixture(t, config.JoinPolicyDirect)
	id := joinedGathering(t, f, aliceID)

	require.Nil(t, f.reviews.SubmitReview(id, &ReviewRequest{RevieweeID: aliceID, Score: 1}, hostID))

	apierr := f.reviews.SubmitReview(id, &ReviewRequest{RevieweeID: aliceID, Score: -1}, hostID)
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindAlreadyReviewed, apierr.Kind())

	// The rejected vote did not touch the score.
	assert.InDelta(t, entity.DefaultMannerScore+0.5, mannerScore(t, f, aliceID), 1e-9)
}

func TestSubmitReviewErrors(t *testing.T) {
	f := newFixture(t, config.JoinPolicyDirect)
	id := joinedGathering(t, f, aliceID)

	tests := []struct {
		name        string
		gatheringID int64
		req         *ReviewRequest
		caller      string
		kind        string
	}{
		{"anonymous", id, &ReviewRequest{RevieweeID: aliceID, Score: 1}, "", apierror.KindUnauthenticated},
		{"self review", id, &ReviewRequest{RevieweeID: hostID, Score: 1}, hostID, apierror.KindSelfReview},
		{"score out of range", id, &ReviewRequest{RevieweeID: aliceID, Score: 2}, hostID, apierror.KindValidationFailed},
		{"zero score", id, &ReviewRequest{RevieweeID: aliceID, Score: 0}, hostID, apierror.KindValidationFailed},
		{"missing gathering", id + 10, &ReviewRequest{RevieweeID: aliceID, Score: 1}, hostID, apierror.KindNotFound},
		{"reviewer not participant", id, &ReviewRequest{RevieweeID: aliceID, Score: 1}, carolID, apierror.KindNotParticipant},
		{"reviewee not participant", id, &ReviewRequest{RevieweeID: carolID, Score: 1}, hostID, apierror.KindNotParticipant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apierr := f.reviews.SubmitReview(tt.gatheringID, tt.req, tt.caller)
			require.NotNil(t, apierr)
			assert.Equal(t, tt.kind, apierr.Kind())
		})
	}

	assert.InDelta(t, entity.DefaultMannerScore, mannerScore(t, f, aliceID), 1e-9)
}

func TestListMyReviewsAnonymous(t *testing.T) {
	f := newFixture(t, config.JoinPolicyDirect)
	id := joinedGathering(t, f, aliceID)

	reviews, apierr := f.reviews.ListMyReviews(id, "")
	require.Nil(t, apierr)
	assert.Empty(t, reviews)
}
