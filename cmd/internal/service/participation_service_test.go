package service

import (
	"sync"
	"testing"
	"wemakedo/cmd/internal/config"
	"wemakedo/cmd/internal/domain/entity"
	"wemakedo/cmd/internal/realtime"
	"wemakedo/cmd/internal/utils/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplicationLifecycleAtCapacityTwo(t *testing.T) {
	f := newFixture(t, config.JoinPolicyApplication)
	id := f.createGathering(t, 2)

	assert.True(t, f.hasRow(t, &entity.Participation{}, id, hostID))
	assert.EqualValues(t, 1, f.count(t, &entity.Participation{}, id))

	resp, apierr := f.joins.JoinOrApply(id, aliceID)
	require.Nil(t, apierr)
	assert.Equal(t, StateApplied, resp.State)
	assert.True(t, f.hasRow(t, &entity.Application{}, id, aliceID))

	require.Nil(t, f.joins.ApproveApplication(id, aliceID, hostID))
	assert.False(t, f.hasRow(t, &entity.Application{}, id, aliceID))
	assert.True(t, f.hasRow(t, &entity.Participation{}, id, aliceID))
	assert.EqualValues(t, 2, f.count(t, &entity.Participation{}, id))

	detail, apierr := f.gatherings.GetGathering(id, aliceID)
	require.Nil(t, apierr)
	assert.True(t, detail.IsFull)
	assert.Equal(t, StateJoined, detail.MyState)

	// Applying does not look at capacity.
	resp, apierr = f.joins.JoinOrApply(id, bobID)
	require.Nil(t, apierr)
	assert.Equal(t, StateApplied, resp.State)
	assert.True(t, f.hasRow(t, &entity.Application{}, id, bobID))

	require.Nil(t, f.joins.RejectApplication(id, bobID, hostID))
	assert.False(t, f.hasRow(t, &entity.Application{}, id, bobID))
	assert.False(t, f.hasRow(t, &entity.Participation{}, id, bobID))
	assert.EqualValues(t, 2, f.count(t, &entity.Participation{}, id))

	assert.Equal(t, []entity.NotificationType{entity.NotifyApplicationApproved}, f.unreadTypes(t, aliceID))
	assert.Equal(t, []entity.NotificationType{entity.NotifyApplicationRejected}, f.unreadTypes(t, bobID))
	assert.ElementsMatch(t,
		[]entity.NotificationType{entity.NotifyApplicationReceived, entity.NotifyApplicationReceived},
		f.unreadTypes(t, hostID))
}

func TestApproveWhenFullFails(t *testing.T) {
	f := newFixture(t, config.JoinPolicyApplication)
	id := f.createGathering(t, 2)

	for _, guest := range []string{aliceID, bobID} {
		_, apierr := f.joins.JoinOrApply(id, guest)
		require.Nil(t, apierr)
	}
	require.Nil(t, f.joins.ApproveApplication(id, aliceID, hostID))

	apierr := f.joins.ApproveApplication(id, bobID, hostID)
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindApprovalFailed, apierr.Kind())

	// The failed approval left the application in place.
	assert.True(t, f.hasRow(t, &entity.Application{}, id, bobID))
	assert.EqualValues(t, 2, f.count(t, &entity.Participation{}, id))
}

func TestApplyTwiceThenCancelAndReapply(t *testing.T) {
	f := newFixture(t, config.JoinPolicyApplication)
	id := f.createGathering(t, 4)

	_, apierr := f.joins.JoinOrApply(id, aliceID)
	require.Nil(t, apierr)

	_, apierr = f.joins.JoinOrApply(id, aliceID)
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindAlreadyApplied, apierr.Kind())

	require.Nil(t, f.joins.CancelApplication(id, aliceID))
	assert.False(t, f.hasRow(t, &entity.Application{}, id, aliceID))

	// Canceling again is a no-op.
	require.Nil(t, f.joins.CancelApplication(id, aliceID))

	resp, apierr := f.joins.JoinOrApply(id, aliceID)
	require.Nil(t, apierr)
	assert.Equal(t, StateApplied, resp.State)
}

func TestApplyAfterJoiningIsAlreadyJoined(t *testing.T) {
	f := newFixture(t, config.JoinPolicyApplication)
	id := f.createGathering(t, 4)

	_, apierr := f.joins.JoinOrApply(id, aliceID)
	require.Nil(t, apierr)
	require.Nil(t, f.joins.ApproveApplication(id, aliceID, hostID))

	_, apierr = f.joins.JoinOrApply(id, aliceID)
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindAlreadyJoined, apierr.Kind())
}

func TestHostJoinAgainIsAlreadyJoined(t *testing.T) {
	f := newFixture(t, config.JoinPolicyApplication)
	id := f.createGathering(t, 4)

	_, apierr := f.joins.JoinOrApply(id, hostID)
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindAlreadyJoined, apierr.Kind())
}

func TestDirectJoin(t *testing.T) {
	f := newFixture(t, config.JoinPolicyDirect)
	id := f.createGathering(t, 2)

	resp, apierr := f.joins.JoinOrApply(id, aliceID)
	require.Nil(t, apierr)
	assert.Equal(t, StateJoined, resp.State)
	assert.True(t, f.hasRow(t, &entity.Participation{}, id, aliceID))
	assert.Equal(t, []entity.NotificationType{entity.NotifyParticipantJoined}, f.unreadTypes(t, hostID))

	_, apierr = f.joins.JoinOrApply(id, aliceID)
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindAlreadyJoined, apierr.Kind())

	_, apierr = f.joins.JoinOrApply(id, bobID)
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindGatheringFull, apierr.Kind())
	assert.EqualValues(t, 2, f.count(t, &entity.Participation{}, id))

	joined := f.feed.onTopic(realtime.Topic(realtime.TableParticipations, "gathering_id", id))
	require.Len(t, joined, 1)
	assert.Equal(t, "participant_joined", joined[0].Type)
}

func TestDirectJoinReplacesPendingApplication(t *testing.T) {
	f := newFixture(t, config.JoinPolicyApplication)
	id := f.createGathering(t, 4)

	resp, apierr := f.joins.JoinOrApply(id, aliceID)
	require.Nil(t, apierr)
	require.Equal(t, StateApplied, resp.State)

	f.joins.Policy = config.JoinPolicyDirect
	resp, apierr = f.joins.JoinOrApply(id, aliceID)
	require.Nil(t, apierr)
	assert.Equal(t, StateJoined, resp.State)

	assert.True(t, f.hasRow(t, &entity.Participation{}, id, aliceID))
	assert.False(t, f.hasRow(t, &entity.Application{}, id, aliceID))

	removed := f.feed.onTopic(realtime.Topic(realtime.TableApplications, "gathering_id", id))
	require.Len(t, removed, 2)
	assert.Equal(t, "application_received", removed[0].Type)
	assert.Equal(t, "application_superseded", removed[1].Type)
}

func TestConcurrentDirectJoinsNeverExceedCapacity(t *testing.T) {
	f := newFixture(t, config.JoinPolicyDirect)
	id := f.createGathering(t, 3)

	guests := make([]string, 12)
	for i := range guests {
		guests[i] = "guest-" + string(rune('a'+i))
		name := guests[i]
		require.NoError(t, f.users.Upsert(&entity.User{ID: guests[i], Name: &name, CreatedAt: 1, UpdatedAt: 1}))
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		joined int
		full   int
	)
	for _, guest := range guests {
		wg.Add(1)
		go func(guest string) {
			defer wg.Done()
			_, apierr := f.joins.JoinOrApply(id, guest)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case apierr == nil:
				joined++
			case apierr.Kind() == apierror.KindGatheringFull:
				full++
			}
		}(guest)
	}
	wg.Wait()

	assert.Equal(t, 2, joined)
	assert.Equal(t, len(guests)-2, full)
	assert.EqualValues(t, 3, f.count(t, &entity.Participation{}, id))
}

func TestJoinRequiresRecruiting(t *testing.T) {
	f := newFixture(t, config.JoinPolicyDirect)
	id := f.createGathering(t, 4)

	closed := string(entity.GatheringClosed)
	_, apierr := f.gatherings.UpdateGathering(id, &UpdateGatheringRequest{Status: &closed}, hostID)
	require.Nil(t, apierr)

	_, apierr = f.joins.JoinOrApply(id, aliceID)
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindNotRecruiting, apierr.Kind())
}

func TestJoinErrors(t *testing.T) {
	f := newFixture(t, config.JoinPolicyApplication)
	id := f.createGathering(t, 4)

	_, apierr := f.joins.JoinOrApply(id, "")
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindUnauthenticated, apierr.Kind())

	_, apierr = f.joins.JoinOrApply(id+100, aliceID)
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindNotFound, apierr.Kind())

	apierr = f.joins.CancelApplication(id, "")
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindUnauthenticated, apierr.Kind())
}

func TestOnlyHostDecidesApplications(t *testing.T) {
	f := newFixture(t, config.JoinPolicyApplication)
	id := f.createGathering(t, 4)

	_, apierr := f.joins.JoinOrApply(id, aliceID)
	require.Nil(t, apierr)

	apierr = f.joins.ApproveApplication(id, aliceID, bobID)
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindForbidden, apierr.Kind())

	apierr = f.joins.RejectApplication(id, aliceID, aliceID)
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindForbidden, apierr.Kind())

	_, apierr = f.joins.ListApplications(id, bobID)
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindForbidden, apierr.Kind())

	assert.True(t, f.hasRow(t, &entity.Application{}, id, aliceID))
	assert.False(t, f.hasRow(t, &entity.Participation{}, id, aliceID))
}

func TestApproveOrRejectMissingApplication(t *testing.T) {
	f := newFixture(t, config.JoinPolicyApplication)
	id := f.createGathering(t, 4)

	apierr := f.joins.ApproveApplication(id, carolID, hostID)
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindNotFound, apierr.Kind())

	apierr = f.joins.RejectApplication(id, carolID, hostID)
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindNotFound, apierr.Kind())
}

func TestListApplicationsOldestFirst(t *testing.T) {
	f := newFixture(t, config.JoinPolicyApplication)
	id := f.createGathering(t, 4)

	for _, guest := range []string{bobID, aliceID} {
		_, apierr := f.joins.JoinOrApply(id, guest)
		require.Nil(t, apierr)
	}

	apps, apierr := f.joins.ListApplications(id, hostID)
	require.Nil(t, apierr)
	require.Len(t, apps, 2)
	assert.Equal(t, bobID, apps[0].User.ID)
	assert.Equal(t, "bob", *apps[0].User.Name)
	assert.Equal(t, aliceID, apps[1].User.ID)
}
