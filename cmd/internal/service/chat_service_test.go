package service

import (
	"fmt"
	"testing"
	"wemakedo/cmd/internal/config"
	"wemakedo/cmd/internal/realtime"
	"wemakedo/cmd/internal/utils/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatParticipantsOnly(t *testing.T) {
	f := newFixture(t, config.JoinPolicyDirect)
	id := joinedGathering(t, f, aliceID)

	msg, apierr := f.chat.SendMessage(id, &ChatMessageRequest{Content: "On my way"}, aliceID)
	require.Nil(t, apierr)
	assert.Equal(t, aliceID, msg.UserID)
	require.NotNil(t, msg.User)
	assert.Equal(t, "alice", *msg.User.Name)

	events := f.feed.onTopic(realtime.Topic(realtime.TableChatMessages, "gathering_id", id))
	require.Len(t, events, 1)
	assert.Equal(t, "chat_message", events[0].Type)

	_, apierr = f.chat.SendMessage(id, &ChatMessageRequest{Content: "Hello?"}, bobID)
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindNotParticipant, apierr.Kind())

	_, apierr = f.chat.ListMessages(id, bobID)
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindNotParticipant, apierr.Kind())

	_, apierr = f.chat.ListMessages(id, "")
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindUnauthenticated, apierr.Kind())

	_, apierr = f.chat.SendMessage(id, &ChatMessageRequest{Content: ""}, hostID)
	require.NotNil(t, apierr)
	assert.Equal(t, apierror.KindValidationFailed, apierr.Kind())
}

func TestChatHistoryKeepsLatestHundredAscending(t *testing.T) {
	f := newFixture(t, config.JoinPolicyDirect)
	id := joinedGathering(t, f, aliceID)

	for i := 0; i < 105; i++ {
		_, apierr := f.chat.SendMessage(id, &ChatMessageRequest{Content: fmt.Sprintf("message %d", i)}, hostID)
		require.Nil(t, apierr)
	}

	messages, apierr := f.chat.ListMessages(id, aliceID)
	require.Nil(t, apierr)
	require.Len(t, messages, 100)
	assert.Equal(t, "message 5", messages[0].Content)
	assert.Equal(t, "message 104", messages[99].Content)
}
