package thread

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadpost/models"
	"threadpost/utils"
)

// fakeStore keeps a single conversation in memory
type fakeStore struct {
	conversation *models.Conversation
}

func (f *fakeStore) GetByID(id string) (*models.Conversation, error) {
	if f.conversation == nil || f.conversation.ConversationID != id {
		return nil, utils.NotFoundError("Conversation not found.", nil)
	}
	return f.conversation, nil
}

func (f *fakeStore) AppendMessage(id string, msg models.Message) (*models.Conversation, error) {
	if f.conversation == nil || f.conversation.ConversationID != id {
		return nil, utils.NotFoundError("Conversation not found.", nil)
	}
	f.conversation.Messages = append(f.conversation.Messages, msg)
	f.conversation.UpdatedAt = msg.CreatedAt
	return f.conversation, nil
}

func newFakeStore(subject string) *fakeStore {
	return &fakeStore{
		conversation: &models.Conversation{
			ConversationID: "a@x.com_b@x.com_1000",
			Participants:   []string{"a@x.com", "b@x.com"},
			Messages: []models.Message{{
				Sender:    "a@x.com",
				Receiver:  "b@x.com",
				Subject:   subject,
				Body:      "hello",
				CreatedAt: time.UnixMilli(1000),
			}},
		},
	}
}

func TestReplyPrefixesSubject(t *testing.T) {
	store := newFakeStore("Hi")
	appender := NewAppender(store)

	conv, err := appender.Reply(store.conversation.ConversationID, models.Message{
		Sender:   "b@x.com",
		Receiver: "a@x.com",
		Subject:  "Hi",
		Body:     "hello back",
	})
	require.NoError(t, err)

	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "Re: Hi", conv.Messages[1].Subject)
}

func TestReplyNeverStacksPrefixes(t *testing.T) {
	store := newFakeStore("Hi")
	appender := NewAppender(store)

	for i := 0; i < 3; i++ {
		_, err := appender.Reply(store.conversation.ConversationID, models.Message{
			Sender:   "b@x.com",
			Receiver: "a@x.com",
			Subject:  store.conversation.LastMessage().Subject,
			Body:     "again",
		})
		require.NoError(t, err)
	}

	for _, msg := range store.conversation.Messages[1:] {
		assert.Equal(t, "Re: Hi", msg.Subject)
	}
}

func TestReplyAssignsTimestamp(t *testing.T) {
	store := newFakeStore("Hi")
	appender := NewAppender(store)
	fixed := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	appender.now = func() time.Time { return fixed }

	conv, err := appender.Reply(store.conversation.ConversationID, models.Message{
		Sender: "b@x.com", Receiver: "a@x.com", Subject: "Hi", Body: "x",
	})
	require.NoError(t, err)
	assert.Equal(t, fixed, conv.LastMessage().CreatedAt)
}

func TestReplyEmptyBody(t *testing.T) {
	store := newFakeStore("Hi")
	appender := NewAppender(store)

	_, err := appender.Reply(store.conversation.ConversationID, models.Message{
		Sender: "b@x.com", Receiver: "a@x.com", Subject: "Hi", Body: "  ",
	})
	require.Error(t, err)
	assert.Equal(t, utils.KindValidation, utils.Classify(err))
}

func TestReplyUnknownConversation(t *testing.T) {
	appender := NewAppender(&fakeStore{})

	_, err := appender.Reply("missing", models.Message{Body: "x"})
	require.Error(t, err)
	assert.Equal(t, utils.KindNotFound, utils.Classify(err))
}

func TestNormalizeReplySubject(t *testing.T) {
	tests := []struct {
		name     string
		original string
		subject  string
		want     string
	}{
		{"plain subject gets prefix", "Hi", "Hi", "Re: Hi"},
		{"reply subject already prefixed", "Hi", "Re: Hi", "Re: Hi"},
		{"case-insensitive prefix detection", "Hi", "RE: Hi", "RE: Hi"},
		{"original already a reply", "Re: Hi", "Hi", "Hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeReplySubject(tt.original, tt.subject))
		})
	}
}

func TestReplyRecipient(t *testing.T) {
	store := newFakeStore("Hi")

	// b replies to a's message
	assert.Equal(t, "a@x.com", ReplyRecipient(store.conversation, "b@x.com"))

	// a replying to their own sent message still targets b
	assert.Equal(t, "b@x.com", ReplyRecipient(store.conversation, "a@x.com"))

	// casing of the current user does not matter
	assert.Equal(t, "b@x.com", ReplyRecipient(store.conversation, "A@X.COM"))
}
