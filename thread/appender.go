package thread

import (
	"strings"
	"time"

	"threadpost/models"
	"threadpost/utils"
)

// Store is the slice of conversation persistence the appender needs.
type Store interface {
	GetByID(id string) (*models.Conversation, error)
	AppendMessage(id string, msg models.Message) (*models.Conversation, error)
}

// Appender applies reply policy before a message reaches storage: subject
// normalization against the thread's original subject and server-side
// timestamp assignment.
type Appender struct {
	store Store
	now   func() time.Time
}

// NewAppender creates a thread appender on top of a conversation store
func NewAppender(store Store) *Appender {
	return &Appender{store: store, now: time.Now}
}

// Reply appends a message to an existing thread
func (a *Appender) Reply(id string, msg models.Message) (*models.Conversation, error) {
	if strings.TrimSpace(msg.Body) == "" {
		return nil, utils.ValidationError("Reply body cannot be empty", nil)
	}

	conversation, err := a.store.GetByID(id)
	if err != nil {
		return nil, err
	}

	msg.Subject = NormalizeReplySubject(conversation.OriginalSubject(), msg.Subject)
	msg.CreatedAt = a.now()

	return a.store.AppendMessage(id, msg)
}

// NormalizeReplySubject prefixes "Re: " exactly once. The decision is made
// against the thread's original subject rather than the previous message, so
// replying to a reply never accumulates "Re: Re: ...".
func NormalizeReplySubject(original, subject string) string {
	if hasRePrefix(subject) || hasRePrefix(original) {
		return subject
	}
	return "Re: " + subject
}

func hasRePrefix(subject string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(subject)), "re:")
}

// ReplyRecipient picks the other party of the latest message relative to the
// current user. Replying to one's own sent message still addresses the
// counter-party, not the original sender.
func ReplyRecipient(conversation *models.Conversation, current string) string {
	last := conversation.LastMessage()
	if last == nil {
		return ""
	}
	if strings.EqualFold(last.Sender, current) {
		return last.Receiver
	}
	return last.Sender
}
