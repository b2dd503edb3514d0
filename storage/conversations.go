package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"threadpost/models"
	"threadpost/thread"
	"threadpost/utils"
)

// ConversationStorage persists conversation aggregates as JSON documents
// keyed by their derived identity. All writes run inside bolt update
// transactions, which serialize writers: an append is read-modify-put as one
// atomic unit, so concurrent replies to the same thread cannot lose a write.
type ConversationStorage struct {
	db  *bolt.DB
	now func() time.Time
}

// NewConversationStorage creates conversation storage on a shared database handle
func NewConversationStorage(db *bolt.DB) *ConversationStorage {
	return &ConversationStorage{db: db, now: time.Now}
}

// Create persists a new conversation holding exactly one message.
// The identity is derived inside the write transaction; a duplicate key is a
// hard failure rather than a silent overwrite.
func (s *ConversationStorage) Create(participants []string, first models.Message) (*models.Conversation, error) {
	if strings.TrimSpace(first.Subject) == "" || strings.TrimSpace(first.Body) == "" {
		return nil, utils.ValidationError("Subject and body are required", nil)
	}

	now := s.now()
	id, err := thread.DeriveIdentity(participants, now)
	if err != nil {
		return nil, err
	}

	if first.Attachment == nil {
		first.Attachment = []string{}
	}
	if first.CreatedAt.IsZero() {
		first.CreatedAt = now
	}

	conversation := &models.Conversation{
		ConversationID: id,
		Participants:   thread.NormalizeParticipants(participants),
		Messages:       []models.Message{first},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(conversationBucket)

		if b.Get([]byte(id)) != nil {
			return utils.InternalServerError(
				fmt.Sprintf("Conversation id collision for %s", id), nil)
		}

		encoded, err := json.Marshal(conversation)
		if err != nil {
			return fmt.Errorf("failed to encode conversation: %v", err)
		}

		return b.Put([]byte(id), encoded)
	})
	if err != nil {
		return nil, err
	}

	return conversation, nil
}

// GetByID retrieves a conversation by its exact identity
func (s *ConversationStorage) GetByID(id string) (*models.Conversation, error) {
	var conversation models.Conversation

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(conversationBucket)
		data := b.Get([]byte(id))

		if data == nil {
			return utils.NotFoundError("Conversation not found.", nil)
		}

		return json.Unmarshal(data, &conversation)
	})
	if err != nil {
		return nil, err
	}

	return &conversation, nil
}

// GetByParticipant retrieves every conversation the email belongs to,
// most recently updated first. Membership matching is case-insensitive.
func (s *ConversationStorage) GetByParticipant(email string) ([]*models.Conversation, error) {
	var conversations []*models.Conversation

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(conversationBucket)

		return b.ForEach(func(k, v []byte) error {
			var conversation models.Conversation
			if err := json.Unmarshal(v, &conversation); err != nil {
				return fmt.Errorf("failed to decode conversation %s: %v", k, err)
			}
			if conversation.HasParticipant(email) {
				conversations = append(conversations, &conversation)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	// A thread that just received a reply floats to the top
	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].UpdatedAt.After(conversations[j].UpdatedAt)
	})

	return conversations, nil
}

// AppendMessage atomically adds a message to an existing thread and bumps
// the updated timestamp. Message timestamps never go backwards within a
// thread; insertion order is preserved on ties.
func (s *ConversationStorage) AppendMessage(id string, msg models.Message) (*models.Conversation, error) {
	var conversation models.Conversation

	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(conversationBucket)
		data := b.Get([]byte(id))

		if data == nil {
			return utils.NotFoundError("Conversation not found.", nil)
		}

		if err := json.Unmarshal(data, &conversation); err != nil {
			return fmt.Errorf("failed to decode conversation: %v", err)
		}

		now := s.now()
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = now
		}
		if last := conversation.LastMessage(); last != nil && msg.CreatedAt.Before(last.CreatedAt) {
			msg.CreatedAt = last.CreatedAt
		}
		if msg.Attachment == nil {
			msg.Attachment = []string{}
		}

		conversation.Messages = append(conversation.Messages, msg)
		conversation.UpdatedAt = now

		encoded, err := json.Marshal(&conversation)
		if err != nil {
			return fmt.Errorf("failed to encode conversation: %v", err)
		}

		return b.Put([]byte(id), encoded)
	})
	if err != nil {
		return nil, err
	}

	return &conversation, nil
}
