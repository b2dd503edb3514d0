package api

import (
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"threadpost/models"
	"threadpost/storage"
	"threadpost/thread"
	"threadpost/uploads"
	"threadpost/utils"
)

const similarEmailLimit = 3

// ConversationHandler handles conversation CRUD and reply requests
type ConversationHandler struct {
	conversations *storage.ConversationStorage
	users         *storage.UserStorage
	appender      *thread.Appender
	resolver      *uploads.Resolver
}

// NewConversationHandler creates a new conversation handler
func NewConversationHandler(
	conversations *storage.ConversationStorage,
	users *storage.UserStorage,
	appender *thread.Appender,
	resolver *uploads.Resolver,
) *ConversationHandler {
	return &ConversationHandler{
		conversations: conversations,
		users:         users,
		appender:      appender,
		resolver:      resolver,
	}
}

// HandleCreate starts a new conversation with its first message.
// Each compose starts a fresh thread even between the same pair; replies
// address an existing thread by id instead.
func (h *ConversationHandler) HandleCreate(c *fiber.Ctx) error {
	req, file, err := parseMessageRequest(c)
	if err != nil {
		return err
	}
	sanitizeMessage(req)

	if req.Sender == "" || req.Receiver == "" || req.Subject == "" || req.Body == "" {
		return utils.ValidationError("Sender, receiver, subject and body are required", nil)
	}

	if err := h.checkParticipant(req.Sender, "Sender account not found."); err != nil {
		return err
	}
	if err := h.checkParticipant(req.Receiver, "Receiver account not found."); err != nil {
		return err
	}

	attachment, err := h.resolveAttachments(c, req.Attachment, file)
	if err != nil {
		return err
	}

	conversation, err := h.conversations.Create(
		[]string{req.Sender, req.Receiver},
		models.Message{
			Sender:     req.Sender,
			Receiver:   req.Receiver,
			Subject:    req.Subject,
			Body:       req.Body,
			Attachment: attachment,
		},
	)
	if err != nil {
		return err
	}

	utils.Log.Info("Conversation created: id=%s", conversation.ConversationID)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Conversation created and message sent.",
		"conversation": conversation,
	})
}

// HandleReply appends a reply to an existing conversation
func (h *ConversationHandler) HandleReply(c *fiber.Ctx) error {
	conversationID := c.Params("id")

	req, file, err := parseMessageRequest(c)
	if err != nil {
		return err
	}
	sanitizeMessage(req)

	if req.Sender == "" || req.Receiver == "" {
		return utils.ValidationError("Sender and receiver are required", nil)
	}

	if _, err := h.users.GetByEmail(req.Sender); err != nil {
		return utils.ParticipantNotFoundError("Sender or receiver account not found.", err)
	}
	if _, err := h.users.GetByEmail(req.Receiver); err != nil {
		return utils.ParticipantNotFoundError("Sender or receiver account not found.", err)
	}

	attachment, err := h.resolveAttachments(c, req.Attachment, file)
	if err != nil {
		return err
	}

	conversation, err := h.appender.Reply(conversationID, models.Message{
		Sender:     req.Sender,
		Receiver:   req.Receiver,
		Subject:    req.Subject,
		Body:       req.Body,
		Attachment: attachment,
	})
	if err != nil {
		return err
	}

	utils.Log.Info("Reply appended: id=%s messages=%d", conversationID, len(conversation.Messages))

	return c.JSON(conversation)
}

// HandleGetByID retrieves a conversation by its identity
func (h *ConversationHandler) HandleGetByID(c *fiber.Ctx) error {
	conversation, err := h.conversations.GetByID(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(conversation)
}

// HandleGetForUser retrieves all conversations for an email address,
// most recently updated first
func (h *ConversationHandler) HandleGetForUser(c *fiber.Ctx) error {
	conversations, err := h.conversations.GetByParticipant(c.Params("email"))
	if err != nil {
		return err
	}
	if conversations == nil {
		conversations = []*models.Conversation{}
	}
	return c.JSON(conversations)
}

// HandleReplyRecipient infers the counter-party a reply should address,
// based on the latest message in the thread
func (h *ConversationHandler) HandleReplyRecipient(c *fiber.Ctx) error {
	current := strings.TrimSpace(c.Query("user"))
	if current == "" {
		return utils.ValidationError("Query parameter 'user' is required", nil)
	}

	conversation, err := h.conversations.GetByID(c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"recipient": thread.ReplyRecipient(conversation, current),
	})
}

// checkParticipant verifies an account exists, attaching near-match
// suggestions to the failure so the caller can correct a typo.
func (h *ConversationHandler) checkParticipant(email, message string) error {
	if _, err := h.users.GetByEmail(email); err != nil {
		similar, lookupErr := h.users.SimilarEmails(email, similarEmailLimit)
		if lookupErr != nil {
			similar = []string{}
		}
		return utils.ParticipantNotFoundError(message, err).
			WithContext("debug", fiber.Map{
				"searchedEmail": email,
				"similarEmails": similar,
			})
	}
	return nil
}

// resolveAttachments uploads a raw file (when present) and appends its
// reference to the already-resolved URLs. Upload always completes before the
// message is constructed, never concurrently with persistence.
func (h *ConversationHandler) resolveAttachments(c *fiber.Ctx, urls []string, file *multipart.FileHeader) ([]string, error) {
	attachment := make([]string, 0, len(urls)+1)
	for _, u := range urls {
		if trimmed := strings.TrimSpace(u); trimmed != "" {
			attachment = append(attachment, trimmed)
		}
	}

	if file != nil {
		f, err := file.Open()
		if err != nil {
			return nil, utils.StorageUnavailableError("Attachment upload failed. Please try again.", err)
		}
		defer f.Close()

		url, err := h.resolver.Upload(c.UserContext(), file.Filename, f)
		if err != nil {
			return nil, err
		}
		attachment = append(attachment, url)
	}

	return attachment, nil
}
