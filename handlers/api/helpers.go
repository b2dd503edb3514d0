package api

import (
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"threadpost/utils"
)

// messageRequest is the wire shape shared by compose and reply. The
// attachment list carries already-resolved reference URLs; a raw file rides
// along as a multipart part instead.
type messageRequest struct {
	Sender     string   `json:"sender" form:"sender"`
	Receiver   string   `json:"receiver" form:"receiver"`
	Subject    string   `json:"subject" form:"subject"`
	Body       string   `json:"body" form:"body"`
	Attachment []string `json:"attachment" form:"attachment"`
}

// parseMessageRequest accepts either a JSON body or a multipart form with
// the same field names plus an optional "file" part.
func parseMessageRequest(c *fiber.Ctx) (*messageRequest, *multipart.FileHeader, error) {
	var req messageRequest

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, nil, utils.ValidationError("Invalid multipart form", err)
		}

		req.Sender = c.FormValue("sender")
		req.Receiver = c.FormValue("receiver")
		req.Subject = c.FormValue("subject")
		req.Body = c.FormValue("body")
		req.Attachment = form.Value["attachment"]

		var file *multipart.FileHeader
		if files := form.File["file"]; len(files) > 0 {
			file = files[0]
		}
		return &req, file, nil
	}

	if err := c.BodyParser(&req); err != nil {
		return nil, nil, utils.ValidationError("Invalid request body", err)
	}
	return &req, nil, nil
}

// sanitizeMessage cleans the user-controlled fields in place
func sanitizeMessage(req *messageRequest) {
	req.Sender = utils.SanitizeStrict(req.Sender)
	req.Receiver = utils.SanitizeStrict(req.Receiver)
	req.Subject = utils.SanitizeStrict(req.Subject)
	req.Body = utils.SanitizeBody(req.Body)
}
