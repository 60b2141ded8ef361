package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"uploadapi/internal/model"
	"uploadapi/internal/service"
)

// validationCodes maps a rejected payload field to its response error code.
var validationCodes = map[string]string{
	"payload":  "INVALID_PAYLOAD",
	"fio":      "INVALID_FIO",
	"subject":  "INVALID_SUBJECT",
	"city":     "INVALID_CITY",
	"mimeType": "INVALID_MIME_TYPE",
}

// CreateUploadURL handles POST /api/upload-url: it negotiates a resumable
// upload session and returns the session URL, the bearer token for the
// direct transfer, the resolved folder id and the final file name.
func CreateUploadURL(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.UploadURLRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PAYLOAD", "invalid request body")
		}

		res, err := svc.CreateUploadURL(c.UserContext(), req)
		if err != nil {
			var verr *service.ValidationError
			if errors.As(err, &verr) {
				code, ok := validationCodes[verr.Field]
				if !ok {
					code = "INVALID_PAYLOAD"
				}
				return writeError(c, fiber.StatusBadRequest, code, verr.Reason)
			}
			// Config, auth and storage backend failures are all server-side;
			// surface the underlying message for the operator.
			return writeError(c, fiber.StatusInternalServerError, "UPSTREAM_ERROR", err.Error())
		}
		return c.JSON(res)
	}
}
