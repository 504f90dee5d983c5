package api

import (
	"errors"  // Error inspection
	"fmt"     // Message formatting
	"strings" // Joining validation messages

	"bingo_ledger/internal/apperrors" // Error kinds

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/go-playground/validator/v10" // Binding validation errors
	"github.com/sirupsen/logrus"             // Logging library
)

// respondError writes err in the shared error body. Unexpected errors are logged with their
// detail and reach the caller as a bare 500.
func respondError(c *gin.Context, err error) {
	if apperrors.KindOf(err) == apperrors.KindInternal {
		logrus.WithFields(logrus.Fields{
			"request_id": c.GetString("requestID"),
			"path":       c.FullPath(),
			"error":      err.Error(),
		}).Error("Unhandled error")
	}
	c.JSON(apperrors.Response(err))
}

// bindError turns a gin binding failure into an InvalidInput error
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.InvalidInput("Invalid request")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "role":
			msgs = append(msgs, fmt.Sprintf("%s must be one of owner, manager, superagent, user", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed on %s %s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return apperrors.InvalidInput(strings.Join(msgs, "; "))
}
