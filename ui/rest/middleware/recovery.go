// Package middleware adapts the teacher's Recovery handler: handlers panic
// with an apperror.GenericError (via apiresponse.PanicIfNeeded) instead of
// threading error returns, and this middleware turns the panic back into
// the {success:false, error, message} envelope with the right HTTP status.
package middleware

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/doualaexpress/deligate/pkg/apiresponse"
	"github.com/doualaexpress/deligate/pkg/apperror"
)

func Recovery() fiber.Handler {
	return func(c *fiber.Ctx) error {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			var genErr apperror.GenericError
			if err, ok := r.(error); ok {
				genErr = apperror.As(err)
			} else {
				genErr = apperror.InternalError(fmt.Sprintf("%v", r))
			}

			logrus.Errorf("[REST] panic recovered: %v", r)
			_ = c.Status(genErr.StatusCode()).JSON(apiresponse.FromError(genErr))
		}()

		return c.Next()
	}
}
