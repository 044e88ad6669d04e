package delivery

import (
	"net/http"

	authdomain "hoosha-backend/internal/auth/domain"
	authdto "hoosha-backend/internal/auth/dto"
	"hoosha-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the access token read from the configured
// header and stores the authenticated user in the request context.
func AuthMiddleware(authUsecase usecase.AuthUsecase, headerName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		bearerValue := c.GetHeader(headerName)
		if bearerValue == "" {
			c.JSON(http.StatusUnauthorized, authdto.NewErrors(
				"توکن دسترسی ارسال نشده است!",
				"Access token required!",
			))
			c.Abort()
			return
		}

		user, reason, err := authUsecase.ValidateBearer(bearerValue, authdomain.TokenKindAccess)
		if err != nil {
			c.JSON(http.StatusInternalServerError, authdto.NewErrors(
				"خطایی در پردازش توکن رخ داد!",
				"An error occurred while processing the token!",
			))
			c.Abort()
			return
		}
		if reason != usecase.ReasonValid {
			c.JSON(http.StatusUnauthorized, authdto.NewErrors(
				"نشست شما اعتبار ندارد مجددا وارد شوید!",
				"Your session is invalid. Please log in again!",
			))
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("userID", user.ID)
		c.Next()
	}
}

// UserFromContext returns the user stored by AuthMiddleware.
func UserFromContext(c *gin.Context) *authdomain.User {
	if v, ok := c.Get("user"); ok {
		if user, ok := v.(*authdomain.User); ok {
			return user
		}
	}
	return nil
}
