package delivery

import (
	"errors"
	"net/http"

	authdto "hoosha-backend/internal/auth/dto"
	"hoosha-backend/internal/auth/repository"
	"hoosha-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUsecase usecase.AuthUsecase
	fcmRepo     repository.FCMTokenRepository
}

func NewAuthHandler(authUsecase usecase.AuthUsecase, fcmRepo repository.FCMTokenRepository) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		fcmRepo:     fcmRepo,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req authdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Username == "" && req.Email == "") {
		c.JSON(http.StatusBadRequest, authdto.NewErrors(
			"نام کاربری یا ایمیل و رمز عبور الزامی است!",
			"Username or email and password are required!",
		))
		return
	}

	resp, err := h.authUsecase.Login(&req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			c.JSON(http.StatusBadRequest, authdto.NewErrors(
				"ورود ناموفق! نام کاربری یا ایمیل رمز عبور اشتباه است!",
				"Login failed! The username or email or password is incorrect!",
			))
		case errors.Is(err, usecase.ErrTooManySessions):
			c.JSON(http.StatusBadRequest, authdto.NewErrors(
				"ورود ناموفق! تعداد نشست های ممکن شما تکمیل شده است! لطفا ابتدا یکی را غیرفعال کنید تا امکان ورود جدید اضافه شود!",
				"Login failed! You have reached the maximum number of active sessions. Please deactivate one before starting a new session!",
			))
		default:
			c.JSON(http.StatusInternalServerError, authdto.NewErrors(
				"خطایی در ورود رخ داد!",
				"An error occurred during login!",
			))
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req authdto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, authdto.NewErrors(
			"اطلاعات ثبت نام کامل نیست!",
			"Registration data is incomplete!",
		))
		return
	}

	resp, err := h.authUsecase.Register(&req)
	if err != nil {
		if errors.Is(err, usecase.ErrUserExists) {
			c.JSON(http.StatusBadRequest, authdto.NewErrors(
				"نام کاربری یا ایمیل یا شماره همراه قبلا ثبت شده است!",
				"Username, email or phone is already registered!",
			))
			return
		}
		c.JSON(http.StatusInternalServerError, authdto.NewErrors(
			"خطایی در ثبت نام رخ داد!",
			"An error occurred during registration!",
		))
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req authdto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, authdto.NewErrors(
			"رفرش توکن الزامی است!",
			"Refresh token is required!",
		))
		return
	}

	resp, err := h.authUsecase.Refresh(req.RefreshToken)
	if err != nil {
		if errors.Is(err, usecase.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, authdto.NewErrors(
				"نشست شما اعتبار ندارد مجددا وارد شوید!",
				"Your session is invalid. Please log in again!",
			))
			return
		}
		c.JSON(http.StatusInternalServerError, authdto.NewErrors(
			"خطایی در تمدید نشست رخ داد!",
			"An error occurred while refreshing the session!",
		))
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req authdto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, authdto.NewErrors(
			"رفرش توکن الزامی است!",
			"Refresh token is required!",
		))
		return
	}

	if err := h.authUsecase.Logout(req.RefreshToken); err != nil {
		if errors.Is(err, usecase.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, authdto.NewErrors(
				"نشست شما اعتبار ندارد!",
				"Your session is invalid!",
			))
			return
		}
		c.JSON(http.StatusInternalServerError, authdto.NewErrors(
			"خطایی در خروج رخ داد!",
			"An error occurred during logout!",
		))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user := UserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, authdto.NewErrors(
			"نشست شما اعتبار ندارد مجددا وارد شوید!",
			"Your session is invalid. Please log in again!",
		))
		return
	}
	c.JSON(http.StatusOK, authdto.UserResponse{User: user})
}

func (h *AuthHandler) RegisterFCMToken(c *gin.Context) {
	user := UserFromContext(c)
	var req authdto.RegisterFCMTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, authdto.NewErrors(
			"توکن دستگاه الزامی است!",
			"Device token is required!",
		))
		return
	}

	if err := h.fcmRepo.SaveToken(user.ID, req.Token, req.DeviceInfo); err != nil {
		c.JSON(http.StatusInternalServerError, authdto.NewErrors(
			"خطایی در ثبت توکن دستگاه رخ داد!",
			"An error occurred while registering the device token!",
		))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "token registered"})
}

func (h *AuthHandler) UnregisterFCMToken(c *gin.Context) {
	token := c.Param("token")
	if err := h.fcmRepo.DeleteToken(token); err != nil {
		c.JSON(http.StatusInternalServerError, authdto.NewErrors(
			"خطایی در حذف توکن دستگاه رخ داد!",
			"An error occurred while removing the device token!",
		))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "token removed"})
}
