package api

import (
	authrepo "hoosha-backend/internal/auth/repository"
	authusecase "hoosha-backend/internal/auth/usecase"
	chatusecase "hoosha-backend/internal/chat/usecase"
	"hoosha-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase    authusecase.AuthUsecase
	roomUsecase    chatusecase.RoomUsecase
	messageUsecase chatusecase.MessageUsecase
	fcmRepo        authrepo.FCMTokenRepository
	config         *config.Config
}

func NewHandler(authUc authusecase.AuthUsecase, roomUc chatusecase.RoomUsecase, messageUc chatusecase.MessageUsecase, fcmRepo authrepo.FCMTokenRepository, cfg *config.Config) *Handler {
	return &Handler{
		authUsecase:    authUc,
		roomUsecase:    roomUc,
		messageUsecase: messageUc,
		fcmRepo:        fcmRepo,
		config:         cfg,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.roomUsecase, h.messageUsecase, h.fcmRepo, h.config)

	return r.Run(addr)
}
