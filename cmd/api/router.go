package api

import (
	"net/http"

	authdelivery "hoosha-backend/internal/auth/delivery"
	authrepo "hoosha-backend/internal/auth/repository"
	authusecase "hoosha-backend/internal/auth/usecase"
	chatdelivery "hoosha-backend/internal/chat/delivery"
	chatusecase "hoosha-backend/internal/chat/usecase"
	"hoosha-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUsecase authusecase.AuthUsecase, roomUsecase chatusecase.RoomUsecase, messageUsecase chatusecase.MessageUsecase, fcmRepo authrepo.FCMTokenRepository, cfg *config.Config) {
	authHandler := authdelivery.NewAuthHandler(authUsecase, fcmRepo)
	chatHandler := chatdelivery.NewChatHandler(roomUsecase, messageUsecase)

	requireAuth := authdelivery.AuthMiddleware(authUsecase, cfg.AccessTokenHeader)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.Me)
		}

		// FCM routes (protected)
		fcm := api.Group("/fcm")
		fcm.Use(requireAuth)
		{
			fcm.POST("/register", authHandler.RegisterFCMToken)
			fcm.DELETE("/:token", authHandler.UnregisterFCMToken)
		}

		// Room listing and creation (protected)
		chatrooms := api.Group("/chatrooms")
		chatrooms.Use(requireAuth)
		{
			chatrooms.GET("/:page_size", chatHandler.GetChatRooms)
			chatrooms.GET("/:page_size/:last_chat_room_id", chatHandler.GetChatRooms)
			chatrooms.POST("", chatHandler.CreateChatRoom)
			chatrooms.POST("/pv", chatHandler.CreatePVChat)
		}

		// Per-room operations (protected)
		chats := api.Group("/chats")
		chats.Use(requireAuth)
		{
			chats.GET("/:chat_id/messages/:page_size", chatHandler.GetMessages)
			chats.GET("/:chat_id/messages/:page_size/:last_ms_id", chatHandler.GetMessages)
			chats.POST("/:chat_id/messages", chatHandler.SendMessage)
			chats.POST("/:chat_id/join", chatHandler.JoinChatRoom)
		}

		// Message view receipts (protected)
		messages := api.Group("/messages")
		messages.Use(requireAuth)
		{
			messages.POST("/:message_id/view", chatHandler.RecordView)
		}
	}
}
