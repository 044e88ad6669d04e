package main

import (
	"time"

	api "hoosha-backend/cmd/api"
	authdomain "hoosha-backend/internal/auth/domain"
	authrepo "hoosha-backend/internal/auth/repository"
	authusecase "hoosha-backend/internal/auth/usecase"
	chatdomain "hoosha-backend/internal/chat/domain"
	chatrepo "hoosha-backend/internal/chat/repository"
	chatusecase "hoosha-backend/internal/chat/usecase"
	"hoosha-backend/internal/notification"
	"hoosha-backend/pkg/config"
	"hoosha-backend/pkg/database"
	"hoosha-backend/pkg/fcm"
	"hoosha-backend/pkg/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Env)

	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := db.AutoMigrate(
		&authdomain.Role{},
		&authdomain.User{},
		&authdomain.Token{},
		&authdomain.FCMToken{},
		&chatdomain.Room{},
		&chatdomain.Participant{},
		&chatdomain.Message{},
		&chatdomain.MessageView{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	// Repositories
	userRepo := authrepo.NewUserRepository(db)
	tokenRepo := authrepo.NewTokenRepository(db)
	fcmTokenRepo := authrepo.NewFCMTokenRepository(db)
	roomRepo := chatrepo.NewRoomRepository(db)
	messageRepo := chatrepo.NewMessageRepository(db)

	// FCM client is optional, push is disabled without credentials.
	var fcmClient *fcm.Client
	if cfg.FirebaseCredentials != "" {
		fcmClient, err = fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize FCM client, push notifications disabled")
			fcmClient = nil
		}
	} else {
		log.Info().Msg("no Firebase credentials configured, push notifications disabled")
	}

	notifService := notification.NewService(roomRepo, fcmTokenRepo, fcmClient)

	// Periodic cleanup of expired token rows. Expiry is enforced at
	// validation time regardless.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			removed, err := tokenRepo.DeleteExpired(time.Now().UTC())
			if err != nil {
				log.Warn().Err(err).Msg("expired token cleanup failed")
			} else if removed > 0 {
				log.Info().Int64("removed", removed).Msg("expired tokens removed")
			}
		}
	}()

	// Use cases
	authUsecaseInstance := authusecase.NewAuthUsecase(db, userRepo, tokenRepo, cfg)
	roomUsecaseInstance := chatusecase.NewRoomUsecase(roomRepo, messageRepo, userRepo)
	messageUsecaseInstance := chatusecase.NewMessageUsecase(roomRepo, messageRepo, notifService)

	handler := api.NewHandler(authUsecaseInstance, roomUsecaseInstance, messageUsecaseInstance, fcmTokenRepo, cfg)

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
