package notification

import (
	"context"
	"strconv"
	"time"

	authdomain "hoosha-backend/internal/auth/domain"
	authrepo "hoosha-backend/internal/auth/repository"
	chatdomain "hoosha-backend/internal/chat/domain"
	chatrepo "hoosha-backend/internal/chat/repository"
	"hoosha-backend/pkg/fcm"

	"github.com/rs/zerolog/log"
)

// Service pushes new-message notifications to the devices of the other
// room participants. Everything here is best-effort: a failed push is
// logged and never surfaced to the sender.
type Service struct {
	roomRepo  chatrepo.RoomRepository
	fcmRepo   authrepo.FCMTokenRepository
	fcmClient *fcm.Client
	timeout   time.Duration
}

// NewService creates the notification service. fcmClient may be nil, in
// which case push is disabled and MessageCreated is a no-op.
func NewService(roomRepo chatrepo.RoomRepository, fcmRepo authrepo.FCMTokenRepository, fcmClient *fcm.Client) *Service {
	return &Service{
		roomRepo:  roomRepo,
		fcmRepo:   fcmRepo,
		fcmClient: fcmClient,
		timeout:   10 * time.Second,
	}
}

// MessageCreated implements the chat usecase Notifier. Fan-out runs in the
// background so the send request never waits on FCM.
func (s *Service) MessageCreated(room *chatdomain.Room, message *chatdomain.Message, sender *authdomain.User) {
	if s.fcmClient == nil {
		return
	}
	go s.push(room, message, sender)
}

func (s *Service) push(room *chatdomain.Room, message *chatdomain.Message, sender *authdomain.User) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	userIDs, err := s.roomRepo.ParticipantUserIDs(room.ID, sender.ID)
	if err != nil {
		log.Error().Err(err).Uint("room_id", room.ID).Msg("notification: list participants failed")
		return
	}

	deviceTokens, err := s.fcmRepo.GetTokensByUserIDs(userIDs)
	if err != nil {
		log.Error().Err(err).Uint("room_id", room.ID).Msg("notification: load device tokens failed")
		return
	}
	if len(deviceTokens) == 0 {
		return
	}

	tokens := make([]string, 0, len(deviceTokens))
	for _, t := range deviceTokens {
		tokens = append(tokens, t.Token)
	}

	title := room.Name
	if room.Kind == chatdomain.RoomKindPrivate {
		title = sender.FullName
	}

	failed, err := s.fcmClient.SendToDevices(ctx, tokens, fcm.NotificationData{
		Title: title,
		Body:  message.Text,
		Data: map[string]string{
			"chat_id":    strconv.FormatUint(uint64(room.ID), 10),
			"message_id": strconv.FormatUint(uint64(message.ID), 10),
		},
	})
	if err != nil {
		log.Error().Err(err).Uint("room_id", room.ID).Msg("notification: push failed")
		return
	}

	// Stale device tokens are pruned as FCM rejects them.
	for _, token := range failed {
		if err := s.fcmRepo.DeleteToken(token); err != nil {
			log.Warn().Err(err).Msg("notification: prune device token failed")
		}
	}
}
