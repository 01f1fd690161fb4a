package service

import (
	"context"
	"encoding/json"
	"time"

	"portfolio-notes-be/internal/dto"
	"portfolio-notes-be/internal/entity"
	"portfolio-notes-be/internal/pkg/logger"
	"portfolio-notes-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// IActivityService consumes note lifecycle events and records them as
// append-only activity rows.
type IActivityService interface {
	Consume(ctx context.Context) error
}

type activityService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	log        logger.ILogger
}

func NewActivityService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IActivityService {
	return &activityService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		log:        log,
	}
}

func (cs *activityService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *activityService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.NoteEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("activity", "failed to unmarshal note event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	activity := entity.Activity{
		Id:         uuid.New(),
		EventType:  payload.EventType,
		NoteId:     payload.NoteId,
		UserId:     payload.UserId,
		Detail:     payload.Detail,
		OccurredAt: payload.OccurredAt,
		CreatedAt:  time.Now(),
	}

	if err := uow.ActivityRepository().Create(ctx, &activity); err != nil {
		cs.log.Error("activity", "failed to record activity", map[string]interface{}{
			"event_type": payload.EventType,
			"note_id":    payload.NoteId.String(),
			"error":      err.Error(),
		})
		msg.Nack() // Nack for retriable errors
		return
	}

	msg.Ack()
}
