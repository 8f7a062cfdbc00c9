package service

import (
	"context"
	"encoding/json"
	"log"

	"ai-research-be/internal/mapper"
	"ai-research-be/internal/repository/specification"
	"ai-research-be/internal/repository/unitofwork"
	"ai-research-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IArchiverService interface {
	Consume(ctx context.Context) error
}

// archiverService drains finished sessions off the internal queue and
// persists them so the API keeps responding while the database writes.
type archiverService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	mapper     *mapper.ResearchMapper
}

func NewArchiverService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
) IArchiverService {
	return &archiverService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		mapper:     mapper.NewResearchMapper(),
	}
}

func (a *archiverService) Consume(ctx context.Context) error {
	messages, err := a.pubSub.Subscribe(ctx, a.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			a.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (a *archiverService) processMessage(ctx context.Context, msg *message.Message) {
	var session store.ResearchSession
	if err := json.Unmarshal(msg.Payload, &session); err != nil {
		log.Printf("[ERROR] Failed to unmarshal session payload: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Archiving session %s (query: %q)", session.ID, session.Query)

	uow := a.uowFactory.NewUnitOfWork(ctx)

	// A session can finish more than once when feedback revives and re-ends
	// it, so update the existing row instead of failing on the unique index.
	existing, err := uow.ResearchRecordRepository().FindOne(ctx,
		specification.BySessionId{SessionId: session.ID},
		specification.IncludeDeleted{},
	)
	if err != nil {
		log.Printf("[ERROR] Failed to look up record for session %s: %v", session.ID, err)
		msg.Nack()
		return
	}

	record := a.mapper.SessionToRecord(&session)

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	if existing != nil {
		record.Id = existing.Id
		record.CreatedAt = existing.CreatedAt
		err = uow.ResearchRecordRepository().Update(ctx, record)
	} else {
		err = uow.ResearchRecordRepository().Create(ctx, record)
	}
	if err != nil {
		log.Printf("[ERROR] Failed to persist session %s: %v", session.ID, err)
		msg.Nack()
		return
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[SUCCESS] Session archived: %s", session.ID)
	msg.Ack()
}
