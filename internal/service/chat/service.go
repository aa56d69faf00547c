package chat

import (
	"context"
	"strconv"
	"sync"

	"github.com/oggyb/muzz-chat/internal/account"
	pb "github.com/oggyb/muzz-chat/internal/api/chatpb"
	"github.com/oggyb/muzz-chat/internal/app"
	"github.com/oggyb/muzz-chat/internal/conversation"
	"github.com/oggyb/muzz-chat/internal/db"
	svcErr "github.com/oggyb/muzz-chat/internal/errors"
	"github.com/oggyb/muzz-chat/internal/session"
)

// Service implements the Chat gRPC API. Reads and writes go straight to the
// gateway; Watch holds a live conversation channel for the stream's lifetime.
type Service struct {
	appCtx *app.AppContext

	pb.UnimplementedChatServiceServer
}

func NewChatService(appCtx *app.AppContext) *Service {
	return &Service{appCtx: appCtx}
}

// ListMessages returns the partner and the whole conversation, oldest first.
func (s *Service) ListMessages(ctx context.Context, req *pb.ListMessagesRequest) (*pb.ListMessagesResponse, error) {
	current, partner, err := s.resolvePair(ctx, req.GetPartnerUserId())
	if err != nil {
		return nil, err
	}

	msgs, err := conversation.History(ctx, s.appCtx.Gateway, current.ID, partner.ID)
	if err != nil {
		s.appCtx.Logger.Error("History failed", "user", current.ID, "partner", partner.ID, "err", err)
		return nil, svcErr.Map(err)
	}

	resp := &pb.ListMessagesResponse{
		Partner:  userToPB(partner),
		Messages: make([]*pb.Message, 0, len(msgs)),
	}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, messageToPB(m))
	}
	return resp, nil
}

// SendMessage stores one message to the partner. Blank content is rejected
// before anything is written.
func (s *Service) SendMessage(ctx context.Context, req *pb.SendMessageRequest) (*pb.SendMessageResponse, error) {
	text, err := conversation.CleanContent(req.GetContent(), s.appCtx.Config.Chat.MaxMessageLength)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	current, partner, err := s.resolvePair(ctx, req.GetPartnerUserId())
	if err != nil {
		return nil, err
	}

	msg, err := conversation.Post(ctx, s.appCtx.Gateway, current.ID, partner.ID, text)
	if err != nil {
		s.appCtx.Logger.Error("Post failed", "user", current.ID, "partner", partner.ID, "err", err)
		return nil, svcErr.Map(err)
	}
	return &pb.SendMessageResponse{Message: messageToPB(msg)}, nil
}

// Watch streams the conversation: first the existing history flagged as
// backfill, then each new message once. The stream ends with Unavailable if
// live delivery drops; the client reconnects by calling Watch again.
func (s *Service) Watch(req *pb.WatchRequest, stream pb.ChatService_WatchServer) error {
	ctx := stream.Context()
	current, err := session.CurrentUser(ctx)
	if err != nil {
		return svcErr.Map(err)
	}
	partnerID, err := strconv.ParseUint(req.GetPartnerUserId(), 10, 64)
	if err != nil {
		return svcErr.InvalidArgument("partner_user_id must be a valid uint64")
	}

	q := newQueue()
	ch := conversation.New(s.appCtx.Gateway, current, s.appCtx.Logger.With("subsystem", "chat"),
		conversation.WithListener(q.push),
		conversation.WithOptimisticSend(s.appCtx.Config.Chat.OptimisticSend),
		conversation.WithMaxLength(s.appCtx.Config.Chat.MaxMessageLength),
	)
	if err := ch.Open(ctx, partnerID); err != nil {
		return svcErr.Map(err)
	}
	defer ch.Close()

	s.appCtx.Logger.Debug("Watch started", "user", current.ID, "partner", partnerID)

	backfill := ch.History()
	for _, m := range backfill {
		if err := stream.Send(&pb.MessageEvent{Message: messageToPB(m), Backfill: true}); err != nil {
			return err
		}
	}

	// live appends carry their history index; anything below next was
	// already sent as backfill
	next := len(backfill)
	flush := func() error {
		for _, it := range q.drain() {
			if it.seq < next {
				continue
			}
			if err := stream.Send(&pb.MessageEvent{Message: messageToPB(it.msg)}); err != nil {
				return err
			}
			next = it.seq + 1
		}
		return nil
	}

	done := ch.Done()
	for {
		select {
		case <-ctx.Done():
			return svcErr.Map(ctx.Err())
		case <-q.notify:
			if err := flush(); err != nil {
				return err
			}
		case <-done:
			if err := flush(); err != nil {
				return err
			}
			s.appCtx.Logger.Warn("Watch ended", "user", current.ID, "partner", partnerID, "err", ch.Err())
			return svcErr.Map(ch.Err())
		}
	}
}

func (s *Service) resolvePair(ctx context.Context, rawPartnerID string) (current, partner db.User, err error) {
	current, err = session.CurrentUser(ctx)
	if err != nil {
		return db.User{}, db.User{}, svcErr.Map(err)
	}
	partnerID, err := strconv.ParseUint(rawPartnerID, 10, 64)
	if err != nil {
		return db.User{}, db.User{}, svcErr.InvalidArgument("partner_user_id must be a valid uint64")
	}
	if partnerID == current.ID {
		return db.User{}, db.User{}, svcErr.InvalidArgument("cannot chat with yourself")
	}
	partner, err = account.FindUser(ctx, s.appCtx.Gateway, partnerID)
	if err != nil {
		return db.User{}, db.User{}, svcErr.Map(err)
	}
	return current, partner, nil
}

type queued struct {
	seq int
	msg db.Message
}

// queue hands live appends from the conversation's listener to the stream
// goroutine without blocking the listener.
type queue struct {
	mu     sync.Mutex
	items  []queued
	notify chan struct{}
}

func newQueue() *queue {
	return &queue{notify: make(chan struct{}, 1)}
}

func (q *queue) push(seq int, m db.Message) {
	q.mu.Lock()
	q.items = append(q.items, queued{seq: seq, msg: m})
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *queue) drain() []queued {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

func userToPB(u db.User) *pb.User {
	return &pb.User{
		Id:       strconv.FormatUint(u.ID, 10),
		Username: u.Username,
		Gender:   string(u.Gender),
	}
}

func messageToPB(m db.Message) *pb.Message {
	return &pb.Message{
		Id:            m.ID,
		SenderId:      strconv.FormatUint(m.SenderID, 10),
		ReceiverId:    strconv.FormatUint(m.ReceiverID, 10),
		Content:       m.Content,
		UnixTimestamp: uint64(m.CreatedAt.UnixMilli()),
	}
}
