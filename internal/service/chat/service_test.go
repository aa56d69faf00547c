package chat_test

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/oggyb/muzz-chat/internal/api/chatpb"
	"github.com/oggyb/muzz-chat/internal/conversation"
	"github.com/oggyb/muzz-chat/internal/db"
	"github.com/oggyb/muzz-chat/internal/gateway"
	"github.com/oggyb/muzz-chat/internal/service/chat"
	"github.com/oggyb/muzz-chat/internal/session"
	"github.com/oggyb/muzz-chat/internal/testutil"
)

// fakeStream collects what Watch sends.
type fakeStream struct {
	grpc.ServerStream
	ctx context.Context

	mu     sync.Mutex
	events []*pb.MessageEvent
}

func (f *fakeStream) Context() context.Context { return f.ctx }

func (f *fakeStream) Send(ev *pb.MessageEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeStream) snapshot() []*pb.MessageEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*pb.MessageEvent(nil), f.events...)
}

func as(ctx context.Context, u db.User) context.Context {
	sess := session.New()
	sess.Set(&u)
	return session.NewContext(ctx, sess)
}

type fixture struct {
	env  *testutil.Env
	svc  *chat.Service
	a, b db.User
}

func setup(t *testing.T) fixture {
	t.Helper()
	env := testutil.NewEnv(t)
	return fixture{
		env: env,
		svc: chat.NewChatService(env.AppContext(t)),
		a:   testutil.CreateUser(t, env.DB, "alice", db.GenderFemale),
		b:   testutil.CreateUser(t, env.DB, "bob", db.GenderMale),
	}
}

func id(u db.User) string {
	return strconv.FormatUint(u.ID, 10)
}

func TestSendAndList(t *testing.T) {
	f := setup(t)
	ctx := as(context.Background(), f.a)

	_, err := f.svc.SendMessage(ctx, &pb.SendMessageRequest{PartnerUserId: id(f.b), Content: " "})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = f.svc.SendMessage(ctx, &pb.SendMessageRequest{PartnerUserId: "999", Content: "hi"})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = f.svc.SendMessage(ctx, &pb.SendMessageRequest{PartnerUserId: id(f.a), Content: "hi"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	sent, err := f.svc.SendMessage(ctx, &pb.SendMessageRequest{PartnerUserId: id(f.b), Content: " hi "})
	require.NoError(t, err)
	assert.Equal(t, "hi", sent.Message.Content)
	assert.NotEmpty(t, sent.Message.Id)

	list, err := f.svc.ListMessages(as(context.Background(), f.b), &pb.ListMessagesRequest{PartnerUserId: id(f.a)})
	require.NoError(t, err)
	assert.Equal(t, "alice", list.Partner.Username)
	require.Len(t, list.Messages, 1)
	assert.Equal(t, sent.Message.Id, list.Messages[0].Id)
}

func TestWatch_BackfillThenLive(t *testing.T) {
	f := setup(t)

	_, err := conversation.Post(context.Background(), f.env.Gateway, f.b.ID, f.a.ID, "old")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(as(context.Background(), f.a))
	stream := &fakeStream{ctx: ctx}

	done := make(chan error, 1)
	go func() { done <- f.svc.Watch(&pb.WatchRequest{PartnerUserId: id(f.b)}, stream) }()

	require.Eventually(t, func() bool { return len(stream.snapshot()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, stream.snapshot()[0].Backfill)

	_, err = conversation.Post(context.Background(), f.env.Gateway, f.b.ID, f.a.ID, "new")
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(stream.snapshot()) == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Never(t, func() bool { return len(stream.snapshot()) > 2 }, 200*time.Millisecond, 10*time.Millisecond)
	ev := stream.snapshot()[1]
	assert.False(t, ev.Backfill)
	assert.Equal(t, "new", ev.Message.Content)

	cancel()
	select {
	case err := <-done:
		assert.Equal(t, codes.Canceled, status.Code(err))
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_EndsUnavailableOnDrop(t *testing.T) {
	f := setup(t)
	stream := &fakeStream{ctx: as(context.Background(), f.a)}

	done := make(chan error, 1)
	go func() { done <- f.svc.Watch(&pb.WatchRequest{PartnerUserId: id(f.b)}, stream) }()

	// give Watch time to subscribe before the broker goes away
	channel := gateway.EventChannel(db.TableMessages)
	require.Eventually(t, func() bool { return f.env.Redis.PubSubNumSub(channel)[channel] > 0 },
		2*time.Second, 10*time.Millisecond)
	f.env.Redis.Close()

	select {
	case err := <-done:
		assert.Equal(t, codes.Unavailable, status.Code(err))
	case <-time.After(3 * time.Second):
		t.Fatal("Watch did not end after the subscription dropped")
	}
}

func TestWatch_RequiresSession(t *testing.T) {
	f := setup(t)
	err := f.svc.Watch(&pb.WatchRequest{PartnerUserId: id(f.b)}, &fakeStream{ctx: context.Background()})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}
