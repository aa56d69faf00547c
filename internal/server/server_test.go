package server_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/oggyb/muzz-chat/internal/api/accountpb"
	"github.com/oggyb/muzz-chat/internal/api/chatpb"
	"github.com/oggyb/muzz-chat/internal/api/codec"
	"github.com/oggyb/muzz-chat/internal/api/explorepb"
	"github.com/oggyb/muzz-chat/internal/server"
	accountsvc "github.com/oggyb/muzz-chat/internal/service/account"
	"github.com/oggyb/muzz-chat/internal/service/chat"
	"github.com/oggyb/muzz-chat/internal/service/explore"
	"github.com/oggyb/muzz-chat/internal/testutil"
)

type clients struct {
	account accountpb.AccountServiceClient
	explore explorepb.ExploreServiceClient
	chat    chatpb.ChatServiceClient
}

func startServer(t *testing.T) clients {
	t.Helper()
	env := testutil.NewEnv(t)
	appCtx := env.AppContext(t)

	lis := bufconn.Listen(1 << 20)
	srv := server.New(appCtx,
		accountsvc.NewRegistrar(appCtx),
		explore.NewRegistrar(appCtx),
		chat.NewRegistrar(appCtx),
	)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		codec.DialOption(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return clients{
		account: accountpb.NewAccountServiceClient(conn),
		explore: explorepb.NewExploreServiceClient(conn),
		chat:    chatpb.NewChatServiceClient(conn),
	}
}

// signUpIn registers a user and returns a context carrying its token.
func signUpIn(t *testing.T, c clients, username, gender string) (context.Context, string) {
	t.Helper()
	ctx := context.Background()

	up, err := c.account.SignUp(ctx, &accountpb.SignUpRequest{
		Username: username, Email: username + "@example.com", Password: "secret1", Gender: gender,
	})
	require.NoError(t, err)

	in, err := c.account.SignIn(ctx, &accountpb.SignInRequest{Username: username, Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, in.Token)
	assert.Equal(t, up.User.Id, in.User.Id)

	return metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+in.Token), up.User.Id
}

func TestAuth(t *testing.T) {
	c := startServer(t)
	ctx := context.Background()

	_, err := c.explore.ListMatches(ctx, &explorepb.ListMatchesRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	bad := metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer not-a-token")
	_, err = c.explore.ListMatches(bad, &explorepb.ListMatchesRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = c.account.SignIn(ctx, &accountpb.SignInRequest{Username: "ghost", Password: "secret1"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = c.account.SignUp(ctx, &accountpb.SignUpRequest{Username: "x"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	authed, _ := signUpIn(t, c, "alice", "female")
	resp, err := c.explore.ListMatches(authed, &explorepb.ListMatchesRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Matches)
}

func TestMatchAndChatFlow(t *testing.T) {
	c := startServer(t)
	aliceCtx, aliceID := signUpIn(t, c, "alice", "female")
	bobCtx, bobID := signUpIn(t, c, "bob", "male")

	cands, err := c.explore.ListCandidates(aliceCtx, &explorepb.ListCandidatesRequest{})
	require.NoError(t, err)
	require.Len(t, cands.Candidates, 1)
	assert.Equal(t, bobID, cands.Candidates[0].Id)

	dec, err := c.explore.PutDecision(aliceCtx, &explorepb.PutDecisionRequest{RecipientUserId: bobID, LikedRecipient: true})
	require.NoError(t, err)
	assert.False(t, dec.MutualLikes)
	dec, err = c.explore.PutDecision(bobCtx, &explorepb.PutDecisionRequest{RecipientUserId: aliceID, LikedRecipient: true})
	require.NoError(t, err)
	assert.True(t, dec.MutualLikes)

	matches, err := c.explore.ListMatches(aliceCtx, &explorepb.ListMatchesRequest{})
	require.NoError(t, err)
	require.Len(t, matches.Matches, 1)
	assert.Equal(t, "bob", matches.Matches[0].Username)

	_, err = c.chat.SendMessage(bobCtx, &chatpb.SendMessageRequest{PartnerUserId: aliceID, Content: "first"})
	require.NoError(t, err)

	watchCtx, cancel := context.WithTimeout(aliceCtx, 5*time.Second)
	defer cancel()
	stream, err := c.chat.Watch(watchCtx, &chatpb.WatchRequest{PartnerUserId: bobID})
	require.NoError(t, err)

	ev, err := stream.Recv()
	require.NoError(t, err)
	assert.True(t, ev.Backfill)
	assert.Equal(t, "first", ev.Message.Content)

	// the subscription is live once backfill has been sent
	sent, err := c.chat.SendMessage(bobCtx, &chatpb.SendMessageRequest{PartnerUserId: aliceID, Content: "  hello  "})
	require.NoError(t, err)
	assert.Equal(t, "hello", sent.Message.Content)

	ev, err = stream.Recv()
	require.NoError(t, err)
	assert.False(t, ev.Backfill)
	assert.Equal(t, sent.Message.Id, ev.Message.Id)
	assert.Equal(t, bobID, ev.Message.SenderId)

	_, err = c.chat.SendMessage(bobCtx, &chatpb.SendMessageRequest{PartnerUserId: aliceID, Content: "   "})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	list, err := c.chat.ListMessages(aliceCtx, &chatpb.ListMessagesRequest{PartnerUserId: bobID})
	require.NoError(t, err)
	assert.Equal(t, "bob", list.Partner.Username)
	require.Len(t, list.Messages, 2)
	assert.Equal(t, "first", list.Messages[0].Content)
	assert.Equal(t, "hello", list.Messages[1].Content)
}
