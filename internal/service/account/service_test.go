package account_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/oggyb/muzz-chat/internal/api/accountpb"
	"github.com/oggyb/muzz-chat/internal/service/account"
	"github.com/oggyb/muzz-chat/internal/testutil"
)

func TestSignUpSignIn(t *testing.T) {
	ctx := context.Background()
	env := testutil.NewEnv(t)
	appCtx := env.AppContext(t)
	svc := account.NewAccountService(appCtx)

	up, err := svc.SignUp(ctx, &pb.SignUpRequest{
		Username: "carol", Email: "carol@example.com", Password: "secret1", Gender: "female",
	})
	require.NoError(t, err)
	assert.Equal(t, "carol", up.User.Username)

	_, err = svc.SignUp(ctx, &pb.SignUpRequest{
		Username: "carol", Email: "other@example.com", Password: "secret1", Gender: "female",
	})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = svc.SignIn(ctx, &pb.SignInRequest{Username: "carol", Password: "nope-nope"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	in, err := svc.SignIn(ctx, &pb.SignInRequest{Username: "carol", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, up.User.Id, in.User.Id)

	userID, err := appCtx.Tokens.Parse(in.Token)
	require.NoError(t, err)
	assert.Equal(t, up.User.GetId(), strconv.FormatUint(userID, 10))
}

func TestPublicMethods(t *testing.T) {
	env := testutil.NewEnv(t)
	r := account.NewRegistrar(env.AppContext(t))
	assert.ElementsMatch(t, []string{
		pb.AccountService_SignUp_FullMethodName,
		pb.AccountService_SignIn_FullMethodName,
	}, r.PublicMethods())
}
