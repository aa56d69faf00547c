package account

import (
	"context"
	"errors"
	"strconv"

	"google.golang.org/grpc"

	"github.com/oggyb/muzz-chat/internal/account"
	pb "github.com/oggyb/muzz-chat/internal/api/accountpb"
	"github.com/oggyb/muzz-chat/internal/app"
	"github.com/oggyb/muzz-chat/internal/db"
	svcErr "github.com/oggyb/muzz-chat/internal/errors"
	"github.com/oggyb/muzz-chat/internal/session"
)

// Service implements the Account gRPC API: sign-up and sign-in. Sign-in
// hands out the bearer token the other services authenticate with.
type Service struct {
	appCtx   *app.AppContext
	accounts *account.Service

	pb.UnimplementedAccountServiceServer
}

func NewAccountService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		accounts: account.New(appCtx.Gateway, appCtx.Hasher, appCtx.Logger.With("subsystem", "account")),
	}
}

func (s *Service) SignUp(ctx context.Context, req *pb.SignUpRequest) (*pb.SignUpResponse, error) {
	u, err := s.accounts.SignUp(ctx, account.SignUpInput{
		Username: req.GetUsername(),
		Email:    req.GetEmail(),
		Password: req.GetPassword(),
		Gender:   db.Gender(req.GetGender()),
	})
	if err != nil {
		if !svcErr.IsValidation(err) {
			s.appCtx.Logger.Error("SignUp failed", "username", req.GetUsername(), "err", err)
		}
		return nil, svcErr.Map(err)
	}
	return &pb.SignUpResponse{User: toPB(u)}, nil
}

func (s *Service) SignIn(ctx context.Context, req *pb.SignInRequest) (*pb.SignInResponse, error) {
	sess := session.New()
	u, err := s.accounts.SignIn(ctx, sess, req.GetUsername(), req.GetPassword())
	if errors.Is(err, account.ErrInvalidCredentials) {
		return nil, svcErr.Unauthenticated(err.Error())
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}

	token, err := s.appCtx.Tokens.Issue(u.ID)
	if err != nil {
		s.appCtx.Logger.Error("Issue token failed", "user", u.ID, "err", err)
		return nil, svcErr.Map(err)
	}

	s.appCtx.Logger.Info("user signed in", "user", u.ID)
	return &pb.SignInResponse{Token: token, User: toPB(u)}, nil
}

func toPB(u db.User) *pb.User {
	return &pb.User{
		Id:       strconv.FormatUint(u.ID, 10),
		Username: u.Username,
		Gender:   string(u.Gender),
	}
}

// Registrar ties the Account service into the gRPC server.
type Registrar struct {
	appCtx *app.AppContext
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

func (r *Registrar) Register(s grpc.ServiceRegistrar) {
	pb.RegisterAccountServiceServer(s, NewAccountService(r.appCtx))
}

// PublicMethods can be called without a token.
func (r *Registrar) PublicMethods() []string {
	return []string{
		pb.AccountService_SignUp_FullMethodName,
		pb.AccountService_SignIn_FullMethodName,
	}
}
