package server

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/oggyb/muzz-chat/internal/account"
	svcErr "github.com/oggyb/muzz-chat/internal/errors"
	"github.com/oggyb/muzz-chat/internal/gateway"
	"github.com/oggyb/muzz-chat/internal/session"
)

const authHeader = "authorization"

// Authenticator turns the bearer token of a call into a session holding the
// token's user. Public methods pass through untouched.
type Authenticator struct {
	tokens *session.Tokens
	gw     *gateway.Gateway
	public map[string]bool
}

func NewAuthenticator(tokens *session.Tokens, gw *gateway.Gateway, public []string) *Authenticator {
	a := &Authenticator{tokens: tokens, gw: gw, public: make(map[string]bool, len(public))}
	for _, m := range public {
		a.public[m] = true
	}
	return a
}

func (a *Authenticator) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if a.public[info.FullMethod] {
			return handler(ctx, req)
		}
		ctx, err := a.authenticate(ctx)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

func (a *Authenticator) Stream() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if a.public[info.FullMethod] {
			return handler(srv, ss)
		}
		ctx, err := a.authenticate(ss.Context())
		if err != nil {
			return err
		}
		return handler(srv, &authedStream{ServerStream: ss, ctx: ctx})
	}
}

func (a *Authenticator) authenticate(ctx context.Context) (context.Context, error) {
	raw, ok := bearerToken(ctx)
	if !ok {
		return nil, svcErr.Unauthenticated("missing bearer token")
	}
	userID, err := a.tokens.Parse(raw)
	if err != nil {
		return nil, svcErr.Unauthenticated("invalid token")
	}

	u, err := account.FindUser(ctx, a.gw, userID)
	if errors.Is(err, svcErr.ErrNotFound) {
		return nil, svcErr.Unauthenticated("unknown user")
	}
	if err != nil {
		return nil, svcErr.Map(err)
	}

	sess := session.New()
	sess.Set(&u)
	return session.NewContext(ctx, sess), nil
}

func bearerToken(ctx context.Context) (string, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", false
	}
	for _, v := range md.Get(authHeader) {
		if token, found := strings.CutPrefix(v, "Bearer "); found && token != "" {
			return token, true
		}
	}
	return "", false
}

// authedStream swaps in the context that carries the session.
type authedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authedStream) Context() context.Context { return s.ctx }
