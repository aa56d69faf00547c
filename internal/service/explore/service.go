package explore

import (
	"context"
	"errors"
	"strconv"

	"github.com/oggyb/muzz-chat/internal/account"
	pb "github.com/oggyb/muzz-chat/internal/api/explorepb"
	"github.com/oggyb/muzz-chat/internal/app"
	"github.com/oggyb/muzz-chat/internal/db"
	svcErr "github.com/oggyb/muzz-chat/internal/errors"
	"github.com/oggyb/muzz-chat/internal/match"
	"github.com/oggyb/muzz-chat/internal/session"
)

// Service implements the Explore gRPC API on top of the match engine and
// resolver. The acting user always comes from the session in the context.
type Service struct {
	appCtx   *app.AppContext
	engine   *match.Engine
	resolver *match.Resolver

	pb.UnimplementedExploreServiceServer
}

// NewExploreService creates a new Explore service with dependencies from AppContext.
func NewExploreService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		engine:   match.NewEngine(appCtx.Gateway, appCtx.Logger.With("subsystem", "match")),
		resolver: match.NewResolver(appCtx.Gateway),
	}
}

// ListCandidates returns the current user's candidate pool.
//
// Behavior:
//   - Opposite gender only.
//   - Excludes everyone the user already liked or passed.
//   - Ordered by user id; the client walks the list and calls PutDecision
//     for each entry.
func (s *Service) ListCandidates(ctx context.Context, _ *pb.ListCandidatesRequest) (*pb.ListCandidatesResponse, error) {
	current, err := session.CurrentUser(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	s.appCtx.Logger.Debug("ListCandidates called", "user", current.ID)

	users, err := s.engine.Candidates(ctx, current)
	if err != nil {
		s.appCtx.Logger.Error("Candidates failed", "user", current.ID, "err", err)
		return nil, svcErr.Map(err)
	}

	resp := &pb.ListCandidatesResponse{Candidates: make([]*pb.User, 0, len(users))}
	for _, u := range users {
		resp.Candidates = append(resp.Candidates, toPB(u))
	}
	return resp, nil
}

// PutDecision records a like or pass and reports whether it made a match.
//
// Behavior:
//   - Recipient must exist and differ from the caller.
//   - A second decision on the same recipient is not written; the response
//     sets already_decided and the first decision stands.
//   - For a like, mutual_likes tells whether the recipient liked the caller.
func (s *Service) PutDecision(ctx context.Context, req *pb.PutDecisionRequest) (*pb.PutDecisionResponse, error) {
	current, err := session.CurrentUser(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}
	s.appCtx.Logger.Debug(
		"PutDecision called",
		"actor", current.ID,
		"recipient", req.GetRecipientUserId(),
		"liked", req.GetLikedRecipient(),
	)

	recipientID, err := strconv.ParseUint(req.GetRecipientUserId(), 10, 64)
	if err != nil {
		return nil, svcErr.InvalidArgument("recipient_user_id must be a valid uint64")
	}
	if recipientID == current.ID {
		return nil, svcErr.InvalidArgument("cannot decide on yourself")
	}

	target, err := account.FindUser(ctx, s.appCtx.Gateway, recipientID)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	mutual, err := s.engine.RecordJudgment(ctx, current, target, req.GetLikedRecipient())
	if errors.Is(err, match.ErrAlreadyJudged) {
		return &pb.PutDecisionResponse{AlreadyDecided: true}, nil
	}
	if err != nil {
		s.appCtx.Logger.Error("RecordJudgment failed", "actor", current.ID, "recipient", recipientID, "err", err)
		return nil, svcErr.Map(err)
	}

	return &pb.PutDecisionResponse{MutualLikes: mutual}, nil
}

// ListMatches returns everyone the caller likes who likes the caller back.
// It doubles as the chat list.
func (s *Service) ListMatches(ctx context.Context, _ *pb.ListMatchesRequest) (*pb.ListMatchesResponse, error) {
	current, err := session.CurrentUser(ctx)
	if err != nil {
		return nil, svcErr.Map(err)
	}

	users, err := s.resolver.Matches(ctx, current)
	if err != nil {
		s.appCtx.Logger.Error("Matches failed", "user", current.ID, "err", err)
		return nil, svcErr.Map(err)
	}

	resp := &pb.ListMatchesResponse{Matches: make([]*pb.User, 0, len(users))}
	for _, u := range users {
		resp.Matches = append(resp.Matches, toPB(u))
	}

	s.appCtx.Logger.Debug("ListMatches result", "user", current.ID, "match_count", len(resp.Matches))
	return resp, nil
}

func toPB(u db.User) *pb.User {
	return &pb.User{
		Id:       strconv.FormatUint(u.ID, 10),
		Username: u.Username,
		Gender:   string(u.Gender),
	}
}
