package chat

import (
	"google.golang.org/grpc"

	pb "github.com/oggyb/muzz-chat/internal/api/chatpb"
	"github.com/oggyb/muzz-chat/internal/app"
)

// Registrar ties the Chat service into the gRPC server. Every method needs
// a signed-in user.
type Registrar struct {
	appCtx *app.AppContext
}

func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

func (r *Registrar) Register(s grpc.ServiceRegistrar) {
	pb.RegisterChatServiceServer(s, NewChatService(r.appCtx))
}

func (r *Registrar) PublicMethods() []string { return nil }
