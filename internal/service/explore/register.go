package explore

import (
	"google.golang.org/grpc"

	pb "github.com/oggyb/muzz-chat/internal/api/explorepb"
	"github.com/oggyb/muzz-chat/internal/app"
)

// Registrar ties the Explore service into the gRPC server
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the Explore service
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the Explore service implementation to the gRPC server
func (r *Registrar) Register(s grpc.ServiceRegistrar) {
	pb.RegisterExploreServiceServer(s, NewExploreService(r.appCtx))
}

// PublicMethods is empty: exploring needs a signed-in user.
func (r *Registrar) PublicMethods() []string { return nil }
