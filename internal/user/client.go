package user

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/MikeMC777/mavunohub/internal/apperr"
	"github.com/MikeMC777/mavunohub/internal/auth"
	"github.com/MikeMC777/mavunohub/internal/logging"
	pb "github.com/MikeMC777/mavunohub/internal/userpb"
)

const requestIDMetadataKey = "x-request-id"

// RequestIDClientInterceptor forwards the request id of ctx as gRPC metadata.
func RequestIDClientInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if rid := logging.RequestID(ctx); rid != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, requestIDMetadataKey, rid)
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// RequestIDServerInterceptor restores the caller's request id into the
// handler context so server logs correlate with the HTTP request.
func RequestIDServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get(requestIDMetadataKey); len(v) > 0 {
				ctx = logging.WithRequestID(ctx, v[0])
			}
		}
		return handler(ctx, req)
	}
}

// Dial opens a lazy client connection to user-service.
func Dial(addr string) (*grpc.ClientConn, error) {
	return grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(RequestIDClientInterceptor()),
	)
}

// GRPCResolver resolves forwarded user ids through user-service.
type GRPCResolver struct {
	client pb.UserServiceClient
}

func NewGRPCResolver(client pb.UserServiceClient) *GRPCResolver {
	return &GRPCResolver{client: client}
}

func (r *GRPCResolver) Resolve(ctx context.Context, userID string) (auth.Identity, error) {
	out, err := r.client.ResolveIdentity(ctx, wrapperspb.String(userID), grpc.WaitForReady(true))
	if err != nil {
		switch status.Code(err) {
		case codes.NotFound, codes.Unauthenticated, codes.InvalidArgument:
			return auth.Identity{}, apperr.Unauthenticated("user not found or inactive")
		}
		return auth.Identity{}, fmt.Errorf("resolve identity: %w", err)
	}
	f := out.GetFields()
	role, err := auth.ParseRole(f[pb.FieldRole].GetStringValue())
	if err != nil {
		return auth.Identity{}, fmt.Errorf("resolve identity: %w", err)
	}
	return auth.Identity{
		UserID:  f[pb.FieldID].GetStringValue(),
		Role:    role,
		IsStaff: f[pb.FieldIsStaff].GetBoolValue(),
	}, nil
}
