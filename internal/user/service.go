package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/MikeMC777/mavunohub/internal/auth"
	"github.com/MikeMC777/mavunohub/internal/events"
	pb "github.com/MikeMC777/mavunohub/internal/userpb"
)

var validate = validator.New()

type Service struct {
	pb.UnimplementedUserServiceServer
	repo     Repository
	events   events.Publisher
	producer string
}

func NewService(repo Repository, pub events.Publisher, producer string) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{repo: repo, events: pub, producer: producer}
}

func field(in *structpb.Struct, name string) string {
	return strings.TrimSpace(in.GetFields()[name].GetStringValue())
}

func toStruct(u *User) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		pb.FieldID:        u.ID,
		pb.FieldName:      u.Name,
		pb.FieldEmail:     u.Email,
		pb.FieldLocation:  u.Location,
		pb.FieldRole:      string(u.Role),
		pb.FieldIsStaff:   u.IsStaff,
		pb.FieldIsActive:  u.IsActive,
		pb.FieldCreatedAt: u.CreatedAt.Format(time.RFC3339),
	})
}

// CreateUser registers an account and announces it on the event stream.
func (s *Service) CreateUser(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	name, email, password := field(in, pb.FieldName), field(in, pb.FieldEmail), field(in, pb.FieldPassword)
	if name == "" || email == "" || password == "" {
		return nil, status.Error(codes.InvalidArgument, "name, email and password are required")
	}
	if err := validate.Var(email, "required,email"); err != nil {
		return nil, status.Error(codes.InvalidArgument, "enter a valid email address")
	}
	role := auth.RoleConsumer
	if raw := field(in, pb.FieldRole); raw != "" {
		r, err := auth.ParseRole(raw)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		role = r
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "hash error: %v", err)
	}
	u := &User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		Location:     field(in, pb.FieldLocation),
		Role:         role,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrAlreadyExist) {
			return nil, status.Error(codes.AlreadyExists, "user with this email already exists")
		}
		return nil, status.Errorf(codes.Internal, "create error: %v", err)
	}

	ev, err := events.New(ctx, events.TypeUserRegistered, s.producer, u.ID, events.UserRegistered{UserID: u.ID, Name: u.Name})
	if err == nil {
		err = s.events.Publish(ctx, ev)
	}
	if err != nil {
		slog.WarnContext(ctx, "publish user.registered", "user_id", u.ID, "err", err)
	}
	return toStruct(u)
}

func (s *Service) GetUser(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	if in.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	u, err := s.repo.GetByID(ctx, in.GetValue())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, status.Error(codes.NotFound, "user not found")
		}
		return nil, status.Errorf(codes.Internal, "get error: %v", err)
	}
	return toStruct(u)
}

func (s *Service) DeleteUser(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	if in.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	ok, err := s.repo.Delete(ctx, in.GetValue())
	if err != nil {
		if errors.Is(err, ErrInUse) {
			return nil, status.Error(codes.FailedPrecondition, err.Error())
		}
		return nil, status.Errorf(codes.Internal, "delete error: %v", err)
	}
	if !ok {
		return nil, status.Error(codes.NotFound, "user not found")
	}
	return wrapperspb.Bool(true), nil
}

// ResolveIdentity returns the role of an active user. Unknown and inactive
// users are both reported as Unauthenticated.
func (s *Service) ResolveIdentity(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	if in.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	u, err := s.repo.GetByID(ctx, in.GetValue())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, status.Error(codes.Unauthenticated, "user not found")
		}
		return nil, status.Errorf(codes.Internal, "resolve error: %v", err)
	}
	if !u.IsActive {
		return nil, status.Error(codes.Unauthenticated, "user is inactive")
	}
	return structpb.NewStruct(map[string]any{
		pb.FieldID:      u.ID,
		pb.FieldRole:    string(u.Role),
		pb.FieldIsStaff: u.IsStaff,
	})
}
