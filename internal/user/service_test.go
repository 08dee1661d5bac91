package user

import (
	"context"
	"net"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/MikeMC777/mavunohub/internal/apperr"
	"github.com/MikeMC777/mavunohub/internal/auth"
	"github.com/MikeMC777/mavunohub/internal/events"
	pb "github.com/MikeMC777/mavunohub/internal/userpb"
)

type stubRepo struct {
	mu    sync.Mutex
	users map[string]*User
}

func newStubRepo() *stubRepo { return &stubRepo{users: map[string]*User{}} }

func (s *stubRepo) Create(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.users {
		if v.Email == u.Email {
			return ErrAlreadyExist
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *stubRepo) Delete(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return false, nil
	}
	delete(s.users, id)
	return true, nil
}

type recorder struct {
	mu  sync.Mutex
	evs []events.Envelope
}

func (r *recorder) Publish(_ context.Context, ev events.Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evs = append(r.evs, ev)
	return nil
}

func startServer(t *testing.T, repo Repository, pub events.Publisher) pb.UserServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(RequestIDServerInterceptor()))
	pb.RegisterUserServiceServer(srv, NewService(repo, pub, "user-service"))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(RequestIDClientInterceptor()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return pb.NewUserServiceClient(conn)
}

func newUserReq(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	require.NoError(t, err)
	return s
}

func TestCreateUser_DefaultsAndEvent(t *testing.T) {
	repo, pub := newStubRepo(), &recorder{}
	client := startServer(t, repo, pub)

	out, err := client.CreateUser(context.Background(), newUserReq(t, map[string]any{
		pb.FieldName: "Wanjiru", pb.FieldEmail: "Wanjiru@Example.com", pb.FieldPassword: "s3cret",
	}))
	require.NoError(t, err)

	f := out.GetFields()
	assert.Equal(t, "consumer", f[pb.FieldRole].GetStringValue())
	assert.Equal(t, "wanjiru@example.com", f[pb.FieldEmail].GetStringValue())
	assert.True(t, f[pb.FieldIsActive].GetBoolValue())

	stored, err := repo.GetByID(context.Background(), f[pb.FieldID].GetStringValue())
	require.NoError(t, err)
	assert.True(t, CheckPassword(stored.PasswordHash, "s3cret"))

	require.Len(t, pub.evs, 1)
	assert.Equal(t, events.TypeUserRegistered, pub.evs[0].EventType)
	p, err := events.Decode[events.UserRegistered](pub.evs[0])
	require.NoError(t, err)
	assert.Equal(t, stored.ID, p.UserID)
}

func TestCreateUser_Invalid(t *testing.T) {
	client := startServer(t, newStubRepo(), nil)

	cases := []map[string]any{
		{pb.FieldName: "A", pb.FieldEmail: "a@example.com"},
		{pb.FieldName: "A", pb.FieldEmail: "not-an-email", pb.FieldPassword: "x"},
		{pb.FieldName: "A", pb.FieldEmail: "Bob <bob@x.com>", pb.FieldPassword: "x"},
		{pb.FieldName: "A", pb.FieldEmail: `"a b" <c@d>`, pb.FieldPassword: "x"},
		{pb.FieldName: "A", pb.FieldEmail: "a@example.com", pb.FieldPassword: "x", pb.FieldRole: "admin"},
	}
	for _, fields := range cases {
		_, err := client.CreateUser(context.Background(), newUserReq(t, fields))
		assert.Equal(t, codes.InvalidArgument, status.Code(err), fields)
	}
}

func TestCreateUser_DisplayNameEmailNotStored(t *testing.T) {
	repo := newStubRepo()
	client := startServer(t, repo, nil)

	_, err := client.CreateUser(context.Background(), newUserReq(t, map[string]any{
		pb.FieldName: "Bob", pb.FieldEmail: "Bob <bob@x.com>", pb.FieldPassword: "x",
	}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	assert.Empty(t, repo.users)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	client := startServer(t, newStubRepo(), nil)
	req := newUserReq(t, map[string]any{pb.FieldName: "A", pb.FieldEmail: "a@example.com", pb.FieldPassword: "x"})

	_, err := client.CreateUser(context.Background(), req)
	require.NoError(t, err)
	_, err = client.CreateUser(context.Background(), req)
	assert.Equal(t, codes.AlreadyExists, status.Code(err))
}

func TestGetAndDeleteUser(t *testing.T) {
	repo := newStubRepo()
	client := startServer(t, repo, nil)
	id := uuid.NewString()
	require.NoError(t, repo.Create(context.Background(), &User{ID: id, Name: "Otieno", Email: "o@example.com", Role: auth.RoleFarmer, IsActive: true}))

	out, err := client.GetUser(context.Background(), wrapperspb.String(id))
	require.NoError(t, err)
	assert.Equal(t, "farmer", out.GetFields()[pb.FieldRole].GetStringValue())

	ok, err := client.DeleteUser(context.Background(), wrapperspb.String(id))
	require.NoError(t, err)
	assert.True(t, ok.GetValue())

	_, err = client.GetUser(context.Background(), wrapperspb.String(id))
	assert.Equal(t, codes.NotFound, status.Code(err))
	_, err = client.DeleteUser(context.Background(), wrapperspb.String(id))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestGRPCResolver(t *testing.T) {
	repo := newStubRepo()
	client := startServer(t, repo, nil)
	resolver := NewGRPCResolver(client)

	staff := &User{ID: uuid.NewString(), Email: "s@example.com", Role: auth.RoleRetailer, IsActive: true, IsStaff: true}
	inactive := &User{ID: uuid.NewString(), Email: "i@example.com", Role: auth.RoleConsumer}
	require.NoError(t, repo.Create(context.Background(), staff))
	require.NoError(t, repo.Create(context.Background(), inactive))

	id, err := resolver.Resolve(context.Background(), staff.ID)
	require.NoError(t, err)
	assert.Equal(t, staff.Identity(), id)

	_, err = resolver.Resolve(context.Background(), inactive.ID)
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))

	_, err = resolver.Resolve(context.Background(), uuid.NewString())
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", h)
	assert.True(t, CheckPassword(h, "hunter2"))
	assert.False(t, CheckPassword(h, "hunter3"))
}
