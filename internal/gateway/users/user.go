package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"service-parcel-tracking/internal/domain"
)

// Full method names exposed by the user-account service.
const (
	MethodGetByID    = "/users.v1.UserService/GetUserByID"
	MethodGetByEmail = "/users.v1.UserService/GetUserByEmail"
)

// Dial opens a plaintext client connection to the user-account service.
func Dial(addr string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("users gateway: dial %s: %w", addr, err)
	}
	return conn, nil
}

// GRPCGateway is a user directory backed by gRPC.
// Requests and replies are google.protobuf.Struct messages.
type GRPCGateway struct {
	conn grpc.ClientConnInterface
}

// NewGRPCGateway creates a user directory backed by gRPC.
func NewGRPCGateway(conn grpc.ClientConnInterface) *GRPCGateway {
	if conn == nil {
		return nil
	}
	return &GRPCGateway{conn: conn}
}

// GetByID fetches a user by id. Unknown users are (nil, nil).
func (g *GRPCGateway) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return g.fetch(ctx, MethodGetByID, map[string]any{"id": id.String()})
}

// GetByEmail fetches a user by email. Unknown users are (nil, nil).
func (g *GRPCGateway) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return g.fetch(ctx, MethodGetByEmail, map[string]any{"email": strings.ToLower(email)})
}

func (g *GRPCGateway) fetch(ctx context.Context, method string, req map[string]any) (*domain.User, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, fmt.Errorf("users gateway: build request: %w", err)
	}
	out := &structpb.Struct{}
	if err := g.conn.Invoke(ctx, method, in, out); err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("users gateway: %s: %w", method, err)
	}
	raw, ok := out.GetFields()["user"]
	if !ok || raw.GetStructValue() == nil {
		return nil, nil
	}
	u, err := mapUser(raw.GetStructValue())
	if err != nil {
		return nil, fmt.Errorf("users gateway: %s: %w", method, err)
	}
	return u, nil
}

func mapUser(s *structpb.Struct) (*domain.User, error) {
	f := s.GetFields()
	id, err := uuid.Parse(f["id"].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("bad user id %q: %w", f["id"].GetStringValue(), err)
	}
	return &domain.User{
		ID:             id,
		Email:          f["email"].GetStringValue(),
		Name:           f["name"].GetStringValue(),
		Phone:          optString(f["phone"]),
		DefaultAddress: optString(f["default_address"]),
		Role:           domain.Role(f["role"].GetStringValue()),
		IsVerified:     f["is_verified"].GetBoolValue(),
		Activity:       domain.Activity(f["activity"].GetStringValue()),
		IsDeleted:      f["is_deleted"].GetBoolValue(),
	}, nil
}

func optString(v *structpb.Value) *string {
	if v == nil {
		return nil
	}
	if _, ok := v.GetKind().(*structpb.Value_StringValue); !ok {
		return nil
	}
	s := v.GetStringValue()
	return &s
}
