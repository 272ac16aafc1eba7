// Package rpc describes the engine microservice. Messages are
// google.protobuf.Struct values carrying the JSON form of the game types, so
// the service needs no generated code.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"go_arena/internal/domain/game"
)

const (
	ServiceName        = "engine.EngineService"
	GenerateMoveMethod = "/engine.EngineService/GenerateMove"
)

type EngineServiceServer interface {
	GenerateMove(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

type EngineServiceClient interface {
	GenerateMove(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

var EngineServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EngineServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GenerateMove", Handler: generateMoveHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "engine.proto",
}

func RegisterEngineServiceServer(s grpc.ServiceRegistrar, srv EngineServiceServer) {
	s.RegisterService(&EngineServiceDesc, srv)
}

func generateMoveHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(EngineServiceServer).GenerateMove(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GenerateMoveMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(EngineServiceServer).GenerateMove(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type engineServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewEngineServiceClient(cc grpc.ClientConnInterface) EngineServiceClient {
	return &engineServiceClient{cc: cc}
}

func (c *engineServiceClient) GenerateMove(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GenerateMoveMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func RequestToStruct(req game.SelectMoveRequest) (*structpb.Struct, error) {
	return toStruct(req)
}

func RequestFromStruct(s *structpb.Struct) (game.SelectMoveRequest, error) {
	var req game.SelectMoveRequest
	err := fromStruct(s, &req)
	return req, err
}

func ResponseToStruct(resp game.BotResponse) (*structpb.Struct, error) {
	return toStruct(resp)
}

func ResponseFromStruct(s *structpb.Struct) (game.BotResponse, error) {
	var resp game.BotResponse
	err := fromStruct(s, &resp)
	return resp, err
}

func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	return structpb.NewStruct(fields)
}

func fromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		return fmt.Errorf("empty message")
	}
	data, err := json.Marshal(s.AsMap())
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
