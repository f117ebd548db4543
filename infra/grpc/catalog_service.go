package grpc

import (
	"context"
	"database/sql"
	"errors"
	"storefront/app"
	"storefront/domain"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	CatalogServiceName = "catalog.v1.CatalogService"

	getItemMethod    = "/" + CatalogServiceName + "/GetItem"
	countItemsMethod = "/" + CatalogServiceName + "/CountItems"
)

// CatalogServer is the server API for catalog.v1.CatalogService. Messages are protobuf
// well-known types so callers need no generated stubs.
type CatalogServer interface {
	GetItem(ctx context.Context, id *wrapperspb.Int64Value) (*structpb.Struct, error)
	CountItems(ctx context.Context, status *wrapperspb.StringValue) (*wrapperspb.Int64Value, error)
}

var catalogServiceDesc = grpc.ServiceDesc{
	ServiceName: CatalogServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetItem", Handler: getItemHandler},
		{MethodName: "CountItems", Handler: countItemsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/v1/catalog.proto",
}

func RegisterCatalogServer(registrar grpc.ServiceRegistrar, srv CatalogServer) {
	registrar.RegisterService(&catalogServiceDesc, srv)
}

func getItemHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).GetItem(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getItemMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServer).GetItem(ctx, req.(*wrapperspb.Int64Value))
	})
}

func countItemsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CatalogServer).CountItems(ctx, in)
	}

	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: countItemsMethod}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(CatalogServer).CountItems(ctx, req.(*wrapperspb.StringValue))
	})
}

// CatalogClient calls catalog.v1.CatalogService.
type CatalogClient struct {
	cc grpc.ClientConnInterface
}

func NewCatalogClient(cc grpc.ClientConnInterface) *CatalogClient {
	return &CatalogClient{cc: cc}
}

func (c *CatalogClient) GetItem(ctx context.Context, id int64, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getItemMethod, wrapperspb.Int64(id), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CatalogClient) CountItems(ctx context.Context, status string, opts ...grpc.CallOption) (int64, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, countItemsMethod, wrapperspb.String(status), out, opts...); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

// CatalogService answers catalog lookups for other services from the item repository.
type CatalogService struct {
	repository app.Repository
}

func NewCatalogService(repository app.Repository) *CatalogService {
	return &CatalogService{
		repository: repository,
	}
}

func (s *CatalogService) GetItem(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	if req.GetValue() <= 0 {
		return nil, status.Error(codes.InvalidArgument, "item id must be positive")
	}

	item, err := s.repository.GetItem(ctx, req.GetValue())
	if err != nil {
		return nil, mapError(err)
	}

	out, err := structpb.NewStruct(itemFields(item))
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode item")
	}
	return out, nil
}

// CountItems counts items with the given status; empty means active and "all" disables the filter.
func (s *CatalogService) CountItems(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.Int64Value, error) {
	filter := app.ItemFilter{}
	switch req.GetValue() {
	case "", domain.ItemStatusActive:
		filter.Status = domain.ItemStatusActive
	case domain.ItemStatusHidden:
		filter.Status = domain.ItemStatusHidden
	case "all":
	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown status %q", req.GetValue())
	}

	count, err := s.repository.CountItems(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	return wrapperspb.Int64(int64(count)), nil
}

func itemFields(item domain.Item) map[string]any {
	fields := map[string]any{
		"id":          item.ID,
		"title":       item.Title,
		"description": item.Description,
		"price":       item.Price,
		"currency":    item.Currency().StringFixed(2),
		"status":      item.Status,
		"categoryId":  nil,
		"imageUrl":    nil,
		"createdAt":   item.CreatedAt.Format(time.RFC3339),
		"updatedAt":   item.UpdatedAt.Format(time.RFC3339),
	}
	if item.CategoryID != nil {
		fields["categoryId"] = *item.CategoryID
	}
	if item.ImageURL != nil {
		fields["imageUrl"] = *item.ImageURL
	}
	return fields
}

func mapError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return status.Error(codes.NotFound, "item not found")
	}
	return status.Error(codes.Internal, "internal error")
}
