package api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "metakeeper.v1.MetadataService"

const (
	MethodPing               = "Ping"
	MethodCreateElement      = "CreateElement"
	MethodUpdateElement      = "UpdateElement"
	MethodDeleteElement      = "DeleteElement"
	MethodGetElement         = "GetElement"
	MethodGetElementsByName  = "GetElementsByName"
	MethodFindElements       = "FindElements"
	MethodLinkElements       = "LinkElements"
	MethodDetachElements     = "DetachElements"
	MethodGetRelatedElements = "GetRelatedElements"
	MethodListCategories     = "ListCategories"
	MethodInvokeOperation    = "InvokeOperation"
)

// FullMethod returns the gRPC method path, e.g. "/metakeeper.v1.MetadataService/Ping".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

type MetadataServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	CreateElement(context.Context, *CreateElementRequest) (*CreateElementResponse, error)
	UpdateElement(context.Context, *UpdateElementRequest) (*UpdateElementResponse, error)
	DeleteElement(context.Context, *DeleteElementRequest) (*DeleteElementResponse, error)
	GetElement(context.Context, *GetElementRequest) (*GetElementResponse, error)
	GetElementsByName(context.Context, *GetElementsByNameRequest) (*ElementsResponse, error)
	FindElements(context.Context, *FindElementsRequest) (*ElementsResponse, error)
	LinkElements(context.Context, *LinkElementsRequest) (*LinkElementsResponse, error)
	DetachElements(context.Context, *DetachElementsRequest) (*DetachElementsResponse, error)
	GetRelatedElements(context.Context, *GetRelatedElementsRequest) (*GetRelatedElementsResponse, error)
	ListCategories(context.Context, *ListCategoriesRequest) (*ListCategoriesResponse, error)
	InvokeOperation(context.Context, *InvokeOperationRequest) (*InvokeOperationResponse, error)
}

// UnimplementedMetadataServiceServer answers every RPC with Unimplemented.
// Embed it to satisfy MetadataServiceServer partially.
type UnimplementedMetadataServiceServer struct{}

func unimplemented(method string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", method)
}

func (UnimplementedMetadataServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, unimplemented(MethodPing)
}
func (UnimplementedMetadataServiceServer) CreateElement(context.Context, *CreateElementRequest) (*CreateElementResponse, error) {
	return nil, unimplemented(MethodCreateElement)
}
func (UnimplementedMetadataServiceServer) UpdateElement(context.Context, *UpdateElementRequest) (*UpdateElementResponse, error) {
	return nil, unimplemented(MethodUpdateElement)
}
func (UnimplementedMetadataServiceServer) DeleteElement(context.Context, *DeleteElementRequest) (*DeleteElementResponse, error) {
	return nil, unimplemented(MethodDeleteElement)
}
func (UnimplementedMetadataServiceServer) GetElement(context.Context, *GetElementRequest) (*GetElementResponse, error) {
	return nil, unimplemented(MethodGetElement)
}
func (UnimplementedMetadataServiceServer) GetElementsByName(context.Context, *GetElementsByNameRequest) (*ElementsResponse, error) {
	return nil, unimplemented(MethodGetElementsByName)
}
func (UnimplementedMetadataServiceServer) FindElements(context.Context, *FindElementsRequest) (*ElementsResponse, error) {
	return nil, unimplemented(MethodFindElements)
}
func (UnimplementedMetadataServiceServer) LinkElements(context.Context, *LinkElementsRequest) (*LinkElementsResponse, error) {
	return nil, unimplemented(MethodLinkElements)
}
func (UnimplementedMetadataServiceServer) DetachElements(context.Context, *DetachElementsRequest) (*DetachElementsResponse, error) {
	return nil, unimplemented(MethodDetachElements)
}
func (UnimplementedMetadataServiceServer) GetRelatedElements(context.Context, *GetRelatedElementsRequest) (*GetRelatedElementsResponse, error) {
	return nil, unimplemented(MethodGetRelatedElements)
}
func (UnimplementedMetadataServiceServer) ListCategories(context.Context, *ListCategoriesRequest) (*ListCategoriesResponse, error) {
	return nil, unimplemented(MethodListCategories)
}
func (UnimplementedMetadataServiceServer) InvokeOperation(context.Context, *InvokeOperationRequest) (*InvokeOperationResponse, error) {
	return nil, unimplemented(MethodInvokeOperation)
}

// unary adapts a typed server method to a grpc.MethodHandler.
func unary[Req, Resp any](method string,
	call func(MetadataServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {

	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MetadataServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(MetadataServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MetadataServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodPing, Handler: unary(MethodPing, MetadataServiceServer.Ping)},
		{MethodName: MethodCreateElement, Handler: unary(MethodCreateElement, MetadataServiceServer.CreateElement)},
		{MethodName: MethodUpdateElement, Handler: unary(MethodUpdateElement, MetadataServiceServer.UpdateElement)},
		{MethodName: MethodDeleteElement, Handler: unary(MethodDeleteElement, MetadataServiceServer.DeleteElement)},
		{MethodName: MethodGetElement, Handler: unary(MethodGetElement, MetadataServiceServer.GetElement)},
		{MethodName: MethodGetElementsByName, Handler: unary(MethodGetElementsByName, MetadataServiceServer.GetElementsByName)},
		{MethodName: MethodFindElements, Handler: unary(MethodFindElements, MetadataServiceServer.FindElements)},
		{MethodName: MethodLinkElements, Handler: unary(MethodLinkElements, MetadataServiceServer.LinkElements)},
		{MethodName: MethodDetachElements, Handler: unary(MethodDetachElements, MetadataServiceServer.DetachElements)},
		{MethodName: MethodGetRelatedElements, Handler: unary(MethodGetRelatedElements, MetadataServiceServer.GetRelatedElements)},
		{MethodName: MethodListCategories, Handler: unary(MethodListCategories, MetadataServiceServer.ListCategories)},
		{MethodName: MethodInvokeOperation, Handler: unary(MethodInvokeOperation, MetadataServiceServer.InvokeOperation)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "metakeeper/v1/metadata.json",
}

func RegisterMetadataServiceServer(s grpc.ServiceRegistrar, srv MetadataServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type MetadataServiceClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	CreateElement(ctx context.Context, in *CreateElementRequest, opts ...grpc.CallOption) (*CreateElementResponse, error)
	UpdateElement(ctx context.Context, in *UpdateElementRequest, opts ...grpc.CallOption) (*UpdateElementResponse, error)
	DeleteElement(ctx context.Context, in *DeleteElementRequest, opts ...grpc.CallOption) (*DeleteElementResponse, error)
	GetElement(ctx context.Context, in *GetElementRequest, opts ...grpc.CallOption) (*GetElementResponse, error)
	GetElementsByName(ctx context.Context, in *GetElementsByNameRequest, opts ...grpc.CallOption) (*ElementsResponse, error)
	FindElements(ctx context.Context, in *FindElementsRequest, opts ...grpc.CallOption) (*ElementsResponse, error)
	LinkElements(ctx context.Context, in *LinkElementsRequest, opts ...grpc.CallOption) (*LinkElementsResponse, error)
	DetachElements(ctx context.Context, in *DetachElementsRequest, opts ...grpc.CallOption) (*DetachElementsResponse, error)
	GetRelatedElements(ctx context.Context, in *GetRelatedElementsRequest, opts ...grpc.CallOption) (*GetRelatedElementsResponse, error)
	ListCategories(ctx context.Context, in *ListCategoriesRequest, opts ...grpc.CallOption) (*ListCategoriesResponse, error)
	InvokeOperation(ctx context.Context, in *InvokeOperationRequest, opts ...grpc.CallOption) (*InvokeOperationResponse, error)
}

type metadataServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewMetadataServiceClient returns a client that always speaks the JSON
// codec, whatever the connection's defaults are.
func NewMetadataServiceClient(cc grpc.ClientConnInterface) MetadataServiceClient {
	return &metadataServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any,
	opts []grpc.CallOption) (*Resp, error) {

	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *metadataServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *metadataServiceClient) CreateElement(ctx context.Context, in *CreateElementRequest, opts ...grpc.CallOption) (*CreateElementResponse, error) {
	return invoke[CreateElementResponse](ctx, c.cc, MethodCreateElement, in, opts)
}

func (c *metadataServiceClient) UpdateElement(ctx context.Context, in *UpdateElementRequest, opts ...grpc.CallOption) (*UpdateElementResponse, error) {
	return invoke[UpdateElementResponse](ctx, c.cc, MethodUpdateElement, in, opts)
}

func (c *metadataServiceClient) DeleteElement(ctx context.Context, in *DeleteElementRequest, opts ...grpc.CallOption) (*DeleteElementResponse, error) {
	return invoke[DeleteElementResponse](ctx, c.cc, MethodDeleteElement, in, opts)
}

func (c *metadataServiceClient) GetElement(ctx context.Context, in *GetElementRequest, opts ...grpc.CallOption) (*GetElementResponse, error) {
	return invoke[GetElementResponse](ctx, c.cc, MethodGetElement, in, opts)
}

func (c *metadataServiceClient) GetElementsByName(ctx context.Context, in *GetElementsByNameRequest, opts ...grpc.CallOption) (*ElementsResponse, error) {
	return invoke[ElementsResponse](ctx, c.cc, MethodGetElementsByName, in, opts)
}

func (c *metadataServiceClient) FindElements(ctx context.Context, in *FindElementsRequest, opts ...grpc.CallOption) (*ElementsResponse, error) {
	return invoke[ElementsResponse](ctx, c.cc, MethodFindElements, in, opts)
}

func (c *metadataServiceClient) LinkElements(ctx context.Context, in *LinkElementsRequest, opts ...grpc.CallOption) (*LinkElementsResponse, error) {
	return invoke[LinkElementsResponse](ctx, c.cc, MethodLinkElements, in, opts)
}

func (c *metadataServiceClient) DetachElements(ctx context.Context, in *DetachElementsRequest, opts ...grpc.CallOption) (*DetachElementsResponse, error) {
	return invoke[DetachElementsResponse](ctx, c.cc, MethodDetachElements, in, opts)
}

func (c *metadataServiceClient) GetRelatedElements(ctx context.Context, in *GetRelatedElementsRequest, opts ...grpc.CallOption) (*GetRelatedElementsResponse, error) {
	return invoke[GetRelatedElementsResponse](ctx, c.cc, MethodGetRelatedElements, in, opts)
}

func (c *metadataServiceClient) ListCategories(ctx context.Context, in *ListCategoriesRequest, opts ...grpc.CallOption) (*ListCategoriesResponse, error) {
	return invoke[ListCategoriesResponse](ctx, c.cc, MethodListCategories, in, opts)
}

func (c *metadataServiceClient) InvokeOperation(ctx context.Context, in *InvokeOperationRequest, opts ...grpc.CallOption) (*InvokeOperationResponse, error) {
	return invoke[InvokeOperationResponse](ctx, c.cc, MethodInvokeOperation, in, opts)
}
