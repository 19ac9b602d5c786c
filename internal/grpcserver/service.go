package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"biodex/pkg/models"
)

const serviceName = "biodex.ExploreService"

type ExploreRequest struct {
	Hotspot   string   `json:"hotspot,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Query     string   `json:"q,omitempty"`
}

type ExploreResponse struct {
	Items   []models.AnimalRecord `json:"items"`
	Total   int                   `json:"total"`
	Message string                `json:"message,omitempty"`
}

type ListHotspotsRequest struct{}

type ListHotspotsResponse struct {
	Items []models.RegionHotspot `json:"items"`
}

type ResolveImageRequest struct {
	Name string `json:"name"`
	ID   string `json:"id,omitempty"`
}

type ResolveImageResponse struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// ExploreServiceServer is implemented by Server.
type ExploreServiceServer interface {
	Explore(context.Context, *ExploreRequest) (*ExploreResponse, error)
	ListHotspots(context.Context, *ListHotspotsRequest) (*ListHotspotsResponse, error)
	ResolveImage(context.Context, *ResolveImageRequest) (*ResolveImageResponse, error)
}

func RegisterExploreServiceServer(s grpc.ServiceRegistrar, srv ExploreServiceServer) {
	s.RegisterService(&ExploreServiceDesc, srv)
}

var ExploreServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ExploreServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Explore", Handler: exploreHandler},
		{MethodName: "ListHotspots", Handler: listHotspotsHandler},
		{MethodName: "ResolveImage", Handler: resolveImageHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "biodex/explore",
}

func exploreHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ExploreRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExploreServiceServer).Explore(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Explore"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ExploreServiceServer).Explore(ctx, req.(*ExploreRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listHotspotsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListHotspotsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExploreServiceServer).ListHotspots(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/ListHotspots"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ExploreServiceServer).ListHotspots(ctx, req.(*ListHotspotsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func resolveImageHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ResolveImageRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExploreServiceServer).ResolveImage(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/ResolveImage"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ExploreServiceServer).ResolveImage(ctx, req.(*ResolveImageRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// Client calls ExploreService over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) Explore(ctx context.Context, in *ExploreRequest, opts ...grpc.CallOption) (*ExploreResponse, error) {
	out := new(ExploreResponse)
	if err := c.invoke(ctx, "Explore", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListHotspots(ctx context.Context, opts ...grpc.CallOption) (*ListHotspotsResponse, error) {
	out := new(ListHotspotsResponse)
	if err := c.invoke(ctx, "ListHotspots", &ListHotspotsRequest{}, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ResolveImage(ctx context.Context, in *ResolveImageRequest, opts ...grpc.CallOption) (*ResolveImageResponse, error) {
	out := new(ResolveImageResponse)
	if err := c.invoke(ctx, "ResolveImage", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, opts...)
}
