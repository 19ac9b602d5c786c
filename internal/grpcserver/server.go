package grpcserver

import (
	"context"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"biodex/internal/explore"
	"biodex/internal/imagery"
	"biodex/internal/query"
)

type Server struct {
	Explorer *explore.Explorer
	Images   *imagery.Resolver
	Builder  query.Builder
}

var _ ExploreServiceServer = (*Server)(nil)

func NewServer(e *explore.Explorer, images *imagery.Resolver, b query.Builder) *Server {
	return &Server{Explorer: e, Images: images, Builder: b}
}

func (s *Server) Explore(ctx context.Context, req *ExploreRequest) (*ExploreResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request required")
	}

	var spec query.Spec
	switch {
	case strings.TrimSpace(req.Hotspot) != "":
		var ok bool
		spec, ok = s.Builder.Hotspot(req.Hotspot)
		if !ok {
			return nil, status.Error(codes.NotFound, "unknown hotspot")
		}
	case req.Latitude != nil || req.Longitude != nil:
		if req.Latitude == nil || req.Longitude == nil {
			return nil, status.Error(codes.InvalidArgument, "latitude and longitude go together")
		}
		spec = s.Builder.Coordinates(*req.Latitude, *req.Longitude)
	default:
		spec = s.Builder.Text(req.Query)
	}

	items := s.Explorer.Explore(ctx, spec)
	resp := &ExploreResponse{Items: items, Total: len(items)}
	if resp.Total == 0 {
		resp.Message = "nothing found, try another query"
	}
	return resp, nil
}

func (s *Server) ListHotspots(context.Context, *ListHotspotsRequest) (*ListHotspotsResponse, error) {
	return &ListHotspotsResponse{Items: query.Hotspots()}, nil
}

func (s *Server) ResolveImage(ctx context.Context, req *ResolveImageRequest) (*ResolveImageResponse, error) {
	if req == nil || strings.TrimSpace(req.Name) == "" {
		return nil, status.Error(codes.InvalidArgument, "name required")
	}
	if s.Images == nil {
		return nil, status.Error(codes.Unavailable, "image resolver not configured")
	}
	u, src := s.Images.ResolveSource(ctx, strings.TrimSpace(req.Name), req.ID)
	return &ResolveImageResponse{URL: u, Source: src}, nil
}
