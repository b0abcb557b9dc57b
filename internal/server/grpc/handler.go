package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/metakeeper/internal/api"
	"github.com/dmitrijs2005/metakeeper/internal/common"
	"github.com/dmitrijs2005/metakeeper/internal/server/handlers"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// toStatus converts handler errors to gRPC status errors. Messages of
// internal failures are not passed on.
func toStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorInvalidParameter):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.PermissionDenied, "permission denied")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request cancelled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// resolve returns the caller identity and the handler for category.
func (s *GRPCServer) resolve(ctx context.Context, category string) (string, handlers.CategoryHandler, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return "", nil, err
	}
	h, err := s.categories.Get(category)
	if err != nil {
		return "", nil, toStatus(err)
	}
	return userID, h, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) CreateElement(ctx context.Context, req *api.CreateElementRequest) (*api.CreateElementResponse, error) {
	userID, h, err := s.resolve(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	guid, err := h.CreateJSON(ctx, userID, req.AnchorGUID, req.Properties)
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.CreateElementResponse{GUID: guid}, nil
}

func (s *GRPCServer) UpdateElement(ctx context.Context, req *api.UpdateElementRequest) (*api.UpdateElementResponse, error) {
	userID, h, err := s.resolve(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	if err := h.UpdateJSON(ctx, userID, req.GUID, req.ReplaceAll, req.Properties); err != nil {
		return nil, toStatus(err)
	}

	return &api.UpdateElementResponse{}, nil
}

func (s *GRPCServer) DeleteElement(ctx context.Context, req *api.DeleteElementRequest) (*api.DeleteElementResponse, error) {
	userID, h, err := s.resolve(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	if err := h.Delete(ctx, userID, req.GUID); err != nil {
		return nil, toStatus(err)
	}

	return &api.DeleteElementResponse{}, nil
}

func (s *GRPCServer) GetElement(ctx context.Context, req *api.GetElementRequest) (*api.GetElementResponse, error) {
	userID, h, err := s.resolve(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	e, err := h.GetElement(ctx, userID, req.GUID)
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.GetElementResponse{Element: toAPIElement(e)}, nil
}

func (s *GRPCServer) GetElementsByName(ctx context.Context, req *api.GetElementsByNameRequest) (*api.ElementsResponse, error) {
	userID, h, err := s.resolve(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	found, err := h.GetElementsByName(ctx, userID, req.Name, fromAPIPaging(req.Paging))
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.ElementsResponse{Elements: toAPIElements(found)}, nil
}

func (s *GRPCServer) FindElements(ctx context.Context, req *api.FindElementsRequest) (*api.ElementsResponse, error) {
	userID, h, err := s.resolve(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	found, err := h.FindElements(ctx, userID, req.SearchString, fromAPIPaging(req.Paging))
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.ElementsResponse{Elements: toAPIElements(found)}, nil
}

func (s *GRPCServer) LinkElements(ctx context.Context, req *api.LinkElementsRequest) (*api.LinkElementsResponse, error) {
	userID, h, err := s.resolve(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	guid, err := h.Link(ctx, userID, req.RelationshipType, req.End1GUID, req.End2GUID, req.Properties)
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.LinkElementsResponse{GUID: guid}, nil
}

func (s *GRPCServer) DetachElements(ctx context.Context, req *api.DetachElementsRequest) (*api.DetachElementsResponse, error) {
	userID, h, err := s.resolve(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	if err := h.Detach(ctx, userID, req.RelationshipType, req.End1GUID, req.End2GUID); err != nil {
		return nil, toStatus(err)
	}

	return &api.DetachElementsResponse{}, nil
}

func (s *GRPCServer) GetRelatedElements(ctx context.Context, req *api.GetRelatedElementsRequest) (*api.GetRelatedElementsResponse, error) {
	userID, h, err := s.resolve(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	related, err := h.GetRelated(ctx, userID, req.GUID, req.RelationshipType, fromAPIPaging(req.Paging))
	if err != nil {
		return nil, toStatus(err)
	}

	return &api.GetRelatedElementsResponse{Related: toAPIRelated(related)}, nil
}

func (s *GRPCServer) ListCategories(ctx context.Context, req *api.ListCategoriesRequest) (*api.ListCategoriesResponse, error) {
	names := s.categories.Categories()
	out := make([]*api.Category, 0, len(names))
	for _, name := range names {
		h, err := s.categories.Get(name)
		if err != nil {
			return nil, toStatus(err)
		}
		out = append(out, &api.Category{
			Name:              name,
			TypeName:          h.TypeName(),
			RelationshipTypes: h.RelationshipTypes(),
			Operations:        h.Operations(),
		})
	}
	return &api.ListCategoriesResponse{Categories: out}, nil
}

func (s *GRPCServer) InvokeOperation(ctx context.Context, req *api.InvokeOperationRequest) (*api.InvokeOperationResponse, error) {
	userID, h, err := s.resolve(ctx, req.Category)
	if err != nil {
		return nil, err
	}

	res, err := h.Invoke(ctx, userID, req.Operation, handlers.OperationArgs{
		GUID:        req.GUID,
		OtherGUID:   req.OtherGUID,
		Value:       req.Value,
		Description: req.Description,
		Options:     fromAPIPaging(req.Paging),
	})
	if err != nil {
		return nil, toStatus(err)
	}

	out := &api.InvokeOperationResponse{RelationshipGUID: res.RelationshipGUID}
	if res.Elements != nil {
		out.Elements = toAPIElements(res.Elements)
	}
	if res.Related != nil {
		out.Related = toAPIRelated(res.Related)
	}
	return out, nil
}
