package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/metakeeper/internal/api"
	"github.com/dmitrijs2005/metakeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      api.MetadataServiceClient

	mu          sync.RWMutex
	accessToken string
}

var _ Client = (*GRPCClient)(nil)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewMetadataClient dials endpointURL lazily; the first RPC establishes the
// connection. timeout bounds every call, zero means no limit.
func NewMetadataClient(endpointURL, accessToken string, timeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken, timeout: timeout}
	if err := c.InitGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, dialOpts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewMetadataServiceClient(conn)
	return nil
}

func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

func (s *GRPCClient) token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) ListCategories(ctx context.Context) ([]*api.Category, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.ListCategories(ctx, &api.ListCategoriesRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Categories, nil
}

func (s *GRPCClient) Create(ctx context.Context, category, anchorGUID string, props map[string]any) (string, error) {
	raw, err := json.Marshal(props)
	if err != nil {
		return "", fmt.Errorf("encode properties: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.CreateElement(ctx, &api.CreateElementRequest{Category: category, AnchorGUID: anchorGUID, Properties: raw})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.GUID, nil
}

func (s *GRPCClient) Update(ctx context.Context, category, guid string, replaceAll bool, props map[string]any) error {
	raw, err := json.Marshal(props)
	if err != nil {
		return fmt.Errorf("encode properties: %w", err)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err = s.client.UpdateElement(ctx, &api.UpdateElementRequest{Category: category, GUID: guid, ReplaceAll: replaceAll, Properties: raw})
	return s.mapError(err)
}

func (s *GRPCClient) Delete(ctx context.Context, category, guid string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.DeleteElement(ctx, &api.DeleteElementRequest{Category: category, GUID: guid})
	return s.mapError(err)
}

func (s *GRPCClient) Get(ctx context.Context, category, guid string) (*api.Element, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.GetElement(ctx, &api.GetElementRequest{Category: category, GUID: guid})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Element, nil
}

func (s *GRPCClient) GetByName(ctx context.Context, category, name string, paging api.SearchOptions) ([]*api.Element, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.GetElementsByName(ctx, &api.GetElementsByNameRequest{Category: category, Name: name, Paging: paging})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Elements, nil
}

func (s *GRPCClient) Find(ctx context.Context, category, search string, paging api.SearchOptions) ([]*api.Element, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.FindElements(ctx, &api.FindElementsRequest{Category: category, SearchString: search, Paging: paging})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Elements, nil
}

func (s *GRPCClient) Link(ctx context.Context, category, relationshipType, end1GUID, end2GUID string, props map[string]any) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.LinkElements(ctx, &api.LinkElementsRequest{
		Category:         category,
		RelationshipType: relationshipType,
		End1GUID:         end1GUID,
		End2GUID:         end2GUID,
		Properties:       props,
	})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.GUID, nil
}

func (s *GRPCClient) Detach(ctx context.Context, category, relationshipType, end1GUID, end2GUID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.DetachElements(ctx, &api.DetachElementsRequest{
		Category:         category,
		RelationshipType: relationshipType,
		End1GUID:         end1GUID,
		End2GUID:         end2GUID,
	})
	return s.mapError(err)
}

func (s *GRPCClient) GetRelated(ctx context.Context, category, guid, relationshipType string, paging api.SearchOptions) ([]*api.RelatedElement, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.GetRelatedElements(ctx, &api.GetRelatedElementsRequest{
		Category:         category,
		GUID:             guid,
		RelationshipType: relationshipType,
		Paging:           paging,
	})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Related, nil
}

func (s *GRPCClient) Invoke(ctx context.Context, req *api.InvokeOperationRequest) (*api.InvokeOperationResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.InvokeOperation(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.NotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, st.Message())
	case codes.AlreadyExists:
		return fmt.Errorf("%w: %s", ErrAlreadyExists, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrInvalidRequest, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
