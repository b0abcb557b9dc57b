package handlers

import (
	"context"

	"github.com/dmitrijs2005/metakeeper/internal/logging"
	"github.com/dmitrijs2005/metakeeper/internal/server/models"
	"github.com/dmitrijs2005/metakeeper/internal/server/omclient"
)

const (
	EndpointTypeName = "Endpoint"

	ServerEndpointRelationship     = "ServerEndpoint"
	ConnectionEndpointRelationship = "ConnectionEndpoint"
)

type EndpointProperties struct {
	QualifiedName        string            `json:"qualifiedName,omitempty"`
	DisplayName          string            `json:"displayName,omitempty"`
	Description          string            `json:"description,omitempty"`
	NetworkAddress       string            `json:"networkAddress,omitempty"`
	Protocol             string            `json:"protocol,omitempty"`
	EncryptionMethod     string            `json:"encryptionMethod,omitempty"`
	AdditionalProperties map[string]string `json:"additionalProperties,omitempty"`
}

// EndpointHandler manages network endpoints. An anchored endpoint belongs to
// a connection, which sits at end2 of ConnectionEndpoint.
type EndpointHandler struct {
	*ElementHandler[EndpointProperties]
}

func NewEndpointHandler(client omclient.OpenMetadataClient, logger logging.Logger, maxPageSize int) *EndpointHandler {
	h := &EndpointHandler{newElementHandler[EndpointProperties](client, logger, maxPageSize, category{
		typeName:         EndpointTypeName,
		required:         []string{"networkAddress"},
		nameProperties:   []string{qualifiedName, "displayName"},
		searchProperties: []string{qualifiedName, "displayName", "description", "networkAddress"},
		relationships:    []string{ServerEndpointRelationship, ConnectionEndpointRelationship},
		anchor:           ConnectionEndpointRelationship,
		anchorAtEnd2:     true,
	})}
	h.ops = map[string]operation{
		"by-network-address": func(ctx context.Context, userID string, a OperationArgs) (*OperationResult, error) {
			return elementsResult(h.GetByNetworkAddress(ctx, userID, a.Value, a.Options))
		},
	}
	return h
}

// GetByNetworkAddress returns endpoints whose networkAddress equals address.
func (h *EndpointHandler) GetByNetworkAddress(ctx context.Context, userID, address string,
	opts models.SearchOptions) ([]*Element[EndpointProperties], error) {

	op := "getEndpointsByNetworkAddress"
	if err := requireParams(op, "userID", userID, "networkAddress", address); err != nil {
		return nil, err
	}
	return typedList[EndpointProperties](h.byValue(ctx, op, userID, []string{"networkAddress"}, address, opts))
}
