package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/hybridrag"
	"github.com/soundprediction/hybridrag/pkg/server/dto"
	"github.com/soundprediction/hybridrag/pkg/types"
)

// GraphHandler handles graph browsing and catalog administration
type GraphHandler struct {
	client hybridrag.HybridRAG
	logger *slog.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(client hybridrag.HybridRAG, logger *slog.Logger) *GraphHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GraphHandler{client: client, logger: logger}
}

// Neighborhood handles GET /api/v1/nodes/:name/graph
func (h *GraphHandler) Neighborhood(c *gin.Context) {
	name := c.Param("name")

	edges, err := h.client.Neighborhood(c.Request.Context(), name)
	if err != nil {
		writeBackendError(c, h.logger, err)
		return
	}
	if edges == nil {
		edges = []types.EdgeTriple{}
	}

	c.JSON(http.StatusOK, dto.NeighborhoodResponse{Node: name, Results: edges, Total: len(edges)})
}

// Topics handles GET /api/v1/topics
func (h *GraphHandler) Topics(c *gin.Context) {
	topics, err := h.client.Topics(c.Request.Context())
	if err != nil {
		writeBackendError(c, h.logger, err)
		return
	}
	if topics == nil {
		topics = []string{}
	}

	c.JSON(http.StatusOK, dto.TopicsResponse{Topics: topics})
}

// TopicNodes handles GET /api/v1/topics/:topic/nodes
func (h *GraphHandler) TopicNodes(c *gin.Context) {
	topic := c.Param("topic")

	nodes, err := h.client.NodesByTopic(c.Request.Context(), topic)
	if err != nil {
		writeBackendError(c, h.logger, err)
		return
	}
	if nodes == nil {
		nodes = []string{}
	}

	c.JSON(http.StatusOK, dto.TopicNodesResponse{Topic: topic, Nodes: nodes})
}

// RefreshCatalog handles POST /api/v1/catalog/refresh
func (h *GraphHandler) RefreshCatalog(c *gin.Context) {
	size, err := h.client.RefreshCatalog(c.Request.Context())
	if err != nil {
		writeBackendError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.CatalogResponse{Size: size})
}
