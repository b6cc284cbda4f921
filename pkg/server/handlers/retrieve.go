package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/hybridrag"
	"github.com/soundprediction/hybridrag/pkg/server/dto"
	"github.com/soundprediction/hybridrag/pkg/types"
)

// RetrieveHandler handles retrieval requests
type RetrieveHandler struct {
	client hybridrag.HybridRAG
	logger *slog.Logger
}

// NewRetrieveHandler creates a new retrieve handler
func NewRetrieveHandler(client hybridrag.HybridRAG, logger *slog.Logger) *RetrieveHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetrieveHandler{client: client, logger: logger}
}

// Retrieve handles POST /api/v1/retrieve
func (h *RetrieveHandler) Retrieve(c *gin.Context) {
	var req dto.RetrieveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.client.Retrieve(c.Request.Context(), req.Query, req.TopK)
	if err != nil {
		writeBackendError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewRetrieveResponse(result))
}

// Suggest handles POST /api/v1/suggest
func (h *RetrieveHandler) Suggest(c *gin.Context) {
	var req dto.SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	suggestions, err := h.client.Suggest(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		writeBackendError(c, h.logger, err)
		return
	}
	if suggestions == nil {
		suggestions = []types.Suggestion{}
	}

	c.JSON(http.StatusOK, dto.SuggestResponse{Query: req.Query, Suggestions: suggestions})
}

// Lookup handles POST /api/v1/lookup. It always answers 200 with an outcome
// unless the request body itself is malformed.
func (h *RetrieveHandler) Lookup(c *gin.Context) {
	var req dto.RetrieveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	c.JSON(http.StatusOK, h.client.Lookup(c.Request.Context(), req.Query, req.TopK))
}
