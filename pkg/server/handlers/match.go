package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/librimatch/librimatch"
	"github.com/librimatch/librimatch/pkg/nlp"
	"github.com/librimatch/librimatch/pkg/server/dto"
)

// MatchHandler handles book match requests
type MatchHandler struct {
	matcher librimatch.Matcher
}

// NewMatchHandler creates a new match handler
func NewMatchHandler(matcher librimatch.Matcher) *MatchHandler {
	return &MatchHandler{
		matcher: matcher,
	}
}

// Match handles GET /api/v1/match?query=&model=&temperature=
func (h *MatchHandler) Match(c *gin.Context) {
	query := c.Query("query")
	if strings.TrimSpace(query) == "" {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Message: "query parameter is required",
		})
		return
	}

	opts, err := parseRequestOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Message: "invalid request parameters",
			Error:   err.Error(),
		})
		return
	}

	matches, err := h.matcher.FindMatches(c.Request.Context(), query, opts)
	if err != nil {
		switch {
		case errors.Is(err, librimatch.ErrLLMUnavailable):
			c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
				Message: "LLM service unavailable",
				Error:   err.Error(),
			})
		case errors.Is(err, librimatch.ErrCatalogUnavailable):
			c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
				Message: "OpenLibrary service unavailable",
				Error:   err.Error(),
			})
		default:
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
				Message: "An unexpected error occurred",
				Error:   err.Error(),
			})
		}
		return
	}

	if len(matches) == 0 {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Message: "No book matches found for the given query",
		})
		return
	}

	c.JSON(http.StatusOK, dto.MatchResponse{
		Matches: dto.FromBookMatches(matches),
	})
}

// parseRequestOptions reads the optional model and temperature parameters.
func parseRequestOptions(c *gin.Context) (*librimatch.RequestOptions, error) {
	opts := &librimatch.RequestOptions{}

	if modelParam := c.Query("model"); modelParam != "" {
		model, err := nlp.ParseModel(modelParam)
		if err != nil {
			return nil, err
		}
		opts.Model = &model
	}

	if tempParam := c.Query("temperature"); tempParam != "" {
		temperature, err := strconv.ParseFloat(tempParam, 32)
		if err != nil {
			return nil, errors.New("temperature must be a number")
		}
		if temperature < 0 || temperature > 1 {
			return nil, errors.New("temperature must be between 0.0 and 1.0")
		}
		t := float32(temperature)
		opts.Temperature = &t
	}

	if opts.Model == nil && opts.Temperature == nil {
		return nil, nil
	}
	return opts, nil
}
