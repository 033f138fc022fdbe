package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"finsight/services/post/internal/entity"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// writeError maps domain errors onto HTTP statuses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entity.ErrNoSession):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrInvalidSlug),
		errors.Is(err, entity.ErrReservedSlug),
		errors.Is(err, entity.ErrMediaConflict),
		errors.Is(err, entity.ErrInvalidDate),
		errors.Is(err, entity.ErrMissingField),
		errors.Is(err, entity.ErrNotAnImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrSlugTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrNoMediaStore):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// bindStrictJSON decodes the body rejecting unknown fields, then runs the
// struct's binding validators.
func bindStrictJSON(c *gin.Context, obj interface{}) error {
	if c.Request.Body == nil {
		return errors.New("request body is required")
	}

	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(obj); err != nil {
		return err
	}
	if decoder.More() {
		return errors.New("request body must contain a single JSON object")
	}

	return binding.Validator.ValidateStruct(obj)
}
