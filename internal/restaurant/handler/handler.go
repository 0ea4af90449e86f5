package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/travelapp/restaurants/backend/go-services/internal/database"
	"github.com/travelapp/restaurants/backend/go-services/internal/restaurant"
	"github.com/travelapp/restaurants/backend/go-services/internal/restaurant/service"
	"github.com/travelapp/restaurants/backend/go-services/pkg/logger"
	"github.com/travelapp/restaurants/backend/go-services/pkg/metrics"
)

const (
	// RestaurantPath is the route for the id-scoped operations.
	RestaurantPath = "/Restaurant/id/:restaurantId"

	// UpdateStatusHeader explains a 304, which cannot carry a body.
	UpdateStatusHeader = "X-Restaurant-Update"

	allowedMethods = "GET, PATCH, DELETE"
	genericFailure = "An error occurred, please check the function log"
)

// Options tunes request handling. Zero values fall back to defaults.
type Options struct {
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

type Handler struct {
	svc  service.Service
	opts Options
}

func New(svc service.Service, opts Options) *Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}
	return &Handler{svc: svc, opts: opts}
}

// RegisterRoutes mounts the create endpoint at "/" and the id-scoped endpoint
// on every method so unsupported ones get an explicit 405.
func RegisterRoutes(r gin.IRouter, svc service.Service, opts Options) {
	h := New(svc, opts)
	r.POST("/", h.Create)
	r.Any(RestaurantPath, h.Restaurant)
}

func (h *Handler) context(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.opts.RequestTimeout)
}

func (h *Handler) readBody(c *gin.Context) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errBodyTooLarge
		}
		return nil, fmt.Errorf("%w: %v", restaurant.ErrInvalidDocument, err)
	}
	return body, nil
}

var errBodyTooLarge = errors.New("request body too large")

func observe(op string, start time.Time, c *gin.Context) {
	metrics.Operations.WithLabelValues(op, strconv.Itoa(c.Writer.Status())).Inc()
	metrics.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Create stores the request body as a new restaurant document.
func (h *Handler) Create(c *gin.Context) {
	defer observe("create", time.Now(), c)
	logger.Debug("create restaurant: request received")

	body, err := h.readBody(c)
	if err == nil {
		ctx, cancel := h.context(c)
		defer cancel()
		var id string
		if id, err = h.svc.Create(ctx, body); err == nil {
			c.JSON(http.StatusOK, gin.H{"id": id})
			return
		}
	}

	switch {
	case errors.Is(err, restaurant.ErrInvalidDocument):
		logger.Infof("create restaurant: invalid JSON document: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "the request body is not a valid JSON document"})
	case errors.Is(err, errBodyTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrConfiguration):
		logger.Errorf("create restaurant: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": genericFailure})
	default:
		logger.Errorf("create restaurant: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": genericFailure})
	}
}

// Restaurant dispatches GET/PATCH/DELETE on the restaurantId path parameter.
func (h *Handler) Restaurant(c *gin.Context) {
	id := c.Param("restaurantId")
	switch c.Request.Method {
	case http.MethodGet:
		h.get(c, id)
	case http.MethodPatch:
		h.patch(c, id)
	case http.MethodDelete:
		h.delete(c, id)
	default:
		defer observe("unsupported", time.Now(), c)
		c.Header("Allow", allowedMethods)
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": fmt.Sprintf("method %s is not supported", c.Request.Method)})
	}
}

func (h *Handler) get(c *gin.Context, id string) {
	defer observe("get", time.Now(), c)
	ctx, cancel := h.context(c)
	defer cancel()

	doc, err := h.svc.Get(ctx, id)
	if err != nil {
		h.fail(c, "get", "found", id, err)
		return
	}
	h.writeDocument(c, doc)
}

func (h *Handler) patch(c *gin.Context, id string) {
	defer observe("update", time.Now(), c)

	body, err := h.readBody(c)
	if err == nil {
		ctx, cancel := h.context(c)
		defer cancel()
		err = h.svc.Update(ctx, id, body)
	}
	if err != nil {
		h.fail(c, "update", "updated", id, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"restaurant_id": id, "message": fmt.Sprintf("A restaurant with id %s was updated", id)})
}

func (h *Handler) delete(c *gin.Context, id string) {
	defer observe("delete", time.Now(), c)
	ctx, cancel := h.context(c)
	defer cancel()

	doc, err := h.svc.Delete(ctx, id)
	if err != nil {
		h.fail(c, "delete", "deleted", id, err)
		return
	}
	h.writeDocument(c, doc)
}

func (h *Handler) writeDocument(c *gin.Context, doc restaurant.Document) {
	out, err := restaurant.FormatDocument(doc)
	if err != nil {
		logger.Errorf("render restaurant: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": genericFailure})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", out)
}

// fail maps the error taxonomy onto status codes. verb completes
// "A restaurant with id X could not be ...".
func (h *Handler) fail(c *gin.Context, op, verb, id string, err error) {
	missing := fmt.Sprintf("A restaurant with id %s could not be %s", id, verb)
	switch {
	case errors.Is(err, restaurant.ErrInvalidDocument):
		logger.Infof("%s restaurant %s: invalid JSON document: %v", op, id, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "the request body is not a valid JSON document"})
	case errors.Is(err, restaurant.ErrImmutableField), errors.Is(err, restaurant.ErrInvalidField):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errBodyTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case errors.Is(err, restaurant.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": missing})
	case errors.Is(err, restaurant.ErrNotModified):
		c.Header(UpdateStatusHeader, missing+": the new values match the existing ones")
		c.Status(http.StatusNotModified)
	default:
		// DatabaseError, ErrConfiguration, timeouts: log the detail, return a generic message
		logger.Errorf("%s restaurant %s: %v", op, id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": genericFailure})
	}
}
