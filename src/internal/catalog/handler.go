package catalog

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"showroom-presence-svc/src/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handler interface {
	GetProducts(c *gin.Context)
	GetCart(c *gin.Context)
	AddToCart(c *gin.Context)
	RemoveFromCart(c *gin.Context)
	UpdateTimers(c *gin.Context)
}

type handler struct {
	service Service
}

func NewHandler(service Service) Handler {
	return &handler{service: service}
}

func (h *handler) GetProducts(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Products())
}

func (h *handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Cart())
}

func (h *handler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Invalid add to cart payload")
		h.sendErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.ProductID == 0 || req.Price == nil {
		h.sendErrorResponse(c, http.StatusBadRequest, "Product ID or price not provided")
		return
	}

	price, err := parsePrice(req.Price)
	if err != nil {
		h.sendErrorResponse(c, http.StatusBadRequest, "Price must be a valid number")
		return
	}

	cart, err := h.service.AddToCart(req.ProductID, price)
	if err != nil {
		h.handleCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product added to cart",
		"cart":    cart,
	})
}

func (h *handler) RemoveFromCart(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.sendErrorResponse(c, http.StatusNotFound, "Cart index must be an integer")
		return
	}

	cart, err := h.service.RemoveFromCart(index)
	if err != nil {
		h.handleCartError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Product removed",
		"cart":    cart,
	})
}

func (h *handler) UpdateTimers(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.TickTimers())
}

func (h *handler) handleCartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrProductNotFound):
		h.sendErrorResponse(c, http.StatusNotFound, "Product not found")
	case errors.Is(err, models.ErrInvalidPrice):
		h.sendErrorResponse(c, http.StatusBadRequest, "Price must be greater than 0")
	case errors.Is(err, models.ErrAuctionEnded):
		h.sendErrorResponse(c, http.StatusBadRequest, "The auction has ended")
	case errors.Is(err, models.ErrInvalidCartIndex):
		h.sendErrorResponse(c, http.StatusBadRequest, "Invalid index")
	default:
		logrus.WithError(err).Error("Cart operation failed")
		h.sendErrorResponse(c, http.StatusInternalServerError, err.Error())
	}
}

func (h *handler) sendErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error": message,
	})
}

func parsePrice(raw interface{}) (float64, error) {
	var price float64
	switch v := raw.(type) {
	case float64:
		price = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, err
		}
		price = parsed
	default:
		return 0, fmt.Errorf("unsupported price type %T", raw)
	}

	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("price %v is not a finite number", price)
	}
	return price, nil
}
