package fakeapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"allowance-client/internal/domain"
)

const (
	msgRequired = "This field is required."
	msgParse    = "JSON parse error"
)

// fieldErrors acumula errores por campo con la forma {"campo": ["msg"]}.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, msg string) {
	f[field] = append(f[field], msg)
}

// Handler mantiene dependencias para los endpoints de la API.
type Handler struct {
	logger  *zap.Logger
	backend *Backend
	tokens  *TokenService
}

func NewHandler(logger *zap.Logger, backend *Backend, tokens *TokenService) *Handler {
	return &Handler{logger: logger, backend: backend, tokens: tokens}
}

type authResponse struct {
	User    domain.User `json:"user"`
	Access  string      `json:"access"`
	Refresh string      `json:"refresh"`
}

// Register maneja POST /api/auth/register/.
func (h *Handler) Register(c *gin.Context) {
	var req domain.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": msgParse})
		return
	}

	errs := fieldErrors{}
	if strings.TrimSpace(req.Username) == "" {
		errs.add("username", msgRequired)
	}
	if req.Password == "" {
		errs.add("password", msgRequired)
	} else if utf8.RuneCountInString(req.Password) < 8 {
		errs.add("password", "Ensure this field has at least 8 characters.")
	}
	if req.PasswordConfirm == "" {
		errs.add("password_confirm", msgRequired)
	}
	if len(errs) == 0 && req.Password != req.PasswordConfirm {
		errs.add("non_field_errors", "Passwords don't match")
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	user, err := h.backend.CreateUser(req)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			c.JSON(http.StatusBadRequest, fieldErrors{"username": {"A user with that username already exists."}})
			return
		}
		h.logger.Error("create user failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not create user"})
		return
	}
	h.respondWithTokens(c, http.StatusCreated, user)
}

// Login maneja POST /api/auth/login/.
func (h *Handler) Login(c *gin.Context) {
	var req domain.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": msgParse})
		return
	}

	errs := fieldErrors{}
	if req.Username == "" {
		errs.add("username", msgRequired)
	}
	if req.Password == "" {
		errs.add("password", msgRequired)
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, errs)
		return
	}

	user, err := h.backend.Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusBadRequest, fieldErrors{"non_field_errors": {"Invalid credentials"}})
		return
	}
	h.respondWithTokens(c, http.StatusOK, user)
}

func (h *Handler) respondWithTokens(c *gin.Context, status int, user domain.User) {
	pair, err := h.tokens.GeneratePair(user)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not issue tokens"})
		return
	}
	c.JSON(status, authResponse{User: user, Access: pair.Access, Refresh: pair.Refresh})
}

func (h *Handler) ListRates(c *gin.Context) {
	c.JSON(http.StatusOK, h.backend.Rates())
}

func (h *Handler) ListAds(c *gin.Context) {
	c.JSON(http.StatusOK, h.backend.Ads())
}

type validTransfer struct {
	amount    decimal.Decimal
	currency  string
	recipient string
}

// bindTransfer valida el cuerpo de calculate/ y send/.
func (h *Handler) bindTransfer(c *gin.Context) (validTransfer, bool) {
	var req domain.TransferInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid transfer request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": msgParse})
		return validTransfer{}, false
	}

	errs := fieldErrors{}
	amount, err := parseAmount(req.AmountUSD.String())
	switch {
	case req.AmountUSD == "":
		errs.add("amount_usd", msgRequired)
	case errors.Is(err, errTooManyDecimal):
		errs.add("amount_usd", "Ensure that there are no more than 2 decimal places.")
	case err != nil:
		errs.add("amount_usd", "A valid number is required.")
	case amount.Cmp(minAmount) < 0:
		errs.add("amount_usd", "Minimum transfer amount is $10.00")
	case amount.Cmp(maxAmount) > 0:
		errs.add("amount_usd", "Maximum transfer amount is $10,000.00")
	}
	switch req.TargetCurrency {
	case "":
		errs.add("target_currency", msgRequired)
	case "GBP", "ZAR":
	default:
		errs.add("target_currency", fmt.Sprintf("%q is not a valid choice.", req.TargetCurrency))
	}
	recipient := strings.TrimSpace(req.RecipientName)
	switch {
	case recipient == "":
		errs.add("recipient_name", msgRequired)
	case utf8.RuneCountInString(recipient) > 100:
		errs.add("recipient_name", "Ensure this field has no more than 100 characters.")
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, errs)
		return validTransfer{}, false
	}
	return validTransfer{amount: amount, currency: req.TargetCurrency, recipient: recipient}, true
}

// Calculate maneja POST /api/transactions/calculate/.
func (h *Handler) Calculate(c *gin.Context) {
	in, ok := h.bindTransfer(c)
	if !ok {
		return
	}
	calc, err := h.backend.Calculate(in.amount, in.currency)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Exchange rate not available for %s", in.currency)})
		return
	}
	c.JSON(http.StatusOK, calc)
}

type sendResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	domain.Calculation
}

// Send maneja POST /api/transactions/send/.
func (h *Handler) Send(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
		return
	}
	in, ok := h.bindTransfer(c)
	if !ok {
		return
	}
	tx, calc, err := h.backend.Send(claims.UserID, in.amount, in.currency, in.recipient)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": fmt.Sprintf("Exchange rate not available for %s", in.currency)})
		return
	}
	h.logger.Info("transfer created",
		zap.Int64("user_id", claims.UserID),
		zap.String("transaction_id", tx.TransactionID),
		zap.String("currency", tx.TargetCurrency),
	)
	c.JSON(http.StatusCreated, sendResponse{
		TransactionID: tx.TransactionID,
		Status:        tx.Status,
		Calculation:   calc,
	})
}

// History maneja GET /api/transactions/history/?page=N.
func (h *Handler) History(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
		return
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}
	c.JSON(http.StatusOK, h.backend.History(claims.UserID, page))
}

// Detail maneja GET /api/transactions/:id/.
func (h *Handler) Detail(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Authentication credentials were not provided."})
		return
	}
	tx, err := h.backend.Transaction(claims.UserID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
		return
	}
	c.JSON(http.StatusOK, tx)
}
