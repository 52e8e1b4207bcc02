package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-rental-catalog-go/catalog"
	"github.com/AntonStoeckl/library-rental-catalog-go/internal/wire"
)

type handlers struct {
	service Service
	issuer  tokenIssuer
	logger  catalog.Logger
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type bookRequest struct {
	Title            string          `json:"title"`
	Author           string          `json:"author"`
	Genre            string          `json:"genre"`
	DepositCost      decimal.Decimal `json:"deposit_cost"`
	RentalCostPerDay decimal.Decimal `json:"rental_cost_per_day"`
}

type customerRequest struct {
	Address     string `json:"address"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}

type orderRequest struct {
	CustomerID int64   `json:"customer_id"`
	ISBN       int64   `json:"isbn"`
	IssueDate  string  `json:"issue_date"`
	ReturnDate *string `json:"return_date"`
}

type namedAmountRequest struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// statusFor maps catalogue errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, catalog.ErrEmptyName), errors.Is(err, catalog.ErrNegativeAmount):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrConnectionFailed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *handlers) fail(c echo.Context, err error) error {
	status := statusFor(err)

	if status >= http.StatusInternalServerError {
		if h.logger != nil {
			h.logger.Error(logMsgRequestFailed,
				logAttrMethod, c.Request().Method,
				logAttrURI, c.Request().RequestURI,
				logAttrError, err.Error(),
			)
		}

		return c.JSON(status, errorBody(http.StatusText(status)))
	}

	return c.JSON(status, errorBody(err.Error()))
}

// written answers a mutation. The write is committed when only the follow-up refresh failed,
// so the request still succeeds and carries a warning.
func (h *handlers) written(c echo.Context, status int, body map[string]any, err error) error {
	if err != nil && !errors.Is(err, catalog.ErrRefreshAfterWriteFailed) {
		return h.fail(c, err)
	}

	if err != nil {
		if h.logger != nil {
			h.logger.Warn(logMsgRefreshFailed,
				logAttrURI, c.Request().RequestURI,
				logAttrError, err.Error(),
			)
		}

		body["warning"] = catalog.ErrRefreshAfterWriteFailed.Error()
	}

	return c.JSON(status, body)
}

const (
	headerWarning = "Warning"
	staleWarning  = `110 - "Response is Stale"`
)

// list answers a listing. A listing served from the last good snapshot still succeeds and is
// marked with a stale Warning header.
func list[T catalog.Entity](h *handlers, fetch func(ctx context.Context) ([]T, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		items, err := fetch(c.Request().Context())
		if err != nil && !errors.Is(err, catalog.ErrServingStaleSnapshot) {
			return h.fail(c, err)
		}

		if err != nil {
			if h.logger != nil {
				h.logger.Warn(logMsgStaleListing,
					logAttrURI, c.Request().RequestURI,
					logAttrError, err.Error(),
				)
			}

			c.Response().Header().Set(headerWarning, staleWarning)
		}

		return c.JSON(http.StatusOK, wire.FromEntities(items))
	}
}

func parseID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, s, time.UTC)
}

func (h *handlers) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "catalogd",
		"time":    h.issuer.now().Format(time.RFC3339),
	})
}

func (h *handlers) login(c echo.Context) error {
	req := loginRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request payload"))
	}

	user, err := h.service.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return h.fail(c, err)
	}

	token, err := h.issuer.issue(user)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"token": token,
		"user":  wire.FromUser(user),
	})
}

func (h *handlers) orderByID(c echo.Context) error {
	orderID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, errorBody("invalid order id"))
	}

	order, err := h.service.OrderByID(c.Request().Context(), orderID)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, wire.FromOrder(order))
}

func (h *handlers) lookupDiscounts(c echo.Context) error {
	return c.JSON(http.StatusOK, wire.FromEntities(h.service.LookupDiscounts()))
}

func (h *handlers) lookupPenalties(c echo.Context) error {
	return c.JSON(http.StatusOK, wire.FromEntities(h.service.LookupPenalties()))
}

func (h *handlers) addBook(c echo.Context) error {
	req := bookRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request payload"))
	}

	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, errorBody("title must not be empty"))
	}

	if req.DepositCost.IsNegative() || req.RentalCostPerDay.IsNegative() {
		return c.JSON(http.StatusBadRequest, errorBody(catalog.ErrNegativeAmount.Error()))
	}

	isbn, err := h.service.AddBook(c.Request().Context(), catalog.Book{
		Title:            req.Title,
		Author:           req.Author,
		Genre:            req.Genre,
		DepositCost:      req.DepositCost,
		RentalCostPerDay: req.RentalCostPerDay,
	})

	return h.written(c, http.StatusCreated, map[string]any{"isbn": isbn}, err)
}

func (h *handlers) deleteBook(c echo.Context) error {
	isbn, ok := parseID(c, "isbn")
	if !ok {
		return c.JSON(http.StatusBadRequest, errorBody("invalid isbn"))
	}

	err := h.service.DeleteBook(c.Request().Context(), isbn)

	return h.written(c, http.StatusOK, map[string]any{"deleted": isbn}, err)
}

func (h *handlers) addCustomer(c echo.Context) error {
	req := customerRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request payload"))
	}

	if req.FullName == "" {
		return c.JSON(http.StatusBadRequest, errorBody("full_name must not be empty"))
	}

	customerID, err := h.service.AddCustomer(c.Request().Context(), catalog.Customer{
		Address:     req.Address,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
	})

	return h.written(c, http.StatusCreated, map[string]any{"customer_id": customerID}, err)
}

func (h *handlers) deleteCustomer(c echo.Context) error {
	customerID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, errorBody("invalid customer id"))
	}

	err := h.service.DeleteCustomer(c.Request().Context(), customerID)

	return h.written(c, http.StatusOK, map[string]any{"deleted": customerID}, err)
}

func (h *handlers) createOrder(c echo.Context) error {
	req := orderRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("invalid request payload"))
	}

	issueDate, err := parseDate(req.IssueDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("issue_date must be formatted as YYYY-MM-DD"))
	}

	var returnDate time.Time
	if req.ReturnDate != nil {
		if returnDate, err = parseDate(*req.ReturnDate); err != nil {
			return c.JSON(http.StatusBadRequest, errorBody("return_date must be formatted as YYYY-MM-DD"))
		}
	}

	orderID, err := h.service.CreateOrder(c.Request().Context(), req.CustomerID, req.ISBN, issueDate, returnDate)

	return h.written(c, http.StatusCreated, map[string]any{"order_id": orderID}, err)
}

func (h *handlers) deleteOrder(c echo.Context) error {
	orderID, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, errorBody("invalid order id"))
	}

	err := h.service.DeleteOrder(c.Request().Context(), orderID)

	return h.written(c, http.StatusOK, map[string]any{"deleted": orderID}, err)
}

func (h *handlers) addDiscountToOrder(c echo.Context) error {
	orderID, req, ok := h.bindNamedAmount(c)
	if !ok {
		return nil
	}

	err := h.service.AddDiscountToOrder(c.Request().Context(), orderID, catalog.Discount{Name: req.Name, Amount: req.Amount})

	return h.written(c, http.StatusOK, map[string]any{"order_id": orderID}, err)
}

func (h *handlers) addPenaltyToOrder(c echo.Context) error {
	orderID, req, ok := h.bindNamedAmount(c)
	if !ok {
		return nil
	}

	err := h.service.AddPenaltyToOrder(c.Request().Context(), orderID, catalog.Penalty{Name: req.Name, Amount: req.Amount})

	return h.written(c, http.StatusOK, map[string]any{"order_id": orderID}, err)
}

// bindNamedAmount reads the order id and the discount or penalty body.
// It has already answered the request when ok is false.
func (h *handlers) bindNamedAmount(c echo.Context) (int64, namedAmountRequest, bool) {
	req := namedAmountRequest{}

	orderID, ok := parseID(c, "id")
	if !ok {
		_ = c.JSON(http.StatusBadRequest, errorBody("invalid order id"))
		return 0, req, false
	}

	if err := c.Bind(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, errorBody("invalid request payload"))
		return 0, req, false
	}

	return orderID, req, true
}
