// Package fivesimtest provides an in-process fake of the 5sim API for
// integration tests. It speaks the same paths, auth scheme and response
// shapes as the real service, backed by mutable in-memory state.
package fivesimtest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// APIKey is the bearer token the fake accepts on authenticated routes.
const APIKey = "fivesimtest-key"

// Order is the mutable order state held by the fake.
type Order struct {
	ID        int64
	Phone     string
	Product   string
	Country   string
	Operator  string
	Price     float64
	Status    string
	CreatedAt time.Time
	ExpiresAt time.Time
	SMS       []SMS
}

// SMS is one canned inbox message.
type SMS struct {
	CreatedAt time.Time
	Date      time.Time
	Sender    string
	Text      string
	Code      string
}

// Server is the fake API instance.
type Server struct {
	httpServer *httptest.Server

	mu           sync.Mutex
	nextOrderID  int64
	balance      float64
	stock        map[string]int
	prices       map[string]float64
	orders       map[int64]*Order
	notification string
	failures     int
	failStatus   int
	failBody     string
}

// New starts a fake server with a default catalog: telegram and whatsapp
// activation numbers in russia and england, a starting balance, and an
// english notification.
func New() *Server {
	s := &Server{
		nextOrderID:  53533933,
		balance:      100,
		stock:        map[string]int{"telegram": 10, "whatsapp": 5},
		prices:       map[string]float64{"telegram": 21.5, "whatsapp": 7},
		orders:       make(map[int64]*Order),
		notification: "scheduled maintenance tonight",
	}

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	s.routes(engine)
	s.httpServer = httptest.NewServer(engine)

	return s
}

// URL returns the base URL of the fake.
func (s *Server) URL() string {
	return s.httpServer.URL
}

// Close shuts the fake down.
func (s *Server) Close() {
	s.httpServer.Close()
}

// SetBalance replaces the account balance.
func (s *Server) SetBalance(balance float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balance = balance
}

// SetStock replaces the available count for a product.
func (s *Server) SetStock(product string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[product] = count
}

// AddSMS delivers a message to an existing order and flips it to
// RECEIVED.
func (s *Server) AddSMS(orderID int64, sender, text, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return fmt.Errorf("no order %d", orderID)
	}

	now := time.Now().UTC().Truncate(time.Second)
	order.SMS = append(order.SMS, SMS{
		CreatedAt: now,
		Date:      now,
		Sender:    sender,
		Text:      text,
		Code:      code,
	})
	order.Status = "RECEIVED"

	return nil
}

// Order returns a copy of the order state, or false when unknown.
func (s *Server) Order(orderID int64) (Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[orderID]
	if !ok {
		return Order{}, false
	}
	return *order, true
}

// FailNext makes the next n requests answer with the given status and
// body before normal handling resumes.
func (s *Server) FailNext(n, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = n
	s.failStatus = status
	s.failBody = body
}

func (s *Server) routes(engine *gin.Engine) {
	engine.Use(s.failureInjection())

	guest := engine.Group("/v1/guest")
	guest.GET("/countries", s.getCountries)
	guest.GET("/products/:country/:operator", s.getProducts)
	guest.GET("/prices", s.getPrices)
	guest.GET("/flash/:lang", s.requireAuth, s.getNotification)

	user := engine.Group("/v1/user", s.requireAuth)
	user.GET("/profile", s.getProfile)
	user.GET("/buy/:category/:country/:operator/:product", s.buyNumber)
	user.GET("/check/:id", s.orderAction("check"))
	user.GET("/finish/:id", s.orderAction("finish"))
	user.GET("/cancel/:id", s.orderAction("cancel"))
	user.GET("/ban/:id", s.orderAction("ban"))
	user.GET("/sms/inbox/:id", s.getInbox)
	user.GET("/orders", s.getOrders)
	user.GET("/payments", s.getPayments)

	vendor := engine.Group("/v1/vendor", s.requireAuth)
	vendor.GET("/wallets", s.getWallets)
	vendor.GET("/orders", s.getOrders)
	vendor.GET("/payments", s.getPayments)
	vendor.POST("/withdraw", s.withdraw)
}

// failureInjection answers with the configured failure while the counter
// is positive.
func (s *Server) failureInjection() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		inject := s.failures > 0
		status, body := s.failStatus, s.failBody
		if inject {
			s.failures--
		}
		s.mu.Unlock()

		if inject {
			c.String(status, body)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) requireAuth(c *gin.Context) {
	if c.GetHeader("Authorization") != "Bearer "+APIKey {
		c.String(http.StatusUnauthorized, "Unauthorized")
		c.Abort()
	}
}

func (s *Server) getCountries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"russia": gin.H{
			"iso":     gin.H{"ru": 1},
			"prefix":  gin.H{"+7": 1},
			"text_en": "Russia",
			"text_ru": "Россия",
		},
		"england": gin.H{
			"iso":     gin.H{"gb": 1},
			"prefix":  gin.H{"+44": 1},
			"text_en": "England",
			"text_ru": "Англия",
		},
	})
}

func (s *Server) getProducts(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := gin.H{}
	for product, count := range s.stock {
		out[product] = gin.H{
			"Category": "activation",
			"Qty":      count,
			"Price":    s.prices[product],
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getPrices(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if product := c.Query("product"); product != "" {
		if _, ok := s.prices[product]; !ok {
			// The real service answers a literal null for a product it
			// does not sell in the country.
			c.String(http.StatusOK, "null")
			return
		}
	}

	byProduct := gin.H{}
	for product, price := range s.prices {
		byProduct[product] = gin.H{
			"any": gin.H{"cost": price, "count": s.stock[product]},
		}
	}
	c.JSON(http.StatusOK, gin.H{"russia": byProduct, "england": byProduct})
}

func (s *Server) getNotification(c *gin.Context) {
	lang := c.Param("lang")
	if lang != "english" && lang != "russian" {
		c.String(http.StatusBadRequest, "bad language")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"text": s.notification})
}

func (s *Server) getProfile(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"id":               1048887,
		"email":            "integration@example.com",
		"balance":          s.balance,
		"frozen_balance":   0,
		"rating":           96,
		"default_operator": gin.H{"name": ""},
		"default_country":  gin.H{"name": "russia", "iso": "ru", "prefix": "+7"},
	})
}

func (s *Server) buyNumber(c *gin.Context) {
	product := c.Param("product")

	s.mu.Lock()
	defer s.mu.Unlock()

	price, sold := s.prices[product]
	if !sold {
		c.String(http.StatusBadRequest, "bad country")
		return
	}
	if s.stock[product] <= 0 {
		c.String(http.StatusOK, "no free phones")
		return
	}
	if s.balance < price {
		c.String(http.StatusBadRequest, "not enough user balance")
		return
	}

	s.stock[product]--
	s.balance -= price
	s.nextOrderID++

	now := time.Now().UTC().Truncate(time.Second)
	order := &Order{
		ID:        s.nextOrderID,
		Phone:     fmt.Sprintf("+7900%07d", s.nextOrderID%10000000),
		Product:   product,
		Country:   c.Param("country"),
		Operator:  c.Param("operator"),
		Price:     price,
		Status:    "PENDING",
		CreatedAt: now,
		ExpiresAt: now.Add(20 * time.Minute),
	}
	s.orders[order.ID] = order

	c.JSON(http.StatusOK, orderJSON(order))
}

func (s *Server) orderAction(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.String(http.StatusBadRequest, "order not found")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		order, ok := s.orders[id]
		if !ok {
			c.String(http.StatusNotFound, "order not found")
			return
		}

		switch action {
		case "check":
			// Status unchanged.
		case "finish":
			order.Status = "FINISHED"
		case "cancel":
			if len(order.SMS) > 0 {
				c.String(http.StatusBadRequest, "order has sms")
				return
			}
			order.Status = "CANCELED"
			s.balance += order.Price
		case "ban":
			order.Status = "BANNED"
		}

		c.JSON(http.StatusOK, orderJSON(order))
	}
}

func (s *Server) getInbox(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "order not found")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		c.String(http.StatusNotFound, "order not found")
		return
	}

	messages := make([]gin.H, 0, len(order.SMS))
	for _, sms := range order.SMS {
		messages = append(messages, smsJSON(sms))
	}
	c.JSON(http.StatusOK, gin.H{"Data": messages, "Total": len(messages)})
}

func (s *Server) getOrders(c *gin.Context) {
	if c.Query("category") == "" {
		c.String(http.StatusBadRequest, "bad category")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]gin.H, 0, len(s.orders))
	for _, order := range s.orders {
		items = append(items, orderJSON(order))
	}
	c.JSON(http.StatusOK, gin.H{"Data": items, "Total": len(items)})
}

func (s *Server) getPayments(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]gin.H, 0, len(s.orders))
	for _, order := range s.orders {
		items = append(items, gin.H{
			"ID":           order.ID,
			"TypeName":     "charge",
			"ProviderName": "balance",
			"Amount":       order.Price,
			"Balance":      s.balance,
			"CreatedAt":    order.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"Data": items, "Total": len(items)})
}

func (s *Server) getWallets(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"fkwallet": s.balance, "payeer": 0, "unitpay": 0})
}

func (s *Server) withdraw(c *gin.Context) {
	var req struct {
		Receiver string `json:"receiver"`
		Method   string `json:"method"`
		Amount   string `json:"amount"`
		Fee      string `json:"fee"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Receiver == "" {
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	amount, err := strconv.ParseFloat(req.Amount, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "bad request")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if amount > s.balance {
		c.String(http.StatusBadRequest, "not enough user balance")
		return
	}
	s.balance -= amount
	c.Status(http.StatusOK)
}

func orderJSON(order *Order) gin.H {
	messages := make([]gin.H, 0, len(order.SMS))
	for _, sms := range order.SMS {
		messages = append(messages, smsJSON(sms))
	}

	return gin.H{
		"id":         order.ID,
		"phone":      order.Phone,
		"product":    order.Product,
		"country":    order.Country,
		"operator":   order.Operator,
		"price":      order.Price,
		"status":     order.Status,
		"created_at": order.CreatedAt.Format(time.RFC3339),
		"expires":    order.ExpiresAt.Format(time.RFC3339),
		"sms":        messages,
	}
}

func smsJSON(sms SMS) gin.H {
	return gin.H{
		"created_at": sms.CreatedAt.Format(time.RFC3339),
		"date":       sms.Date.Format(time.RFC3339),
		"sender":     sms.Sender,
		"text":       sms.Text,
		"code":       sms.Code,
	}
}
