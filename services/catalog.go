package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"mymenu-bot/config"
	"mymenu-bot/metrics"
	"mymenu-bot/models"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const catalogCircuitName = "menu-api"

var (
	ErrMenuNotFound       = errors.New("menu not found")
	ErrInvalidMenu        = errors.New("invalid menu")
	ErrCatalogUnavailable = errors.New("menu service unavailable")
)

// CatalogClient fetches company menus from the remote API. Menus are validated
// once here; the builder and cart trust what they receive.
type CatalogClient struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
	ttl     time.Duration
	now     func() time.Time

	mu    sync.Mutex
	cache map[string]cachedMenu
}

type cachedMenu struct {
	menu      *models.Menu
	fetchedAt time.Time
}

func NewCatalogClient(cfg config.APIConfig, logger *zap.Logger) *CatalogClient {
	c := &CatalogClient{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetHeader("Accept", "application/json").
			SetRetryCount(0), // the breaker decides, not resty
		logger: logger,
		ttl:    cfg.MenuCacheTTL,
		now:    time.Now,
		cache:  make(map[string]cachedMenu),
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        catalogCircuitName,
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			// an unknown company is an answer, not an outage
			return err == nil || errors.Is(err, ErrMenuNotFound) || errors.Is(err, ErrInvalidMenu)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			logger.Warn("circuit breaker state changed",
				zap.String("circuit", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	metrics.CircuitBreakerState.WithLabelValues(catalogCircuitName).Set(0)
	return c
}

// GetMenu returns the menu of companyID, from cache when fresh.
func (c *CatalogClient) GetMenu(ctx context.Context, companyID string) (*models.Menu, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return nil, ErrMenuNotFound
	}
	if m, ok := c.cached(companyID); ok {
		metrics.CatalogRequests.WithLabelValues("cached").Inc()
		return m, nil
	}

	res, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetchMenu(ctx, companyID)
	})
	if err != nil {
		err = catalogError(err)
		metrics.CatalogRequests.WithLabelValues(catalogOutcome(err)).Inc()
		c.logger.Warn("menu fetch failed", zap.String("company_id", companyID), zap.Error(err))
		return nil, err
	}
	menu := res.(*models.Menu)
	metrics.CatalogRequests.WithLabelValues("ok").Inc()

	c.mu.Lock()
	c.cache[companyID] = cachedMenu{menu: menu, fetchedAt: c.now()}
	c.mu.Unlock()
	return menu, nil
}

// Invalidate drops a cached menu so the next GetMenu refetches it.
func (c *CatalogClient) Invalidate(companyID string) {
	c.mu.Lock()
	delete(c.cache, companyID)
	c.mu.Unlock()
}

// BreakerState is the catalog circuit state as text (closed, open, half-open).
func (c *CatalogClient) BreakerState() string {
	return c.breaker.State().String()
}

func (c *CatalogClient) cached(companyID string) (*models.Menu, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.cache[companyID]
	if !ok || c.now().Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	return e.menu, true
}

func (c *CatalogClient) fetchMenu(ctx context.Context, companyID string) (*models.Menu, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Company-ID", companyID).
		SetResult(&models.Menu{}).
		Get("/menu")
	if err != nil {
		return nil, fmt.Errorf("get menu: %w", err)
	}
	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, ErrMenuNotFound
	case resp.IsError():
		return nil, fmt.Errorf("get menu: unexpected status %d", resp.StatusCode())
	}
	menu, ok := resp.Result().(*models.Menu)
	if !ok || menu == nil {
		return nil, fmt.Errorf("get menu: empty body")
	}
	if err := ValidateMenu(menu); err != nil {
		return nil, err
	}
	return menu, nil
}

// ValidateMenu checks the catalog invariants the core relies on.
func ValidateMenu(menu *models.Menu) error {
	var problems []string
	for _, mc := range menu.Categories {
		for _, f := range mc.Foods {
			if f.ID == "" {
				problems = append(problems, fmt.Sprintf("food %q has no id", f.Name))
			}
			if f.Price.IsNegative() {
				problems = append(problems, fmt.Sprintf("food %q has a negative price", f.Name))
			}
			for _, ic := range f.ItemCategories {
				if ic.MinItems < 0 || ic.MinItems > ic.MaxItems {
					problems = append(problems, fmt.Sprintf("category %q of food %q has min_items %d and max_items %d",
						ic.Title, f.Name, ic.MinItems, ic.MaxItems))
				}
				for _, fi := range ic.FoodItems {
					if fi.ID == "" {
						problems = append(problems, fmt.Sprintf("item %q of food %q has no id", fi.Title, f.Name))
					}
					if fi.PriceIncrease != nil && fi.PriceIncrease.IsNegative() {
						problems = append(problems, fmt.Sprintf("item %q of food %q has a negative price", fi.Title, f.Name))
					}
				}
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidMenu, strings.Join(problems, "; "))
	}
	return nil
}

// FindFood looks a food up across every menu category.
func FindFood(menu *models.Menu, foodID string) (*models.Food, bool) {
	if menu == nil {
		return nil, false
	}
	for i := range menu.Categories {
		for j := range menu.Categories[i].Foods {
			if menu.Categories[i].Foods[j].ID == foodID {
				return &menu.Categories[i].Foods[j], true
			}
		}
	}
	return nil, false
}

// FindCategory returns the menu category with id.
func FindCategory(menu *models.Menu, categoryID string) (*models.MenuCategory, bool) {
	if menu == nil {
		return nil, false
	}
	for i := range menu.Categories {
		if menu.Categories[i].ID == categoryID {
			return &menu.Categories[i], true
		}
	}
	return nil, false
}

func catalogError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: circuit %s is %v", ErrCatalogUnavailable, catalogCircuitName, err)
	}
	return err
}

func catalogOutcome(err error) string {
	switch {
	case errors.Is(err, ErrMenuNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidMenu):
		return "invalid"
	case errors.Is(err, ErrCatalogUnavailable):
		return "breaker_open"
	default:
		return "error"
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}
