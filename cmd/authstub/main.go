// authstub is the development stand-in for the external auth backend.
// It serves the same login/refresh/profile contract the gateway
// consumes, over a fixed roster of officers, so the dashboard can run
// end-to-end without the real backend.
package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/casekit/case-gateway/internal/config"
	"github.com/casekit/case-gateway/internal/domain"
	"github.com/casekit/case-gateway/internal/observability"
	"github.com/casekit/case-gateway/internal/token"
)

type officer struct {
	user         domain.User
	passwordHash []byte
}

type roster struct {
	mu       sync.Mutex
	officers map[string]*officer
}

func newRoster(cost int) *roster {
	seed := []struct {
		user     domain.User
		password string
	}{
		{
			user: domain.User{
				ID: "u-1001", Username: "somchai", Email: "somchai@unit.example",
				FullName: "Somchai Jaidee", Role: domain.RoleInvestigator,
				Department: "Major Crimes", BadgeNumber: "IN-4521",
				CreatedAt: time.Now().Add(-2 * 365 * 24 * time.Hour), IsActive: true,
			},
			password: "password123",
		},
		{
			user: domain.User{
				ID: "u-1002", Username: "pranee", Email: "pranee@unit.example",
				FullName: "Pranee Suksai", Role: domain.RoleSupervisor,
				Department: "Major Crimes", BadgeNumber: "SV-2210",
				CreatedAt: time.Now().Add(-4 * 365 * 24 * time.Hour), IsActive: true,
			},
			password: "password123",
		},
		{
			user: domain.User{
				ID: "u-1003", Username: "wirote", Email: "wirote@unit.example",
				FullName: "Wirote Thongdee", Role: domain.RoleAdmin,
				Department: "Administration", BadgeNumber: "AD-0007",
				CreatedAt: time.Now().Add(-6 * 365 * 24 * time.Hour), IsActive: true,
			},
			password: "admin123",
		},
	}

	r := &roster{officers: make(map[string]*officer, len(seed))}
	for _, s := range seed {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.password), cost)
		if err != nil {
			log.Fatalf("hashing fixture password: %v", err)
		}
		r.officers[s.user.Username] = &officer{user: s.user, passwordHash: hash}
	}
	return r
}

func (r *roster) byUsername(username string) (*officer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.officers[username]
	return o, ok
}

func (r *roster) byID(id string) (*officer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.officers {
		if o.user.ID == id {
			return o, true
		}
	}
	return nil, false
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	issuer := token.NewIssuer(cfg.Stub.JWTSecret, cfg.Stub.TokenTTLMinutes)
	officers := newRoster(cfg.Stub.BcryptCost)

	app := fiber.New()
	api := app.Group("/api/auth")

	api.Post("/login", func(c *fiber.Ctx) error {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&req); err != nil {
			return rejected(c, http.StatusBadRequest, "invalid payload")
		}

		o, ok := officers.byUsername(req.Username)
		if !ok || bcrypt.CompareHashAndPassword(o.passwordHash, []byte(req.Password)) != nil {
			return rejected(c, http.StatusUnauthorized, "invalid username or password")
		}
		if !o.user.IsActive {
			return rejected(c, http.StatusUnauthorized, "account disabled")
		}

		now := time.Now()
		officers.mu.Lock()
		o.user.LastLogin = &now
		user := o.user
		officers.mu.Unlock()

		return issueSession(c, issuer, &user)
	})

	api.Post("/refresh", func(c *fiber.Ctx) error {
		o, errResp := authenticated(c, issuer, officers)
		if o == nil {
			return errResp
		}
		officers.mu.Lock()
		user := o.user
		officers.mu.Unlock()
		return issueSession(c, issuer, &user)
	})

	api.Put("/profile", func(c *fiber.Ctx) error {
		o, errResp := authenticated(c, issuer, officers)
		if o == nil {
			return errResp
		}
		var update domain.ProfileUpdate
		if err := c.BodyParser(&update); err != nil {
			return rejected(c, http.StatusBadRequest, "invalid payload")
		}

		officers.mu.Lock()
		o.user = update.Apply(o.user)
		officers.mu.Unlock()

		// The echo carries only the accepted fields; the client keeps
		// the rest of its profile.
		return c.JSON(fiber.Map{"success": true, "data": update})
	})

	go func() {
		if err := app.Listen(cfg.Stub.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()
	logger.Info("auth stub listening", zap.String("addr", cfg.Stub.Addr()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	_ = app.Shutdown()
}

func issueSession(c *fiber.Ctx, issuer *token.Issuer, user *domain.User) error {
	signed, _, err := issuer.Issue(user)
	if err != nil {
		return rejected(c, http.StatusInternalServerError, "token issuing failed")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    fiber.Map{"token": signed, "user": user},
	})
}

func authenticated(c *fiber.Ctx, issuer *token.Issuer, officers *roster) (*officer, error) {
	header := c.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, rejected(c, http.StatusUnauthorized, "missing bearer token")
	}
	claims, err := issuer.Verify(parts[1])
	if err != nil {
		return nil, rejected(c, http.StatusUnauthorized, "token invalid or expired")
	}
	o, ok := officers.byID(claims.Subject)
	if !ok {
		return nil, rejected(c, http.StatusUnauthorized, "unknown officer")
	}
	return o, nil
}

func rejected(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "error": msg})
}
