// Package devserver is an in-process stand-in for the warehouse REST backend.
// It serves the same routes and error shapes so the dashboard can be run and
// tested without the real service.
package devserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"github.com/jask/warehousedash/internal/api"
	"github.com/jask/warehousedash/internal/session"
)

const localSession = "session"

// Config holds dev server settings.
type Config struct {
	JWTSecret string
	Issuer    string
	TokenTTL  time.Duration
	Logger    zerolog.Logger
}

// Server wires a Store to a fiber app.
type Server struct {
	cfg   Config
	store *Store
	app   *fiber.App
}

func New(cfg Config, store *Store) *Server {
	if cfg.Issuer == "" {
		cfg.Issuer = "warehousedash-devserver"
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 12 * time.Hour
	}
	s := &Server{cfg: cfg, store: store}
	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			return detail(c, code, err.Error())
		},
	})
	s.app.Use(recover.New())
	s.routes()
	return s
}

func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Store() *Store { return s.store }

func (s *Server) Listen(addr string) error {
	s.cfg.Logger.Info().Str("addr", addr).Msg("dev server listening")
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error { return s.app.Shutdown() }

// TokenFor issues a bearer token for the account with email.
func (s *Server) TokenFor(email string) (string, error) {
	u, ok := s.store.UserByEmail(email)
	if !ok {
		return "", errUserNotFound
	}
	return session.Sign(s.cfg.JWTSecret, session.Session{
		UserID: fmtID(u.ID),
		Email:  u.Email,
		Role:   u.Role,
	}, s.cfg.Issuer, s.cfg.TokenTTL)
}

func (s *Server) routes() {
	auth := s.authMiddleware()

	users := s.app.Group("/users", auth)
	users.Patch("/me/password", s.changePassword)
	users.Get("/", requireRole(session.RoleAdmin), s.listUsers)
	users.Patch("/:id", requireRole(session.RoleAdmin), s.updateUser)
	users.Delete("/:id", requireRole(session.RoleAdmin), s.deleteUser)

	products := s.app.Group("/products", auth)
	products.Get("/", s.listProducts)
	products.Post("/", requireRole(session.RoleAdmin, session.RoleManager), s.createProduct)

	orders := s.app.Group("/orders", auth)
	orders.Get("/", s.listOrders)
}

func detail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"detail": msg})
}

// authMiddleware validates the bearer token and stores the session in locals.
func (s *Server) authMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return detail(c, fiber.StatusUnauthorized, "Not authenticated")
		}
		sess, err := session.Verify(s.cfg.JWTSecret, strings.TrimSpace(parts[1]))
		if err != nil {
			return detail(c, fiber.StatusUnauthorized, "Could not validate credentials")
		}
		if _, ok := s.store.UserByEmail(sess.Email); !ok {
			return detail(c, fiber.StatusUnauthorized, "Could not validate credentials")
		}
		c.Locals(localSession, sess)
		return c.Next()
	}
}

func currentSession(c *fiber.Ctx) session.Session {
	sess, _ := c.Locals(localSession).(session.Session)
	return sess
}

func requireRole(roles ...session.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := currentSession(c).Role
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return detail(c, fiber.StatusForbidden, "Not enough permissions")
	}
}

func (s *Server) listUsers(c *fiber.Ctx) error {
	return c.JSON(s.store.Users())
}

func (s *Server) updateUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return detail(c, fiber.StatusUnprocessableEntity, "id must be an integer")
	}
	var patch userPatch
	if err := c.BodyParser(&patch); err != nil {
		return detail(c, fiber.StatusUnprocessableEntity, "invalid request body")
	}
	if msgs := validatePatch(patch); len(msgs) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"detail": msgs})
	}
	u, err := s.store.UpdateUser(int64(id), patch)
	switch {
	case errors.Is(err, errUserNotFound):
		return detail(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, errEmailTaken):
		return detail(c, fiber.StatusBadRequest, err.Error())
	case err != nil:
		return err
	}
	s.cfg.Logger.Info().Int64("entity_id", u.ID).Msg("user updated")
	return c.JSON(u)
}

type fieldError struct {
	Loc []string `json:"loc"`
	Msg string   `json:"msg"`
}

func validatePatch(p userPatch) []fieldError {
	var out []fieldError
	if p.FullName != nil && strings.TrimSpace(*p.FullName) == "" {
		out = append(out, fieldError{Loc: []string{"body", "full_name"}, Msg: "Full name must not be empty"})
	}
	if p.Email != nil && !strings.Contains(*p.Email, "@") {
		out = append(out, fieldError{Loc: []string{"body", "email"}, Msg: "value is not a valid email address"})
	}
	if p.Role != nil && !p.Role.Valid() {
		out = append(out, fieldError{Loc: []string{"body", "role"}, Msg: "Input should be 'admin', 'manager' or 'staff'"})
	}
	return out
}

func (s *Server) deleteUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return detail(c, fiber.StatusUnprocessableEntity, "id must be an integer")
	}
	if err := s.store.DeleteUser(int64(id)); err != nil {
		if errors.Is(err, errUserNotFound) {
			return detail(c, fiber.StatusNotFound, err.Error())
		}
		return err
	}
	s.cfg.Logger.Info().Int("entity_id", id).Msg("user deleted")
	return c.SendStatus(fiber.StatusNoContent)
}

type passwordBody struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (s *Server) changePassword(c *fiber.Ctx) error {
	var body passwordBody
	if err := c.BodyParser(&body); err != nil {
		return detail(c, fiber.StatusUnprocessableEntity, "invalid request body")
	}
	if body.NewPassword == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"detail": []fieldError{{Loc: []string{"body", "new_password"}, Msg: "Field required"}}})
	}
	u, ok := s.store.UserByEmail(currentSession(c).Email)
	if !ok {
		return detail(c, fiber.StatusUnauthorized, "Could not validate credentials")
	}
	if err := s.store.ChangePassword(u.ID, body.OldPassword, body.NewPassword); err != nil {
		if errors.Is(err, errOldPassword) {
			return detail(c, fiber.StatusBadRequest, err.Error())
		}
		return err
	}
	s.cfg.Logger.Info().Int64("entity_id", u.ID).Msg("password changed")
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) listProducts(c *fiber.Ctx) error {
	return c.JSON(s.store.Products())
}

func (s *Server) createProduct(c *fiber.Ctx) error {
	var in api.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return detail(c, fiber.StatusUnprocessableEntity, "invalid request body")
	}
	if strings.TrimSpace(in.SKU) == "" || strings.TrimSpace(in.Name) == "" {
		return detail(c, fiber.StatusUnprocessableEntity, "SKU and name are required")
	}
	p, err := s.store.AddProduct(in)
	if err != nil {
		if errors.Is(err, errSKUTaken) {
			return detail(c, fiber.StatusBadRequest, err.Error())
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (s *Server) listOrders(c *fiber.Ctx) error {
	return c.JSON(s.store.Orders())
}

// HTTPClient returns a client whose requests are served in-process by the
// fiber app, without opening a socket.
func (s *Server) HTTPClient() *http.Client {
	return &http.Client{Transport: appTransport{app: s.app}}
}

type appTransport struct {
	app *fiber.App
}

func (t appTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.app.Test(req, -1)
}
