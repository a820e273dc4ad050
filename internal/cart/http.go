package cart

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"MiniCatalog/pkg/kit"
)

type Server struct {
	Store Store
	Log   *zap.Logger

	WriteLimiter *kit.IPRateLimiter
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", s.list)
	r.Get("/{cid}", s.get)

	r.Group(func(wr chi.Router) {
		if s.WriteLimiter != nil {
			wr.Use(s.WriteLimiter.Middleware)
		}
		wr.Post("/", s.create)
		wr.Post("/{cid}/product/{pid}", s.addProduct)
	})

	return r
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	carts, err := s.Store.List(r.Context())
	if err != nil {
		s.serverError(w, r, "list carts failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, carts)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id, ok := kit.IntParam(w, r, "cid")
	if !ok {
		return
	}

	c, found, err := s.Store.Get(r.Context(), id)
	if err != nil {
		s.serverError(w, r, "get cart failed", err, zap.Int("cart_id", id))
		return
	}
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "cart not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, c)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	c, err := s.Store.Create(r.Context())
	if err != nil {
		s.serverError(w, r, "create cart failed", err)
		return
	}
	s.logger().Info("cart created", zap.Int("cart_id", c.ID))
	kit.WriteJSON(w, http.StatusCreated, c)
}

func (s *Server) addProduct(w http.ResponseWriter, r *http.Request) {
	cid, ok := kit.IntParam(w, r, "cid")
	if !ok {
		return
	}
	pid, ok := kit.IntParam(w, r, "pid")
	if !ok {
		return
	}

	c, err := s.Store.AddProduct(r.Context(), cid, pid)
	if errors.Is(err, ErrCartNotFound) {
		kit.WriteError(w, r, http.StatusNotFound, "cart not found", map[string]any{"id": cid})
		return
	}
	if err != nil {
		s.serverError(w, r, "add product to cart failed", err, zap.Int("cart_id", cid), zap.Int("product_id", pid))
		return
	}
	kit.WriteJSON(w, http.StatusOK, c)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error, fields ...zap.Field) {
	s.logger().Error(msg, append(fields, zap.Error(err))...)
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
