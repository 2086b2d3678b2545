package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/fairyhunter13/kafka-order-processor/internal/cache"
	"github.com/fairyhunter13/kafka-order-processor/internal/config"
	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
)

// Server aggregates the ops handlers' dependencies. Check funcs may be
// nil when the backing dependency is disabled; nil checks are skipped
// in the readiness report.
type Server struct {
	Cfg        config.Config
	Caches     []cache.Store
	DBCheck    func(ctx context.Context) error
	MongoCheck func(ctx context.Context) error
	KafkaCheck func(ctx context.Context) error
	RedisCheck func(ctx context.Context) error
}

// NewServer constructs the ops server over the process cache registry
// and the per-dependency readiness probes.
func NewServer(cfg config.Config, caches []cache.Store, dbCheck, mongoCheck, kafkaCheck, redisCheck func(context.Context) error) *Server {
	return &Server{
		Cfg:        cfg,
		Caches:     caches,
		DBCheck:    dbCheck,
		MongoCheck: mongoCheck,
		KafkaCheck: kafkaCheck,
		RedisCheck: redisCheck,
	}
}

// ReadyzHandler probes the pipeline's backing stores.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	probes := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"postgres", s.DBCheck},
		{"mongodb", s.MongoCheck},
		{"kafka", s.KafkaCheck},
		{"redis", s.RedisCheck},
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, len(probes))
		ok := true
		for _, p := range probes {
			if p.fn == nil {
				continue
			}
			if err := p.fn(ctx); err != nil {
				checks = append(checks, check{Name: p.name, OK: false, Details: err.Error()})
				ok = false
			} else {
				checks = append(checks, check{Name: p.name, OK: true})
			}
		}
		st := http.StatusOK
		if !ok {
			st = http.StatusServiceUnavailable
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}

// CachesHandler reports stats for every registered cache.
func (s *Server) CachesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		out := make(map[string]map[string]any, len(s.Caches))
		for _, c := range s.Caches {
			out[c.Name()] = c.GetStats()
		}
		writeJSON(w, http.StatusOK, map[string]any{"caches": out})
	}
}

// InvalidateCachesHandler clears the named caches, or every registered
// cache when the body names none.
func (s *Server) InvalidateCachesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		var req struct {
			Caches []string `json:"caches"`
		}
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, r, fmt.Errorf("%w: invalid json", domain.ErrInvalidEvent), nil)
				return
			}
		}
		for _, name := range req.Caches {
			if v := ValidateCacheName(name); !v.Valid {
				writeError(w, r, fmt.Errorf("%w: bad cache name", domain.ErrInvalidEvent), v.Errors)
				return
			}
		}

		if len(req.Caches) == 0 {
			cleared := make([]string, 0, len(s.Caches))
			for _, c := range s.Caches {
				c.Clear()
				cleared = append(cleared, c.Name())
			}
			LoggerFrom(r).Info("all caches invalidated")
			writeJSON(w, http.StatusOK, map[string]any{"invalidated": cleared})
			return
		}

		byName := make(map[string]cache.Store, len(s.Caches))
		for _, c := range s.Caches {
			byName[c.Name()] = c
		}
		cleared := make([]string, 0, len(req.Caches))
		for _, name := range req.Caches {
			c, ok := byName[name]
			if !ok {
				writeError(w, r, fmt.Errorf("%w: unknown cache", domain.ErrNotFound), map[string]string{"cache": name})
				return
			}
			c.Clear()
			cleared = append(cleared, name)
		}
		LoggerFrom(r).Info("caches invalidated", slog.Any("caches", cleared))
		writeJSON(w, http.StatusOK, map[string]any{"invalidated": cleared})
	}
}
