package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/omarshaarawi/hoopsbot/internal/analytics"
	"github.com/omarshaarawi/hoopsbot/internal/models"
)

// Service is the set of query operations the HTTP API serves.
type Service interface {
	ListWeeks(ctx context.Context) ([]int, error)
	GetWeek(ctx context.Context, matchupPeriod int, refresh bool) (*analytics.WeekSnapshot, error)
	GetLeagueSummary(ctx context.Context) (*models.LeagueSummary, error)
	GetSeasonReport(ctx context.Context, refresh bool) (*analytics.SeasonReport, error)
	GetUpcomingPreview(ctx context.Context) (*models.UpcomingPreview, error)
	GetPredictions(ctx context.Context, team, opponent string) (*models.PredictionsReport, error)
	GetRosterTotals(ctx context.Context) ([]models.RosterTotals, error)
	GetPlayers(ctx context.Context) (*models.PlayersExport, error)
	Compare(ctx context.Context, team1, team2 string) (*models.TeamComparison, error)
	ChatContext(ctx context.Context) models.ChatContext
	Export(ctx context.Context) (*models.ExportResult, error)
}

// Chatter answers free-text questions about the league.
type Chatter interface {
	Answer(ctx context.Context, query string, data any) string
}

type Options struct {
	Port        string
	CORSOrigins []string
	// MCP, when set, is mounted at /mcp.
	MCP http.Handler
}

type Server struct {
	httpServer *http.Server
	router     chi.Router
}

func New(svc Service, chat Chatter, opts Options) *Server {
	h := &handler{svc: svc, chat: chat, now: time.Now}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "Mcp-Session-Id"},
		ExposedHeaders: []string{"X-Request-ID", "Mcp-Session-Id"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(60 * time.Second))

			r.Get("/weeks", h.listWeeks)
			r.Get("/week/{n}", h.getWeek)
			r.Get("/league/summary", h.leagueSummary)
			r.Get("/season", h.seasonReport)
			r.Get("/preview", h.preview)
			r.Get("/predictions", h.predictions)
			r.Get("/rosters", h.rosters)
			r.Get("/players", h.players)
			r.Get("/compare/{team1}/{team2}", h.compare)
			r.Post("/chatbot", h.chatbot)
		})

		r.Post("/export", h.export)
	})

	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
		r.Handle("/mcp/*", opts.MCP)
	}

	return &Server{
		router: r,
		httpServer: &http.Server{
			Addr:              ":" + opts.Port,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
