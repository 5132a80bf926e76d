package mcp

import (
	"context"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"ziwei/internal/activation"
	"ziwei/internal/chart"
	"ziwei/internal/metrics"
	"ziwei/internal/store"
)

// ProfileReader is the part of the store the tools read from.
type ProfileReader interface {
	GetProfile(ctx context.Context, name string) (*store.Profile, error)
	SearchProfiles(ctx context.Context, query string) ([]store.SearchResult, error)
}

type Config struct {
	Engine   *chart.Engine
	Meanings activation.Meanings
	// Profiles may be nil; the profile tools then report an error.
	Profiles ProfileReader
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
	// Now is used for the current decade; defaults to time.Now.
	Now func() time.Time
}

type Server struct {
	engine   *chart.Engine
	resolver *activation.Resolver
	profiles ProfileReader
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
	mcp      *sdk.Server
}

func NewServer(cfg Config, version string) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := cfg.Engine
	if engine == nil {
		engine = chart.NewEngine(chart.Options{})
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	s := &Server{
		engine:   engine,
		resolver: activation.NewResolver(cfg.Meanings, activation.WithLogger(logger)),
		profiles: cfg.Profiles,
		metrics:  cfg.Metrics,
		logger:   logger,
		now:      now,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "ziwei",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
