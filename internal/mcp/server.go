package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/grantflow/internal/domain/activity"
	"github.com/rpggio/grantflow/internal/domain/custody"
	"github.com/rpggio/grantflow/internal/domain/grant"
	"github.com/rpggio/grantflow/internal/domain/stream"
	"github.com/rpggio/grantflow/internal/domain/treasury"
	"github.com/rpggio/grantflow/internal/domain/vesting"
	"github.com/rs/zerolog"
)

// TreasuryService defines treasury operations needed by MCP.
type TreasuryService interface {
	Init(ctx context.Context, req treasury.InitRequest) (*treasury.Treasury, error)
	Get(ctx context.Context, id string) (*treasury.Treasury, error)
	SetGovernance(ctx context.Context, req treasury.GovernanceRequest) (*treasury.Treasury, error)
}

// StreamService defines stream operations needed by MCP.
type StreamService interface {
	Create(ctx context.Context, req stream.CreateRequest) (*stream.Stream, error)
	Withdraw(ctx context.Context, req stream.WithdrawRequest) (*stream.Stream, error)
	Control(ctx context.Context, req stream.ControlRequest) (*stream.Stream, error)
	Get(ctx context.Context, id string) (*stream.Stream, error)
	Find(ctx context.Context, treasuryID, recipient string) (*stream.Stream, error)
	Quote(ctx context.Context, id string, now *int64) (grant.Quote, error)
	List(ctx context.Context, opts stream.ListOptions) ([]stream.Stream, error)
}

// VestingService defines vesting operations needed by MCP.
type VestingService interface {
	Create(ctx context.Context, req vesting.CreateRequest) (*vesting.Vesting, error)
	Claim(ctx context.Context, req vesting.ClaimRequest) (*vesting.Vesting, error)
	Control(ctx context.Context, req vesting.ControlRequest) (*vesting.Vesting, error)
	Get(ctx context.Context, id string) (*vesting.Vesting, error)
	Find(ctx context.Context, treasuryID, recipient string) (*vesting.Vesting, error)
	Quote(ctx context.Context, id string, now *int64) (grant.Quote, error)
	List(ctx context.Context, opts vesting.ListOptions) ([]vesting.Vesting, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// CustodyService defines custody reads needed by MCP.
type CustodyService interface {
	Balance(ctx context.Context, owner, mint string) (*custody.Account, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Treasuries TreasuryService
	Streams    StreamService
	Vestings   VestingService
	Activity   ActivityService
	Custody    CustodyService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	Resolver      PrincipalResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	Version       string
	Logger        zerolog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	version := cfg.Version
	if version == "" {
		version = "0.1.0"
	}
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "grantflow",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
	})

	registerDocResources(server)

	// Stdio is local only, so callers name themselves.
	if cfg.TransportMode == "stdio" || !cfg.AuthEnabled {
		server.AddReceivingMiddleware(noAuthMiddleware())
	} else {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	}
	server.AddReceivingMiddleware(traceMiddleware())
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, NewHandler(cfg.Services, cfg.Logger))

	return server
}
