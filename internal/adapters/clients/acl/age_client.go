package acl

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/jsamuelsen/age-service/internal/adapters/clients"
	"github.com/jsamuelsen/age-service/internal/domain"
	"github.com/jsamuelsen/age-service/internal/platform/logging"
)

const (
	agePath      = "/api/v1/age"
	livenessPath = "/-/live"

	// DefaultAgeServiceName names the remote calculator when none is configured.
	DefaultAgeServiceName = "age-calculator"
)

// AgeClientConfig contains configuration for the age client.
type AgeClientConfig struct {
	// Client is the HTTP client; its BaseURL points at the peer service.
	Client *clients.Client

	// Logger is the structured logger.
	Logger *slog.Logger
}

// AgeClient asks a peer age service for ages. It implements
// ports.AgeCalculator, ports.HealthChecker and ports.OptionalDependency.
type AgeClient struct {
	BaseAdapter

	logger *slog.Logger
}

// NewAgeClient creates an age client adapter.
// Panics if Client is nil. Defaults logger to slog.Default() if nil.
func NewAgeClient(cfg AgeClientConfig) *AgeClient {
	if cfg.Client == nil {
		panic("AgeClient: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	name := cfg.Client.ServiceName()
	if name == "" {
		name = DefaultAgeServiceName
	}

	return &AgeClient{
		BaseAdapter: NewBaseAdapter(cfg.Client, name),
		logger:      logger,
	}
}

// ageResponse is the peer's answer. Fields other than age are ignored.
type ageResponse struct {
	Age *int `json:"age"`
}

// Calculate implements ports.AgeCalculator.
func (c *AgeClient) Calculate(ctx context.Context, birth, ref domain.Date) (int, error) {
	logger := logging.FromContextOr(ctx, c.logger)
	logger.Log(ctx, logging.LevelTrace, "requesting remote age", slog.String("path", agePath))

	body, err := c.Get(ctx, agePath, ageQuery(birth, ref), "calculate age")
	if err != nil {
		return 0, err
	}

	resp, err := DecodeResponse[ageResponse](body)
	if err != nil {
		return 0, domain.NewUnavailableError(c.ServiceName(), err.Error())
	}

	if resp.Age == nil {
		return 0, domain.NewUnavailableError(c.ServiceName(), "response missing age")
	}

	logger.Log(ctx, logging.LevelTrace, "remote age received", slog.Int("age", *resp.Age))

	return *resp.Age, nil
}

// Name implements ports.HealthChecker.
func (c *AgeClient) Name() string {
	return c.ServiceName()
}

// Check implements ports.HealthChecker by probing the peer's liveness endpoint.
func (c *AgeClient) Check(ctx context.Context) error {
	body, err := c.Get(ctx, livenessPath, nil, "health check")
	if err != nil {
		return err
	}

	return body.Close()
}

// Optional implements ports.OptionalDependency. The local rule covers for
// the peer, so its failure only degrades the service.
func (c *AgeClient) Optional() bool {
	return true
}

func ageQuery(birth, ref domain.Date) url.Values {
	return url.Values{
		"birthDay":   {strconv.Itoa(birth.Day)},
		"birthMonth": {strconv.Itoa(birth.Month)},
		"birthYear":  {strconv.Itoa(birth.Year)},
		"refDay":     {strconv.Itoa(ref.Day)},
		"refMonth":   {strconv.Itoa(ref.Month)},
		"refYear":    {strconv.Itoa(ref.Year)},
	}
}
