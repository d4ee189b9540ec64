//go:build integration

// Package steps provides step definitions for BDD integration tests.
package steps

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/owninstead/backend/config"
	"github.com/owninstead/backend/internal/infra/dependency"
	"github.com/owninstead/backend/internal/integration/persistence/model"
	"github.com/owninstead/backend/test/integration/mock"
)

const testJWTSecret = "test-jwt-secret-key-for-testing-purposes"

// suite holds the resources shared by every scenario. The application is
// wired once against them and reset between scenarios.
type suite struct {
	cfg       *config.Config
	db        *mock.Db
	clock     *mock.Time
	brokerage *mock.ApiMock
	bank      *mock.ApiMock
	expo      *mock.ApiMock
	injector  *dependency.Injector
	server    *httptest.Server
}

var shared suite

// TestContext holds the state of one scenario.
type TestContext struct {
	*suite

	client        *http.Client
	headers       map[string]string
	response      *response
	accessToken   string
	refreshToken  string
	currentUserID uuid.UUID
	currentEmail  string
	placeholders  map[string]string
}

type response struct {
	status int
	body   any
}

// InitializeTestSuite starts the provider fakes, the database and the API
// before any scenario runs.
func InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		gin.SetMode(gin.TestMode)

		shared.brokerage = mock.NewApiServer()
		shared.brokerage.Start()
		shared.bank = mock.NewApiServer()
		shared.bank.Start()
		shared.expo = mock.NewApiServer()
		shared.expo.Start()
		shared.clock = mock.NewTime()

		for key, value := range map[string]string{
			"ENV":                "test",
			"LOG_LEVEL":          "ERROR",
			"JWT_SECRET":         testJWTSecret,
			"BCRYPT_COST":        "4",
			"SNAPTRADE_BASE_URL": shared.brokerage.GetUrl(),
			"PLAID_BASE_URL":     shared.bank.GetUrl(),
			"EXPO_PUSH_URL":      shared.expo.GetUrl() + "/push/send",
			"SYNC_USER_DELAY":    "0s",
			"METRICS_ENABLED":    "true",
		} {
			_ = os.Setenv(key, value)
		}
		shared.cfg = config.Load()

		shared.db = mock.NewDb("own_instead", model.AllModels()...)
		redisClient := mock.NewRedis()

		injector, err := dependency.NewInjector(shared.cfg, shared.db.DbConn, redisClient, dependency.Options{
			Now: shared.clock.Now,
		})
		if err != nil {
			panic(fmt.Sprintf("failed to wire application: %v", err))
		}
		shared.injector = injector
		shared.server = httptest.NewServer(injector.Router.Setup(shared.cfg.Server.Environment))
	})

	ctx.AfterSuite(func() {
		if shared.server != nil {
			shared.server.Close()
		}
		shared.brokerage.Close()
		shared.bank.Close()
		shared.expo.Close()
	})
}

// InitializeScenario registers all step definitions.
func InitializeScenario(ctx *godog.ScenarioContext) {
	test := &TestContext{
		suite:  &shared,
		client: &http.Client{Timeout: 10 * time.Second},
	}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, test.before()
	})

	registerSetupSteps(ctx, test)
	registerProviderSteps(ctx, test)
	registerJobSteps(ctx, test)
	registerAPISteps(ctx, test)
	registerResponseSteps(ctx, test)
	registerDatabaseSteps(ctx, test)
}

func (t *TestContext) before() error {
	t.headers = make(map[string]string)
	t.response = nil
	t.accessToken = ""
	t.refreshToken = ""
	t.currentUserID = uuid.Nil
	t.currentEmail = ""
	t.placeholders = make(map[string]string)

	t.clock.Reset()
	t.brokerage.Reset()
	t.bank.Reset()
	t.expo.Reset()

	if err := mock.ClearRedis(mock.NewRedis()); err != nil {
		return err
	}
	return t.db.ClearDB()
}

func (t *TestContext) theAPIServerIsRunning() error {
	if t.server == nil {
		return fmt.Errorf("test server is not running")
	}
	resp, err := t.client.Get(t.server.URL + "/health")
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned %d", resp.StatusCode)
	}
	return nil
}

func (t *TestContext) theCurrentTimeIs(value string) error {
	now, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return fmt.Errorf("invalid time %q: %w", value, err)
	}
	t.clock.SetCurrentTime(now)
	return nil
}
