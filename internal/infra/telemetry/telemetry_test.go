package telemetry

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
)

func TestInitExportsToOwnRegistry(t *testing.T) {
	ctx := context.Background()
	shutdown, err := Init(ctx, Config{ServiceName: "own-instead-test", Environment: "test"})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	counter, err := otel.Meter("telemetry-test").Int64Counter("telemetry.test.calls")
	if err != nil {
		t.Fatalf("counter: %v", err)
	}
	counter.Add(ctx, 3)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{"telemetry_test_calls_total", "go_goroutines", `service_name="own-instead-test"`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("scrape is missing %s", want)
		}
	}

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather default registry: %v", err)
	}
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), "telemetry_test") {
			t.Errorf("%s leaked into the default registry", mf.GetName())
		}
	}
}
