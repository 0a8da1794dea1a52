package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/sage-ingest/sage/internal/model"
)

var (
	preValidationClient = &http.Client{Timeout: 10 * time.Second}

	preValidationBreakersMu sync.Mutex
	preValidationBreakers   = map[string]*gobreaker.CircuitBreaker{}
)

func preValidationBreaker(endpoint string) *gobreaker.CircuitBreaker {
	preValidationBreakersMu.Lock()
	defer preValidationBreakersMu.Unlock()
	if b, ok := preValidationBreakers[endpoint]; ok {
		return b
	}
	b := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "pre_validation:" + endpoint,
		Timeout:  30 * time.Second,
		Interval: time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	preValidationBreakers[endpoint] = b
	return b
}

// runPreValidation calls a destination's configured pre_validation
// endpoint before the Sink writes any rows. A non-2xx response, or the
// endpoint itself being circuit-broken, aborts the write.
func runPreValidation(ctx context.Context, pv model.PreValidation, runID string) error {
	breaker := preValidationBreaker(pv.Endpoint)
	_, err := breaker.Execute(func() (any, error) {
		return nil, doPreValidationRequest(ctx, pv, runID)
	})
	return err
}

func doPreValidationRequest(ctx context.Context, pv model.PreValidation, runID string) error {
	method := pv.Method
	if method == "" {
		method = http.MethodPost
	}

	payload := map[string]any{"run_id": runID}
	for k, v := range pv.Payload {
		payload[k] = v
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding pre_validation payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, pv.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building pre_validation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := preValidationClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling pre_validation endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("pre_validation endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
