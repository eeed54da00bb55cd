package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sports-scoreboard/external/espn"
	"github.com/riskibarqy/sports-scoreboard/internal/domain/league"
	"github.com/riskibarqy/sports-scoreboard/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
}

func TestMapError_ProviderFailures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{
			name:       "upstream 5xx",
			err:        crerr.Mark(&espn.RequestError{StatusCode: 503, Status: "Service Unavailable"}, crerr.New("transient")),
			wantStatus: http.StatusBadGateway,
			wantReason: "upstreamFailure",
		},
		{
			name:       "upstream 404",
			err:        &espn.RequestError{Endpoint: espn.EndpointSummary, StatusCode: 404, Status: "Not Found"},
			wantStatus: http.StatusNotFound,
			wantReason: "upstreamNotFound",
		},
		{
			name:       "transport",
			err:        &espn.TransportError{URL: "https://site.api.espn.com", Err: context.Canceled},
			wantStatus: http.StatusBadGateway,
			wantReason: "upstreamFailure",
		},
		{
			name:       "circuit open",
			err:        fmt.Errorf("%w: scoreboard", espn.ErrProviderUnavailable),
			wantStatus: http.StatusServiceUnavailable,
			wantReason: "dependencyUnavailable",
		},
		{
			name:       "unknown league",
			err:        fmt.Errorf("%w: %w", usecase.ErrInvalidInput, league.ErrUnknownLeague),
			wantStatus: http.StatusBadRequest,
			wantReason: "invalidInput",
		},
		{
			name:       "deadline",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantReason: "deadlineExceeded",
		},
		{
			name:       "caller cancelled",
			err:        context.Canceled,
			wantStatus: statusClientClosedRequest,
			wantReason: "clientClosedRequest",
		},
		{
			name:       "still loading",
			err:        fmt.Errorf("%w: status=loading", errResultPending),
			wantStatus: http.StatusAccepted,
			wantReason: "resultPending",
		},
		{
			name:       "unexpected",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantReason: "internalError",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(context.Background(), tt.err)
			if got.HTTPStatus != tt.wantStatus {
				t.Fatalf("status=%d want=%d", got.HTTPStatus, tt.wantStatus)
			}
			if got.Reason != tt.wantReason {
				t.Fatalf("reason=%s want=%s", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestWriteError_PendingSetsRetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: status=loading", errResultPending))

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "1" {
		t.Fatalf("expected Retry-After=1, got %q", got)
	}
}
