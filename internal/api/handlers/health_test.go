package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"contentdesk/internal/api/handlers"
	"contentdesk/internal/models"
	"contentdesk/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_Health(t *testing.T) {
	healthy := handlers.PingerFunc(func(ctx context.Context) error { return nil })
	down := handlers.PingerFunc(func(ctx context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name       string
		stores     map[string]handlers.Pinger
		wantStatus int
		wantErr    string
	}{
		{
			name:       "No Stores",
			wantStatus: http.StatusOK,
		},
		{
			name:       "Success",
			stores:     map[string]handlers.Pinger{"database": healthy, "redis": healthy},
			wantStatus: http.StatusOK,
		},
		{
			name:       "Nil Store Skipped",
			stores:     map[string]handlers.Pinger{"database": healthy, "redis": nil},
			wantStatus: http.StatusOK,
		},
		{
			name:       "Error_DatabaseDown",
			stores:     map[string]handlers.Pinger{"database": down},
			wantStatus: http.StatusServiceUnavailable,
			wantErr:    "database connection failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/health", handlers.NewHealthHandler(tt.stores).Health)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			require.Equal(t, tt.wantStatus, w.Code)

			if tt.wantErr != "" {
				var resp models.ErrorResponse
				testutil.DecodeJSON(t, w, &resp)
				require.Equal(t, tt.wantErr, resp.Error)
				return
			}

			var resp models.HealthResponse
			testutil.DecodeJSON(t, w, &resp)
			require.Equal(t, "healthy", resp.Status)
			require.False(t, resp.Time.IsZero())
		})
	}
}

func TestHealthRoute(t *testing.T) {
	tc := testutil.NewTestContext(t)

	w := tc.DoJSON(http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
}
