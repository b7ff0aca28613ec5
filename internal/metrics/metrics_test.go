package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_ExposesCollectors(t *testing.T) {
	BookingsTotal.WithLabelValues("created").Inc()
	EventsCreatedTotal.Inc()

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "eventbooking_bookings_total")
	assert.Contains(t, string(body), "eventbooking_events_created_total")
}

func TestTimer_ObserveDuration(t *testing.T) {
	NewTimer().ObserveDuration(ImageUploadDuration)
	assert.Equal(t, 1, testutil.CollectAndCount(ImageUploadDuration))
}
