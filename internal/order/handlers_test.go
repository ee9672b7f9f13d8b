package order

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nkg-services/backend-electro/internal/analytics"
)

var _ DashboardCache = (*analytics.Service)(nil)

type recordingDashboard struct {
	calls int
}

func (d *recordingDashboard) Invalidate(context.Context) { d.calls++ }

func TestInvalidateDashboardAfterMutation(t *testing.T) {
	dash := &recordingDashboard{}
	h := &Handler{Dashboard: dash}
	r := httptest.NewRequest("PATCH", "/api/v1/admin/orders/1/status", nil)

	h.invalidateDashboard(r)
	require.Equal(t, 1, dash.calls)
}

func TestInvalidateDashboardToleratesNilCache(t *testing.T) {
	h := &Handler{}
	r := httptest.NewRequest("PATCH", "/api/v1/admin/orders/1/discount", nil)

	require.NotPanics(t, func() { h.invalidateDashboard(r) })
}
