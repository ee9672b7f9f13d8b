package checkout

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/nkg-services/backend-electro/internal/analytics"
	"github.com/nkg-services/backend-electro/internal/common"
	"github.com/nkg-services/backend-electro/internal/install"
)

var _ DashboardCache = (*analytics.Service)(nil)

type fakeInstallCatalog struct {
	services []install.Service
}

func (f fakeInstallCatalog) GetByIDs(context.Context, []string) ([]install.Service, error) {
	return f.services, nil
}

func TestResolveInstallationsKeepsSubmittedOrder(t *testing.T) {
	svc := &Service{
		installs: fakeInstallCatalog{services: []install.Service{
			{ID: "a", Name: "Installation basique", Fee: 25000},
			{ID: "b", Name: "Installation complète", Fee: 25000},
		}},
		logger: zerolog.Nop(),
	}

	selections, names, err := svc.resolveInstallations(context.Background(), []string{"b", "a", "b"})
	require.NoError(t, err)
	require.Len(t, selections, 3)
	require.Equal(t, "b", selections[0].ServiceID)
	require.Equal(t, []string{"Installation complète", "Installation basique", "Installation complète"}, names)
}

func TestResolveInstallationsRejectsUnknownService(t *testing.T) {
	svc := &Service{installs: fakeInstallCatalog{}, logger: zerolog.Nop()}

	_, _, err := svc.resolveInstallations(context.Background(), []string{"ghost"})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "BAD_REQUEST", appErr.Code)
}
