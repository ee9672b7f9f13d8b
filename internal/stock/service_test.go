package stock

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/nkg-services/backend-electro/internal/notify"
)

type captureEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (c *captureEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.tasks = append(c.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func TestAlertLowStockEnqueuesTask(t *testing.T) {
	enq := &captureEnqueuer{}
	svc := NewService(nil, enq, zerolog.Nop())

	svc.alertLowStock(Level{VariantID: "v1", SKU: "CAB-25-STD", Quantity: 2, ReorderLevel: 5})

	require.Len(t, enq.tasks, 1)
	require.Equal(t, notify.TypeLowStock, enq.tasks[0].Type())

	var payload notify.LowStockPayload
	require.NoError(t, json.Unmarshal(enq.tasks[0].Payload(), &payload))
	require.Equal(t, "v1", payload.VariantID)
	require.Equal(t, "CAB-25-STD", payload.SKU)
	require.Equal(t, 2, payload.Quantity)
	require.Equal(t, 5, payload.Reorder)
}

func TestAlertLowStockSurvivesEnqueueFailure(t *testing.T) {
	enq := &captureEnqueuer{err: errors.New("redis down")}
	svc := NewService(nil, enq, zerolog.Nop())

	require.NotPanics(t, func() {
		svc.alertLowStock(Level{VariantID: "v1", SKU: "CAB-25-STD", ReorderLevel: 5})
	})
	require.Empty(t, enq.tasks)
}
