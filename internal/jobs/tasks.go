package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault cola por defecto de los trabajos en segundo plano.
	QueueDefault = "default"
	// TaskStockReconcile verifica saldos contra el libro y concilia la caché de productos.
	TaskStockReconcile = "stock:reconcile"
)

// ReconcilePayload TenantID vacío recorre todos los tenants activos.
// Sin Repair sólo se reportan descuadres.
type ReconcilePayload struct {
	TenantID     string    `json:"tenant_id,omitempty"`
	Repair       bool      `json:"repair"`
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewReconcileTask construye la tarea de conciliación.
func NewReconcileTask(p ReconcilePayload) (*asynq.Task, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal reconcile payload: %w", err)
	}
	return asynq.NewTask(TaskStockReconcile, body, asynq.Queue(QueueDefault), asynq.MaxRetry(3)), nil
}
