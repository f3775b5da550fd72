// Package jobs define las tareas en segundo plano (asynq) del inventario:
// conciliación del kardex contra el stock y precalentado del tablero.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault cola por defecto.
	QueueDefault = "default"
	// TaskReconcileStock compara StockBase con la suma del kardex.
	TaskReconcileStock = "inventory:reconcile"
	// TaskWarmDashboard recalcula y cachea el tablero.
	TaskWarmDashboard = "reports:warm_dashboard"
)

// TenantsPayload tenants sobre los que corre la tarea.
type TenantsPayload struct {
	TenantIDs []string `json:"tenant_ids"`
}

// NewReconcileTask construye la tarea de conciliación.
func NewReconcileTask(tenantIDs []string) (*asynq.Task, error) {
	return newTenantsTask(TaskReconcileStock, tenantIDs)
}

// NewWarmDashboardTask construye la tarea de precalentado.
func NewWarmDashboardTask(tenantIDs []string) (*asynq.Task, error) {
	return newTenantsTask(TaskWarmDashboard, tenantIDs)
}

func newTenantsTask(typ string, tenantIDs []string) (*asynq.Task, error) {
	data, err := json.Marshal(TenantsPayload{TenantIDs: tenantIDs})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(typ, data), nil
}

func decodeTenants(t *asynq.Task) ([]string, error) {
	var p TenantsPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return nil, err
	}
	return p.TenantIDs, nil
}
