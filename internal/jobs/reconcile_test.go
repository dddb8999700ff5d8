package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/autotaller-api/internal/domain/entity"
	"github.com/jhoicas/autotaller-api/pkg/logger"
	"github.com/jhoicas/autotaller-api/pkg/tenant"
)

type fakeTenants struct {
	list []*entity.Tenant
	err  error
}

func (f fakeTenants) ListActive(context.Context) ([]*entity.Tenant, error) { return f.list, f.err }

// fakeVerifier devuelve descuadres por tenant y registra en qué tenants se concilió.
type fakeVerifier struct {
	mu         sync.Mutex
	drifts     map[string]int
	failTenant string
	repaired   []string
}

func (f *fakeVerifier) VerifyBalances(ctx context.Context) ([]entity.BalanceDrift, error) {
	id := tenant.FromContext(ctx)
	if id == f.failTenant {
		return nil, errors.New("db caída")
	}
	out := make([]entity.BalanceDrift, f.drifts[id])
	for i := range out {
		out[i] = entity.BalanceDrift{BalanceQty: decimal.NewFromInt(1), LedgerQty: decimal.Zero}
	}
	return out, nil
}

func (f *fakeVerifier) ReconcileProductCache(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.repaired = append(f.repaired, tenant.FromContext(ctx))
	return 2, nil
}

type recordedDrifts struct {
	mu sync.Mutex
	m  map[string]int
}

func (r *recordedDrifts) SetDrifts(tenantID string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[tenantID] = n
}

func activeTenants(ids ...string) fakeTenants {
	var list []*entity.Tenant
	for _, id := range ids {
		list = append(list, &entity.Tenant{ID: id, IsActive: true})
	}
	return fakeTenants{list: list}
}

func TestReconcileJob_AllTenants(t *testing.T) {
	v := &fakeVerifier{drifts: map[string]int{"a": 0, "b": 2}}
	rec := &recordedDrifts{m: map[string]int{}}
	job := NewReconcileJob(activeTenants("a", "b"), v, rec, logger.Nop(), 2)

	results, err := job.Run(context.Background(), ReconcilePayload{Repair: true})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, TenantResult{TenantID: "a", Drifts: 0, ProductsUpdated: 2}, results[0])
	assert.Equal(t, TenantResult{TenantID: "b", Drifts: 2, ProductsUpdated: 2}, results[1])
	assert.Equal(t, map[string]int{"a": 0, "b": 2}, rec.m)

	sort.Strings(v.repaired)
	assert.Equal(t, []string{"a", "b"}, v.repaired)
}

func TestReconcileJob_SingleTenantWithoutRepair(t *testing.T) {
	v := &fakeVerifier{drifts: map[string]int{"a": 1}}
	job := NewReconcileJob(fakeTenants{err: errors.New("no se debe llamar")}, v, nil, logger.Nop(), 0)

	results, err := job.Run(context.Background(), ReconcilePayload{TenantID: "a"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Drifts)
	assert.Empty(t, v.repaired)
}

func TestReconcileJob_FailingTenantDoesNotStopOthers(t *testing.T) {
	v := &fakeVerifier{drifts: map[string]int{}, failTenant: "b"}
	job := NewReconcileJob(activeTenants("a", "b", "c"), v, nil, logger.Nop(), 1)

	_, err := job.Run(context.Background(), ReconcilePayload{Repair: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tenant b")

	sort.Strings(v.repaired)
	assert.Equal(t, []string{"a", "c"}, v.repaired)
}

func TestReconcileJob_ListError(t *testing.T) {
	job := NewReconcileJob(fakeTenants{err: errors.New("control caído")}, &fakeVerifier{}, nil, logger.Nop(), 1)
	_, err := job.Run(context.Background(), ReconcilePayload{})
	assert.ErrorContains(t, err, "listar tenants")
}

func TestReconcileJob_HandleBadPayloadSkipsRetry(t *testing.T) {
	job := NewReconcileJob(activeTenants(), &fakeVerifier{}, nil, logger.Nop(), 1)
	err := job.Handle(context.Background(), asynq.NewTask(TaskStockReconcile, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestNewReconcileTask(t *testing.T) {
	task, err := NewReconcileTask(ReconcilePayload{TenantID: "a", Repair: true})
	require.NoError(t, err)
	assert.Equal(t, TaskStockReconcile, task.Type())

	var p ReconcilePayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, "a", p.TenantID)
	assert.True(t, p.Repair)
}
