package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ChristianJLC/web/internal/infra"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu      sync.Mutex
	err     error
	enviado []string
	to      []string
}

func (m *fakeMailer) Send(to []string, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.to = to
	m.enviado = append(m.enviado, subject+"\n"+body)
	return nil
}

func (m *fakeMailer) enviados() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.enviado)
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

var payloadPrueba = AlertaStockPayload{
	Origen: "venta",
	Productos: []ProductoAlerta{
		{ID: "1", SKU: "FIL-001", Nombre: "Filtro", Stock: 1, MinStock: 3},
	},
}

func TestRenderAlertaStock(t *testing.T) {
	subject, body := RenderAlertaStock("Repuestos Demo", payloadPrueba)
	assert.Equal(t, "[Repuestos Demo] 1 producto(s) con stock bajo", subject)
	assert.Contains(t, body, "registrar una venta")
	assert.Contains(t, body, "- Filtro (FIL-001): stock 1, minimo 3")
}

func TestAlertaStockWorker_Process(t *testing.T) {
	mailer := &fakeMailer{}
	w := NewAlertaStockWorker(mailer, nil, []string{"ops@example.com"}, "Demo")

	raw, err := json.Marshal(payloadPrueba)
	require.NoError(t, err)
	require.NoError(t, w.Process(context.Background(), raw))
	assert.Equal(t, 1, mailer.enviados())
	assert.Equal(t, []string{"ops@example.com"}, mailer.to)

	// empty alerts are a no-op
	require.NoError(t, w.Process(context.Background(), json.RawMessage(`{"origen":"compra","productos":[]}`)))
	assert.Equal(t, 1, mailer.enviados())

	assert.Error(t, w.Process(context.Background(), json.RawMessage(`{`)))
	assert.Error(t, NewAlertaStockWorker(mailer, nil, nil, "Demo").Process(context.Background(), raw))
}

func TestAlertaStockWorker_CircuitoAbierto(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp: connection refused")}
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{Name: "smtp", FailureThreshold: 2, OpenTimeout: time.Hour})
	w := NewAlertaStockWorker(mailer, cb, []string{"ops@example.com"}, "Demo")
	raw, _ := json.Marshal(payloadPrueba)

	assert.Error(t, w.Process(context.Background(), raw))
	assert.Error(t, w.Process(context.Background(), raw))
	assert.Equal(t, infra.CBOpen, cb.State())

	err := w.Process(context.Background(), raw)
	assert.ErrorIs(t, err, infra.ErrCircuitOpen)
}

func TestDispatcherEncola(t *testing.T) {
	mr, rdb := newRedis(t)
	require.NoError(t, NewDispatcher(rdb).EnqueueAlertaStock(context.Background(), payloadPrueba))

	items, err := mr.List(QueueAlertas)
	require.NoError(t, err)
	require.Len(t, items, 1)
	var job Job
	require.NoError(t, json.Unmarshal([]byte(items[0]), &job))
	assert.Equal(t, JobAlertaStock, job.Type)
	assert.JSONEq(t, `{"origen":"venta","productos":[{"id":"1","sku":"FIL-001","nombre":"Filtro","stock":1,"min_stock":3}]}`, string(job.Payload))
}

func TestProcessJob_FallosVanALaDLQ(t *testing.T) {
	ctx := context.Background()
	_, rdb := newRedis(t)
	mailer := &fakeMailer{err: errors.New("smtp down")}
	handlers := &WorkerHandlers{AlertaStock: NewAlertaStockWorker(mailer, nil, []string{"ops@example.com"}, "Demo")}

	data, _ := json.Marshal(payloadPrueba)
	job, _ := json.Marshal(Job{Type: JobAlertaStock, Payload: data})

	processJob(ctx, rdb, handlers, QueueAlertas, string(job))
	processJob(ctx, rdb, handlers, QueueAlertas, `no es json`)
	processJob(ctx, rdb, handlers, QueueAlertas, `{"type":"desconocido","payload":{}}`)

	n, err := DLQLength(ctx, rdb, QueueAlertas)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	entries, err := PeekDLQ(ctx, rdb, QueueAlertas, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	// newest first
	assert.Equal(t, "desconocido", entries[0].JobType)
	assert.Equal(t, "no es json", entries[1].Raw)
	assert.Equal(t, JobAlertaStock, entries[2].JobType)
	assert.Contains(t, entries[2].Error, "smtp down")
	assert.Equal(t, string(job), entries[2].Raw)
}

func TestWorkerPool_ConsumeYTermina(t *testing.T) {
	_, rdb := newRedis(t)
	mailer := &fakeMailer{}
	handlers := &WorkerHandlers{AlertaStock: NewAlertaStockWorker(mailer, nil, []string{"ops@example.com"}, "Demo")}

	ctx, cancel := context.WithCancel(context.Background())
	wg := StartWorkerPool(ctx, rdb, handlers, 2)

	require.NoError(t, NewDispatcher(rdb).EnqueueAlertaStock(context.Background(), payloadPrueba))
	assert.Eventually(t, func() bool { return mailer.enviados() == 1 }, 3*time.Second, 20*time.Millisecond)

	cancel()
	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(7 * time.Second):
		t.Fatal("workers did not stop")
	}
}
