package worker

// alerta_stock_worker.go
// Processes alerta_stock jobs: e-mails the operator the products that reached
// their minimum stock after a compra or venta was committed.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ChristianJLC/web/internal/infra"

	"github.com/rs/zerolog/log"
)

// ProductoAlerta is one product at or below its minimum stock.
type ProductoAlerta struct {
	ID       string `json:"id"`
	SKU      string `json:"sku"`
	Nombre   string `json:"nombre"`
	Stock    int    `json:"stock"`
	MinStock int    `json:"min_stock"`
}

// AlertaStockPayload is the job body sent to QueueAlertas.
type AlertaStockPayload struct {
	Origen    string           `json:"origen"` // compra | venta
	Productos []ProductoAlerta `json:"productos"`
}

// Mailer is the outbound mail dependency; *infra.Mailer satisfies it.
type Mailer interface {
	Send(to []string, subject, body string) error
}

// AlertaStockWorker sends the low-stock e-mail through a circuit breaker so an
// SMTP outage fails fast instead of blocking every worker.
type AlertaStockWorker struct {
	mailer  Mailer
	cb      *infra.CircuitBreaker
	to      []string
	negocio string
}

func NewAlertaStockWorker(mailer Mailer, cb *infra.CircuitBreaker, to []string, negocio string) *AlertaStockWorker {
	return &AlertaStockWorker{mailer: mailer, cb: cb, to: to, negocio: negocio}
}

// Process renders and sends the alert. A returned error moves the job to the DLQ.
func (w *AlertaStockWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload AlertaStockPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("alerta_stock: invalid payload: %w", err)
	}
	if len(payload.Productos) == 0 {
		return nil
	}
	if len(w.to) == 0 {
		return errors.New("alerta_stock: no recipients configured")
	}

	subject, body := RenderAlertaStock(w.negocio, payload)
	send := func() error { return w.mailer.Send(w.to, subject, body) }
	var err error
	if w.cb != nil {
		err = w.cb.Execute(send)
	} else {
		err = send()
	}
	if err != nil {
		return fmt.Errorf("alerta_stock: send: %w", err)
	}
	log.Info().Int("productos", len(payload.Productos)).Msg("alerta_stock: e-mail sent")
	return nil
}

// RenderAlertaStock builds the plain-text subject and body of the alert.
func RenderAlertaStock(negocio string, p AlertaStockPayload) (string, string) {
	subject := fmt.Sprintf("[%s] %d producto(s) con stock bajo", negocio, len(p.Productos))
	var b strings.Builder
	fmt.Fprintf(&b, "Tras registrar una %s, los siguientes productos quedaron en o por debajo del stock minimo:\n\n", p.Origen)
	for _, pr := range p.Productos {
		fmt.Fprintf(&b, "- %s (%s): stock %d, minimo %d\n", pr.Nombre, pr.SKU, pr.Stock, pr.MinStock)
	}
	return subject, b.String()
}
