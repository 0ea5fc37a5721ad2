package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"

	"aceves/internal/infra"
	"aceves/internal/model"
	"aceves/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	EmailConfirmacion = "confirmacion"
	EmailEnvio        = "envio"
)

// EmailJobPayload is the job envelope sent to QueueEmail. The order is
// re-read by the worker so retries always render current data.
type EmailJobPayload struct {
	Tipo    string `json:"tipo"` // confirmacion | envio
	OrderID string `json:"order_id"`
}

// MailSender is satisfied by *infra.Mailer.
type MailSender interface {
	Send(msg infra.Message) error
}

// EmailWorker renders and sends order e-mails. Confirmations carry the PDF
// receipt as attachment.
type EmailWorker struct {
	mailer      MailSender
	orders      repository.OrderRepository
	cb          *infra.CircuitBreaker
	storeName   string
	storagePath string
}

func NewEmailWorker(mailer MailSender, orders repository.OrderRepository, cb *infra.CircuitBreaker, storeName, storagePath string) *EmailWorker {
	return &EmailWorker{mailer: mailer, orders: orders, cb: cb, storeName: storeName, storagePath: storagePath}
}

func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Permanent(fmt.Errorf("email_worker: invalid payload: %w", err))
	}
	orderID, err := uuid.Parse(payload.OrderID)
	if err != nil {
		return Permanent(fmt.Errorf("email_worker: invalid order_id %q", payload.OrderID))
	}

	order, err := w.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Permanent(fmt.Errorf("email_worker: order %s not found", orderID))
		}
		return err
	}
	if order.CustomerEmail == "" {
		log.Warn().Str("order_id", payload.OrderID).Msg("email_worker: empty customer_email, skipping")
		return nil
	}

	var msg infra.Message
	switch payload.Tipo {
	case EmailConfirmacion:
		msg, err = w.confirmacion(order)
	case EmailEnvio:
		msg, err = w.envio(order)
	default:
		return Permanent(fmt.Errorf("email_worker: unknown tipo %q", payload.Tipo))
	}
	if err != nil {
		return err
	}

	if err := w.cb.Execute(func() error { return w.mailer.Send(msg) }); err != nil {
		return err
	}
	log.Info().Str("order_id", payload.OrderID).Str("tipo", payload.Tipo).Msg("email_worker: sent")
	return nil
}

func (w *EmailWorker) confirmacion(order *model.Order) (infra.Message, error) {
	html, err := render(confirmacionTmpl, w.datos(order))
	if err != nil {
		return infra.Message{}, err
	}
	msg := infra.Message{
		To:      order.CustomerEmail,
		Subject: fmt.Sprintf("Confirmación de tu pedido #%s", shortID(order.ID)),
		HTML:    html,
	}

	pdf, err := infra.GenerateReciboPDF(order, w.storeName, w.storagePath)
	if err != nil {
		// The e-mail still goes out without the receipt.
		log.Error().Err(err).Str("order_id", order.ID.String()).Msg("email_worker: receipt PDF failed")
		return msg, nil
	}
	msg.Attachments = []infra.Attachment{{
		Filename:    fmt.Sprintf("recibo_%s.pdf", shortID(order.ID)),
		ContentType: "application/pdf",
		Content:     pdf,
	}}
	return msg, nil
}

func (w *EmailWorker) envio(order *model.Order) (infra.Message, error) {
	html, err := render(envioTmpl, w.datos(order))
	if err != nil {
		return infra.Message{}, err
	}
	return infra.Message{
		To:      order.CustomerEmail,
		Subject: fmt.Sprintf("Tu pedido #%s va en camino", shortID(order.ID)),
		HTML:    html,
	}, nil
}

type emailDatos struct {
	Tienda   string
	Nombre   string
	Pedido   string
	Items    []model.OrderItem
	Total    string
	Tracking string
}

func (w *EmailWorker) datos(order *model.Order) emailDatos {
	d := emailDatos{
		Tienda: w.storeName,
		Nombre: order.CustomerName,
		Pedido: shortID(order.ID),
		Items:  order.Items,
		Total:  order.TotalAmount.StringFixed(2),
	}
	if order.TrackingNumber != nil {
		d.Tracking = *order.TrackingNumber
	}
	return d
}

func shortID(id uuid.UUID) string { return id.String()[:8] }

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("email_worker: render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

var confirmacionTmpl = template.Must(template.New("confirmacion").Parse(`<h2>¡Gracias por tu compra, {{.Nombre}}!</h2>
<p>Recibimos tu pedido <strong>#{{.Pedido}}</strong> y ya lo estamos preparando.</p>
<table cellpadding="4">
{{range .Items}}<tr><td>{{.Name}}{{if .Size}} (talla {{.Size}}){{end}}</td><td>x{{.Quantity}}</td><td>${{.Price.StringFixed 2}}</td></tr>
{{end}}</table>
<p><strong>Total: ${{.Total}} MXN</strong></p>
<p>Adjuntamos tu recibo en PDF.</p>
<p>{{.Tienda}}</p>`))

var envioTmpl = template.Must(template.New("envio").Parse(`<h2>¡Tu pedido va en camino, {{.Nombre}}!</h2>
<p>Tu pedido <strong>#{{.Pedido}}</strong> fue enviado.</p>
{{if .Tracking}}<p>Número de guía: <strong>{{.Tracking}}</strong></p>{{end}}
<p>{{.Tienda}}</p>`))
