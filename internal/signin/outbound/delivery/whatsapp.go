package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/instrument"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/codes"
)

// WhatsAppConfig carries the gateway settings.
type WhatsAppConfig struct {
	// BaseURL is the gateway message endpoint.
	BaseURL string
	// Token authenticates against the gateway.
	Token string
	// Timeout bounds one HTTP attempt.
	Timeout time.Duration
	// MaxRetries bounds how often a failed attempt is retried.
	MaxRetries uint64
}

// WhatsApp delivers one-time codes through an HTTP message gateway.
//
// Transient gateway failures (5xx, transport errors) are retried with capped
// fibonacci backoff; 4xx responses fail immediately.
type WhatsApp struct {
	client     *http.Client
	cfg        WhatsAppConfig
	ttlMinutes int
	ins        instrument.Instrumentation
}

// NewWhatsApp builds the WhatsApp channel sender.
func NewWhatsApp(cfg WhatsAppConfig, ttlMinutes int, ins instrument.Instrumentation) *WhatsApp {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &WhatsApp{
		client:     &http.Client{Timeout: timeout},
		cfg:        cfg,
		ttlMinutes: ttlMinutes,
		ins:        ins,
	}
}

type whatsAppPayload struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

func (w *WhatsApp) Send(ctx context.Context, identity, code string) error {
	ctx, span := w.ins.Tracer("signin.outbound.delivery").Start(ctx, "WhatsAppSend")
	defer span.End()

	body, err := json.Marshal(whatsAppPayload{
		To:   identity,
		Body: fmt.Sprintf("Your one-time sign-in code is %s. It expires in %d minutes.", code, w.ttlMinutes),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	backoff := retry.WithCappedDuration(5*time.Second, retry.NewFibonacci(500*time.Millisecond))
	backoff = retry.WithMaxRetries(w.cfg.MaxRetries, backoff)

	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		return w.attempt(ctx, body)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (w *WhatsApp) attempt(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+w.cfg.Token)

	resp, err := w.client.Do(req)
	if err != nil {
		return retry.RetryableError(err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusInternalServerError {
		return retry.RetryableError(fmt.Errorf("gateway returned %s", resp.Status))
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("gateway rejected message with %s", resp.Status)
	}

	return nil
}
