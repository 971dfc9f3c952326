package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/goerror"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/hash"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/instrument"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/kvstore"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/signin/entity"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const keyPrefix = "signin:otp:"

// evictionGrace keeps a record in the store briefly past its expiry, so a
// late redeem consumes an expired record instead of finding nothing.
const evictionGrace = time.Minute

// Cache stores one-time code records. Records are keyed by a keyed hash of
// the code, so the store never holds anything redeemable.
type Cache struct {
	store kvstore.Store
	hmac  hash.Hash
	ins   instrument.Instrumentation
}

// NewCache builds the record store over a kvstore driver.
func NewCache(store kvstore.Store, hmac hash.Hash, ins instrument.Instrumentation) *Cache {
	return &Cache{store: store, hmac: hmac, ins: ins}
}

// SaveCode persists the record under the derived key of code. The TTL is the
// record lifetime plus a short grace window.
func (c *Cache) SaveCode(ctx context.Context, code string, record entity.OTPRecord) (err error) {
	ctx, span := c.startSpan(ctx, "SaveCode")
	defer func() { c.endSpan(span, err) }()

	key, err := c.key(code)
	if err != nil {
		return err
	}

	value, err := json.Marshal(record)
	if err != nil {
		return err
	}

	err = c.store.Set(ctx, key, value, record.ExpiresAt.Sub(record.CreatedAt)+evictionGrace)
	return err
}

// TakeCode fetches and removes the record bound to code in one atomic step.
// A missing key maps to goerror.ErrNotFound.
func (c *Cache) TakeCode(ctx context.Context, code string) (_ *entity.OTPRecord, err error) {
	ctx, span := c.startSpan(ctx, "TakeCode")
	defer func() { c.endSpan(span, err) }()

	key, err := c.key(code)
	if err != nil {
		return nil, err
	}

	value, err := c.store.GetDel(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var record entity.OTPRecord
	if err = json.Unmarshal(value, &record); err != nil {
		return nil, err
	}

	return &record, nil
}

func (c *Cache) key(code string) (string, error) {
	digest, err := c.hmac.Hash(code)
	if err != nil {
		return "", err
	}

	return keyPrefix + string(digest), nil
}

func (c *Cache) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("signin.outbound.cache").Start(ctx, name)
}

func (c *Cache) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
