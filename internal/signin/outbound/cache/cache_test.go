package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/goerror"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/hash"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/instrument"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/kvstore"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/signin/entity"
)

type clockStub struct{ now time.Time }

func (c *clockStub) Now() time.Time { return c.now }

func newCache(t *testing.T) (*Cache, *clockStub) {
	t.Helper()

	clk := &clockStub{now: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)}
	store := kvstore.NewMemory(clk)
	t.Cleanup(func() { store.Close() })

	return NewCache(store, hash.NewHMACSHA256("test-secret"), instrument.NewNoop()), clk
}

func TestCacheSaveTakeCode(t *testing.T) {
	ctx := context.Background()
	c, clk := newCache(t)

	record := entity.OTPRecord{
		Identity:  "a@b.com",
		Channel:   entity.ChannelEmail,
		CreatedAt: clk.Now(),
		ExpiresAt: clk.Now().Add(5 * time.Minute),
	}

	if err := c.SaveCode(ctx, "CODE123456ab", record); err != nil {
		t.Fatalf("SaveCode() error = %v", err)
	}

	got, err := c.TakeCode(ctx, "CODE123456ab")
	if err != nil {
		t.Fatalf("TakeCode() error = %v", err)
	}
	if got.Identity != record.Identity || got.Channel != record.Channel {
		t.Errorf("TakeCode() = %+v, want %+v", got, record)
	}
	if !got.ExpiresAt.Equal(record.ExpiresAt) {
		t.Errorf("TakeCode() ExpiresAt = %v, want %v", got.ExpiresAt, record.ExpiresAt)
	}

	if _, err := c.TakeCode(ctx, "CODE123456ab"); !errors.Is(err, goerror.ErrNotFound) {
		t.Errorf("second TakeCode() error = %v, want goerror.ErrNotFound", err)
	}
}

func TestCacheTakeCodeUnknown(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t)

	if _, err := c.TakeCode(ctx, "neverissued1"); !errors.Is(err, goerror.ErrNotFound) {
		t.Errorf("TakeCode() error = %v, want goerror.ErrNotFound", err)
	}
}

func TestCacheCodesDoNotCollide(t *testing.T) {
	ctx := context.Background()
	c, clk := newCache(t)

	first := entity.OTPRecord{
		Identity:  "a@b.com",
		Channel:   entity.ChannelEmail,
		CreatedAt: clk.Now(),
		ExpiresAt: clk.Now().Add(5 * time.Minute),
	}
	second := entity.OTPRecord{
		Identity:  "+18095551234",
		Channel:   entity.ChannelWhatsApp,
		CreatedAt: clk.Now(),
		ExpiresAt: clk.Now().Add(5 * time.Minute),
	}

	if err := c.SaveCode(ctx, "codeAAAAAAAA", first); err != nil {
		t.Fatalf("SaveCode() error = %v", err)
	}
	if err := c.SaveCode(ctx, "codeBBBBBBBB", second); err != nil {
		t.Fatalf("SaveCode() error = %v", err)
	}

	got, err := c.TakeCode(ctx, "codeBBBBBBBB")
	if err != nil {
		t.Fatalf("TakeCode() error = %v", err)
	}
	if got.Identity != second.Identity {
		t.Errorf("TakeCode() identity = %q, want %q", got.Identity, second.Identity)
	}

	got, err = c.TakeCode(ctx, "codeAAAAAAAA")
	if err != nil {
		t.Fatalf("TakeCode() error = %v", err)
	}
	if got.Identity != first.Identity {
		t.Errorf("TakeCode() identity = %q, want %q", got.Identity, first.Identity)
	}
}
