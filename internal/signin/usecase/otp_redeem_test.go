package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/goerror"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/signin/entity"
	"go.uber.org/atomic"
)

func TestUsecase_OTPRedeem(t *testing.T) {
	fix := newFixture(t, 5)
	ctx := context.Background()

	code := fix.issue(t, "a@b.com", "email")

	out, err := fix.uc.OTPRedeem(ctx, OTPRedeemInput{Code: code})
	if err != nil {
		t.Fatalf("OTPRedeem() error = %v", err)
	}
	if out.Identity != "a@b.com" {
		t.Errorf("OTPRedeem() identity = %q, want %q", out.Identity, "a@b.com")
	}
	if out.Channel != entity.ChannelEmail {
		t.Errorf("OTPRedeem() channel = %q, want %q", out.Channel, entity.ChannelEmail)
	}

	claims, err := fix.jwt.Verify(out.AccessToken)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.Identity != "a@b.com" || claims.Channel != "email" {
		t.Errorf("claims = %q over %q, want a@b.com over email", claims.Identity, claims.Channel)
	}
}

func TestUsecase_OTPRedeem_SpentCodeIsGone(t *testing.T) {
	fix := newFixture(t, 5)
	ctx := context.Background()

	code := fix.issue(t, "a@b.com", "email")

	if _, err := fix.uc.OTPRedeem(ctx, OTPRedeemInput{Code: code}); err != nil {
		t.Fatalf("OTPRedeem() error = %v", err)
	}

	if _, err := fix.uc.OTPRedeem(ctx, OTPRedeemInput{Code: code}); !errors.Is(err, entity.ErrOTPNotFound) {
		t.Errorf("second OTPRedeem() error = %v, want %v", err, entity.ErrOTPNotFound)
	}
}

func TestUsecase_OTPRedeem_UnknownCode(t *testing.T) {
	fix := newFixture(t, 5)

	_, err := fix.uc.OTPRedeem(context.Background(), OTPRedeemInput{Code: "never-issued-code"})
	if !errors.Is(err, entity.ErrOTPNotFound) {
		t.Errorf("OTPRedeem() error = %v, want %v", err, entity.ErrOTPNotFound)
	}
}

func TestUsecase_OTPRedeem_ValidatesCodeShape(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{name: "empty"},
		{name: "whitespace only", code: "   "},
		{name: "too short", code: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fix := newFixture(t, 5)

			_, err := fix.uc.OTPRedeem(context.Background(), OTPRedeemInput{Code: tt.code})
			assertErrorCode(t, err, goerror.TypeValidation, goerror.CodeInvalidInput)
		})
	}
}

func TestUsecase_OTPRedeem_LateRedeemExpiresThenVanishes(t *testing.T) {
	fix := newFixture(t, 5)
	ctx := context.Background()

	code := fix.issue(t, "a@b.com", "email")
	fix.clk.Advance(5*time.Minute + time.Second)

	// The first late presentation consumes the record and reports expiry.
	if _, err := fix.uc.OTPRedeem(ctx, OTPRedeemInput{Code: code}); !errors.Is(err, entity.ErrOTPExpired) {
		t.Fatalf("late OTPRedeem() error = %v, want %v", err, entity.ErrOTPExpired)
	}

	// The record is spent, so a repeat is indistinguishable from never issued.
	if _, err := fix.uc.OTPRedeem(ctx, OTPRedeemInput{Code: code}); !errors.Is(err, entity.ErrOTPNotFound) {
		t.Errorf("repeat OTPRedeem() error = %v, want %v", err, entity.ErrOTPNotFound)
	}
}

func TestUsecase_OTPRedeem_RedeemWithinTTLAfterClockAdvance(t *testing.T) {
	fix := newFixture(t, 5)
	ctx := context.Background()

	code := fix.issue(t, "+18095551234", "whatsapp")
	fix.clk.Advance(4 * time.Minute)

	out, err := fix.uc.OTPRedeem(ctx, OTPRedeemInput{Code: code})
	if err != nil {
		t.Fatalf("OTPRedeem() error = %v", err)
	}
	if out.Identity != "+18095551234" || out.Channel != entity.ChannelWhatsApp {
		t.Errorf("OTPRedeem() = %q over %q, want +18095551234 over whatsapp", out.Identity, out.Channel)
	}
}

func TestUsecase_OTPRedeem_ConcurrentSingleWinner(t *testing.T) {
	const callers = 24

	fix := newFixture(t, 5)
	code := fix.issue(t, "a@b.com", "email")

	var wg sync.WaitGroup
	var won, lost atomic.Int64
	for range callers {
		wg.Go(func() {
			_, err := fix.uc.OTPRedeem(context.Background(), OTPRedeemInput{Code: code})
			switch {
			case err == nil:
				won.Inc()
			case errors.Is(err, entity.ErrOTPNotFound):
				lost.Inc()
			}
		})
	}
	wg.Wait()

	if won.Load() != 1 {
		t.Errorf("winners = %d, want exactly 1", won.Load())
	}
	if lost.Load() != callers-1 {
		t.Errorf("losers = %d, want %d", lost.Load(), callers-1)
	}
}

func TestUsecase_OTPRedeem_PublishesAuditEvent(t *testing.T) {
	fix := newFixture(t, 5)
	ctx := context.Background()

	code := fix.issue(t, "+18095551234", "whatsapp")
	if _, err := fix.uc.OTPRedeem(ctx, OTPRedeemInput{Code: code}); err != nil {
		t.Fatalf("OTPRedeem() error = %v", err)
	}
	if err := fix.mgr.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	fix.msg.mu.Lock()
	defer fix.msg.mu.Unlock()
	if len(fix.msg.redeemed) != 1 {
		t.Fatalf("redeemed events = %d, want 1", len(fix.msg.redeemed))
	}
	if fix.msg.redeemed[0].Identity != "+18095551234" || fix.msg.redeemed[0].Channel != "whatsapp" {
		t.Errorf("redeemed event = %+v, want +18095551234 over whatsapp", fix.msg.redeemed[0])
	}
}
