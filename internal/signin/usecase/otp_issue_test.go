package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/goerror"
	"go.uber.org/atomic"
)

func assertErrorCode(t *testing.T, err error, wantType goerror.Type, wantCode goerror.Code) {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("error = %v, want *goerror.Error", err)
	}
	if gerr.Type() != wantType {
		t.Errorf("error type = %v, want %v", gerr.Type(), wantType)
	}
	if gerr.Code() != wantCode {
		t.Errorf("error code = %v, want %v", gerr.Code(), wantCode)
	}
}

func TestUsecase_OTPIssue(t *testing.T) {
	tests := []struct {
		name     string
		identity string
		channel  string
		wantCode goerror.Code
		wantSent int
	}{
		{
			name:     "email delivers a code",
			identity: "a@b.com",
			channel:  "email",
			wantSent: 1,
		},
		{
			name:     "phone delivers a code over whatsapp",
			identity: "+18095551234",
			channel:  "whatsapp",
			wantSent: 1,
		},
		{
			name:     "uppercase email is folded before lookup",
			identity: "A@B.COM",
			channel:  "email",
			wantSent: 1,
		},
		{
			name:     "unknown identity succeeds without delivery",
			identity: "nobody@b.com",
			channel:  "email",
			wantSent: 0,
		},
		{
			name:     "disabled account succeeds without delivery",
			identity: "off@b.com",
			channel:  "email",
			wantSent: 0,
		},
		{
			name:     "malformed email is rejected",
			identity: "not-an-email",
			channel:  "email",
			wantCode: goerror.CodeInvalidInput,
		},
		{
			name:     "phone without country prefix is rejected",
			identity: "8095551234",
			channel:  "whatsapp",
			wantCode: goerror.CodeInvalidInput,
		},
		{
			name:     "unsupported channel is rejected",
			identity: "a@b.com",
			channel:  "sms",
			wantCode: goerror.CodeInvalidInput,
		},
		{
			name:     "missing identity is rejected",
			channel:  "email",
			wantCode: goerror.CodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fix := newFixture(t, 5)

			err := fix.uc.OTPIssue(context.Background(), OTPIssueInput{Identity: tt.identity, Channel: tt.channel})
			if tt.wantCode != goerror.CodeInternal {
				assertErrorCode(t, err, goerror.TypeValidation, tt.wantCode)
			} else if err != nil {
				t.Fatalf("OTPIssue() error = %v", err)
			}

			if got := len(fix.sender.sent()); got != tt.wantSent {
				t.Errorf("delivered codes = %d, want %d", got, tt.wantSent)
			}
		})
	}
}

func TestUsecase_OTPIssue_RateLimitBoundary(t *testing.T) {
	fix := newFixture(t, 3)
	ctx := context.Background()

	for range 3 {
		if err := fix.uc.OTPIssue(ctx, OTPIssueInput{Identity: "a@b.com", Channel: "email"}); err != nil {
			t.Fatalf("OTPIssue() error = %v", err)
		}
	}

	err := fix.uc.OTPIssue(ctx, OTPIssueInput{Identity: "a@b.com", Channel: "email"})
	assertErrorCode(t, err, goerror.TypeBusiness, goerror.CodeTooManyRequest)

	if got := len(fix.sender.sent()); got != 3 {
		t.Errorf("delivered codes = %d, want 3", got)
	}
}

func TestUsecase_OTPIssue_RateLimitCountsUnknownIdentities(t *testing.T) {
	fix := newFixture(t, 2)
	ctx := context.Background()

	// Probing an unregistered identity burns budget like a real one.
	for range 2 {
		if err := fix.uc.OTPIssue(ctx, OTPIssueInput{Identity: "nobody@b.com", Channel: "email"}); err != nil {
			t.Fatalf("OTPIssue() error = %v", err)
		}
	}

	err := fix.uc.OTPIssue(ctx, OTPIssueInput{Identity: "nobody@b.com", Channel: "email"})
	assertErrorCode(t, err, goerror.TypeBusiness, goerror.CodeTooManyRequest)
}

func TestUsecase_OTPIssue_MalformedInputLeavesCounterUntouched(t *testing.T) {
	fix := newFixture(t, 2)
	ctx := context.Background()

	for range 5 {
		err := fix.uc.OTPIssue(ctx, OTPIssueInput{Identity: "a@b.com", Channel: "sms"})
		assertErrorCode(t, err, goerror.TypeValidation, goerror.CodeInvalidInput)
	}

	// The full budget must still be available after rejected requests.
	for range 2 {
		if err := fix.uc.OTPIssue(ctx, OTPIssueInput{Identity: "a@b.com", Channel: "email"}); err != nil {
			t.Fatalf("OTPIssue() error = %v", err)
		}
	}
}

func TestUsecase_OTPIssue_SourceLimitSpansIdentities(t *testing.T) {
	fix := newFixture(t, 2)
	ctx := context.Background()

	if err := fix.uc.OTPIssue(ctx, OTPIssueInput{Identity: "a@b.com", Channel: "email", SourceIP: "203.0.113.9"}); err != nil {
		t.Fatalf("OTPIssue() error = %v", err)
	}
	if err := fix.uc.OTPIssue(ctx, OTPIssueInput{Identity: "+18095551234", Channel: "whatsapp", SourceIP: "203.0.113.9"}); err != nil {
		t.Fatalf("OTPIssue() error = %v", err)
	}

	err := fix.uc.OTPIssue(ctx, OTPIssueInput{Identity: "off@b.com", Channel: "email", SourceIP: "203.0.113.9"})
	assertErrorCode(t, err, goerror.TypeBusiness, goerror.CodeTooManyRequest)

	// A different source still has budget for its own identity.
	if err := fix.uc.OTPIssue(ctx, OTPIssueInput{Identity: "a@b.com", Channel: "email", SourceIP: "198.51.100.7"}); err != nil {
		t.Fatalf("OTPIssue() error = %v", err)
	}
}

func TestUsecase_OTPIssue_WindowReset(t *testing.T) {
	fix := newFixture(t, 1)
	ctx := context.Background()

	if err := fix.uc.OTPIssue(ctx, OTPIssueInput{Identity: "a@b.com", Channel: "email"}); err != nil {
		t.Fatalf("OTPIssue() error = %v", err)
	}

	err := fix.uc.OTPIssue(ctx, OTPIssueInput{Identity: "a@b.com", Channel: "email"})
	assertErrorCode(t, err, goerror.TypeBusiness, goerror.CodeTooManyRequest)

	fix.clk.Advance(16 * time.Minute)

	if err := fix.uc.OTPIssue(ctx, OTPIssueInput{Identity: "a@b.com", Channel: "email"}); err != nil {
		t.Fatalf("OTPIssue() after window error = %v", err)
	}
}

func TestUsecase_OTPIssue_ConcurrentSharesBudget(t *testing.T) {
	const limit = 5
	const callers = 40

	fix := newFixture(t, limit)

	var wg sync.WaitGroup
	var granted, denied atomic.Int64
	for range callers {
		wg.Go(func() {
			err := fix.uc.OTPIssue(context.Background(), OTPIssueInput{Identity: "a@b.com", Channel: "email"})
			switch {
			case err == nil:
				granted.Inc()
			default:
				var gerr *goerror.Error
				if errors.As(err, &gerr) && gerr.Code() == goerror.CodeTooManyRequest {
					denied.Inc()
				}
			}
		})
	}
	wg.Wait()

	if granted.Load() != limit {
		t.Errorf("granted = %d, want %d", granted.Load(), limit)
	}
	if denied.Load() != callers-limit {
		t.Errorf("denied = %d, want %d", denied.Load(), callers-limit)
	}
	if got := len(fix.sender.sent()); got != limit {
		t.Errorf("delivered codes = %d, want %d", got, limit)
	}
}

func TestUsecase_OTPIssue_DeliveryFailureKeepsCodeLive(t *testing.T) {
	fix := newFixture(t, 5)
	ctx := context.Background()
	fix.sender.fail = errors.New("gateway down")

	err := fix.uc.OTPIssue(ctx, OTPIssueInput{Identity: "a@b.com", Channel: "email"})
	assertErrorCode(t, err, goerror.TypeBusiness, goerror.CodeUnavailable)

	// The stored code survives the failed delivery and stays redeemable.
	code := fix.sender.last()
	out, err := fix.uc.OTPRedeem(ctx, OTPRedeemInput{Code: code})
	if err != nil {
		t.Fatalf("OTPRedeem() error = %v", err)
	}
	if out.Identity != "a@b.com" {
		t.Errorf("OTPRedeem() identity = %q, want %q", out.Identity, "a@b.com")
	}
}

func TestUsecase_OTPIssue_PublishesAuditEvent(t *testing.T) {
	fix := newFixture(t, 5)

	fix.issue(t, "a@b.com", "email")
	if err := fix.mgr.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	fix.msg.mu.Lock()
	defer fix.msg.mu.Unlock()
	if len(fix.msg.issued) != 1 {
		t.Fatalf("issued events = %d, want 1", len(fix.msg.issued))
	}
	if fix.msg.issued[0].Identity != "a@b.com" || fix.msg.issued[0].Channel != "email" {
		t.Errorf("issued event = %+v, want identity a@b.com over email", fix.msg.issued[0])
	}
}
