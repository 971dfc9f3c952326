package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	libJWT "github.com/golang-jwt/jwt/v5"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/goerror"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/jwt"
)

func TestUsecase_Session(t *testing.T) {
	fix := newFixture(t, 5)

	expires := fix.clk.Now().Add(30 * time.Minute)
	ctx := jwt.SetAuth(context.Background(), jwt.Claims{
		RegisteredClaims: libJWT.RegisteredClaims{
			Subject:   "a@b.com",
			ExpiresAt: libJWT.NewNumericDate(expires),
		},
		Identity: "a@b.com",
		Channel:  "email",
	})

	out, err := fix.uc.Session(ctx)
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	if out.Identity != "a@b.com" || out.Channel != "email" {
		t.Errorf("Session() = %q over %q, want a@b.com over email", out.Identity, out.Channel)
	}
	if !out.ExpiresAt.Equal(expires) {
		t.Errorf("Session() expires = %v, want %v", out.ExpiresAt, expires)
	}
}

func TestUsecase_Session_Unauthenticated(t *testing.T) {
	fix := newFixture(t, 5)

	_, err := fix.uc.Session(context.Background())

	var gerr *goerror.Error
	if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeUnauthorized {
		t.Errorf("Session() error = %v, want unauthorized", err)
	}
}
