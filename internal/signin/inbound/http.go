package inbound

import (
	"context"

	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/router"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/signin/usecase"
)

type uc interface {
	OTPIssue(ctx context.Context, in usecase.OTPIssueInput) error
	OTPRedeem(ctx context.Context, in usecase.OTPRedeemInput) (*usecase.OTPRedeemOutput, error)
	Session(ctx context.Context) (*usecase.SessionOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// One-time code flow
	r.POST("/api/v1/signin/otp", end.OTPIssue)
	r.POST("/api/v1/signin/otp/verify", end.OTPRedeem)

	// Session introspection (need authenticated)
	r.GET("/api/v1/signin/session", end.Session)
}
