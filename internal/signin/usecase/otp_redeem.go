package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/goerror"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/signin/entity"
)

type OTPRedeemInput struct {
	Code string `validate:"required,min=6,max=64"`
}

type OTPRedeemOutput struct {
	Identity    string
	Channel     entity.Channel
	AccessToken string
}

func (s *Usecase) OTPRedeem(ctx context.Context, in OTPRedeemInput) (*OTPRedeemOutput, error) {
	ctx, span := s.startSpan(ctx, "OTPRedeem")
	defer span.End()

	in.Code = strings.TrimSpace(in.Code)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	// One atomic fetch-and-delete: whatever happens after this line, the code
	// can never be presented again.
	record, err := s.repoCache.TakeCode(ctx, in.Code)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "sign-in code not found or already redeemed")
		return nil, entity.ErrOTPNotFound
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo take sign-in code", "error", err)
		return nil, goerror.NewServer(err)
	}

	if record.Expired(s.clock.Now()) {
		slog.WarnContext(ctx, "sign-in code presented after expiry", "channel", record.Channel.String())
		return nil, entity.ErrOTPExpired
	}

	token, err := s.jwt.Generate(record.Identity, record.Channel.String())
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate session token", "channel", record.Channel.String(), "error", err)
		return nil, goerror.NewServer(err)
	}

	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoMessaging.PublishOTPRedeemed(ctx, OTPRedeemedEvent{
			EventID:  s.uid.Generate(),
			Identity: record.Identity,
			Channel:  record.Channel.String(),
		}); err != nil {
			slog.ErrorContext(ctx, "failed to publish otp redeemed", "error", err)
		}
		return nil
	})

	return &OTPRedeemOutput{
		Identity:    record.Identity,
		Channel:     record.Channel,
		AccessToken: token,
	}, nil
}
