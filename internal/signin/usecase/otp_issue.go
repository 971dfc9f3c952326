package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/goerror"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/signin/entity"
)

type OTPIssueInput struct {
	Identity string `validate:"required,identity"`
	Channel  string `validate:"required,oneof=email whatsapp"`
	SourceIP string
}

func (s *Usecase) OTPIssue(ctx context.Context, in OTPIssueInput) error {
	ctx, span := s.startSpan(ctx, "OTPIssue")
	defer span.End()

	in.Identity = strings.TrimSpace(in.Identity)
	if channel := entity.Channel(in.Channel); channel == entity.ChannelEmail {
		in.Identity = strings.ToLower(in.Identity)
	}

	// Malformed input fails before any counter or store access.
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	channel, err := entity.ParseChannel(in.Channel)
	if err != nil {
		return goerror.NewInvalidInput(nil, "channel", "channel must be one of "+strings.Join(entity.ChannelNames(), ", "))
	}

	if err := s.allowIssue(ctx, in.Identity, in.SourceIP); err != nil {
		return err
	}

	account, err := s.repoDB.GetAccountByIdentity(ctx, in.Identity, channel)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "sign-in code requested for unknown identity", "channel", channel.String())
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account by identity", "channel", channel.String(), "error", err)
		return goerror.NewServer(err)
	}

	if account.Status != entity.AccountStatusActive {
		slog.WarnContext(ctx, "sign-in code requested for ineligible account", "account_id", account.ID, "status", account.Status)
		return nil
	}

	code, err := s.codeGen.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate sign-in code", "error", err)
		return goerror.NewServer(err)
	}

	now := s.clock.Now()
	record := entity.OTPRecord{
		Identity:  in.Identity,
		Channel:   channel,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.GetMinute("modules.signin.otp_ttl_minutes")),
	}

	if err := s.repoCache.SaveCode(ctx, code, record); err != nil {
		slog.ErrorContext(ctx, "failed to repo save sign-in code", "account_id", account.ID, "error", err)
		return goerror.NewServer(err)
	}

	// The record stays live on delivery failure; the client may retry and any
	// copy that did leave the building remains redeemable once.
	if err := s.sender.Send(ctx, in.Identity, code, channel); err != nil {
		slog.ErrorContext(ctx, "failed to deliver sign-in code", "account_id", account.ID, "channel", channel.String(), "error", err)
		return goerror.NewBusiness("could not deliver the sign-in code", goerror.CodeUnavailable)
	}

	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		if err := s.repoMessaging.PublishOTPIssued(ctx, OTPIssuedEvent{
			EventID:   s.uid.Generate(),
			Identity:  record.Identity,
			Channel:   record.Channel.String(),
			ExpiresAt: record.ExpiresAt,
		}); err != nil {
			slog.ErrorContext(ctx, "failed to publish otp issued", "account_id", account.ID, "error", err)
		}
		return nil
	})

	return nil
}

// allowIssue charges the issuance attempt against the identity budget and,
// when a source IP is known, the per-source budget. A store failure denies
// the attempt.
func (s *Usecase) allowIssue(ctx context.Context, identity, sourceIP string) error {
	decision, err := s.identityLimiter.Allow(ctx, identity)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check identity rate limit", "error", err)
		return goerror.NewServer(err)
	}
	if !decision.Allowed {
		slog.WarnContext(ctx, "sign-in code issuance rate limited", "scope", "identity", "count", decision.Count)
		return goerror.NewBusiness("too many sign-in attempts, try again later", goerror.CodeTooManyRequest)
	}

	if sourceIP == "" {
		return nil
	}

	decision, err = s.sourceLimiter.Allow(ctx, sourceIP)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check source rate limit", "error", err)
		return goerror.NewServer(err)
	}
	if !decision.Allowed {
		slog.WarnContext(ctx, "sign-in code issuance rate limited", "scope", "source_ip", "count", decision.Count)
		return goerror.NewBusiness("too many sign-in attempts, try again later", goerror.CodeTooManyRequest)
	}

	return nil
}
