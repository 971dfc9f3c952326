package inbound

import (
	"errors"
	"net"

	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/goerror"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/pkg/router"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/signin/entity"
	"github.com/perezjoseph/microrealestate-fork-sub005/internal/signin/usecase"
)

// HTTPEndpoint exposes HTTP handlers for the one-time code sign-in workflow.
type HTTPEndpoint struct {
	uc uc
}

// OTPIssue requests a one-time sign-in code for an identity.
// @Summary Request sign-in code
// @Description Sends a one-time sign-in code over the chosen channel. The response is identical whether or not the identity is registered.
// @Tags Signin
// @Accept json
// @Produce json
// @Param request body OTPIssueRequest true "Sign-in code request payload"
// @Success 200 {object} router.successResponse{data=OTPIssueResponse} "Request accepted"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 429 {object} router.errorResponse "Too many attempts"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Failure 503 {object} router.errorResponse "Delivery unavailable"
// @Router /api/v1/signin/otp [post]
func (h *HTTPEndpoint) OTPIssue(r *router.Request) (any, error) {
	var req OTPIssueRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.OTPIssue(r.Context(), usecase.OTPIssueInput{
		Identity: req.Identity,
		Channel:  req.Channel,
		SourceIP: sourceIP(r),
	}); err != nil {
		return nil, err
	}

	return &OTPIssueResponse{}, nil
}

// OTPRedeem exchanges a one-time sign-in code for a session token.
// @Summary Redeem sign-in code
// @Description Verifies a one-time sign-in code and returns a session token. A code is spent on first presentation.
// @Tags Signin
// @Accept json
// @Produce json
// @Param request body OTPRedeemRequest true "Sign-in code redemption payload"
// @Success 200 {object} router.successResponse{data=OTPRedeemResponse} "Redemption result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid or expired sign-in code"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/signin/otp/verify [post]
func (h *HTTPEndpoint) OTPRedeem(r *router.Request) (any, error) {
	var req OTPRedeemRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.OTPRedeem(r.Context(), usecase.OTPRedeemInput{Code: req.Code})
	if errors.Is(err, entity.ErrOTPNotFound) || errors.Is(err, entity.ErrOTPExpired) {
		// Spent, expired and never-issued codes are indistinguishable to callers.
		return nil, goerror.NewBusiness("invalid or expired sign-in code", goerror.CodeUnauthorized)
	}
	if err != nil {
		return nil, err
	}

	return OTPRedeemResponse{
		Identity:    resp.Identity,
		Channel:     resp.Channel.String(),
		AccessToken: resp.AccessToken,
	}, nil
}

// Session returns details of the authenticated session.
// @Summary Get session
// @Description Returns the identity and channel bound to the presented session token.
// @Tags Signin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} router.successResponse{data=SessionResponse} "Session detail"
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/signin/session [get]
func (h *HTTPEndpoint) Session(r *router.Request) (any, error) {
	resp, err := h.uc.Session(r.Context())
	if err != nil {
		return nil, err
	}

	return SessionResponse{
		Identity:  resp.Identity,
		Channel:   resp.Channel,
		ExpiresAt: resp.ExpiresAt,
	}, nil
}

// sourceIP unwraps the caller address set by the router's IP middleware.
func sourceIP(r *router.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}
	return ""
}
