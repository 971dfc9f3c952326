package inbound

import "time"

type OTPIssueRequest struct {
	Identity string `json:"identity"`
	Channel  string `json:"channel"`
}

type OTPIssueResponse struct{}

func (OTPIssueResponse) Message() string {
	return "If an account with that identity exists, we have sent a sign-in code."
}

type OTPRedeemRequest struct {
	Code string `json:"code"`
}

type OTPRedeemResponse struct {
	Identity    string `json:"identity"`
	Channel     string `json:"channel"`
	AccessToken string `json:"access_token"`
}

type SessionResponse struct {
	Identity  string    `json:"identity"`
	Channel   string    `json:"channel"`
	ExpiresAt time.Time `json:"expires_at"`
}
