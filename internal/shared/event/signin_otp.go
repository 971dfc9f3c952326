package event

const OTPIssuedDestination string = "signin_otp_issued"
const OTPRedeemedDestination string = "signin_otp_redeemed"

type OTPIssuedMessage struct {
	EventID   int64  `json:"event_id"`
	Identity  string `json:"identity"`
	Channel   string `json:"channel"`
	ExpiresAt string `json:"expires_at"`
}

type OTPRedeemedMessage struct {
	EventID  int64  `json:"event_id"`
	Identity string `json:"identity"`
	Channel  string `json:"channel"`
}
