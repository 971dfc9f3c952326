package tests

import (
	"net/http"
	"testing"
)

// The issue endpoint answers the same way for registered and unregistered
// identities, so these tests only need a well-formed address.
const probeEmail = "blackbox@example.com"

func TestOTPIssueEmail(t *testing.T) {

	// Arrange
	payload := map[string]string{"identity": probeEmail, "channel": "email"}

	// Act
	status, body := doJSON(t, http.MethodPost, "/api/v1/signin/otp", payload, "")

	// Assert
	if status == http.StatusTooManyRequests {
		t.Skip("issue budget for this identity is exhausted")
	}
	if status != http.StatusOK {
		errEnv := decodeError(t, body)
		t.Fatalf("otp issue failed: status=%d message=%q", status, errEnv.Message)
	}

	env := decodeSuccess(t, body, nil)
	if env.Message == "" {
		t.Fatal("otp issue returned an empty message")
	}
}

func TestOTPIssueUnknownIdentityLooksIdentical(t *testing.T) {

	// Arrange
	known := map[string]string{"identity": probeEmail, "channel": "email"}
	unknown := map[string]string{"identity": "nobody-here@example.com", "channel": "email"}

	// Act
	knownStatus, knownBody := doJSON(t, http.MethodPost, "/api/v1/signin/otp", known, "")
	unknownStatus, unknownBody := doJSON(t, http.MethodPost, "/api/v1/signin/otp", unknown, "")

	// Assert
	if knownStatus == http.StatusTooManyRequests || unknownStatus == http.StatusTooManyRequests {
		t.Skip("issue budget for this source is exhausted")
	}
	if knownStatus != unknownStatus {
		t.Fatalf("statuses differ: known=%d unknown=%d", knownStatus, unknownStatus)
	}

	knownEnv := decodeSuccess(t, knownBody, nil)
	unknownEnv := decodeSuccess(t, unknownBody, nil)
	if knownEnv.Message != unknownEnv.Message {
		t.Fatalf("messages differ: known=%q unknown=%q", knownEnv.Message, unknownEnv.Message)
	}
}

func TestOTPIssueValidation(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]string
	}{
		{
			name:    "malformed email",
			payload: map[string]string{"identity": "not-an-email", "channel": "email"},
		},
		{
			name:    "phone without plus prefix",
			payload: map[string]string{"identity": "18095551234", "channel": "whatsapp"},
		},
		{
			name:    "unsupported channel",
			payload: map[string]string{"identity": "a@b.com", "channel": "carrier-pigeon"},
		},
		{
			name:    "missing identity",
			payload: map[string]string{"channel": "email"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := doJSON(t, http.MethodPost, "/api/v1/signin/otp", tt.payload, "")

			if status != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want %d", status, http.StatusUnprocessableEntity)
			}

			errEnv := decodeError(t, body)
			if errEnv.Message == "" {
				t.Fatal("validation error returned an empty message")
			}
		})
	}
}

func TestOTPRedeemUnknownCode(t *testing.T) {

	// Arrange
	payload := map[string]string{"code": "AAAAbbbb1234"}

	// Act
	status, body := doJSON(t, http.MethodPost, "/api/v1/signin/otp/verify", payload, "")

	// Assert
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", status, http.StatusUnauthorized)
	}

	errEnv := decodeError(t, body)
	if errEnv.Message == "" {
		t.Fatal("redeem error returned an empty message")
	}
}

func TestOTPRedeemValidation(t *testing.T) {

	// Arrange
	payload := map[string]string{"code": "abc"}

	// Act
	status, _ := doJSON(t, http.MethodPost, "/api/v1/signin/otp/verify", payload, "")

	// Assert
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", status, http.StatusUnprocessableEntity)
	}
}

func TestSessionRequiresToken(t *testing.T) {

	// Act
	status, _ := doJSON(t, http.MethodGet, "/api/v1/signin/session", nil, "")

	// Assert
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", status, http.StatusUnauthorized)
	}
}

func TestSessionRejectsGarbageToken(t *testing.T) {

	// Act
	status, _ := doJSON(t, http.MethodGet, "/api/v1/signin/session", nil, "not-a-real-token")

	// Assert
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", status, http.StatusUnauthorized)
	}
}
