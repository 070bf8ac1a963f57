package otp

import (
	"fmt"
	"time"

	apperrors "github.com/example/dayof/internal/core/errors"
)

// Messages shown when a verification is rejected locally.
const (
	MsgExpired     = "OTP expired. Please resend a new OTP."
	MsgInvalidCode = "Please enter a valid 6-digit OTP"
	MsgNotSent     = "No OTP has been sent yet. Send one to the customer first."
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
	Expired bool // rejection is due to expiry rather than input
}

// Error converts the guard result to an error if not allowed.
// Expiry rejections become ExpiryError, everything else ValidationError.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	if r.Expired {
		return apperrors.Expiry(r.Reason)
	}
	return apperrors.Validation("%s", r.Reason)
}

// VerifyContext provides context for verification guards.
type VerifyContext struct {
	Challenge Challenge
	Code      string
	Now       time.Time
}

// ValidateCode checks the input policy: exactly CodeLength ASCII digits.
func ValidateCode(code string) GuardResult {
	if len(code) != CodeLength {
		return GuardResult{Allowed: false, Reason: MsgInvalidCode}
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return GuardResult{Allowed: false, Reason: MsgInvalidCode}
		}
	}
	return GuardResult{Allowed: true}
}

// CanVerify evaluates whether a verification request may be sent.
// Rules:
// - Challenge must not be verified already
// - Challenge must not be expired (checked before the input, so any code is rejected)
// - A code must have been sent
// - Code must be exactly 6 digits
func CanVerify(ctx VerifyContext) GuardResult {
	switch ctx.Challenge.State(ctx.Now) {
	case StateVerified:
		return GuardResult{Allowed: false, Reason: "OTP already verified"}
	case StateExpired:
		return GuardResult{Allowed: false, Reason: MsgExpired, Expired: true}
	case StateNotSent:
		return GuardResult{Allowed: false, Reason: MsgNotSent}
	}

	return ValidateCode(ctx.Code)
}

// CanSend evaluates whether a code may be issued or re-issued.
// Rules:
// - Challenge must not be verified already (resend after expiry is always allowed)
func CanSend(kind Kind, c Challenge) GuardResult {
	if c.IsVerified {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("%s OTP already verified", kind.Label()),
		}
	}
	return GuardResult{Allowed: true}
}
