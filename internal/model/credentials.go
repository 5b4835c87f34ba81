package model

import (
	"context"
	"time"
)

// OTPValidity is how long a password-reset code stays usable. Expiry is
// evaluated lazily at confirm time; there is no background sweep.
const OTPValidity = 15 * time.Minute

// PasswordHasher applies a one-way transform to credentials.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// OTPGenerator produces short-lived numeric reset codes.
type OTPGenerator interface {
	Generate() (string, error)
}

// OTPNotifier dispatches a reset code to an address. Implementations
// report delivery failure via the returned error.
type OTPNotifier interface {
	SendOTP(ctx context.Context, email, code string) error
}
