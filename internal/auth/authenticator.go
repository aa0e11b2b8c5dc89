package auth

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// Authenticator turns credentials into ledger users. The RPC layer only sees
// this interface, so the credential scheme can change without touching it.
type Authenticator interface {
	// Register creates an account. Implementations normalize the email and
	// return ErrEmailExists when it is taken.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the user owning email when credential matches,
	// and ErrInvalidCredentials otherwise.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential reports whether credential is acceptable for a new account.
	ValidateCredential(credential string) error
}

var _ Authenticator = (*PasswordAuthenticator)(nil)
