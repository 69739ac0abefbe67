package auth

import (
	"context"
	"errors"

	"google.golang.org/api/idtoken"
)

var (
	ErrInvalidCredential = errors.New("invalid credential")
)

// GoogleProfile is the identity extracted from a verified Google ID token.
type GoogleProfile struct {
	Subject   string
	Email     string
	FirstName string
	LastName  string
	Picture   string
}

// CredentialVerifier verifies an opaque identity credential against the
// identity provider and extracts the holder's profile.
type CredentialVerifier interface {
	Verify(ctx context.Context, credential string) (*GoogleProfile, error)
}

// GoogleVerifier verifies Google ID tokens against the configured client ID.
type GoogleVerifier struct {
	clientID string
}

// NewGoogleVerifier creates a verifier expecting the given OAuth client ID
// as token audience.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID}
}

// Verify validates the credential signature, expiry and audience using
// Google's public keys, then extracts the profile claims.
func (v *GoogleVerifier) Verify(ctx context.Context, credential string) (*GoogleProfile, error) {
	payload, err := idtoken.Validate(ctx, credential, v.clientID)
	if err != nil {
		return nil, ErrInvalidCredential
	}
	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, ErrInvalidCredential
	}
	given, _ := payload.Claims["given_name"].(string)
	family, _ := payload.Claims["family_name"].(string)
	picture, _ := payload.Claims["picture"].(string)
	return &GoogleProfile{
		Subject:   payload.Subject,
		Email:     email,
		FirstName: given,
		LastName:  family,
		Picture:   picture,
	}, nil
}
