package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FirebaseAuth handles Firebase authentication
type FirebaseAuth struct {
	client *auth.Client
}

// NewFirebaseAuth creates a new FirebaseAuth instance. On Cloud Run the
// default credentials are used; locally GOOGLE_APPLICATION_CREDENTIALS is
// picked up by the SDK.
func NewFirebaseAuth(ctx context.Context, projectID string, opts ...option.ClientOption) (*FirebaseAuth, error) {
	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing app: %v", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Auth client: %v", err)
	}

	return &FirebaseAuth{
		client: client,
	}, nil
}

// VerifyToken verifies a Firebase ID token and returns the user claims.
func (f *FirebaseAuth) VerifyToken(ctx context.Context, idToken string) (*UserClaims, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}
	return claimsFromMap(token.UID, token.Claims), nil
}

// claimsFromMap reads the standard profile claims shared by Firebase and
// OIDC providers.
func claimsFromMap(uid string, m map[string]interface{}) *UserClaims {
	claims := &UserClaims{UID: uid}
	claims.Verified, _ = m["email_verified"].(bool)
	claims.Email, _ = m["email"].(string)
	claims.DisplayName, _ = m["name"].(string)
	claims.Picture, _ = m["picture"].(string)
	return claims
}
