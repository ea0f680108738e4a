package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"animalrescue/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/sirupsen/logrus"
)

// CognitoAPI is the subset of the Cognito user pool client used here.
type CognitoAPI interface {
	GlobalSignOutAPI
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
	SignUp(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cognitoidentityprovider.ConfirmSignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error)
}

// CognitoProvider signs reviewers in and out of a Cognito user pool and
// holds the resulting session.
type CognitoProvider struct {
	client   CognitoAPI
	verifier TokenVerifier
	clientID string
	logger   logrus.FieldLogger

	mu           sync.Mutex
	session      *types.Session
	email        string
	refreshToken string

	subscribers observers
}

func NewCognitoProvider(client CognitoAPI, verifier TokenVerifier, clientID string, logger logrus.FieldLogger) *CognitoProvider {
	return &CognitoProvider{
		client:   client,
		verifier: verifier,
		clientID: clientID,
		logger:   logger,
	}
}

// SignIn authenticates with USER_PASSWORD_AUTH. Bad credentials and
// unconfirmed accounts come back as ErrUnauthorized.
func (p *CognitoProvider) SignIn(ctx context.Context, email, password string) (*types.Session, error) {
	email = strings.TrimSpace(email)

	resp, err := p.client.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: ctypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(p.clientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return nil, mapAuthError(err)
	}

	session, refreshToken, err := p.sessionFromResult(ctx, resp.AuthenticationResult)
	if err != nil {
		return nil, err
	}
	if session.Email == "" {
		session.Email = email
	}

	p.mu.Lock()
	p.session = session
	p.email = email
	p.refreshToken = refreshToken
	p.mu.Unlock()

	p.logger.WithField("reviewer_id", session.ReviewerID).Info("reviewer signed in")
	p.subscribers.publish(SessionEvent{Kind: SignedIn, Session: copySession(session)})

	return copySession(session), nil
}

// Resume seeds the provider with a refresh token kept from an earlier sign-in,
// so Refresh can mint a new access token without the password.
func (p *CognitoProvider) Resume(refreshToken string) {
	p.mu.Lock()
	p.refreshToken = refreshToken
	p.mu.Unlock()
}

func (p *CognitoProvider) RefreshToken() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refreshToken
}

// Refresh exchanges the stored refresh token for a new access token.
func (p *CognitoProvider) Refresh(ctx context.Context) (*types.Session, error) {
	p.mu.Lock()
	refreshToken := p.refreshToken
	email := p.email
	p.mu.Unlock()

	if refreshToken == "" {
		return nil, types.ErrUnauthorized
	}

	resp, err := p.client.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: ctypes.AuthFlowTypeRefreshTokenAuth,
		ClientId: aws.String(p.clientID),
		AuthParameters: map[string]string{
			"REFRESH_TOKEN": refreshToken,
		},
	})
	if err != nil {
		return nil, mapAuthError(err)
	}

	session, _, err := p.sessionFromResult(ctx, resp.AuthenticationResult)
	if err != nil {
		return nil, err
	}
	if session.Email == "" {
		session.Email = email
	}

	p.mu.Lock()
	p.session = session
	p.mu.Unlock()

	p.subscribers.publish(SessionEvent{Kind: Refreshed, Session: copySession(session)})

	return copySession(session), nil
}

func (p *CognitoProvider) CurrentSession(ctx context.Context) (*types.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session.Expired(time.Now()) {
		return nil, nil
	}
	return copySession(p.session), nil
}

func (p *CognitoProvider) Subscribe(fn func(SessionEvent)) func() {
	return p.subscribers.add(fn)
}

// SignOut revokes the reviewer's tokens. With no session it does nothing.
func (p *CognitoProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	session := p.session
	p.mu.Unlock()

	if session == nil {
		return nil
	}

	_, err := p.client.GlobalSignOut(ctx, &cognitoidentityprovider.GlobalSignOutInput{
		AccessToken: aws.String(session.AccessToken),
	})
	if err != nil {
		return fmt.Errorf("global sign out: %w", err)
	}

	p.mu.Lock()
	p.session = nil
	p.refreshToken = ""
	p.mu.Unlock()

	p.logger.WithField("reviewer_id", session.ReviewerID).Info("reviewer signed out")
	p.subscribers.publish(SessionEvent{Kind: SignedOut})

	return nil
}

// SignUp creates an unconfirmed reviewer account and returns its subject.
func (p *CognitoProvider) SignUp(ctx context.Context, email, password string, profile types.Profile) (string, error) {
	resp, err := p.client.SignUp(ctx, &cognitoidentityprovider.SignUpInput{
		ClientId: aws.String(p.clientID),
		Username: aws.String(email),
		Password: aws.String(password),
		UserAttributes: []ctypes.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("name"), Value: aws.String(profile.Name)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("sign up: %w", err)
	}

	return aws.ToString(resp.UserSub), nil
}

func (p *CognitoProvider) ConfirmSignUp(ctx context.Context, email, code string) error {
	_, err := p.client.ConfirmSignUp(ctx, &cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(p.clientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
	})
	if err != nil {
		return fmt.Errorf("confirm sign up: %w", err)
	}

	return nil
}

func (p *CognitoProvider) sessionFromResult(ctx context.Context, result *ctypes.AuthenticationResultType) (*types.Session, string, error) {
	if result == nil || result.AccessToken == nil {
		return nil, "", fmt.Errorf("%w: no access token issued", types.ErrUnauthorized)
	}

	session, err := p.verifier.Verify(ctx, aws.ToString(result.AccessToken))
	if err != nil {
		return nil, "", err
	}

	if session.ExpiresAt.IsZero() && result.ExpiresIn > 0 {
		session.ExpiresAt = time.Now().Add(time.Duration(result.ExpiresIn) * time.Second)
	}

	return session, aws.ToString(result.RefreshToken), nil
}

func mapAuthError(err error) error {
	var notAuthorized *ctypes.NotAuthorizedException
	var notConfirmed *ctypes.UserNotConfirmedException
	var notFound *ctypes.UserNotFoundException
	if errors.As(err, &notAuthorized) || errors.As(err, &notConfirmed) || errors.As(err, &notFound) {
		return fmt.Errorf("%w: %w", types.ErrUnauthorized, err)
	}

	return fmt.Errorf("initiate auth: %w", err)
}
