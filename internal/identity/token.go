package identity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"animalrescue/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/sirupsen/logrus"
)

type GlobalSignOutAPI interface {
	GlobalSignOut(ctx context.Context, params *cognitoidentityprovider.GlobalSignOutInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GlobalSignOutOutput, error)
}

// TokenProvider serves a session that was already verified from an access
// token, for the lifetime of one request.
type TokenProvider struct {
	client GlobalSignOutAPI
	logger logrus.FieldLogger

	mu      sync.Mutex
	session *types.Session
	timer   *time.Timer

	subscribers observers
}

func NewTokenProvider(session *types.Session, client GlobalSignOutAPI, logger logrus.FieldLogger) *TokenProvider {
	p := &TokenProvider{
		client:  client,
		logger:  logger,
		session: copySession(session),
	}

	if session != nil && !session.ExpiresAt.IsZero() {
		p.timer = time.AfterFunc(time.Until(session.ExpiresAt), p.expire)
	}

	return p
}

func (p *TokenProvider) CurrentSession(ctx context.Context) (*types.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session.Expired(time.Now()) {
		return nil, nil
	}
	return copySession(p.session), nil
}

func (p *TokenProvider) Subscribe(fn func(SessionEvent)) func() {
	return p.subscribers.add(fn)
}

// SignOut revokes every token issued to the reviewer.
func (p *TokenProvider) SignOut(ctx context.Context) error {
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

	p.logger.WithField("reviewer_id", session.ReviewerID).Info("reviewer signed out")
	p.end(SignedOut)
	return nil
}

// Close stops the expiry timer.
func (p *TokenProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timer != nil {
		p.timer.Stop()
	}
}

func (p *TokenProvider) expire() {
	p.end(Expired)
}

func (p *TokenProvider) end(kind EventKind) {
	p.mu.Lock()
	if p.session == nil {
		p.mu.Unlock()
		return
	}
	p.session = nil
	if p.timer != nil {
		p.timer.Stop()
	}
	p.mu.Unlock()

	p.subscribers.publish(SessionEvent{Kind: kind})
}
