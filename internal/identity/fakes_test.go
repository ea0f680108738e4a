package identity

import (
	"context"
	"errors"
	"sync"
	"time"

	"animalrescue/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

// pushProvider is a Provider whose events are driven by the test.
type pushProvider struct {
	session    *types.Session
	err        error
	delay      time.Duration
	signOuts   int
	subs       observers
	mu         sync.Mutex
	subscribes int
}

func (p *pushProvider) CurrentSession(ctx context.Context) (*types.Session, error) {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	return p.session, p.err
}

func (p *pushProvider) Subscribe(fn func(SessionEvent)) func() {
	p.mu.Lock()
	p.subscribes++
	p.mu.Unlock()
	return p.subs.add(fn)
}

func (p *pushProvider) SignOut(ctx context.Context) error {
	p.signOuts++
	p.session = nil
	p.subs.publish(SessionEvent{Kind: SignedOut})
	return nil
}

func (p *pushProvider) push(ev SessionEvent) {
	p.subs.publish(ev)
}

type fakeCognito struct {
	mu sync.Mutex

	authInputs    []*cognitoidentityprovider.InitiateAuthInput
	authErr       error
	accessToken   string
	refreshToken  string
	signUpInput   *cognitoidentityprovider.SignUpInput
	signUpErr     error
	confirmInput  *cognitoidentityprovider.ConfirmSignUpInput
	signOutTokens []string
	signOutErr    error
}

func (f *fakeCognito) InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authInputs = append(f.authInputs, params)
	if f.authErr != nil {
		return nil, f.authErr
	}
	return &cognitoidentityprovider.InitiateAuthOutput{
		AuthenticationResult: &ctypes.AuthenticationResultType{
			AccessToken:  aws.String(f.accessToken),
			RefreshToken: aws.String(f.refreshToken),
			ExpiresIn:    3600,
		},
	}, nil
}

func (f *fakeCognito) SignUp(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error) {
	f.signUpInput = params
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &cognitoidentityprovider.SignUpOutput{UserSub: aws.String("sub-123")}, nil
}

func (f *fakeCognito) ConfirmSignUp(ctx context.Context, params *cognitoidentityprovider.ConfirmSignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error) {
	f.confirmInput = params
	return &cognitoidentityprovider.ConfirmSignUpOutput{}, nil
}

func (f *fakeCognito) GlobalSignOut(ctx context.Context, params *cognitoidentityprovider.GlobalSignOutInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.GlobalSignOutOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signOutErr != nil {
		return nil, f.signOutErr
	}
	f.signOutTokens = append(f.signOutTokens, aws.ToString(params.AccessToken))
	return &cognitoidentityprovider.GlobalSignOutOutput{}, nil
}

// tokenTable maps access tokens to sessions.
type tokenTable map[string]*types.Session

func (t tokenTable) Verify(ctx context.Context, token string) (*types.Session, error) {
	s, ok := t[token]
	if !ok {
		return nil, types.ErrUnauthorized
	}
	c := *s
	c.AccessToken = token
	return &c, nil
}

var errBoom = errors.New("boom")
