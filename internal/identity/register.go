package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"sort"
	"strings"
	"time"

	"animalrescue/pkg/types"

	"github.com/sirupsen/logrus"
)

// Accounts creates reviewer identities.
type Accounts interface {
	SignUp(ctx context.Context, email, password string, profile types.Profile) (string, error)
	SignOut(ctx context.Context) error
}

type ProfileWriter interface {
	UpsertProfile(ctx context.Context, profile *types.Profile) error
}

// ValidationError lists the registration fields that need fixing, keyed by
// form field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("%s: %s", types.ErrRegistrationInvalid, strings.Join(keys, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == types.ErrRegistrationInvalid
}

// Registrar signs up a reviewer and stores their organization profile.
type Registrar struct {
	accounts Accounts
	profiles ProfileWriter
	logger   logrus.FieldLogger
	attempts int
	delay    time.Duration
	wait     func(ctx context.Context, d time.Duration) error
}

func NewRegistrar(accounts Accounts, profiles ProfileWriter, attempts int, delay time.Duration, logger logrus.FieldLogger) *Registrar {
	if attempts < 1 {
		attempts = 1
	}

	return &Registrar{
		accounts: accounts,
		profiles: profiles,
		logger:   logger,
		attempts: attempts,
		delay:    delay,
		wait:     sleep,
	}
}

// Register validates reg, creates the account and upserts the profile. If
// the profile cannot be written after every attempt the account is signed out
// and the last error returned.
func (r *Registrar) Register(ctx context.Context, reg types.Registration) (*types.Profile, error) {
	reg = normalizeRegistration(reg)

	if fields := ValidateRegistration(reg); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	reviewerID, err := r.accounts.SignUp(ctx, reg.Email, reg.Password, reg.Profile)
	if err != nil {
		return nil, err
	}
	if reviewerID == "" {
		return nil, errors.New("sign up returned no reviewer id")
	}

	profile := reg.Profile
	profile.ID = reviewerID

	logger := r.logger.WithField("reviewer_id", reviewerID)

	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		lastErr = r.profiles.UpsertProfile(ctx, &profile)
		if lastErr == nil {
			logger.Info("reviewer registered")
			return &profile, nil
		}

		logger.WithError(lastErr).WithField("attempt", attempt).Warn("failed to save profile")

		if attempt < r.attempts {
			if err := r.wait(ctx, r.delay); err != nil {
				lastErr = err
				break
			}
		}
	}

	if err := r.accounts.SignOut(ctx); err != nil {
		logger.WithError(err).Error("failed to sign out after profile failure")
	}

	return nil, fmt.Errorf("save profile: %w", lastErr)
}

var phoneReg = regexp.MustCompile(`^\d{10}$`)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

func ValidateRegistration(reg types.Registration) map[string]string {
	errs := map[string]string{}

	required := map[string]string{
		"name":                reg.Name,
		"organization":        reg.Organization,
		"phone":               reg.Phone,
		"registration_number": reg.RegistrationNumber,
		"address":             reg.Address,
		"description":         reg.Description,
		"email":               reg.Email,
		"password":            reg.Password,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			errs[field] = "This field is required."
		}
	}

	if _, ok := errs["email"]; !ok {
		if _, err := mail.ParseAddress(reg.Email); err != nil {
			errs["email"] = "Enter a valid email address."
		}
	}

	if _, ok := errs["password"]; !ok && len(reg.Password) < MinPasswordLength {
		errs["password"] = fmt.Sprintf("Password must be at least %d characters.", MinPasswordLength)
	}

	if _, ok := errs["phone"]; !ok && !phoneReg.MatchString(reg.Phone) {
		errs["phone"] = "Enter a 10 digit phone number."
	}

	return errs
}

func normalizeRegistration(reg types.Registration) types.Registration {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Organization = strings.TrimSpace(reg.Organization)
	reg.Phone = strings.TrimSpace(reg.Phone)
	reg.RegistrationNumber = strings.TrimSpace(reg.RegistrationNumber)
	reg.Address = strings.TrimSpace(reg.Address)
	reg.Description = strings.TrimSpace(reg.Description)
	return reg
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
