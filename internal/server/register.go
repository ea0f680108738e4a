package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"animalrescue/internal/identity"
	"animalrescue/pkg/types"

	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

type registerForm struct {
	Name               string `form:"name"`
	Organization       string `form:"organization"`
	Phone              string `form:"phone"`
	RegistrationNumber string `form:"registration_number"`
	Address            string `form:"address"`
	Description        string `form:"description"`
	Email              string `form:"email"`
	Password           string `form:"password"`
}

func (f registerForm) registration() types.Registration {
	return types.Registration{
		Profile: types.Profile{
			Name:               f.Name,
			Organization:       f.Organization,
			Phone:              f.Phone,
			RegistrationNumber: f.RegistrationNumber,
			Address:            f.Address,
			Description:        f.Description,
		},
		Email:    f.Email,
		Password: f.Password,
	}
}

func (s *Service) handleGetRegister(w http.ResponseWriter, r *http.Request) {
	if session, _ := r.Context().Value(contextKeySession).(*types.Session); session != nil {
		http.Redirect(w, r, "/ngo/dashboard", http.StatusSeeOther)
		return
	}

	data := &types.RegisterPageData{
		BasePageData: types.BasePageData{Title: "Register your NGO"},
	}

	if err := s.renderTemplate(w, r, "page.register", data); err != nil {
		s.logger.WithError(err).Error("failed to render register page")
		s.internalServerError(w, err)
		return
	}
}

func (s *Service) handlePostRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}

	var input registerForm
	if err := decoder.Decode(&input, r.PostForm); err != nil {
		s.logger.WithError(err).Error("failed to decode registration form")
		http.Error(w, "invalid form payload", http.StatusBadRequest)
		return
	}
	reg := input.registration()

	data := &types.RegisterPageData{
		BasePageData: types.BasePageData{Title: "Register your NGO"},
		Registration: reg,
	}
	data.Registration.Password = ""

	provider := identity.NewCognitoProvider(s.cognito, s.verifier, s.config.CognitoClientID, s.logger)
	registrar := identity.NewRegistrar(provider, s.profiles, s.config.ProfileRetryAttempts, s.config.ProfileRetryDelay, s.logger)

	_, err := registrar.Register(ctx, reg)
	if err != nil {
		var invalid *identity.ValidationError
		switch {
		case errors.As(err, &invalid):
			s.logger.WithField("field_errors", invalid.Fields).Info("validation errors during registration")
			data.Error = "Please fix the highlighted fields."
			data.FieldErrors = invalid.Fields
		default:
			data.Error, data.FieldErrors = s.mapCognitoSignUpError(err)
		}

		s.renderWithStatus(w, r, http.StatusUnprocessableEntity, "page.register", data)
		return
	}

	v := url.Values{}
	v.Set("email", strings.TrimSpace(reg.Email))

	http.Redirect(w, r, fmt.Sprintf("/ngo/register/confirm?%s", v.Encode()), http.StatusSeeOther)
}

func (s *Service) handleGetRegisterConfirm(w http.ResponseWriter, r *http.Request) {
	data := &types.ConfirmRegisterPageData{
		BasePageData: types.BasePageData{Title: "Confirm Your Account"},
		Email:        strings.TrimSpace(r.URL.Query().Get("email")),
	}

	if err := s.renderTemplate(w, r, "page.register.confirm", data); err != nil {
		s.logger.WithError(err).Error("failed to render register confirm page")
		s.internalServerError(w, err)
		return
	}
}

func (s *Service) handlePostRegisterConfirm(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	code := strings.TrimSpace(r.FormValue("code"))

	data := &types.ConfirmRegisterPageData{
		BasePageData: types.BasePageData{Title: "Confirm Your Account"},
		Email:        email,
	}

	provider := identity.NewCognitoProvider(s.cognito, s.verifier, s.config.CognitoClientID, s.logger)
	if err := provider.ConfirmSignUp(r.Context(), email, code); err != nil {
		s.logger.WithError(err).Error("failed to confirm reviewer signup")

		var codeMismatch *ctypes.CodeMismatchException
		if errors.As(err, &codeMismatch) {
			data.Error = "Invalid confirmation code. Please check the code and try again."
		} else {
			data.Error = "Unable to confirm account. Please try again."
		}

		s.renderWithStatus(w, r, http.StatusUnprocessableEntity, "page.register.confirm", data)
		return
	}

	http.Redirect(w, r, "/ngo/login?confirmed=true", http.StatusSeeOther)
}

func (s *Service) mapCognitoSignUpError(err error) (string, map[string]string) {
	fieldErrs := map[string]string{}

	var invalidPw *ctypes.InvalidPasswordException
	if errors.As(err, &invalidPw) {
		fieldErrs["password"] = "The identity provider rejected this password. Try a longer one."
		return "Please fix the highlighted fields.", fieldErrs
	}

	var userExists *ctypes.UsernameExistsException
	if errors.As(err, &userExists) {
		fieldErrs["email"] = "An account with this email already exists."
		return "Try signing in instead.", fieldErrs
	}

	var invalidParam *ctypes.InvalidParameterException
	if errors.As(err, &invalidParam) {
		return "Some details are invalid. Please review and try again.", fieldErrs
	}

	s.logger.WithError(err).Error("unhandled registration error")
	s.captureError(err)

	return "Unable to create account right now. Please try again.", fieldErrs
}
