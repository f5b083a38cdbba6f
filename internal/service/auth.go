package service

import (
	"context"
	"strings"
	"time"

	"github.com/codequest/backend/internal/domain"
	"github.com/codequest/backend/pkg/device"
	"github.com/codequest/backend/pkg/mailer"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles signup, the device-adaptive login gate, federated login
// and the email/phone OTP flows.
type AuthService struct {
	accounts  AccountStore
	tokens    *TokenIssuer
	otp       *OTPVerifier
	history   *LoginHistoryService
	mail      mailer.Mailer
	mobile    domain.Window
	exposeOTP bool
	hashCost  int
	validate  *validator.Validate
	log       logrus.FieldLogger
	now       func() time.Time
}

// AuthOptions carries the policy knobs of the auth gate.
type AuthOptions struct {
	MobileWindow domain.Window
	// ExposeOTP returns issued codes in responses for development clients.
	ExposeOTP bool
}

// NewAuthService creates a new AuthService.
func NewAuthService(accounts AccountStore, tokens *TokenIssuer, otp *OTPVerifier, history *LoginHistoryService, mail mailer.Mailer, opts AuthOptions, log logrus.FieldLogger) *AuthService {
	return &AuthService{
		accounts:  accounts,
		tokens:    tokens,
		otp:       otp,
		history:   history,
		mail:      mail,
		mobile:    opts.MobileWindow,
		exposeOTP: opts.ExposeOTP,
		hashCost:  bcrypt.DefaultCost,
		validate:  newValidator(),
		log:       log,
		now:       time.Now,
	}
}

// Signup registers an email account and returns a short-lived session.
func (s *AuthService) Signup(ctx context.Context, req *domain.SignupRequest) (*domain.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(formatValidationErrors(err))
	}

	existing, err := s.accounts.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, domain.ErrInternal("failed to check account", err)
	}
	if existing != nil {
		return nil, domain.ErrIntegrity(domain.ReasonDuplicate, "User already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, domain.ErrInternal("failed to hash password", err)
	}

	acct := s.newAccount(req.Name)
	acct.Email = domain.StringPtr(req.Email)
	acct.Password = string(hash)
	if err := s.accounts.Create(ctx, acct); err != nil {
		if domain.IsDuplicate(err, "email") {
			return nil, domain.ErrIntegrity(domain.ReasonDuplicate, "User already exists")
		}
		return nil, domain.ErrInternal("failed to create account", err)
	}

	s.log.WithField("user_id", acct.ID).Info("account registered")
	return s.session(acct, SignupTokenTTL, true, "")
}

// Login verifies the password and then applies the device policy:
// mobile devices outside the mobile window are refused, Edge is let straight in,
// Chrome must pass a one-time code, every other browser gets a session.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest, meta domain.RequestMeta) (*domain.LoginResult, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(formatValidationErrors(err))
	}

	acct, err := s.accounts.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, domain.ErrInternal("failed to find account", err)
	}
	if acct == nil {
		return nil, domain.ErrNotFound("User doesn't exist")
	}
	if acct.Password == "" || bcrypt.CompareHashAndPassword([]byte(acct.Password), []byte(req.Password)) != nil {
		return nil, domain.ErrBadRequest("Invalid credentials")
	}

	info := device.Classify(meta.UserAgent)
	requireOTP := device.RequiresOTP(info.Browser)
	now := s.now()

	if info.IsMobile() && !s.mobile.Allows(now) {
		s.history.Record(ctx, acct, info, meta, domain.LoginPassword, requireOTP, false)
		return nil, domain.ErrPolicyDenied(domain.ReasonMobileWindow,
			"Mobile access is only allowed between "+s.mobile.String(),
			map[string]interface{}{
				"allowedWindow": s.mobile.String(),
				"deviceType":    info.DeviceType,
			})
	}

	if device.HasDirectAccess(info.Browser) {
		return s.completeLogin(ctx, acct, info, meta, false)
	}

	if requireOTP && req.OTP == "" {
		code, err := s.otp.Issue(ctx, req.Email)
		if err != nil {
			return nil, err
		}
		s.deliverCode(ctx, req.Email, code)
		challenge := &domain.OTPChallenge{
			RequiresOTP: true,
			Message:     "OTP sent to your email. Please verify to continue.",
			Browser:     info.Browser,
		}
		if s.exposeOTP {
			challenge.DevOTP = code
		}
		return &domain.LoginResult{Challenge: challenge}, nil
	}

	if req.OTP != "" {
		if err := s.otp.Verify(ctx, req.Email, req.OTP); err != nil {
			return nil, err
		}
	}

	return s.completeLogin(ctx, acct, info, meta, requireOTP)
}

func (s *AuthService) completeLogin(ctx context.Context, acct *domain.Account, info device.Info, meta domain.RequestMeta, requireOTP bool) (*domain.LoginResult, error) {
	resp, err := s.session(acct, LoginTokenTTL, false, "Login successful")
	if err != nil {
		return nil, err
	}
	s.history.Record(ctx, acct, info, meta, domain.LoginPassword, requireOTP, true)
	s.log.WithFields(logrus.Fields{
		"user_id": acct.ID,
		"browser": info.Browser,
		"device":  info.DeviceType,
	}).Info("login succeeded")
	return &domain.LoginResult{Session: resp}, nil
}

// GoogleLogin signs in with an identity verified by the client SDK, creating the
// account on first use.
func (s *AuthService) GoogleLogin(ctx context.Context, req *domain.GoogleLoginRequest, meta domain.RequestMeta) (*domain.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(formatValidationErrors(err))
	}

	acct, err := s.accounts.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, domain.ErrInternal("failed to find account", err)
	}

	isNew := false
	switch {
	case acct == nil:
		acct = s.newAccount(strings.TrimSpace(req.Name))
		acct.Email = domain.StringPtr(req.Email)
		acct.GoogleID = domain.StringPtr(req.GoogleID)
		if err := s.accounts.Create(ctx, acct); err != nil {
			if domain.IsDuplicate(err, "") {
				return nil, domain.ErrIntegrity(domain.ReasonDuplicate, "Account already exists. Please try logging in instead.")
			}
			return nil, domain.ErrInternal("failed to create account", err)
		}
		isNew = true
	case acct.GoogleID == nil:
		if err := s.accounts.LinkGoogleID(ctx, acct.ID, req.GoogleID); err != nil {
			return nil, domain.ErrInternal("failed to link account", err)
		}
		acct.GoogleID = domain.StringPtr(req.GoogleID)
	}

	resp, err := s.session(acct, LoginTokenTTL, isNew, "Login successful")
	if err != nil {
		return nil, err
	}
	s.history.Record(ctx, acct, device.Classify(meta.UserAgent), meta, domain.LoginFederated, false, true)
	return resp, nil
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.Account, error) {
	acct, err := s.accounts.FindByID(ctx, userID)
	if err != nil {
		return nil, domain.ErrInternal("failed to find account", err)
	}
	if acct == nil {
		return nil, domain.ErrNotFound("User not found")
	}
	return acct, nil
}

// VerifyToken validates a bearer token and returns its claims.
func (s *AuthService) VerifyToken(tokenStr string) (*domain.JWTClaims, error) {
	return s.tokens.Verify(tokenStr)
}

// SendEmailOTP issues a code for an email address and mails it.
func (s *AuthService) SendEmailOTP(ctx context.Context, req *domain.OTPSendRequest) (*domain.OTPSent, error) {
	req.Email = normalizeEmail(req.Email)
	if req.Email == "" {
		return nil, domain.ErrValidation("email is required")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(formatValidationErrors(err))
	}

	code, err := s.otp.Issue(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	s.deliverCode(ctx, req.Email, code)
	return s.sent("OTP sent to your email", code), nil
}

// VerifyEmailOTP checks an email code. Known accounts get a session; otherwise the
// address is only reported as verified.
func (s *AuthService) VerifyEmailOTP(ctx context.Context, req *domain.OTPVerifyRequest, meta domain.RequestMeta) (*domain.OTPVerifyResult, error) {
	req.Email = normalizeEmail(req.Email)
	req.Phone = ""
	if req.Email == "" {
		return nil, domain.ErrValidation("email is required")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(formatValidationErrors(err))
	}

	if err := s.otp.Verify(ctx, req.Email, req.OTP); err != nil {
		return nil, err
	}

	acct, err := s.accounts.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, domain.ErrInternal("failed to find account", err)
	}
	if acct == nil {
		return &domain.OTPVerifyResult{Verified: true, Identifier: req.Email}, nil
	}

	resp, err := s.session(acct, LoginTokenTTL, false, "OTP verified successfully")
	if err != nil {
		return nil, err
	}
	s.history.Record(ctx, acct, device.Classify(meta.UserAgent), meta, domain.LoginEmailOTP, true, true)
	return &domain.OTPVerifyResult{Session: resp, Verified: true, Identifier: req.Email}, nil
}

// SendPhoneOTP issues a code for a phone number.
func (s *AuthService) SendPhoneOTP(ctx context.Context, req *domain.OTPSendRequest) (*domain.OTPSent, error) {
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = ""
	if req.Phone == "" {
		return nil, domain.ErrValidation("phone is required")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(formatValidationErrors(err))
	}

	code, err := s.otp.Issue(ctx, req.Phone)
	if err != nil {
		return nil, err
	}
	s.log.WithField("phone", maskPhone(req.Phone)).Info("📱 phone OTP issued")
	return s.sent("OTP sent to your phone", code), nil
}

// VerifyPhoneOTP checks a phone code. An unknown number without a name gets a
// needs-registration result and the code stays live for the follow-up call.
func (s *AuthService) VerifyPhoneOTP(ctx context.Context, req *domain.OTPVerifyRequest, meta domain.RequestMeta) (*domain.OTPVerifyResult, error) {
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = ""
	req.Name = strings.TrimSpace(req.Name)
	if req.Phone == "" {
		return nil, domain.ErrValidation("phone is required")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrValidation(formatValidationErrors(err))
	}

	if err := s.otp.Peek(ctx, req.Phone, req.OTP); err != nil {
		return nil, err
	}

	acct, err := s.accounts.FindByPhone(ctx, req.Phone)
	if err != nil {
		return nil, domain.ErrInternal("failed to find account", err)
	}

	isNew := false
	if acct == nil {
		if req.Name == "" {
			return &domain.OTPVerifyResult{NeedsRegistration: true, Identifier: req.Phone}, nil
		}
		if len([]rune(req.Name)) < 2 {
			return nil, domain.ErrValidation("name must be at least 2 characters")
		}
		acct = s.newAccount(req.Name)
		acct.Phone = domain.StringPtr(req.Phone)
		if err := s.accounts.Create(ctx, acct); err != nil {
			return nil, phoneConflict(err)
		}
		isNew = true
	}

	if err := s.otp.Consume(ctx, req.Phone, req.OTP); err != nil {
		return nil, err
	}

	resp, err := s.session(acct, LoginTokenTTL, isNew, "Phone verified successfully")
	if err != nil {
		return nil, err
	}
	s.history.Record(ctx, acct, device.Classify(meta.UserAgent), meta, domain.LoginPhoneOTP, true, true)
	return &domain.OTPVerifyResult{Session: resp, Verified: true, Identifier: req.Phone}, nil
}

// phoneConflict maps a failed phone registration to the message the client shows.
func phoneConflict(err error) error {
	switch {
	case domain.IsDuplicate(err, "phone"):
		return domain.ErrIntegrity(domain.ReasonDuplicate, "Phone number already registered.")
	case domain.IsDuplicate(err, "email"):
		return domain.ErrIntegrity(domain.ReasonCrossDuplicate,
			"This phone number is associated with an existing email account. Please use email login instead.")
	case domain.IsDuplicate(err, ""):
		return domain.ErrIntegrity(domain.ReasonDuplicate, "Account already exists. Please try logging in instead.")
	default:
		return domain.ErrInternal("failed to create account", err)
	}
}

func (s *AuthService) newAccount(name string) *domain.Account {
	now := s.now()
	return &domain.Account{
		ID:        domain.NewID(),
		Name:      name,
		Tags:      []string{},
		Friends:   []string{},
		JoinedOn:  now,
		UpdatedAt: now,
	}
}

func (s *AuthService) session(acct *domain.Account, ttl time.Duration, isNew bool, msg string) (*domain.AuthResponse, error) {
	token, err := s.tokens.Issue(acct, ttl)
	if err != nil {
		return nil, err
	}
	return &domain.AuthResponse{Result: acct, Token: token, IsNewUser: isNew, Message: msg}, nil
}

func (s *AuthService) sent(msg, code string) *domain.OTPSent {
	out := &domain.OTPSent{Message: msg, Success: true}
	if s.exposeOTP {
		out.DevOTP = code
	}
	return out
}

// deliverCode mails a code. Delivery failures are logged only.
func (s *AuthService) deliverCode(ctx context.Context, email, code string) {
	msg := mailer.Message{
		To:      email,
		Subject: "Your verification code",
		Body:    "Your one-time code is " + code + ". It expires in " + s.otp.ttl.String() + ".",
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		s.log.WithError(err).Warn("failed to send OTP email")
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
