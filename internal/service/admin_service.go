package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"inventory-api/internal/cache"
	"inventory-api/internal/domain"
	"inventory-api/internal/email"
	"inventory-api/internal/repository"
)

// AdminService coordina el ciclo de vida de identidad de administradores:
// signup con verificacion por OTP, login, reseteo de contraseña y perfil.
// El estado intermedio (OTP, datos de signup, contadores) vive en el Store
// efimero; el registro persistente se crea solo al verificar el signup.
type AdminService struct {
	logger      *zap.Logger
	admins      repository.AdminRepository
	store       cache.Store
	emailSender email.Sender
}

var (
	ErrAdminExists         = errors.New("admin with this email already exists")
	ErrAdminNotFound       = errors.New("admin not found")
	ErrRateLimited         = errors.New("too many otp requests")
	ErrOTPInvalidOrExpired = errors.New("invalid or expired otp")
	ErrSignupDataExpired   = errors.New("signup data expired")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailSendFailure    = errors.New("email send failed")
	ErrInvalidEmail        = errors.New("invalid email")
)

const (
	otpTTL         = 5 * time.Minute
	otpCountTTL    = 10 * time.Minute
	maxOTPRequests = 3

	signupOTPKeyPrefix      = "admin:signup:otp:"
	signupNameKeyPrefix     = "admin:signup:name:"
	signupPasswordKeyPrefix = "admin:signup:password:"
	signupCountKeyPrefix    = "admin:signup:otpcount:"
	resetOTPKeyPrefix       = "admin:reset:otp:"
	resetCountKeyPrefix     = "admin:reset:otpcount:"
)

func NewAdminService(logger *zap.Logger, admins repository.AdminRepository, store cache.Store, emailSender email.Sender) *AdminService {
	if store == nil {
		store = cache.NewMemoryStore()
	}
	return &AdminService{
		logger:      logger,
		admins:      admins,
		store:       store,
		emailSender: emailSender,
	}
}

// SignupInitiate arranca el registro: deja OTP, nombre y hash de contraseña en
// el cache (tres claves independientes bajo el mismo email) y envia el OTP por
// correo. No crea ningun registro persistente.
func (s *AdminService) SignupInitiate(ctx context.Context, name, emailAddr, password string) error {
	if s.admins == nil {
		return errors.New("admin service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	name = strings.TrimSpace(name)
	password = strings.TrimSpace(password)
	if emailAddr == "" {
		return ErrInvalidEmail
	}

	if _, err := s.admins.GetByEmail(ctx, emailAddr); err == nil {
		return ErrAdminExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	if err := s.consumeOTPBudget(ctx, signupCountKeyPrefix+emailAddr); err != nil {
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	// Tres entradas separadas, cada una con su propio TTL. Si alguna expira
	// antes que el OTP, la verificacion falla con ErrSignupDataExpired.
	if err := s.store.Set(ctx, signupOTPKeyPrefix+emailAddr, code, otpTTL); err != nil {
		return err
	}
	if err := s.store.Set(ctx, signupNameKeyPrefix+emailAddr, name, otpTTL); err != nil {
		return err
	}
	if err := s.store.Set(ctx, signupPasswordKeyPrefix+emailAddr, string(hashBytes), otpTTL); err != nil {
		return err
	}

	if err := s.sendOTPEmail(ctx, emailAddr, "Your Signup OTP", "signup", code); err != nil {
		return err
	}
	return nil
}

// SignupVerify valida el OTP y materializa la cuenta. Es el unico camino que
// crea un Admin persistente.
func (s *AdminService) SignupVerify(ctx context.Context, emailAddr, otp string) (domain.Admin, error) {
	if s.admins == nil {
		return domain.Admin{}, errors.New("admin service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	otp = strings.TrimSpace(otp)
	if emailAddr == "" {
		return domain.Admin{}, ErrInvalidEmail
	}
	if !isValidOTPCode(otp) {
		return domain.Admin{}, ErrOTPInvalidOrExpired
	}

	cached, ok, err := s.store.Get(ctx, signupOTPKeyPrefix+emailAddr)
	if err != nil {
		return domain.Admin{}, err
	}
	// Ausente y no coincidente devuelven el mismo error: no se distingue
	// expiracion de codigo equivocado.
	if !ok || cached != otp {
		return domain.Admin{}, ErrOTPInvalidOrExpired
	}

	name, nameOK, err := s.store.Get(ctx, signupNameKeyPrefix+emailAddr)
	if err != nil {
		return domain.Admin{}, err
	}
	passwordHash, passOK, err := s.store.Get(ctx, signupPasswordKeyPrefix+emailAddr)
	if err != nil {
		return domain.Admin{}, err
	}
	if !nameOK || !passOK {
		return domain.Admin{}, ErrSignupDataExpired
	}

	now := time.Now().UTC()
	admin := domain.Admin{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        emailAddr,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.admins.Create(ctx, admin); err != nil {
		return domain.Admin{}, err
	}

	if err := s.store.Del(ctx,
		signupOTPKeyPrefix+emailAddr,
		signupNameKeyPrefix+emailAddr,
		signupPasswordKeyPrefix+emailAddr,
	); err != nil && s.logger != nil {
		s.logger.Warn("delete staged signup failed", zap.Error(err), zap.String("email", emailAddr))
	}

	return admin, nil
}

// Authenticate valida credenciales de login. Email desconocido y contraseña
// incorrecta devuelven el mismo error.
func (s *AdminService) Authenticate(ctx context.Context, emailAddr, password string) (domain.Admin, error) {
	if s.admins == nil {
		return domain.Admin{}, errors.New("admin service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.Admin{}, ErrInvalidCredentials
	}
	admin, err := s.admins.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Admin{}, ErrInvalidCredentials
		}
		return domain.Admin{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return domain.Admin{}, ErrInvalidCredentials
	}
	return admin, nil
}

// PasswordResetRequest genera un OTP de reseteo para una cuenta existente.
func (s *AdminService) PasswordResetRequest(ctx context.Context, emailAddr string) error {
	if s.admins == nil {
		return errors.New("admin service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return ErrInvalidEmail
	}

	if _, err := s.admins.GetByEmail(ctx, emailAddr); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAdminNotFound
		}
		return err
	}

	if err := s.consumeOTPBudget(ctx, resetCountKeyPrefix+emailAddr); err != nil {
		return err
	}

	code, err := generateOTP()
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, resetOTPKeyPrefix+emailAddr, code, otpTTL); err != nil {
		return err
	}

	return s.sendOTPEmail(ctx, emailAddr, "Your Password Reset OTP", "password reset", code)
}

// PasswordResetConfirm valida el OTP de reseteo y reemplaza el hash. No emite
// token: el administrador debe volver a loguearse.
func (s *AdminService) PasswordResetConfirm(ctx context.Context, emailAddr, otp, newPassword string) error {
	if s.admins == nil {
		return errors.New("admin service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	otp = strings.TrimSpace(otp)
	newPassword = strings.TrimSpace(newPassword)
	if emailAddr == "" {
		return ErrInvalidEmail
	}
	if !isValidOTPCode(otp) {
		return ErrOTPInvalidOrExpired
	}

	cached, ok, err := s.store.Get(ctx, resetOTPKeyPrefix+emailAddr)
	if err != nil {
		return err
	}
	if !ok || cached != otp {
		return ErrOTPInvalidOrExpired
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.admins.UpdatePassword(ctx, emailAddr, string(hashBytes), time.Now().UTC()); err != nil {
		return err
	}

	if err := s.store.Del(ctx, resetOTPKeyPrefix+emailAddr); err != nil && s.logger != nil {
		s.logger.Warn("delete reset otp failed", zap.Error(err), zap.String("email", emailAddr))
	}
	return nil
}

// GetProfile busca la cuenta ligada al email del token verificado.
func (s *AdminService) GetProfile(ctx context.Context, emailAddr string) (domain.Admin, error) {
	if s.admins == nil {
		return domain.Admin{}, errors.New("admin service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return domain.Admin{}, ErrInvalidEmail
	}
	admin, err := s.admins.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Admin{}, ErrAdminNotFound
		}
		return domain.Admin{}, err
	}
	return admin, nil
}

// consumeOTPBudget aplica el limite de 3 emisiones por ventana. El contador se
// cobra por intento de emision, haya exito o no aguas abajo.
func (s *AdminService) consumeOTPBudget(ctx context.Context, key string) error {
	val, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return s.store.Set(ctx, key, "1", otpCountTTL)
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		count = maxOTPRequests
	}
	if count >= maxOTPRequests {
		return ErrRateLimited
	}
	_, err = s.store.Incr(ctx, key)
	return err
}

// sendOTPEmail despacha el codigo. Un fallo de envio aborta la operacion que
// lo origino; no hay canal alternativo.
func (s *AdminService) sendOTPEmail(ctx context.Context, toEmail, subject, flow, code string) error {
	if s.emailSender == nil {
		return ErrEmailSendFailure
	}
	textBody := fmt.Sprintf("Your OTP for %s is: %s", flow, code)
	htmlBody := fmt.Sprintf("<p>Your OTP for %s is: <b>%s</b></p>", flow, code)
	if err := s.emailSender.Send(ctx, toEmail, subject, textBody, htmlBody); err != nil {
		if s.logger != nil {
			s.logger.Warn("send otp email failed", zap.Error(err), zap.String("email", toEmail))
		}
		return ErrEmailSendFailure
	}
	return nil
}

// generateOTP produce un codigo numerico de 6 digitos uniforme con padding.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidOTPCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
