package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"inventory-api/internal/cache"
	"inventory-api/internal/domain"
)

type mockAdminRepo struct {
	byEmail map[string]domain.Admin
}

func newMockAdminRepo() *mockAdminRepo {
	return &mockAdminRepo{byEmail: make(map[string]domain.Admin)}
}

func (m *mockAdminRepo) Create(_ context.Context, admin domain.Admin) error {
	m.byEmail[admin.Email] = admin
	return nil
}

func (m *mockAdminRepo) GetByEmail(_ context.Context, email string) (domain.Admin, error) {
	admin, ok := m.byEmail[email]
	if !ok {
		return domain.Admin{}, pgx.ErrNoRows
	}
	return admin, nil
}

func (m *mockAdminRepo) UpdatePassword(_ context.Context, email, passwordHash string, updatedAt time.Time) error {
	admin, ok := m.byEmail[email]
	if !ok {
		return pgx.ErrNoRows
	}
	admin.PasswordHash = passwordHash
	admin.UpdatedAt = updatedAt
	m.byEmail[email] = admin
	return nil
}

type mockSender struct {
	sent     int
	lastTo   string
	lastSubj string
	lastText string
	err      error
}

func (m *mockSender) Send(_ context.Context, toEmail, subject, textBody, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.sent++
	m.lastTo = toEmail
	m.lastSubj = subject
	m.lastText = textBody
	return nil
}

// lastOTP extrae el codigo de 6 digitos del ultimo correo enviado.
func (m *mockSender) lastOTP(t *testing.T) string {
	t.Helper()
	i := strings.LastIndex(m.lastText, ": ")
	if i < 0 || len(m.lastText[i+2:]) != 6 {
		t.Fatalf("could not extract otp from %q", m.lastText)
	}
	return m.lastText[i+2:]
}

func newTestAdminService() (*AdminService, *mockAdminRepo, cache.Store, *mockSender) {
	repo := newMockAdminRepo()
	store := cache.NewMemoryStore()
	sender := &mockSender{}
	svc := NewAdminService(zap.NewNop(), repo, store, sender)
	return svc, repo, store, sender
}

func TestSignupInitiate_StagesThreeEntries(t *testing.T) {
	ctx := context.Background()
	svc, repo, store, sender := newTestAdminService()

	if err := svc.SignupInitiate(ctx, "Ada", "a@x.com", "pw123456"); err != nil {
		t.Fatalf("signup initiate: %v", err)
	}

	for _, key := range []string{
		"admin:signup:otp:a@x.com",
		"admin:signup:name:a@x.com",
		"admin:signup:password:a@x.com",
	} {
		if _, ok, _ := store.Get(ctx, key); !ok {
			t.Fatalf("expected staged entry %q", key)
		}
	}
	if len(repo.byEmail) != 0 {
		t.Fatalf("expected no persistent record yet")
	}
	if sender.sent != 1 || sender.lastTo != "a@x.com" {
		t.Fatalf("expected one email to a@x.com, got %d to %q", sender.sent, sender.lastTo)
	}
	if sender.lastSubj != "Your Signup OTP" {
		t.Fatalf("unexpected subject %q", sender.lastSubj)
	}
	if code := sender.lastOTP(t); !isValidOTPCode(code) {
		t.Fatalf("expected 6-digit otp, got %q", code)
	}
}

func TestSignupInitiate_ExistingAdmin(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestAdminService()
	repo.byEmail["a@x.com"] = domain.Admin{ID: "a1", Email: "a@x.com"}

	err := svc.SignupInitiate(ctx, "Ada", "a@x.com", "pw123456")
	if !errors.Is(err, ErrAdminExists) {
		t.Fatalf("expected ErrAdminExists, got %v", err)
	}
}

func TestSignupInitiate_RateLimit(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newTestAdminService()

	for i := 0; i < 3; i++ {
		if err := svc.SignupInitiate(ctx, "Ada", "a@x.com", "pw123456"); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}
	err := svc.SignupInitiate(ctx, "Ada", "a@x.com", "pw123456")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited on 4th attempt, got %v", err)
	}
}

func TestSignupInitiate_EmailFailureAborts(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, sender := newTestAdminService()
	sender.err = errors.New("smtp down")

	err := svc.SignupInitiate(ctx, "Ada", "a@x.com", "pw123456")
	if !errors.Is(err, ErrEmailSendFailure) {
		t.Fatalf("expected ErrEmailSendFailure, got %v", err)
	}
	if len(repo.byEmail) != 0 {
		t.Fatalf("expected no record on delivery failure")
	}
}

func TestSignupVerify_FullFlow(t *testing.T) {
	ctx := context.Background()
	svc, repo, store, sender := newTestAdminService()

	if err := svc.SignupInitiate(ctx, "Ada", "a@x.com", "pw123456"); err != nil {
		t.Fatalf("signup initiate: %v", err)
	}
	code := sender.lastOTP(t)

	// Codigo equivocado: mismo error que expirado, ningun registro creado.
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if _, err := svc.SignupVerify(ctx, "a@x.com", wrong); !errors.Is(err, ErrOTPInvalidOrExpired) {
		t.Fatalf("expected ErrOTPInvalidOrExpired, got %v", err)
	}
	if len(repo.byEmail) != 0 {
		t.Fatalf("expected no record after failed verify")
	}

	admin, err := svc.SignupVerify(ctx, "a@x.com", code)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if admin.Name != "Ada" || admin.Email != "a@x.com" {
		t.Fatalf("unexpected admin: %+v", admin)
	}
	if _, ok := repo.byEmail["a@x.com"]; !ok {
		t.Fatalf("expected persistent record after verify")
	}
	for _, key := range []string{
		"admin:signup:otp:a@x.com",
		"admin:signup:name:a@x.com",
		"admin:signup:password:a@x.com",
	} {
		if _, ok, _ := store.Get(ctx, key); ok {
			t.Fatalf("expected staged entry %q deleted", key)
		}
	}

	// OTP de un solo uso: repetir la verificacion falla.
	if _, err := svc.SignupVerify(ctx, "a@x.com", code); !errors.Is(err, ErrOTPInvalidOrExpired) {
		t.Fatalf("expected single-use otp, got %v", err)
	}

	// La cuenta recien creada puede loguearse con la contraseña original.
	if _, err := svc.Authenticate(ctx, "a@x.com", "pw123456"); err != nil {
		t.Fatalf("authenticate after signup: %v", err)
	}
}

func TestSignupVerify_AsymmetricExpiry(t *testing.T) {
	ctx := context.Background()
	svc, _, store, sender := newTestAdminService()

	if err := svc.SignupInitiate(ctx, "Ada", "a@x.com", "pw123456"); err != nil {
		t.Fatalf("signup initiate: %v", err)
	}
	code := sender.lastOTP(t)

	// El nombre expiro antes que el OTP: la verificacion entera falla.
	if err := store.Del(ctx, "admin:signup:name:a@x.com"); err != nil {
		t.Fatalf("del: %v", err)
	}
	_, err := svc.SignupVerify(ctx, "a@x.com", code)
	if !errors.Is(err, ErrSignupDataExpired) {
		t.Fatalf("expected ErrSignupDataExpired, got %v", err)
	}
}

func TestSignupAndReset_PaddedPassword(t *testing.T) {
	ctx := context.Background()
	svc, _, _, sender := newTestAdminService()

	// La contraseña se normaliza igual al registrar y al autenticar.
	if err := svc.SignupInitiate(ctx, "Ada", "a@x.com", "  pw123456 "); err != nil {
		t.Fatalf("signup initiate: %v", err)
	}
	if _, err := svc.SignupVerify(ctx, "a@x.com", sender.lastOTP(t)); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "a@x.com", "  pw123456 "); err != nil {
		t.Fatalf("authenticate with padded password: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "a@x.com", "pw123456"); err != nil {
		t.Fatalf("authenticate with trimmed password: %v", err)
	}

	if err := svc.PasswordResetRequest(ctx, "a@x.com"); err != nil {
		t.Fatalf("reset request: %v", err)
	}
	if err := svc.PasswordResetConfirm(ctx, "a@x.com", sender.lastOTP(t), " new-password  "); err != nil {
		t.Fatalf("reset confirm: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "a@x.com", "new-password"); err != nil {
		t.Fatalf("authenticate after reset: %v", err)
	}
}

func TestAuthenticate_NoEnumeration(t *testing.T) {
	ctx := context.Background()
	svc, _, _, sender := newTestAdminService()

	if err := svc.SignupInitiate(ctx, "Ada", "a@x.com", "pw123456"); err != nil {
		t.Fatalf("signup initiate: %v", err)
	}
	if _, err := svc.SignupVerify(ctx, "a@x.com", sender.lastOTP(t)); err != nil {
		t.Fatalf("verify: %v", err)
	}

	_, errUnknown := svc.Authenticate(ctx, "nobody@x.com", "pw123456")
	_, errWrongPw := svc.Authenticate(ctx, "a@x.com", "wrong-password")
	if !errors.Is(errUnknown, ErrInvalidCredentials) || !errors.Is(errWrongPw, ErrInvalidCredentials) {
		t.Fatalf("expected identical ErrInvalidCredentials, got %v / %v", errUnknown, errWrongPw)
	}
}

func TestPasswordResetRequest_UnknownAdmin(t *testing.T) {
	ctx := context.Background()
	svc, _, store, _ := newTestAdminService()

	err := svc.PasswordResetRequest(ctx, "nobody@x.com")
	if !errors.Is(err, ErrAdminNotFound) {
		t.Fatalf("expected ErrAdminNotFound, got %v", err)
	}
	if _, ok, _ := store.Get(ctx, "admin:reset:otp:nobody@x.com"); ok {
		t.Fatalf("expected no reset challenge written")
	}
}

func TestPasswordReset_FullFlow(t *testing.T) {
	ctx := context.Background()
	svc, _, store, sender := newTestAdminService()

	if err := svc.SignupInitiate(ctx, "Ada", "a@x.com", "old-password"); err != nil {
		t.Fatalf("signup initiate: %v", err)
	}
	if _, err := svc.SignupVerify(ctx, "a@x.com", sender.lastOTP(t)); err != nil {
		t.Fatalf("verify: %v", err)
	}

	if err := svc.PasswordResetRequest(ctx, "a@x.com"); err != nil {
		t.Fatalf("reset request: %v", err)
	}
	if sender.lastSubj != "Your Password Reset OTP" {
		t.Fatalf("unexpected subject %q", sender.lastSubj)
	}
	code := sender.lastOTP(t)

	if err := svc.PasswordResetConfirm(ctx, "a@x.com", code, "new-password"); err != nil {
		t.Fatalf("reset confirm: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "admin:reset:otp:a@x.com"); ok {
		t.Fatalf("expected reset challenge deleted")
	}

	if _, err := svc.Authenticate(ctx, "a@x.com", "old-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected old password rejected, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "a@x.com", "new-password"); err != nil {
		t.Fatalf("expected new password accepted, got %v", err)
	}

	// El OTP consumido no puede reutilizarse.
	if err := svc.PasswordResetConfirm(ctx, "a@x.com", code, "another-password"); !errors.Is(err, ErrOTPInvalidOrExpired) {
		t.Fatalf("expected single-use reset otp, got %v", err)
	}
}

func TestPasswordResetRequest_RateLimit(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestAdminService()
	repo.byEmail["a@x.com"] = domain.Admin{ID: "a1", Email: "a@x.com"}

	for i := 0; i < 3; i++ {
		if err := svc.PasswordResetRequest(ctx, "a@x.com"); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}
	if err := svc.PasswordResetRequest(ctx, "a@x.com"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited on 4th attempt, got %v", err)
	}
}

func TestGetProfile(t *testing.T) {
	ctx := context.Background()
	svc, repo, _, _ := newTestAdminService()
	repo.byEmail["a@x.com"] = domain.Admin{ID: "a1", Name: "Ada", Email: "a@x.com"}

	admin, err := svc.GetProfile(ctx, " A@X.com ")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if admin.Name != "Ada" {
		t.Fatalf("unexpected admin: %+v", admin)
	}

	if _, err := svc.GetProfile(ctx, "gone@x.com"); !errors.Is(err, ErrAdminNotFound) {
		t.Fatalf("expected ErrAdminNotFound, got %v", err)
	}
}

func TestGenerateOTPShape(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateOTP()
		if err != nil {
			t.Fatalf("generate otp: %v", err)
		}
		if !isValidOTPCode(code) {
			t.Fatalf("expected 6-digit zero-padded code, got %q", code)
		}
	}
}
