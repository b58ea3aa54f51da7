package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pharmacure/internal/config"
	"pharmacure/internal/domain"
	"pharmacure/internal/repository"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAdminPhone    = "01700000000"
	testAdminPassword = "admin12345"
)

func newAuthFixture(t *testing.T) (*testEnv, AuthService) {
	t.Helper()

	env := newTestEnv(t)
	svc := NewAuthService(
		env.users,
		env.session,
		env.activity,
		config.JWTConfig{Secret: "test-secret", AccessExpiry: 60},
		config.BootstrapAdminConfig{Phone: testAdminPhone, Password: testAdminPassword, Name: "Administrator"},
		zap.NewNop(),
	)
	return env, svc
}

func signupCustomer(t *testing.T, svc AuthService, phone string) *domain.User {
	t.Helper()

	user, err := svc.Signup(context.Background(), SignupInput{
		Name:     "Karim",
		Phone:    phone,
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	return user
}

func TestSignup_HashesPasswordAndCoercesAge(t *testing.T) {
	_, svc := newAuthFixture(t)

	user, err := svc.Signup(context.Background(), SignupInput{
		Name:     "Rahima",
		Phone:    "01812345678",
		Password: "secret1",
		Age:      "34",
		Address:  "Dhaka",
	})
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	if user.Role != domain.RoleCustomer {
		t.Errorf("expected customer role, got %q", user.Role)
	}
	if user.Age != 34 {
		t.Errorf("expected coerced age 34, got %d", user.Age)
	}
	if user.PasswordHash == "secret1" {
		t.Error("password must not be stored in plaintext")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")) != nil {
		t.Error("stored hash must verify against the original password")
	}
}

func TestSignup_RejectsBadPhoneFormat(t *testing.T) {
	_, svc := newAuthFixture(t)

	for _, phone := range []string{"0171234567", "017123456789", "01212345678", "9812345678", "abc"} {
		_, err := svc.Signup(context.Background(), SignupInput{
			Name:     "X",
			Phone:    phone,
			Password: "secret1",
		})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("phone %q: expected ErrValidation, got %v", phone, err)
		}
	}
}

func TestSignup_RejectsDuplicatePhone(t *testing.T) {
	_, svc := newAuthFixture(t)

	signupCustomer(t, svc, "01812345678")

	_, err := svc.Signup(context.Background(), SignupInput{
		Name:     "Other",
		Phone:    "01812345678",
		Password: "different1",
	})
	if !errors.Is(err, ErrDuplicatePhone) {
		t.Fatalf("expected ErrDuplicatePhone, got %v", err)
	}
}

func TestLogin_ReturnsTokenAndPersistsSession(t *testing.T) {
	env, svc := newAuthFixture(t)
	ctx := context.Background()

	signupCustomer(t, svc, "01812345678")

	user, token, err := svc.Login(ctx, "01812345678", "secret1")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != domain.RoleCustomer {
		t.Errorf("unexpected claims %+v for user %s", claims, user.ID)
	}

	current, err := env.session.Current(ctx)
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	if current == nil || current.ID != user.ID {
		t.Errorf("expected persisted session for %s, got %+v", user.ID, current)
	}
}

func TestLogin_RejectsWrongCredentials(t *testing.T) {
	_, svc := newAuthFixture(t)
	ctx := context.Background()

	signupCustomer(t, svc, "01812345678")

	if _, _, err := svc.Login(ctx, "01812345678", "wrong1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "01999999999", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown phone: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_BootstrapAdminIsNeverPersisted(t *testing.T) {
	env, svc := newAuthFixture(t)
	ctx := context.Background()

	admin, token, err := svc.Login(ctx, testAdminPhone, testAdminPassword)
	if err != nil {
		t.Fatalf("bootstrap login failed: %v", err)
	}

	if admin.ID != BootstrapAdminID || admin.Role != domain.RoleAdmin {
		t.Errorf("expected synthesized admin identity, got %+v", admin)
	}
	if token == "" {
		t.Error("expected an access token")
	}

	users, err := env.users.List(ctx)
	if err != nil {
		t.Fatalf("failed to list users: %v", err)
	}
	if len(users) != 0 {
		t.Errorf("bootstrap admin must not appear in the user collection, got %d users", len(users))
	}
}

func TestLogin_BootstrapDisabledWhenUnconfigured(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAuthService(
		env.users,
		env.session,
		env.activity,
		config.JWTConfig{Secret: "test-secret", AccessExpiry: 60},
		config.BootstrapAdminConfig{},
		zap.NewNop(),
	)

	if _, _, err := svc.Login(context.Background(), "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials with no bootstrap pair, got %v", err)
	}
}

func TestChangePassword_PolicyViolations(t *testing.T) {
	_, svc := newAuthFixture(t)
	ctx := context.Background()

	user := signupCustomer(t, svc, "01812345678")

	cases := []struct {
		name string
		next string
	}{
		{"same as current", "secret1"},
		{"too short", "ab1"},
		{"no digit", "secretonly"},
		{"no letter", "1234567"},
	}
	for _, tc := range cases {
		if err := svc.ChangePassword(ctx, user.ID, "secret1", tc.next); !errors.Is(err, ErrWeakPassword) {
			t.Errorf("%s: expected ErrWeakPassword, got %v", tc.name, err)
		}
	}
}

func TestChangePassword_WrongCurrentRejected(t *testing.T) {
	_, svc := newAuthFixture(t)

	user := signupCustomer(t, svc, "01812345678")

	err := svc.ChangePassword(context.Background(), user.ID, "nope1", "newpass2")
	if !errors.Is(err, ErrIncorrectPassword) {
		t.Fatalf("expected ErrIncorrectPassword, got %v", err)
	}
}

func TestChangePassword_NewPasswordTakesEffect(t *testing.T) {
	_, svc := newAuthFixture(t)
	ctx := context.Background()

	user := signupCustomer(t, svc, "01812345678")

	if err := svc.ChangePassword(ctx, user.ID, "secret1", "newpass2"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}

	if _, _, err := svc.Login(ctx, "01812345678", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password must stop working, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "01812345678", "newpass2"); err != nil {
		t.Errorf("new password must work, got %v", err)
	}
}

func TestUpdateProfile_CustomerFieldsAndSessionRefresh(t *testing.T) {
	env, svc := newAuthFixture(t)
	ctx := context.Background()

	user := signupCustomer(t, svc, "01812345678")
	if _, _, err := svc.Login(ctx, "01812345678", "secret1"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	updated, err := svc.UpdateProfile(ctx, user.ID, ProfileInput{
		Name:    "Karim Uddin",
		Phone:   "01912345678",
		Age:     "40",
		Address: "Chattogram",
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	if updated.Name != "Karim Uddin" || updated.Phone != "01912345678" || updated.Age != 40 {
		t.Errorf("unexpected updated profile: %+v", updated)
	}

	current, err := env.session.Current(ctx)
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	if current == nil || current.Name != "Karim Uddin" {
		t.Errorf("expected refreshed session record, got %+v", current)
	}
}

func TestUpdateProfile_AdminOnlyChangesName(t *testing.T) {
	env, svc := newAuthFixture(t)
	ctx := context.Background()

	// A persisted admin account, not the bootstrap identity.
	admin := domain.User{ID: "a1", Name: "Ops", Phone: "01711111111", Role: domain.RoleAdmin, CreatedAt: time.Now()}
	if err := env.users.Save(ctx, []domain.User{admin}); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	updated, err := svc.UpdateProfile(ctx, "a1", ProfileInput{
		Name:    "Operations",
		Phone:   "01922222222",
		Age:     55,
		Address: "HQ",
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}

	if updated.Name != "Operations" {
		t.Errorf("expected name change, got %q", updated.Name)
	}
	if updated.Phone != "01711111111" || updated.Age != 0 || updated.Address != "" {
		t.Errorf("admin profile must only change name, got %+v", updated)
	}
}

func TestDeleteAccount_ClearsSessionOnlyForSignedInIdentity(t *testing.T) {
	env, svc := newAuthFixture(t)
	ctx := context.Background()

	victim := signupCustomer(t, svc, "01812345678")
	bystander := signupCustomer(t, svc, "01912345678")

	if _, _, err := svc.Login(ctx, "01912345678", "secret1"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// Deleting an account that is not signed in leaves the session alone.
	if err := svc.DeleteAccount(ctx, victim.ID); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}
	current, _ := env.session.Current(ctx)
	if current == nil || current.ID != bystander.ID {
		t.Errorf("expected bystander session to survive, got %+v", current)
	}

	// Deleting the signed-in account clears the session.
	if err := svc.DeleteAccount(ctx, bystander.ID); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}
	current, _ = env.session.Current(ctx)
	if current != nil {
		t.Errorf("expected cleared session, got %+v", current)
	}

	if _, err := svc.GetUserByID(ctx, victim.ID); !errors.Is(err, repository.ErrUserNotFound) {
		t.Errorf("expected deleted user to be gone, got %v", err)
	}
}

func TestProperty_StoredHashesVerifyAndNeverEqualPlaintext(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("bcrypt hashes verify against the source password only", prop.ForAll(
		func(password string) bool {
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
			if err != nil {
				return false
			}
			if string(hash) == password {
				return false
			}
			if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
				return false
			}
			return bcrypt.CompareHashAndPassword(hash, []byte(password+"x")) != nil
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 && len(s) <= 50 }),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
