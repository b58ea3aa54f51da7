package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"pharmacure/internal/config"
	"pharmacure/internal/domain"
	"pharmacure/internal/ident"
	"pharmacure/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing.
	BcryptCost = 10

	// BootstrapAdminID is the synthesized identity for the configured admin
	// credential pair. It never appears in the persisted user collection.
	BootstrapAdminID = "admin-001"

	minPasswordLen = 6
	maxPasswordLen = 50
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicatePhone     = errors.New("user with this phone number already exists")
	ErrInvalidCredentials = errors.New("invalid phone number or password")
	ErrIncorrectPassword  = errors.New("current password is incorrect")
	ErrWeakPassword       = errors.New("password does not meet the policy")

	// Local mobile-number pattern: 11 digits, 01 then an operator digit 3-9.
	phonePattern = regexp.MustCompile(`^01[3-9]\d{8}$`)
	hasLetter    = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit     = regexp.MustCompile(`\d`)
)

// Claims represents the JWT claims carried by access tokens.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// SignupInput carries registration fields. Age accepts a string or a number.
type SignupInput struct {
	Name     string      `json:"name" validate:"required"`
	Phone    string      `json:"phone" validate:"required"`
	Password string      `json:"password" validate:"required"`
	Age      interface{} `json:"age"`
	Address  string      `json:"address"`
}

// ProfileInput carries the editable profile fields. Which of them apply
// depends on the role of the user being edited.
type ProfileInput struct {
	Name    string      `json:"name" validate:"required"`
	Phone   string      `json:"phone"`
	Age     interface{} `json:"age"`
	Address string      `json:"address"`
}

// AuthService authenticates by phone and password, maintains the single
// persisted session record, and gates profile and account mutations to the
// owning identity. Credentials are stored as bcrypt hashes.
type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*domain.User, error)
	Login(ctx context.Context, phone, password string) (*domain.User, string, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateProfile(ctx context.Context, userID string, input ProfileInput) (*domain.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
	DeleteAccount(ctx context.Context, userID string) error
	ValidateToken(tokenString string) (*Claims, error)
}

type authService struct {
	userRepo     repository.UserRepository
	sessionRepo  repository.SessionRepository
	activityRepo repository.ActivityRepository
	jwtCfg       config.JWTConfig
	bootstrap    config.BootstrapAdminConfig
	logger       *zap.Logger

	mu sync.Mutex
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	activityRepo repository.ActivityRepository,
	jwtCfg config.JWTConfig,
	bootstrap config.BootstrapAdminConfig,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		activityRepo: activityRepo,
		jwtCfg:       jwtCfg,
		bootstrap:    bootstrap,
		logger:       logger,
	}
}

// Signup registers a new customer account with a hashed password.
func (s *authService) Signup(ctx context.Context, input SignupInput) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if input.Name == "" || input.Phone == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: name, phone, and password are required", ErrValidation)
	}
	if !phonePattern.MatchString(input.Phone) {
		return nil, fmt.Errorf("%w: invalid phone number format", ErrValidation)
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	for _, u := range users {
		if u.Phone == input.Phone {
			return nil, ErrDuplicatePhone
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.User{
		ID:           ident.New(),
		Name:         input.Name,
		Phone:        input.Phone,
		PasswordHash: string(hash),
		Age:          coerceInt(input.Age),
		Address:      input.Address,
		Role:         domain.RoleCustomer,
		CreatedAt:    time.Now(),
	}

	users = append(users, user)
	if err := s.userRepo.Save(ctx, users); err != nil {
		return nil, fmt.Errorf("failed to save users: %w", err)
	}

	s.logActivity(ctx, user.ID, "Account created successfully")
	return &user, nil
}

// Login authenticates a user, persists the session record and returns an
// access token. The configured bootstrap admin pair is checked first and
// synthesizes a non-persisted admin identity on match.
func (s *authService) Login(ctx context.Context, phone, password string) (*domain.User, string, error) {
	if s.bootstrap.Enabled() && phone == s.bootstrap.Phone &&
		subtle.ConstantTimeCompare([]byte(password), []byte(s.bootstrap.Password)) == 1 {
		admin := domain.User{
			ID:        BootstrapAdminID,
			Name:      s.bootstrap.Name,
			Phone:     s.bootstrap.Phone,
			Role:      domain.RoleAdmin,
			CreatedAt: time.Now(),
		}
		if err := s.sessionRepo.Set(ctx, &admin); err != nil {
			return nil, "", fmt.Errorf("failed to store session: %w", err)
		}
		s.logActivity(ctx, admin.ID, "Admin logged in")

		token, err := s.generateAccessToken(&admin)
		if err != nil {
			return nil, "", fmt.Errorf("failed to generate access token: %w", err)
		}
		return &admin, token, nil
	}

	user, err := s.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := s.sessionRepo.Set(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to store session: %w", err)
	}
	s.logActivity(ctx, user.ID, "User logged in")

	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return user, token, nil
}

// Logout records the event for the current identity, if any, and clears the
// session.
func (s *authService) Logout(ctx context.Context) error {
	current, err := s.sessionRepo.Current(ctx)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if current != nil {
		s.logActivity(ctx, current.ID, "User logged out")
	}
	return s.sessionRepo.Clear(ctx)
}

func (s *authService) CurrentUser(ctx context.Context) (*domain.User, error) {
	return s.sessionRepo.Current(ctx)
}

func (s *authService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, id)
}

func (s *authService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.List(ctx)
}

// UpdateProfile edits the persisted user. Admin accounts may only change
// their name; customers may change name, phone, age and address. The session
// record is refreshed when the edited user is the signed-in one.
func (s *authService) UpdateProfile(ctx context.Context, userID string, input ProfileInput) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	idx := -1
	for i := range users {
		if users[i].ID == userID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, repository.ErrUserNotFound
	}

	if users[idx].Role == domain.RoleAdmin {
		users[idx].Name = input.Name
	} else {
		users[idx].Name = input.Name
		users[idx].Phone = input.Phone
		users[idx].Age = coerceInt(input.Age)
		users[idx].Address = input.Address
	}

	if err := s.userRepo.Save(ctx, users); err != nil {
		return nil, fmt.Errorf("failed to save users: %w", err)
	}

	updated := users[idx]
	if err := s.refreshSessionIfCurrent(ctx, &updated); err != nil {
		return nil, err
	}

	s.logActivity(ctx, userID, "Profile updated")
	return &updated, nil
}

// ChangePassword applies the password policy, verifies the current password
// and overwrites the stored hash.
func (s *authService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if err := checkPasswordPolicy(current, next); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	idx := -1
	for i := range users {
		if users[i].ID == userID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return repository.ErrUserNotFound
	}

	if bcrypt.CompareHashAndPassword([]byte(users[idx].PasswordHash), []byte(current)) != nil {
		return ErrIncorrectPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	users[idx].PasswordHash = string(hash)

	if err := s.userRepo.Save(ctx, users); err != nil {
		return fmt.Errorf("failed to save users: %w", err)
	}

	s.logActivity(ctx, userID, "Password changed")
	return nil
}

// DeleteAccount removes the user. Only when the deleted identity is the
// signed-in one does it also end the session.
func (s *authService) DeleteAccount(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	idx := -1
	for i := range users {
		if users[i].ID == userID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return repository.ErrUserNotFound
	}

	users = append(users[:idx], users[idx+1:]...)
	if err := s.userRepo.Save(ctx, users); err != nil {
		return fmt.Errorf("failed to save users: %w", err)
	}

	current, err := s.sessionRepo.Current(ctx)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if current != nil && current.ID == userID {
		s.logActivity(ctx, userID, "User logged out")
		if err := s.sessionRepo.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
	}

	s.logActivity(ctx, userID, "Account deleted")
	return nil
}

// ValidateToken validates a JWT access token and returns its claims.
func (s *authService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtCfg.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidCredentials
	}
	return claims, nil
}

func (s *authService) generateAccessToken(user *domain.User) (string, error) {
	expiry := time.Duration(s.jwtCfg.AccessExpiry) * time.Minute
	claims := &Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtCfg.Secret))
}

func (s *authService) refreshSessionIfCurrent(ctx context.Context, user *domain.User) error {
	current, err := s.sessionRepo.Current(ctx)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if current != nil && current.ID == user.ID {
		if err := s.sessionRepo.Set(ctx, user); err != nil {
			return fmt.Errorf("failed to refresh session: %w", err)
		}
	}
	return nil
}

// checkPasswordPolicy rejects the change before any storage access: the new
// password must differ from the current one, be 6-50 characters, and contain
// at least one letter and one digit.
func checkPasswordPolicy(current, next string) error {
	if next == current {
		return fmt.Errorf("%w: new password must differ from the current one", ErrWeakPassword)
	}
	if len(next) < minPasswordLen || len(next) > maxPasswordLen {
		return fmt.Errorf("%w: must be %d-%d characters", ErrWeakPassword, minPasswordLen, maxPasswordLen)
	}
	if !hasLetter.MatchString(next) || !hasDigit.MatchString(next) {
		return fmt.Errorf("%w: must contain at least one letter and one digit", ErrWeakPassword)
	}
	return nil
}

// logActivity appends to the audit trail; the trail is a side channel, so
// failures are logged and never fail the operation that triggered them.
func (s *authService) logActivity(ctx context.Context, userID, description string) {
	if err := s.activityRepo.Append(ctx, userID, description); err != nil {
		s.logger.Warn("Failed to record activity",
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
}
