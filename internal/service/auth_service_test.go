package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/reachbase/reachbase-backend/internal/models"
	"github.com/reachbase/reachbase-backend/internal/repository"
	"github.com/reachbase/reachbase-backend/internal/repository/common"
)

// mockAuthRepository реализует AuthRepository для тестов.
type mockAuthRepository struct {
	usersByEmail map[string]*models.User
	usersByID    map[uuid.UUID]*models.User
	workspaces   map[uuid.UUID]*models.Workspace
	sessions     map[string]*models.Session
	createErr    error
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[uuid.UUID]*models.User),
		workspaces:   make(map[uuid.UUID]*models.Workspace),
		sessions:     make(map[string]*models.Session),
	}
}

func (m *mockAuthRepository) CreateWithWorkspace(ctx context.Context, workspace *models.Workspace, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	workspace.ID = uuid.New()
	workspace.CreatedAt = time.Now()
	m.workspaces[workspace.ID] = workspace

	user.ID = uuid.New()
	user.WorkspaceID = workspace.ID
	user.IsActive = true
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.usersByEmail[user.Email] = user
	m.usersByID[user.ID] = user
	return nil
}

func (m *mockAuthRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := m.usersByEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockAuthRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := m.usersByID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockAuthRepository) CreateSession(ctx context.Context, session *models.Session) error {
	session.ID = uuid.New()
	session.CreatedAt = time.Now()
	m.sessions[session.RefreshToken] = session
	return nil
}

func (m *mockAuthRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	delete(m.sessions, refreshToken)
	return nil
}

func (m *mockAuthRepository) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	if user, ok := m.usersByID[userID]; ok {
		now := time.Now()
		user.LastLoginAt = &now
	}
	return nil
}

func (m *mockAuthRepository) ListSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	var out []models.Session
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockAuthRepository) DeleteSessionByID(ctx context.Context, sessionID uuid.UUID, userID uuid.UUID) error {
	for token, s := range m.sessions {
		if s.ID == sessionID && s.UserID == userID {
			delete(m.sessions, token)
			return nil
		}
	}
	return repository.ErrUserNotFound
}

func (m *mockAuthRepository) DeleteAllSessionsExcept(ctx context.Context, userID uuid.UUID, exceptRefreshToken string) error {
	for token, s := range m.sessions {
		if s.UserID == userID && token != exceptRefreshToken {
			delete(m.sessions, token)
		}
	}
	return nil
}

func newTestAuthService(repo AuthRepository) *AuthService {
	tm := NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, 720*time.Hour)
	return NewAuthService(repo, tm)
}

func TestAuthService_Register_CreatesWorkspaceOwner(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:    "anna@acme.io",
		Password: "Str0ngPass!",
		FullName: "Анна Соколова",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, models.UserRoleOwner, result.User.Role)
	assert.Equal(t, result.Workspace.ID, result.User.WorkspaceID)
	assert.NotEmpty(t, result.TokenPair.AccessToken)
	assert.NotEmpty(t, result.TokenPair.RefreshToken)
	// Название воркспейса выводится из домена почты
	assert.Equal(t, "Acme.io", result.Workspace.Name)
}

func TestAuthService_Register_ExplicitWorkspaceName(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:         "anna@acme.io",
		Password:      "Str0ngPass!",
		FullName:      "Анна Соколова",
		WorkspaceName: "Отдел продаж",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "Отдел продаж", result.Workspace.Name)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)

	in := RegisterInput{Email: "anna@acme.io", Password: "Str0ngPass!", FullName: "Анна Соколова"}
	_, err := svc.Register(context.Background(), in, nil)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), in, nil)
	assert.Error(t, err)
}

func TestAuthService_Register_DuplicateEmailRace(t *testing.T) {
	repo := newMockAuthRepository()
	// Параллельная регистрация успела вставить пользователя между проверкой
	// email и вставкой: хранилище сообщает об уникальном конфликте.
	repo.createErr = common.ErrAlreadyExists
	svc := newTestAuthService(repo)

	in := RegisterInput{Email: "anna@acme.io", Password: "Str0ngPass!", FullName: "Анна Соколова"}
	_, err := svc.Register(context.Background(), in, nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "email уже зарегистрирован")
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)

	hash, err := bcrypt.GenerateFromPassword([]byte("Str0ngPass!"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &models.User{
		ID:           uuid.New(),
		WorkspaceID:  uuid.New(),
		Email:        "anna@acme.io",
		FullName:     "Анна Соколова",
		PasswordHash: string(hash),
		Role:         models.UserRoleOwner,
		IsActive:     true,
	}
	repo.usersByEmail[user.Email] = user
	repo.usersByID[user.ID] = user

	result, err := svc.Login(context.Background(), LoginInput{
		Email:    "anna@acme.io",
		Password: "Str0ngPass!",
	}, map[string]string{"user_agent": "test-agent", "ip": "127.0.0.1"})
	require.NoError(t, err)

	assert.Equal(t, user.ID, result.User.ID)
	assert.NotEmpty(t, result.TokenPair.RefreshToken)

	session := repo.sessions[result.TokenPair.RefreshToken]
	require.NotNil(t, session)
	assert.Equal(t, "test-agent", *session.UserAgent)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)

	hash, err := bcrypt.GenerateFromPassword([]byte("Str0ngPass!"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "anna@acme.io",
		PasswordHash: string(hash),
		IsActive:     true,
	}
	repo.usersByEmail[user.Email] = user
	repo.usersByID[user.ID] = user

	_, err = svc.Login(context.Background(), LoginInput{Email: "anna@acme.io", Password: "wrong"}, nil)
	assert.Error(t, err)
}

func TestAuthService_Login_InactiveUser(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)

	hash, err := bcrypt.GenerateFromPassword([]byte("Str0ngPass!"), bcrypt.DefaultCost)
	require.NoError(t, err)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "anna@acme.io",
		PasswordHash: string(hash),
		IsActive:     false,
	}
	repo.usersByEmail[user.Email] = user
	repo.usersByID[user.ID] = user

	_, err = svc.Login(context.Background(), LoginInput{Email: "anna@acme.io", Password: "Str0ngPass!"}, nil)
	assert.Error(t, err)
}

func TestAuthService_Refresh_RotatesSession(t *testing.T) {
	repo := newMockAuthRepository()
	svc := newTestAuthService(repo)

	result, err := svc.Register(context.Background(), RegisterInput{
		Email:    "anna@acme.io",
		Password: "Str0ngPass!",
		FullName: "Анна Соколова",
	}, nil)
	require.NoError(t, err)

	oldToken := result.TokenPair.RefreshToken
	pair, err := svc.Refresh(context.Background(), oldToken, nil)
	require.NoError(t, err)

	assert.NotEqual(t, oldToken, pair.RefreshToken)
	assert.Nil(t, repo.sessions[oldToken])
	assert.NotNil(t, repo.sessions[pair.RefreshToken])
}
