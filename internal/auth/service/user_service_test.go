package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ivasibi/ascent/internal/auth/domain"
	"github.com/ivasibi/ascent/internal/auth/dto"
	"github.com/ivasibi/ascent/internal/auth/session"
	"github.com/ivasibi/ascent/internal/auth/service"
	autherror "github.com/ivasibi/ascent/internal/errors"
	"github.com/ivasibi/ascent/internal/logging"
	"github.com/ivasibi/ascent/internal/mocks"
)

const testSessionTTL = 10 * time.Minute

func newService(repo domain.UserRepository, sessions session.Store) *service.UserService {
	return service.NewUserService(repo, sessions, testSessionTTL, logging.NopLogger{})
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(digest)
}

func TestUserService_Register_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	s := newService(mockRepo, session.NewMemoryStore())

	input := dto.RegisterInput{
		Username: "alice",
		Email:    "alice@x.com",
		Password: "pw1",
	}

	var created *domain.User
	mockRepo.EXPECT().ExistsByUsername(gomock.Any(), input.Username).Return(false, nil)
	mockRepo.EXPECT().ExistsByEmail(gomock.Any(), input.Email).Return(false, nil)
	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, user *domain.User) error {
			created = user
			return nil
		})

	err := s.Register(context.Background(), input)

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "alice", created.Username)
	assert.Equal(t, "alice@x.com", created.Email)
	assert.Equal(t, domain.RoleUser, created.Role)
	assert.False(t, created.Disabled)
	assert.NotZero(t, created.CreatedOn)
	assert.Nil(t, created.LastLogin)
	// The stored hash must verify against the original secret only.
	assert.True(t, service.PasswordMatches("pw1", created.PasswordHash))
	assert.False(t, service.PasswordMatches("pw2", created.PasswordHash))
}

func TestUserService_Register_UsernameAlreadyInUse(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	s := newService(mockRepo, session.NewMemoryStore())

	// Username taken even though the email would be new; no user record is
	// created and the email is never even checked.
	mockRepo.EXPECT().ExistsByUsername(gomock.Any(), "alice").Return(true, nil)

	err := s.Register(context.Background(), dto.RegisterInput{
		Username: "alice",
		Email:    "new@x.com",
		Password: "pw1",
	})

	assert.ErrorIs(t, err, autherror.ErrUsernameAlreadyInUse)
}

func TestUserService_Register_EmailAlreadyInUse(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	s := newService(mockRepo, session.NewMemoryStore())

	mockRepo.EXPECT().ExistsByUsername(gomock.Any(), "newname").Return(false, nil)
	mockRepo.EXPECT().ExistsByEmail(gomock.Any(), "alice@x.com").Return(true, nil)

	err := s.Register(context.Background(), dto.RegisterInput{
		Username: "newname",
		Email:    "alice@x.com",
		Password: "pw1",
	})

	assert.ErrorIs(t, err, autherror.ErrEmailAlreadyInUse)
}

func TestUserService_Register_EmptyPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	s := newService(mockRepo, session.NewMemoryStore())

	for _, password := range []string{"", "   "} {
		mockRepo.EXPECT().ExistsByUsername(gomock.Any(), "alice").Return(false, nil)
		mockRepo.EXPECT().ExistsByEmail(gomock.Any(), "alice@x.com").Return(false, nil)

		err := s.Register(context.Background(), dto.RegisterInput{
			Username: "alice",
			Email:    "alice@x.com",
			Password: password,
		})

		assert.ErrorIs(t, err, autherror.ErrInvalidArgument)
	}
}

func TestUserService_Register_ConcurrentCollision(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	s := newService(mockRepo, session.NewMemoryStore())

	// Both pre-checks pass but the insert loses a race; the repository's
	// conflict error reaches the caller unchanged.
	mockRepo.EXPECT().ExistsByUsername(gomock.Any(), "alice").Return(false, nil)
	mockRepo.EXPECT().ExistsByEmail(gomock.Any(), "alice@x.com").Return(false, nil)
	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(autherror.ErrEmailAlreadyInUse)

	err := s.Register(context.Background(), dto.RegisterInput{
		Username: "alice",
		Email:    "alice@x.com",
		Password: "pw1",
	})

	assert.ErrorIs(t, err, autherror.ErrEmailAlreadyInUse)
}

func TestUserService_Register_RepositoryError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	s := newService(mockRepo, session.NewMemoryStore())

	expectedErr := errors.New("database error")
	mockRepo.EXPECT().ExistsByUsername(gomock.Any(), "alice").Return(false, expectedErr)

	err := s.Register(context.Background(), dto.RegisterInput{
		Username: "alice",
		Email:    "alice@x.com",
		Password: "pw1",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.NotErrorIs(t, err, autherror.ErrUsernameAlreadyInUse)
}

func TestUserService_Login_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	store := session.NewMemoryStore()
	s := newService(mockRepo, store)

	user := &domain.User{
		ID:           1,
		Username:     "alice",
		Email:        "alice@x.com",
		PasswordHash: hashOf(t, "pw1"),
		Role:         domain.RoleUser,
		CreatedOn:    time.Now().Add(-time.Hour),
	}

	var lastLogin time.Time
	mockRepo.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
	mockRepo.EXPECT().UpdateLastLogin(gomock.Any(), user.ID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ int64, at time.Time) error {
			lastLogin = at
			return nil
		})

	carrier := session.NewCarrier("")
	err := s.Login(context.Background(), carrier, dto.LoginInput{Email: "alice@x.com", Password: "pw1"})

	require.NoError(t, err)
	require.NotEmpty(t, carrier.Token())
	assert.False(t, lastLogin.IsZero())
	assert.True(t, user.CreatedOn.Before(lastLogin))

	attrs, ok, err := store.Get(context.Background(), carrier.Token())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, session.Attributes{Logged: true, Username: "alice", Role: domain.RoleUser}, attrs)
	assert.Equal(t, 1, store.Len())
}

func TestUserService_Login_RotatesSessionToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	store := session.NewMemoryStore()
	s := newService(mockRepo, store)

	user := &domain.User{
		ID:           1,
		Username:     "alice",
		Email:        "alice@x.com",
		PasswordHash: hashOf(t, "pw1"),
		Role:         domain.RoleUser,
	}

	mockRepo.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil).Times(2)
	mockRepo.EXPECT().UpdateLastLogin(gomock.Any(), user.ID, gomock.Any()).Return(nil).Times(2)

	input := dto.LoginInput{Email: "alice@x.com", Password: "pw1"}
	carrier := session.NewCarrier("")

	require.NoError(t, s.Login(context.Background(), carrier, input))
	first := carrier.Token()

	// Second login on the same carrier must rotate the token and kill the
	// previous session, the fixation defense.
	require.NoError(t, s.Login(context.Background(), carrier, input))
	second := carrier.Token()

	assert.NotEqual(t, first, second)
	_, ok, err := store.Get(context.Background(), first)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len())
}

func TestUserService_Login_UnknownEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	store := session.NewMemoryStore()
	s := newService(mockRepo, store)

	mockRepo.EXPECT().GetByEmail(gomock.Any(), "ghost@x.com").Return(nil, nil)

	carrier := session.NewCarrier("")
	err := s.Login(context.Background(), carrier, dto.LoginInput{Email: "ghost@x.com", Password: "pw1"})

	// Indistinguishable from a wrong password, never UserDisabled.
	assert.ErrorIs(t, err, autherror.ErrInvalidCredentials)
	assert.Empty(t, carrier.Token())
	assert.Equal(t, 0, store.Len())
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	store := session.NewMemoryStore()
	s := newService(mockRepo, store)

	user := &domain.User{
		ID:           1,
		Username:     "alice",
		Email:        "alice@x.com",
		PasswordHash: hashOf(t, "pw1"),
		Role:         domain.RoleUser,
	}

	// No UpdateLastLogin expectation: a failed login must not touch the user.
	mockRepo.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)

	carrier := session.NewCarrier("")
	err := s.Login(context.Background(), carrier, dto.LoginInput{Email: "alice@x.com", Password: "wrong"})

	assert.ErrorIs(t, err, autherror.ErrInvalidCredentials)
	assert.Empty(t, carrier.Token())
	assert.Equal(t, 0, store.Len())
}

func TestUserService_Login_DisabledUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	store := session.NewMemoryStore()
	s := newService(mockRepo, store)

	user := &domain.User{
		ID:           1,
		Username:     "alice",
		Email:        "alice@x.com",
		PasswordHash: hashOf(t, "pw1"),
		Disabled:     true,
		Role:         domain.RoleUser,
	}

	mockRepo.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)

	carrier := session.NewCarrier("")
	err := s.Login(context.Background(), carrier, dto.LoginInput{Email: "alice@x.com", Password: "pw1"})

	assert.ErrorIs(t, err, autherror.ErrUserDisabled)
	assert.Empty(t, carrier.Token())
	assert.Equal(t, 0, store.Len())
}

func TestUserService_Login_SessionStoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	mockStore := mocks.NewMockStore(ctrl)
	s := newService(mockRepo, mockStore)

	user := &domain.User{
		ID:           1,
		Username:     "alice",
		Email:        "alice@x.com",
		PasswordHash: hashOf(t, "pw1"),
		Role:         domain.RoleUser,
	}

	expectedErr := errors.New("redis unavailable")
	mockRepo.EXPECT().GetByEmail(gomock.Any(), user.Email).Return(user, nil)
	mockStore.EXPECT().New(gomock.Any(), testSessionTTL, gomock.Any()).Return("", expectedErr)

	carrier := session.NewCarrier("")
	err := s.Login(context.Background(), carrier, dto.LoginInput{Email: "alice@x.com", Password: "pw1"})

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Empty(t, carrier.Token())
}

func TestUserService_Logout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	store := session.NewMemoryStore()
	s := newService(mockRepo, store)

	t.Run("without session is a no-op", func(t *testing.T) {
		carrier := session.NewCarrier("")
		assert.NoError(t, s.Logout(context.Background(), carrier))
	})

	t.Run("removes exactly the carrier's session", func(t *testing.T) {
		ctx := context.Background()
		mine, err := store.New(ctx, testSessionTTL, session.Attributes{Logged: true, Username: "alice", Role: domain.RoleUser})
		require.NoError(t, err)
		other, err := store.New(ctx, testSessionTTL, session.Attributes{Logged: true, Username: "bob", Role: domain.RoleUser})
		require.NoError(t, err)

		carrier := session.NewCarrier(mine)
		require.NoError(t, s.Logout(ctx, carrier))

		assert.Empty(t, carrier.Token())
		_, ok, err := store.Get(ctx, mine)
		require.NoError(t, err)
		assert.False(t, ok)
		_, ok, err = store.Get(ctx, other)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("repeated logout stays harmless", func(t *testing.T) {
		carrier := session.NewCarrier("")
		assert.NoError(t, s.Logout(context.Background(), carrier))
		assert.NoError(t, s.Logout(context.Background(), carrier))
	})
}

func TestUserService_Navbar(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockUserRepository(ctrl)
	store := session.NewMemoryStore()
	s := newService(mockRepo, store)
	ctx := context.Background()

	t.Run("no session", func(t *testing.T) {
		view, err := s.Navbar(ctx, session.NewCarrier(""))
		require.NoError(t, err)
		assert.Equal(t, dto.NavbarView{Logged: false}, view)
	})

	t.Run("unknown token", func(t *testing.T) {
		view, err := s.Navbar(ctx, session.NewCarrier("expired-or-bogus"))
		require.NoError(t, err)
		assert.Equal(t, dto.NavbarView{Logged: false}, view)
	})

	t.Run("logged in", func(t *testing.T) {
		token, err := store.New(ctx, testSessionTTL, session.Attributes{Logged: true, Username: "alice", Role: domain.RoleAdmin})
		require.NoError(t, err)

		view, err := s.Navbar(ctx, session.NewCarrier(token))
		require.NoError(t, err)
		assert.Equal(t, dto.NavbarView{Logged: true, Username: "alice", Role: "ADMIN"}, view)
	})

	t.Run("stale attributes stay hidden when not logged", func(t *testing.T) {
		token, err := store.New(ctx, testSessionTTL, session.Attributes{Logged: false, Username: "alice", Role: domain.RoleUser})
		require.NoError(t, err)

		view, err := s.Navbar(ctx, session.NewCarrier(token))
		require.NoError(t, err)
		assert.Equal(t, dto.NavbarView{Logged: false}, view)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		mockStore := mocks.NewMockStore(ctrl)
		failing := newService(mockRepo, mockStore)

		expectedErr := errors.New("redis unavailable")
		mockStore.EXPECT().Get(gomock.Any(), "token").Return(session.Attributes{}, false, expectedErr)

		_, err := failing.Navbar(ctx, session.NewCarrier("token"))
		assert.ErrorIs(t, err, expectedErr)
	})
}
