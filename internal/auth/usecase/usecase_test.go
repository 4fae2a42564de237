package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Shaiksubhani01/smart-contact-manager/internal/auth/entity"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/config"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/goerror"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/hash"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/idempotency"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/instrument"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/mail"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/session"
	"github.com/Shaiksubhani01/smart-contact-manager/internal/pkg/validator"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

type seqSessionID struct {
	mu sync.Mutex
	n  int
}

func (g *seqSessionID) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.n++
	return fmt.Sprintf("sess-%d", g.n)
}

type fixedNumberID struct{ id int64 }

func (g fixedNumberID) Generate() int64 { return g.id }

type fixedOTP struct {
	code string
	err  error
}

func (g fixedOTP) Code() (string, error) { return g.code, g.err }

type fakeConfig struct {
	config.Config

	strings map[string]string
	ints    map[string]int
	minutes map[string]time.Duration
}

func (c *fakeConfig) GetString(key string) string { return c.strings[key] }

func (c *fakeConfig) GetInt(key string) int { return c.ints[key] }

func (c *fakeConfig) GetMinute(key string) time.Duration { return c.minutes[key] }

func (c *fakeConfig) GetSecond(string) time.Duration { return 5 * time.Second }

type fakeRepoDB struct {
	users     map[string]entity.User
	getErr    error
	createErr error

	created     []entity.NewUser
	createdHash []string
}

func (r *fakeRepoDB) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}

	u, ok := r.users[email]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &u, nil
}

func (r *fakeRepoDB) CreateUser(_ context.Context, user entity.NewUser, passwordHash string) error {
	if r.createErr != nil {
		return r.createErr
	}

	r.created = append(r.created, user)
	r.createdHash = append(r.createdHash, passwordHash)
	return nil
}

func (r *fakeRepoDB) GetUserList(_ context.Context, filter entity.UserListFilter) ([]entity.User, int64, error) {
	var users []entity.User
	for _, u := range r.users {
		users = append(users, u)
	}
	return users, int64(len(r.users)), nil
}

type fakeEmail struct {
	err  error
	sent []mail.Message
}

func (e *fakeEmail) Send(_ context.Context, msg mail.Message) error {
	if e.err != nil {
		return e.err
	}

	e.sent = append(e.sent, msg)
	return nil
}

type fakeMessaging struct {
	err       error
	published []UserRegistrationEvent
}

func (m *fakeMessaging) PublishUserRegistration(_ context.Context, msg UserRegistrationEvent) error {
	if m.err != nil {
		return m.err
	}

	m.published = append(m.published, msg)
	return nil
}

// fakeIdempotency runs the callback inline; set state to simulate a key that
// was already taken.
type fakeIdempotency struct {
	state error
}

func (f *fakeIdempotency) Acquire(context.Context, string, time.Duration) (idempotency.State, error) {
	return idempotency.StateNone, nil
}

func (f *fakeIdempotency) MarkCompleted(context.Context, string, time.Duration) error { return nil }

func (f *fakeIdempotency) MarkFailed(context.Context, string, time.Duration) error { return nil }

func (f *fakeIdempotency) Exec(ctx context.Context, _ string, fn func(context.Context) error, _ ...idempotency.Option) error {
	if f.state != nil {
		return f.state
	}
	return fn(ctx)
}

type fixture struct {
	uc       *Usecase
	clk      *fakeClock
	sessions *session.Manager
	repoDB   *fakeRepoDB
	email    *fakeEmail
	mq       *fakeMessaging
	idemp    *fakeIdempotency
	bcrypt   hash.Hash
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("NewV10Validator() error = %v", err)
	}

	clk := &fakeClock{now: time.Unix(1700000000, 0)}
	sessions := session.NewManager(session.Config{
		TTL:        time.Hour,
		SweepEvery: time.Hour,
		Clock:      clk,
		ID:         &seqSessionID{},
	})
	t.Cleanup(func() { _ = sessions.Close() })

	f := &fixture{
		clk:      clk,
		sessions: sessions,
		repoDB:   &fakeRepoDB{users: map[string]entity.User{}},
		email:    &fakeEmail{},
		mq:       &fakeMessaging{},
		idemp:    &fakeIdempotency{},
		bcrypt:   hash.NewBcrypt(4, ""),
	}

	f.uc = New(Dependency{
		RepoDB:        f.repoDB,
		RepoEmail:     f.email,
		RepoMessaging: f.mq,
		Sessions:      sessions,
		Idempotency:   f.idemp,
		Validator:     v,
		Config: &fakeConfig{
			strings: map[string]string{
				"modules.auth.otp_subject":       "Your login code",
				"modules.auth.otp_body":          "Hello %s, your code is %s. It expires in %d minutes.",
				"modules.auth.landing_route":     "/user/dashboard",
				"modules.auth.default_image_url": "https://cdn.example.com/default.png",
			},
			ints: map[string]int{
				"modules.auth.otp_max_attempts": 3,
			},
			minutes: map[string]time.Duration{
				"modules.auth.otp_ttl_minutes": 5 * time.Minute,
			},
		},
		Bcrypt:     f.bcrypt,
		HMAC:       hash.NewHMACSHA256("test-hmac-secret"),
		OTP:        fixedOTP{code: "654321"},
		UID:        fixedNumberID{id: 42},
		Clock:      clk,
		Instrument: instrument.NewNoop(),
	})

	return f
}

func (f *fixture) addUser(t *testing.T, email, password string, enabled bool) entity.User {
	t.Helper()

	hashed, err := f.bcrypt.Hash(password)
	if err != nil {
		t.Fatalf("bcrypt.Hash() error = %v", err)
	}

	u := entity.User{
		ID:       7,
		Email:    email,
		Password: string(hashed),
		FullName: "Jane Roe",
		Role:     entity.RoleUser,
		Enabled:  enabled,
	}
	f.repoDB.users[email] = u

	return u
}

func assertBusinessError(t *testing.T, err error, wantMsg string, wantCode goerror.Code) {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("error = %v, want *goerror.Error", err)
	}
	if gerr.Msg() != wantMsg {
		t.Fatalf("error message = %q, want %q", gerr.Msg(), wantMsg)
	}
	if gerr.Code() != wantCode {
		t.Fatalf("error code = %v, want %v", gerr.Code(), wantCode)
	}
}

func TestLogin(t *testing.T) {
	t.Run("SendsCodeAndBindsChallenge", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.addUser(t, "jane@example.com", "s3cret-pass", true)
		sess := f.sessions.Create()

		// Act
		out, err := f.uc.Login(context.Background(), sess, LoginInput{
			Email:    "Jane@Example.com",
			Password: "s3cret-pass",
		})

		// Assert
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if !out.OtpSent {
			t.Fatal("Login() OtpSent = false, want true")
		}
		if len(f.email.sent) != 1 {
			t.Fatalf("sent %d mails, want 1", len(f.email.sent))
		}
		if f.email.sent[0].To[0] != "jane@example.com" {
			t.Fatalf("mail to = %q, want jane@example.com", f.email.sent[0].To[0])
		}

		ch, ok := sess.Challenge()
		if !ok {
			t.Fatal("expected a pending challenge on the session")
		}
		if ch.Code != "654321" || ch.UserID != 7 {
			t.Fatalf("challenge = %+v, want code 654321 for user 7", ch)
		}
	})

	t.Run("UnknownAccountAndWrongPasswordAnswerTheSame", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.addUser(t, "jane@example.com", "s3cret-pass", true)

		// Act
		_, errUnknown := f.uc.Login(context.Background(), f.sessions.Create(), LoginInput{
			Email:    "nobody@example.com",
			Password: "whatever-pass",
		})
		_, errWrongPass := f.uc.Login(context.Background(), f.sessions.Create(), LoginInput{
			Email:    "jane@example.com",
			Password: "wrong-pass",
		})

		// Assert
		assertBusinessError(t, errUnknown, "Invalid Username or Password", goerror.CodeUnauthorized)
		assertBusinessError(t, errWrongPass, "Invalid Username or Password", goerror.CodeUnauthorized)
		if len(f.email.sent) != 0 {
			t.Fatalf("sent %d mails, want 0", len(f.email.sent))
		}
	})

	t.Run("DisabledAccountIsRejected", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.addUser(t, "jane@example.com", "s3cret-pass", false)

		// Act
		_, err := f.uc.Login(context.Background(), f.sessions.Create(), LoginInput{
			Email:    "jane@example.com",
			Password: "s3cret-pass",
		})

		// Assert
		assertBusinessError(t, err, "Invalid Username or Password", goerror.CodeUnauthorized)
	})

	t.Run("MailFailureKeepsChallenge", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.addUser(t, "jane@example.com", "s3cret-pass", true)
		f.email.err = errors.New("smtp unreachable")
		sess := f.sessions.Create()

		// Act
		_, err := f.uc.Login(context.Background(), sess, LoginInput{
			Email:    "jane@example.com",
			Password: "s3cret-pass",
		})

		// Assert
		assertBusinessError(t, err, "Unable to send OTP. Please try again later.", goerror.CodeInternal)
		if _, ok := sess.Challenge(); !ok {
			t.Fatal("challenge should survive a mail delivery failure")
		}
	})
}

func TestLoginOTP(t *testing.T) {
	login := func(t *testing.T, f *fixture) *session.Session {
		t.Helper()

		f.addUser(t, "jane@example.com", "s3cret-pass", true)
		sess := f.sessions.Create()
		if _, err := f.uc.Login(context.Background(), sess, LoginInput{
			Email:    "jane@example.com",
			Password: "s3cret-pass",
		}); err != nil {
			t.Fatalf("Login() error = %v", err)
		}

		return sess
	}

	t.Run("MatchingCodeRotatesSession", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		sess := login(t, f)

		// Act
		out, err := f.uc.LoginOTP(context.Background(), sess, LoginOTPInput{Code: "654321"})

		// Assert
		if err != nil {
			t.Fatalf("LoginOTP() error = %v", err)
		}
		if out.RedirectTo != "/user/dashboard" {
			t.Fatalf("RedirectTo = %q, want /user/dashboard", out.RedirectTo)
		}
		if out.Session.ID() == sess.ID() {
			t.Fatal("authenticated session should carry a fresh ID")
		}
		if _, ok := f.sessions.Get(sess.ID()); ok {
			t.Fatal("pre-auth session ID should stop resolving")
		}

		p, ok := out.Session.Principal()
		if !ok {
			t.Fatal("expected a principal on the authenticated session")
		}
		if p.UserID != 7 || p.Email != "jane@example.com" || p.Role != "USER" {
			t.Fatalf("principal = %+v", p)
		}
	})

	t.Run("WrongCodeKeepsChallengeForRetry", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		sess := login(t, f)

		// Act
		_, err := f.uc.LoginOTP(context.Background(), sess, LoginOTPInput{Code: "111111"})

		// Assert
		assertBusinessError(t, err, "Invalid OTP", goerror.CodeUnauthorized)

		if _, err := f.uc.LoginOTP(context.Background(), sess, LoginOTPInput{Code: "654321"}); err != nil {
			t.Fatalf("retry with correct code error = %v", err)
		}
	})

	t.Run("AttemptCapClearsChallenge", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		sess := login(t, f)

		// Act
		var last error
		for range 3 {
			_, last = f.uc.LoginOTP(context.Background(), sess, LoginOTPInput{Code: "111111"})
		}

		// Assert
		assertBusinessError(t, last, "Too many invalid OTP attempts. Please login again.", goerror.CodeUnauthorized)

		_, err := f.uc.LoginOTP(context.Background(), sess, LoginOTPInput{Code: "654321"})
		assertBusinessError(t, err, "Session expired. Please login again.", goerror.CodeUnauthorized)
	})

	t.Run("ExpiredChallengeIsRejected", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		sess := login(t, f)
		f.clk.Advance(6 * time.Minute)

		// Act
		_, err := f.uc.LoginOTP(context.Background(), sess, LoginOTPInput{Code: "654321"})

		// Assert
		assertBusinessError(t, err, "Session expired. Please login again.", goerror.CodeUnauthorized)
	})

	t.Run("CodeIsSingleUse", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		sess := login(t, f)

		// Act
		if _, err := f.uc.LoginOTP(context.Background(), sess, LoginOTPInput{Code: "654321"}); err != nil {
			t.Fatalf("first LoginOTP() error = %v", err)
		}
		_, err := f.uc.LoginOTP(context.Background(), sess, LoginOTPInput{Code: "654321"})

		// Assert
		assertBusinessError(t, err, "Session expired. Please login again.", goerror.CodeUnauthorized)
	})
}

func TestRegister(t *testing.T) {
	t.Run("CreatesAccountAndPublishesEvent", func(t *testing.T) {
		// Arrange
		f := newFixture(t)

		// Act
		err := f.uc.Register(context.Background(), RegisterInput{
			FullName: "John Doe",
			Email:    "John@Example.com",
			Password: "s3cret-pass",
		})

		// Assert
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if len(f.repoDB.created) != 1 {
			t.Fatalf("created %d users, want 1", len(f.repoDB.created))
		}

		u := f.repoDB.created[0]
		if u.Email != "john@example.com" || u.Role != entity.RoleUser || !u.Enabled {
			t.Fatalf("created user = %+v", u)
		}
		if !f.bcrypt.Verify(f.repoDB.createdHash[0], "s3cret-pass") {
			t.Fatal("stored hash does not verify against the password")
		}
		if len(f.mq.published) != 1 || f.mq.published[0].Email != "john@example.com" {
			t.Fatalf("published events = %+v", f.mq.published)
		}
	})

	t.Run("DuplicateEmailConflicts", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.addUser(t, "john@example.com", "s3cret-pass", true)

		// Act
		err := f.uc.Register(context.Background(), RegisterInput{
			FullName: "John Doe",
			Email:    "john@example.com",
			Password: "s3cret-pass",
		})

		// Assert
		assertBusinessError(t, err, "User already exists with this email", goerror.CodeConflict)
	})

	t.Run("InFlightRegistrationConflicts", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.idemp.state = idempotency.ErrAlreadyInProgress

		// Act
		err := f.uc.Register(context.Background(), RegisterInput{
			FullName: "John Doe",
			Email:    "john@example.com",
			Password: "s3cret-pass",
		})

		// Assert
		assertBusinessError(t, err, "Registration is already being processed", goerror.CodeConflict)
	})

	t.Run("LostEventDoesNotFailRegistration", func(t *testing.T) {
		// Arrange
		f := newFixture(t)
		f.mq.err = errors.New("broker down")

		// Act
		err := f.uc.Register(context.Background(), RegisterInput{
			FullName: "John Doe",
			Email:    "john@example.com",
			Password: "s3cret-pass",
		})

		// Assert
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if len(f.repoDB.created) != 1 {
			t.Fatalf("created %d users, want 1", len(f.repoDB.created))
		}
	})
}

func TestLogout(t *testing.T) {
	// Arrange
	f := newFixture(t)
	sess := f.sessions.Create()

	// Act
	if err := f.uc.Logout(context.Background(), sess); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	// Assert
	if _, ok := f.sessions.Get(sess.ID()); ok {
		t.Fatal("session should be destroyed after logout")
	}
}
