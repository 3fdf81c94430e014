package usecase

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newAccountService(users *fakeUserRepository, sessions *fakeSessionRepository, events *fakeEventPublisher) *AccountService {
	sessionSvc := NewSessionService(sessions, users, SessionConfig{})
	cfg := AccountConfig{BcryptCost: bcrypt.MinCost}
	if events == nil {
		return NewAccountService(users, sessionSvc, nil, nil, cfg)
	}
	return NewAccountService(users, sessionSvc, events, nil, cfg)
}

func TestSignupReturnsSanitizedAccount(t *testing.T) {
	users := newFakeUserRepository()
	svc := newAccountService(users, newFakeSessionRepository(), nil)

	user, err := svc.Signup(context.Background(), SignupInput{
		Email:     "Jane@Example.com",
		Password:  "pw123456",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}

	if user.Email != "jane@example.com" {
		t.Fatalf("expected normalized email, got %s", user.Email)
	}
	if user.PasswordHash == nil || *user.PasswordHash == "pw123456" {
		t.Fatal("expected password to be hashed")
	}
	if user.LeaderboardScore != 0 {
		t.Fatalf("expected zero starting score, got %d", user.LeaderboardScore)
	}
	if user.EmailVerified {
		t.Fatal("expected new account to be unverified")
	}
}

func TestSignupMinimumLengthIsTheWholePolicy(t *testing.T) {
	svc := newAccountService(newFakeUserRepository(), newFakeSessionRepository(), nil)

	// Eight characters with no complexity requirements must pass.
	if _, err := svc.Signup(context.Background(), SignupInput{
		Email:     "jane@example.com",
		Password:  "pw123456",
		FirstName: "Jane",
	}); err != nil {
		t.Fatalf("expected pw123456 to satisfy the policy, got %v", err)
	}
}

func TestSignupRejectsShortPassword(t *testing.T) {
	svc := newAccountService(newFakeUserRepository(), newFakeSessionRepository(), nil)

	_, err := svc.Signup(context.Background(), SignupInput{
		Email:     "jane@example.com",
		Password:  "shortuh",
		FirstName: "Jane",
	})
	if !errors.Is(err, ErrPasswordTooShort) {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	users := newFakeUserRepository()
	svc := newAccountService(users, newFakeSessionRepository(), nil)

	input := SignupInput{Email: "jane@example.com", Password: "pw123456", FirstName: "Jane"}
	if _, err := svc.Signup(context.Background(), input); err != nil {
		t.Fatalf("first signup returned error: %v", err)
	}

	if _, err := svc.Signup(context.Background(), input); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginIssuesSession(t *testing.T) {
	users := newFakeUserRepository()
	sessions := newFakeSessionRepository()
	svc := newAccountService(users, sessions, nil)

	if _, err := svc.Signup(context.Background(), SignupInput{
		Email:     "jane@example.com",
		Password:  "pw123456",
		FirstName: "Jane",
	}); err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}

	user, session, err := svc.Login(context.Background(), "jane@example.com", "pw123456")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if session.Token == "" {
		t.Fatal("expected a session token")
	}
	if session.UserID != user.ID {
		t.Fatalf("session user mismatch: %s vs %s", session.UserID, user.ID)
	}
}

func TestLoginWrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	users := newFakeUserRepository()
	svc := newAccountService(users, newFakeSessionRepository(), nil)

	if _, err := svc.Signup(context.Background(), SignupInput{
		Email:     "jane@example.com",
		Password:  "pw123456",
		FirstName: "Jane",
	}); err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}

	_, _, wrongPassword := svc.Login(context.Background(), "jane@example.com", "incorrect1")
	if !errors.Is(wrongPassword, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", wrongPassword)
	}

	_, _, unknownEmail := svc.Login(context.Background(), "nobody@example.com", "pw123456")
	if !errors.Is(unknownEmail, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", unknownEmail)
	}

	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatalf("credential failures must be indistinguishable: %q vs %q", wrongPassword, unknownEmail)
	}
}

func TestDeleteAccountSucceedsWhenPublishFails(t *testing.T) {
	users := newFakeUserRepository()
	events := &fakeEventPublisher{publishErr: errors.New("broker unavailable")}
	svc := newAccountService(users, newFakeSessionRepository(), events)

	user, err := svc.Signup(context.Background(), SignupInput{
		Email:     "jane@example.com",
		Password:  "pw123456",
		FirstName: "Jane",
	})
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}

	if err := svc.DeleteAccount(context.Background(), user.ID); err != nil {
		t.Fatalf("DeleteAccount returned error: %v", err)
	}
	if _, err := users.GetByID(context.Background(), user.ID); err == nil {
		t.Fatal("expected user to be gone")
	}
}

func TestDeleteAccountDropsSessionsAndPublishes(t *testing.T) {
	users := newFakeUserRepository()
	sessions := newFakeSessionRepository()
	events := &fakeEventPublisher{}
	svc := newAccountService(users, sessions, events)

	if _, err := svc.Signup(context.Background(), SignupInput{
		Email:     "jane@example.com",
		Password:  "pw123456",
		FirstName: "Jane",
	}); err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}

	user, session, err := svc.Login(context.Background(), "jane@example.com", "pw123456")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if err := svc.DeleteAccount(context.Background(), user.ID); err != nil {
		t.Fatalf("DeleteAccount returned error: %v", err)
	}

	if _, err := users.GetByID(context.Background(), user.ID); err == nil {
		t.Fatal("expected user to be gone")
	}
	if _, err := sessions.GetByToken(context.Background(), session.Token); err == nil {
		t.Fatal("expected sessions to be gone")
	}
	if len(events.deleted) != 1 {
		t.Fatalf("expected one deletion event, got %d", len(events.deleted))
	}
}
