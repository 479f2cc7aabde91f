package services

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/praxislabs/execemy-backend/internal/logger"
	"github.com/praxislabs/execemy-backend/internal/requestdata"
	"github.com/praxislabs/execemy-backend/internal/types"
)

func TestRegisterThenTokenRoundTrip(t *testing.T) {
	users := &fakeUserRepo{}
	svc := NewAuthService(nil, logger.NewNop(), users, "test-secret", time.Hour)

	user, token, err := svc.RegisterUser(context.Background(), "  Resident@Execemy.DEV ", "hunter22", "Jordan")
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if user.Email != "resident@execemy.dev" {
		t.Fatalf("Email = %q, want normalized", user.Email)
	}
	if user.Password == "hunter22" {
		t.Fatal("password stored in plaintext")
	}
	if user.ResidencyYear != 1 {
		t.Fatalf("ResidencyYear = %d, new users start in year 1", user.ResidencyYear)
	}

	ctx, err := svc.SetContextFromToken(context.Background(), token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID != user.ID {
		t.Fatalf("request data = %+v, want the registered user's id", rd)
	}
}

func TestRegisterUserValidation(t *testing.T) {
	svc := NewAuthService(nil, logger.NewNop(), &fakeUserRepo{}, "test-secret", time.Hour)

	if _, _, err := svc.RegisterUser(context.Background(), "", "pw", ""); err == nil {
		t.Fatal("expected an error for a missing email")
	}
	if _, _, err := svc.RegisterUser(context.Background(), "a@b.c", "", ""); err == nil {
		t.Fatal("expected an error for a missing password")
	}
}

func TestLoginUser(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	users := &fakeUserRepo{user: &types.User{ID: testUser, Email: "resident@execemy.dev", Password: string(hashed)}}
	svc := NewAuthService(nil, logger.NewNop(), users, "test-secret", time.Hour)

	token, err := svc.LoginUser(context.Background(), "resident@execemy.dev", "hunter22")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	if _, err := svc.LoginUser(context.Background(), "resident@execemy.dev", "wrong"); err == nil {
		t.Fatal("expected an error for a wrong password")
	}
}

func TestSetContextFromTokenRejectsBadTokens(t *testing.T) {
	svc := NewAuthService(nil, logger.NewNop(), &fakeUserRepo{}, "test-secret", time.Hour)

	if _, err := svc.SetContextFromToken(context.Background(), "not-a-token"); err == nil {
		t.Fatal("expected an error for garbage input")
	}

	// A token signed under a different key must not validate.
	other := NewAuthService(nil, logger.NewNop(), &fakeUserRepo{}, "other-secret", time.Hour)
	_, token, err := other.RegisterUser(context.Background(), "x@y.z", "pw", "")
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if _, err := svc.SetContextFromToken(context.Background(), token); err == nil {
		t.Fatal("expected an error for a foreign signature")
	}
}

func TestSetContextFromTokenRejectsExpired(t *testing.T) {
	svc := NewAuthService(nil, logger.NewNop(), &fakeUserRepo{}, "test-secret", -time.Minute)

	_, token, err := svc.RegisterUser(context.Background(), "x@y.z", "pw", "")
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if _, err := svc.SetContextFromToken(context.Background(), token); err == nil {
		t.Fatal("expected an error for an expired token")
	}
}
