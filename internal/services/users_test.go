package services_test

import (
	"errors"
	"testing"

	"github.com/localnerve/shopdb/internal/models"
	"github.com/localnerve/shopdb/internal/services"
	"github.com/localnerve/shopdb/internal/testutil"
)

const testSalt = "pepper"

func TestHashPassword(t *testing.T) {
	want := "3efb3488726bf63375a65f4487e234449340a44d8d0a9118d58545165d52545c"
	if got := services.HashPassword("Secret123", testSalt); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
	if services.HashPassword("Secret123", "other") == want {
		t.Error("Expected the salt to change the hash")
	}
}

func TestCreateOrUpdateUserIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)

	in := services.UserInput{
		UID:         "u1",
		Provider:    strPtr("google"),
		Identifier:  strPtr("u1@example.com"),
		DisplayName: strPtr("First"),
	}
	created, err := services.CreateOrUpdateUser(db, testSalt, in)
	if err != nil {
		t.Fatalf("CreateOrUpdateUser failed: %v", err)
	}
	if !created.IsActive {
		t.Error("Expected a new user to be active")
	}
	if created.LastLogin == nil {
		t.Error("Expected last_login to be set")
	}

	in.DisplayName = strPtr("Second")
	updated, err := services.CreateOrUpdateUser(db, testSalt, in)
	if err != nil {
		t.Fatalf("CreateOrUpdateUser failed: %v", err)
	}
	if updated.ID != created.ID {
		t.Errorf("Expected the same user row, got %d and %d", created.ID, updated.ID)
	}
	if updated.DisplayName == nil || *updated.DisplayName != "Second" {
		t.Errorf("Expected display name Second, got %v", updated.DisplayName)
	}
	if updated.LastLogin == nil || updated.LastLogin.Before(*created.LastLogin) {
		t.Error("Expected last_login to be refreshed")
	}

	var count int64
	db.Model(&models.User{}).Where("uid = ?", "u1").Count(&count)
	if count != 1 {
		t.Errorf("Expected one user row, got %d", count)
	}

	// omitted fields keep their values
	partial, err := services.CreateOrUpdateUser(db, testSalt, services.UserInput{UID: "u1"})
	if err != nil {
		t.Fatalf("CreateOrUpdateUser failed: %v", err)
	}
	if partial.Provider != "google" || partial.DisplayName == nil || *partial.DisplayName != "Second" {
		t.Errorf("Expected stored fields to survive a partial update, got %+v", partial)
	}
}

func TestCreateUserRequiresIdentity(t *testing.T) {
	db := testutil.SetupTestDB(t)

	_, err := services.CreateOrUpdateUser(db, testSalt, services.UserInput{UID: "u1", Provider: strPtr("google")})
	assertBadRequest(t, err)

	_, err = services.GetUserByUID(db, "u1")
	if !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestVerifyPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)

	_, err := services.CreateOrUpdateUser(db, testSalt, services.UserInput{
		UID:        "u1",
		Provider:   strPtr("local"),
		Identifier: strPtr("u1"),
		Password:   strPtr("Secret123"),
	})
	if err != nil {
		t.Fatalf("CreateOrUpdateUser failed: %v", err)
	}
	testutil.CreateTestUser(t, db, "nopass")

	tests := []struct {
		name     string
		uid      string
		password string
		want     bool
	}{
		{"correct password", "u1", "Secret123", true},
		{"wrong password", "u1", "Secret124", false},
		{"unknown user", "ghost", "Secret123", false},
		{"user without password", "nopass", "Secret123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := services.VerifyPassword(db, testSalt, tt.uid, tt.password)
			if err != nil {
				t.Fatalf("VerifyPassword failed: %v", err)
			}
			if ok != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, ok)
			}
		})
	}
}
