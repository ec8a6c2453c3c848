package model

import "testing"

func TestAuthorizationLevel(t *testing.T) {
	owner := "owner-1"
	other := "other-1"

	publicRepo := &Repository{ID: "repo-1", OwnerID: owner, IsPrivate: false}
	privateRepo := &Repository{ID: "repo-2", OwnerID: owner, IsPrivate: true}

	tests := []struct {
		name          string
		authorization RepositoryAuthorization
		wantLevel     AuthorizationLevel
		canRead       bool
		canContribute bool
		isAdmin       bool
	}{
		{
			"owner of public repository",
			RepositoryAuthorization{UserID: owner, Repository: publicRepo},
			LevelAdmin, true, true, true,
		},
		{
			"owner of private repository",
			RepositoryAuthorization{UserID: owner, Repository: privateRepo},
			LevelAdmin, true, true, true,
		},
		{
			"other user on public repository",
			RepositoryAuthorization{UserID: other, Repository: publicRepo},
			LevelReader, true, false, false,
		},
		{
			"other user on private repository",
			RepositoryAuthorization{UserID: other, Repository: privateRepo},
			LevelNothing, false, false, false,
		},
		{
			"anonymous on public repository",
			RepositoryAuthorization{Repository: publicRepo},
			LevelReader, true, false, false,
		},
		{
			"anonymous on private repository",
			RepositoryAuthorization{Repository: privateRepo},
			LevelNothing, false, false, false,
		},
		{
			"repository not loaded",
			RepositoryAuthorization{UserID: owner},
			LevelNothing, false, false, false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.authorization
			if got := a.Level(); got != tt.wantLevel {
				t.Errorf("Level() = %v, want %v", got, tt.wantLevel)
			}
			if got := a.CanRead(); got != tt.canRead {
				t.Errorf("CanRead() = %v, want %v", got, tt.canRead)
			}
			if got := a.CanContribute(); got != tt.canContribute {
				t.Errorf("CanContribute() = %v, want %v", got, tt.canContribute)
			}
			if got := a.CanWrite(); got != tt.canContribute {
				t.Errorf("CanWrite() = %v, want %v", got, tt.canContribute)
			}
			if got := a.IsAdmin(); got != tt.isAdmin {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.isAdmin)
			}
		})
	}
}

func TestAuthorizationIsAnonymous(t *testing.T) {
	anonymous := RepositoryAuthorization{RepositoryID: "repo-1"}
	if !anonymous.IsAnonymous() {
		t.Error("record without user should be anonymous")
	}

	authenticated := RepositoryAuthorization{UserID: "user-1", RepositoryID: "repo-1"}
	if authenticated.IsAnonymous() {
		t.Error("record with user should not be anonymous")
	}
}
