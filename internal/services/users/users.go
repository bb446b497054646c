package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lealre/moviereviews/internal/auth"
	"github.com/lealre/moviereviews/internal/logx"
	"github.com/lealre/moviereviews/internal/mongodb"
	"go.uber.org/zap"
)

// Register creates an active, non-admin user. Username and email must both
// be unused; the email is compared case-insensitively.
func Register(ctx context.Context, db mongodb.UserStore, req NewUserRequest) (UserResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := validate.StructCtx(ctx, req); err != nil {
		return UserResponse{}, fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}
	if !IsValidUsername(req.Username) {
		return UserResponse{}, ErrInvalidUsername
	}

	if exists, err := credentialsTaken(ctx, db, req.Username, req.Email); err != nil {
		return UserResponse{}, err
	} else if exists {
		return UserResponse{}, ErrCredentialsAlreadyExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return UserResponse{}, err
	}

	userDb, err := db.AddUser(ctx, mongodb.UserDb{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		IsActive:     true,
	})
	if err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, mongodb.ErrDuplicateKey) {
			return UserResponse{}, ErrCredentialsAlreadyExists
		}
		return UserResponse{}, err
	}

	logx.FromContext(ctx).Info("user registered", zap.String("username", userDb.Username))
	return MapDbUserToApiUserResponse(userDb), nil
}

// Login checks the password of the user found by username, or by email
// when no username is given, and issues an access token for it.
func Login(ctx context.Context, db mongodb.UserStore, req auth.LoginRequest, tokenSecret string, ttl time.Duration) (auth.LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if (username == "" && email == "") || req.Password == "" {
		return auth.LoginResponse{}, ErrMissingCredentials
	}

	userDb, err := GetUserDbByUsernameOrEmail(ctx, db, username, email)
	if err != nil {
		// Unknown users look the same as wrong passwords.
		if errors.Is(err, ErrUserNotFound) {
			return auth.LoginResponse{}, auth.ErrInvalidCredentials
		}
		return auth.LoginResponse{}, err
	}

	if !userDb.IsActive {
		return auth.LoginResponse{}, auth.ErrInvalidCredentials
	}
	if err := auth.CheckPasswordHash(userDb.PasswordHash, req.Password); err != nil {
		return auth.LoginResponse{}, auth.ErrInvalidCredentials
	}

	token, err := auth.NewAccessToken(userDb.Id, tokenSecret, ttl)
	if err != nil {
		return auth.LoginResponse{}, err
	}

	return MapDbUserToApiLoginResponse(userDb, token), nil
}

func GetUserDbByUsernameOrEmail(ctx context.Context, db mongodb.UserStore, username, email string) (mongodb.UserDb, error) {
	var (
		userDb mongodb.UserDb
		err    error
	)
	if username != "" {
		userDb, err = db.GetUserByUsername(ctx, username)
	} else {
		userDb, err = db.GetUserByEmail(ctx, email)
	}
	if err != nil {
		if errors.Is(err, mongodb.ErrRecordNotFound) {
			return mongodb.UserDb{}, ErrUserNotFound
		}
		return mongodb.UserDb{}, err
	}
	return userDb, nil
}

// CheckIfUserExist returns false with a nil error when no user has the id.
func CheckIfUserExist(ctx context.Context, db mongodb.UserStore, id string) (bool, error) {
	_, err := db.GetUserById(ctx, id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongodb.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

func credentialsTaken(ctx context.Context, db mongodb.UserStore, username, email string) (bool, error) {
	if _, err := db.GetUserByUsername(ctx, username); err == nil {
		return true, nil
	} else if !errors.Is(err, mongodb.ErrRecordNotFound) {
		return false, err
	}

	if _, err := db.GetUserByEmail(ctx, email); err == nil {
		return true, nil
	} else if !errors.Is(err, mongodb.ErrRecordNotFound) {
		return false, err
	}

	return false, nil
}
