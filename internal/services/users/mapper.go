package users

import (
	"github.com/lealre/moviereviews/internal/auth"
	"github.com/lealre/moviereviews/internal/mongodb"
)

func MapDbUserToApiUserResponse(userDb mongodb.UserDb) UserResponse {
	return UserResponse{
		Id:        userDb.Id,
		Username:  userDb.Username,
		Email:     userDb.Email,
		IsAdmin:   userDb.IsAdmin,
		CreatedAt: userDb.CreatedAt,
		UpdatedAt: userDb.UpdatedAt,
	}
}

func MapDbUserToApiLoginResponse(userDb mongodb.UserDb, token string) auth.LoginResponse {
	return auth.LoginResponse{
		Id:          userDb.Id,
		Username:    userDb.Username,
		Email:       userDb.Email,
		IsAdmin:     userDb.IsAdmin,
		AccessToken: token,
	}
}
