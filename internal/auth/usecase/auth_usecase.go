package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	authdomain "studysync-backend/internal/auth/domain"
	"studysync-backend/internal/auth/repository"
	"studysync-backend/pkg/config"
	"studysync-backend/pkg/google"
	"studysync-backend/pkg/notion"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// authUsecase implements AuthUsecase.
type authUsecase struct {
	userRepo      repository.UserRepository
	googleService *google.Service
	notionClient  *notion.Client
	config        *config.Config
}

func NewAuthUsecase(userRepo repository.UserRepository, googleService *google.Service, notionClient *notion.Client, cfg *config.Config) AuthUsecase {
	return &authUsecase{
		userRepo:      userRepo,
		googleService: googleService,
		notionClient:  notionClient,
		config:        cfg,
	}
}

func (u *authUsecase) GoogleAuthURL() string {
	return u.googleService.AuthURL("google-auth")
}

func (u *authUsecase) HandleGoogleCallback(ctx context.Context, code string) (string, error) {
	token, err := u.googleService.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("google token exchange failed: %w", err)
	}

	info, err := u.googleService.UserInfo(ctx, token.AccessToken)
	if err != nil {
		return "", fmt.Errorf("google userinfo failed: %w", err)
	}
	if info.Email == "" {
		return "", errors.New("google userinfo returned no email")
	}

	user, err := u.userRepo.FindByEmail(info.Email)
	if err != nil {
		return "", err
	}

	if user == nil {
		user = &authdomain.User{
			Email: info.Email,
			Name:  info.Name,
		}
		applyGoogleToken(user, token)
		if err := u.userRepo.Create(user); err != nil {
			return "", err
		}
	} else {
		user.Name = info.Name
		applyGoogleToken(user, token)
		if err := u.userRepo.Update(user); err != nil {
			return "", err
		}
	}

	return u.generateSessionToken(user.Email)
}

// applyGoogleToken copies fresh credentials onto the user. Google omits
// the refresh token on re-auth unless consent was re-prompted, so an
// existing refresh token is kept when the response carries none.
func applyGoogleToken(user *authdomain.User, token *oauth2.Token) {
	user.GoogleAccessToken = token.AccessToken
	user.GoogleTokenType = token.TokenType
	user.GoogleTokenExpiry = token.Expiry
	if token.RefreshToken != "" {
		user.GoogleRefreshToken = token.RefreshToken
	}
	if scope, ok := token.Extra("scope").(string); ok {
		user.GoogleScope = scope
	}
}

func (u *authUsecase) NotionAuthURL() string {
	return u.notionClient.AuthURL("notion-auth")
}

func (u *authUsecase) HandleNotionCallback(ctx context.Context, email, code string) error {
	user, err := u.userRepo.FindByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	result, err := u.notionClient.ExchangeCode(ctx, code)
	if err != nil {
		return err
	}

	now := time.Now()
	user.NotionAccessToken = result.AccessToken
	user.NotionBotID = result.BotID
	user.NotionWorkspaceID = result.WorkspaceID
	user.NotionWorkspaceName = result.WorkspaceName
	user.NotionConnectedAt = &now
	return u.userRepo.Update(user)
}

// ErrUserNotFound signals that the referenced user is absent from the store.
var ErrUserNotFound = errors.New("user not found")

func (u *authUsecase) generateSessionToken(email string) (string, error) {
	claims := jwt.MapClaims{
		"sub": email,
		"exp": time.Now().Add(u.config.JWTExpiry).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(u.config.JWTSecret))
}

func (u *authUsecase) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(u.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}

	email, ok := claims["sub"].(string)
	if !ok || email == "" {
		return "", errors.New("invalid token claims")
	}
	return email, nil
}

func (u *authUsecase) GetMe(email string) (*authdomain.User, error) {
	user, err := u.userRepo.FindByEmailWithCourses(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
