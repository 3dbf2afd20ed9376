package oAuth

import (
	"context"
	"strconv"

	"github.com/Xushengqwer/keenmind_auth/config"
	"github.com/Xushengqwer/keenmind_auth/dependencies"
	"github.com/Xushengqwer/keenmind_auth/models/dto"
	"github.com/Xushengqwer/keenmind_auth/models/enums"
)

type githubProvider struct {
	client dependencies.GithubClient
}

// NewGithubProvider client id 与 secret 必填
func NewGithubProvider(cfg *config.GithubConfig, baseURL string) (Provider, error) {
	if err := requireConfig(enums.ProviderGithub, map[string]string{
		"client_id":     cfg.ClientID,
		"client_secret": cfg.ClientSecret,
	}); err != nil {
		return nil, err
	}
	return &githubProvider{
		client: dependencies.NewGithubClient(cfg, CallbackURL(baseURL, enums.ProviderGithub)),
	}, nil
}

func (p *githubProvider) ID() string              { return enums.ProviderGithub }
func (p *githubProvider) Type() enums.AccountType { return enums.AccountTypeOAuth }

func (p *githubProvider) AuthCodeURL(state string) string {
	return p.client.AuthCodeURL(state)
}

func (p *githubProvider) Exchange(ctx context.Context, code string) (*dto.OAuthProfile, *dto.AdapterAccount, error) {
	token, err := p.client.Exchange(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	user, err := p.client.FetchUser(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	name := user.Name
	if name == "" {
		name = user.Login
	}
	accountID := strconv.FormatInt(user.ID, 10)
	profile := &dto.OAuthProfile{
		ID:            accountID,
		Name:          strPtr(name),
		Email:         strPtr(user.Email),
		Image:         strPtr(user.AvatarURL),
		EmailVerified: user.EmailVerified,
	}

	account := &dto.AdapterAccount{
		Type:              enums.AccountTypeOAuth,
		Provider:          enums.ProviderGithub,
		ProviderAccountID: accountID,
		AccessToken:       strPtr(token.AccessToken),
		RefreshToken:      strPtr(token.RefreshToken),
		TokenType:         strPtr(token.TokenType),
	}
	if !token.Expiry.IsZero() {
		exp := token.Expiry.Unix()
		account.ExpiresAt = &exp
	}
	if scope, ok := token.Extra("scope").(string); ok {
		account.Scope = strPtr(scope)
	}
	return profile, account, nil
}
