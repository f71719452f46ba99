// Package session はセッションの発行・検証・破棄を提供する。
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/mailsign/internal/model"
	"github.com/hitoshi/mailsign/internal/repository"
)

// ServiceConfig はセッションサービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service はセッションに関するビジネスロジックを提供する。
type Service struct {
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	sessionRepo repository.SessionRepository,
	userRepo repository.UserRepository,
	config ServiceConfig,
) *Service {
	return &Service{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		config:      config,
	}
}

// SignIn は認証済みユーザーのセッションを作成し永続化する。
func (s *Service) SignIn(ctx context.Context, user *model.User, team *model.Team, method string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    user.ID,
		TeamID:    team.ID,
		Method:    method,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// GetCurrentUser はセッションから現在のユーザーを取得する。
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session not found or expired")
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	return user, nil
}

// FindSession は指定IDの有効なセッションを返す。期限切れ・未知のIDはnil。
func (s *Service) FindSession(ctx context.Context, sessionID string) (*model.Session, error) {
	return s.sessionRepo.FindByID(ctx, sessionID)
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
