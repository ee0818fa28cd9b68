// Package profile manages the per-user profiles table: lazy creation,
// self-service updates, and the security-question fields consumed by the
// password-recovery flow.
package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/movequote/internal/client/api"
	"github.com/example/movequote/internal/client/models"
	"github.com/example/movequote/internal/common"
	"github.com/example/movequote/internal/cryptox"
	"github.com/example/movequote/internal/logging"
)

const table = "profiles"

type Service struct {
	store api.Store
	log   logging.Logger
}

func NewService(store api.Store, log logging.Logger) *Service {
	return &Service{store: store, log: log}
}

// Get returns the user's profile, creating a minimal row on first fetch if
// none exists yet.
func (s *Service) Get(ctx context.Context, userID uuid.UUID, email string) (*models.Profile, error) {
	var p models.Profile
	err := s.store.SelectSingle(ctx, table, "", []api.Filter{api.Eq("user_id", userID)}, &p)
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	s.log.Info(ctx, "profile missing, creating", "user_id", userID)
	p = models.Profile{UserID: userID, Email: email}
	if err := s.store.Insert(ctx, table, p); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return &p, nil
}

// Create inserts a fully populated profile row, typically at registration.
func (s *Service) Create(ctx context.Context, p models.Profile) error {
	if err := s.store.Insert(ctx, table, p); err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

// Update changes the self-service fields (name and email).
func (s *Service) Update(ctx context.Context, userID uuid.UUID, fullName, email string) error {
	patch := map[string]string{"full_name": fullName, "email": email}
	if err := s.store.Update(ctx, table, patch, []api.Filter{api.Eq("user_id", userID)}); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// UpdateSecurityQuestion replaces the question and stores a fresh hash of
// the new answer; the plaintext never reaches the store.
func (s *Service) UpdateSecurityQuestion(ctx context.Context, userID uuid.UUID, question, answer string) error {
	patch := map[string]string{
		"security_question":    question,
		"security_answer_hash": cryptox.HashAnswer(answer),
	}
	if err := s.store.Update(ctx, table, patch, []api.Filter{api.Eq("user_id", userID)}); err != nil {
		return fmt.Errorf("failed to update security question: %w", err)
	}
	return nil
}

// QuestionByEmail returns the account's security question.
// Part of session.ProfileDirectory.
func (s *Service) QuestionByEmail(ctx context.Context, email string) (string, error) {
	var row struct {
		SecurityQuestion string `json:"security_question"`
	}
	err := s.store.SelectSingle(ctx, table, "security_question", []api.Filter{api.Eq("email", email)}, &row)
	if err != nil {
		return "", err
	}
	if row.SecurityQuestion == "" {
		return "", fmt.Errorf("%w: no security question set", common.ErrNotFound)
	}
	return row.SecurityQuestion, nil
}

// AnswerHashByEmail returns the stored answer hash for verification.
// Part of session.ProfileDirectory.
func (s *Service) AnswerHashByEmail(ctx context.Context, email string) (string, error) {
	var row struct {
		SecurityAnswerHash string `json:"security_answer_hash"`
	}
	err := s.store.SelectSingle(ctx, table, "security_answer_hash", []api.Filter{api.Eq("email", email)}, &row)
	if err != nil {
		return "", err
	}
	return row.SecurityAnswerHash, nil
}
