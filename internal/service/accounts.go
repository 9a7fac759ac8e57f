package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/model"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/repository"
	"github.com/AhmadRaza029/hostel-allotment-nexus/internal/validation"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterStudent создаёт учётную запись студента вместе с профилем.
func (s *Service) RegisterStudent(ctx context.Context, st model.Student, password string) (*model.Student, error) {
	st.Email = normalizeEmail(st.Email)
	st.Name = strings.TrimSpace(st.Name)
	st.Department = strings.TrimSpace(st.Department)
	st.Gender = model.Gender(strings.ToUpper(string(st.Gender)))

	if err := validation.ValidateRegistration(st, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	st.ID = uuid.NewString()
	acc := model.Account{
		ID:           st.ID,
		Email:        st.Email,
		PasswordHash: hash,
		Role:         model.RoleStudent,
	}

	if err := s.repo.CreateStudentAccount(ctx, acc, st); err != nil {
		return nil, err
	}

	return &st, nil
}

// EnsureAdmin создаёт учётную запись администратора, если её ещё нет.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	created, err := s.repo.EnsureAccount(ctx, model.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	})
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("admin account created", zap.String("email", email))
		return nil
	}

	acc, err := s.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		return err
	}
	if acc.Role != model.RoleAdmin {
		s.logger.Warn("admin email belongs to a non-admin account, no admin account is available",
			zap.String("email", email), zap.String("role", string(acc.Role)))
	}
	return nil
}

// Login проверяет email и пароль и убеждается, что роль учётной записи соответствует порталу входа.
func (s *Service) Login(ctx context.Context, email, password string, portal model.Role) (*model.Account, error) {
	acc, err := s.repo.GetAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if acc.Role != portal {
		return nil, ErrWrongPortal
	}

	return acc, nil
}
