package service

import (
	"context"
	"strings"

	"store-service/internal/models"
	"store-service/internal/repository"

	"github.com/google/uuid"
)

type CreateUserInput struct {
	Email string
	// готовый хэш от внешнего auth-сервиса; пароли мы не считаем
	PasswordHash string
	FullName     string
	Phone        *string
}

type AddressInput struct {
	UserID     uuid.UUID
	Line1      string
	Line2      *string
	City       string
	Region     *string
	PostalCode string
	Country    string
}

type AccountService struct {
	repo *repository.Repository
}

func NewAccountService(repo *repository.Repository) *AccountService {
	return &AccountService{repo: repo}
}

func (s *AccountService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if in.PasswordHash == "" {
		return nil, ErrValidation
	}

	u := &models.User{
		Email:        email,
		PasswordHash: in.PasswordHash,
		FullName:     strings.TrimSpace(in.FullName),
		Phone:        in.Phone,
		IsActive:     true,
	}

	err := s.repo.WithTx(func(tx *repository.Repository) error {
		if exists, err := tx.Users.ExistsByEmail(ctx, email); err != nil {
			return err
		} else if exists {
			return ErrEmailAlreadyExists
		}
		if err := tx.Users.Create(ctx, u); err != nil {
			return translateDBErr(err, ErrEmailAlreadyExists, nil)
		}
		// новый пользователь — всегда customer
		role, err := tx.Roles.GetByName(ctx, models.RoleCustomer)
		if err != nil {
			return err
		}
		if role == nil {
			return ErrRoleNotFound
		}
		return tx.Roles.Assign(ctx, u.ID, role.ID)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AccountService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	u, err := s.repo.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *AccountService) ListRoles(ctx context.Context, userID uuid.UUID) ([]models.Role, error) {
	return s.repo.Roles.ListForUser(ctx, userID)
}

func (s *AccountService) RevokeRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	role, err := s.repo.Roles.GetByName(ctx, roleName)
	if err != nil {
		return err
	}
	if role == nil {
		return ErrRoleNotFound
	}
	ok, err := s.repo.Roles.Revoke(ctx, userID, role.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRoleNotAssigned
	}
	return nil
}

func (s *AccountService) AssignRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	role, err := s.repo.Roles.GetByName(ctx, roleName)
	if err != nil {
		return err
	}
	if role == nil {
		return ErrRoleNotFound
	}
	return translateDBErr(s.repo.Roles.Assign(ctx, userID, role.ID), nil, ErrUserNotFound)
}

// DeleteRole: роль с пользователями удалить нельзя — RESTRICT наружу
// как ошибка целостности, никакого тихого игнора.
func (s *AccountService) DeleteRole(ctx context.Context, roleName string) (bool, error) {
	role, err := s.repo.Roles.GetByName(ctx, roleName)
	if err != nil {
		return false, err
	}
	if role == nil {
		return false, ErrRoleNotFound
	}
	ok, err := s.repo.Roles.Delete(ctx, role.ID)
	return ok, translateDBErr(err, nil, ErrRoleInUse)
}

func (s *AccountService) CreateAddress(ctx context.Context, in AddressInput) (*models.Address, error) {
	if strings.TrimSpace(in.Line1) == "" || strings.TrimSpace(in.City) == "" ||
		strings.TrimSpace(in.PostalCode) == "" || len(strings.TrimSpace(in.Country)) != 2 {
		return nil, ErrValidation
	}
	a := &models.Address{
		UserID:     in.UserID,
		Line1:      in.Line1,
		Line2:      in.Line2,
		City:       in.City,
		Region:     in.Region,
		PostalCode: in.PostalCode,
		Country:    strings.ToUpper(strings.TrimSpace(in.Country)),
	}
	if err := s.repo.Addresses.Create(ctx, a); err != nil {
		return nil, translateDBErr(err, nil, ErrUserNotFound)
	}
	return a, nil
}

// SetDefaultShippingAddress: старый дефолт снимается и новый ставится
// в одной транзакции — индексом такой инвариант не удержать.
func (s *AccountService) SetDefaultShippingAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	return s.repo.WithTx(func(tx *repository.Repository) error {
		if err := tx.Addresses.ClearDefaultShipping(ctx, userID); err != nil {
			return err
		}
		ok, err := tx.Addresses.SetDefaultShipping(ctx, addressID, userID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAddressNotFound
		}
		return nil
	})
}

func (s *AccountService) SetDefaultBillingAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	return s.repo.WithTx(func(tx *repository.Repository) error {
		if err := tx.Addresses.ClearDefaultBilling(ctx, userID); err != nil {
			return err
		}
		ok, err := tx.Addresses.SetDefaultBilling(ctx, addressID, userID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAddressNotFound
		}
		return nil
	})
}

func (s *AccountService) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	return s.repo.Addresses.ListByUser(ctx, userID)
}

func (s *AccountService) DeleteAddress(ctx context.Context, id uuid.UUID) (bool, error) {
	// заказы переживают удаление адреса: FK SET NULL
	return s.repo.Addresses.Delete(ctx, id)
}
