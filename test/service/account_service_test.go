package service_test

import (
	"context"
	"errors"
	"testing"

	"store-service/internal/models"
	"store-service/internal/service"

	"github.com/google/uuid"
)

func TestDeleteRole_RestrictWhileAssigned(t *testing.T) {
	e := setupEnv(t, true)
	ctx := context.Background()

	// CreateUser сам вешает роль customer
	u, err := e.accounts.CreateUser(ctx, service.CreateUserInput{
		Email:        "worker@example.com",
		PasswordHash: "hash",
		FullName:     "Иван Иванов",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	roles, err := e.accounts.ListRoles(ctx, u.ID)
	if err != nil || len(roles) != 1 || roles[0].Name != models.RoleCustomer {
		t.Fatalf("roles after create: %+v err=%v", roles, err)
	}

	// роль с пользователями не удаляется — RESTRICT наружу как Integrity
	_, err = e.accounts.DeleteRole(ctx, models.RoleCustomer)
	if !errors.Is(err, service.ErrRoleInUse) {
		t.Fatalf("delete assigned role: got %v want ErrRoleInUse", err)
	}
	if !errors.Is(err, service.ErrIntegrity) {
		t.Errorf("must classify as integrity, got %v", err)
	}

	// после снятия роли со всех пользователей удаление проходит
	if err := e.accounts.AssignRole(ctx, u.ID, models.RoleVendor); err != nil {
		t.Fatalf("assign vendor: %v", err)
	}
	if err := e.accounts.RevokeRole(ctx, u.ID, models.RoleVendor); err != nil {
		t.Fatalf("revoke vendor: %v", err)
	}
	if err := e.accounts.RevokeRole(ctx, u.ID, models.RoleVendor); !errors.Is(err, service.ErrRoleNotAssigned) {
		t.Errorf("second revoke: got %v want ErrRoleNotAssigned", err)
	}
	ok, err := e.accounts.DeleteRole(ctx, models.RoleVendor)
	if err != nil || !ok {
		t.Fatalf("delete unassigned role: ok=%v err=%v", ok, err)
	}

	if err := e.accounts.AssignRole(ctx, u.ID, "bogus"); !errors.Is(err, service.ErrRoleNotFound) {
		t.Errorf("assign unknown role: got %v", err)
	}
}

func TestGetUserByEmail(t *testing.T) {
	e := setupEnv(t, true)
	ctx := context.Background()

	if _, err := e.accounts.CreateUser(ctx, service.CreateUserInput{
		Email:        "Finder@Example.com",
		PasswordHash: "hash",
	}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	// поиск без учёта регистра
	u, err := e.accounts.GetUserByEmail(ctx, "finder@example.com")
	if err != nil || u == nil {
		t.Fatalf("get by email: %v err=%v", u, err)
	}

	if _, err := e.accounts.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, service.ErrUserNotFound) {
		t.Errorf("missing user: got %v", err)
	}
	if _, err := e.accounts.GetUserByEmail(ctx, "  "); !errors.Is(err, service.ErrValidation) {
		t.Errorf("blank email: got %v", err)
	}
}

func TestSetDefaultAddress_SwitchClearsPrevious(t *testing.T) {
	e := setupEnv(t, true)
	ctx := context.Background()

	u, err := e.accounts.CreateUser(ctx, service.CreateUserInput{
		Email:        "addr@example.com",
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	newAddr := func(line string) uuid.UUID {
		a, err := e.accounts.CreateAddress(ctx, service.AddressInput{
			UserID:     u.ID,
			Line1:      line,
			City:       "Москва",
			PostalCode: "101000",
			Country:    "ru",
		})
		if err != nil {
			t.Fatalf("create address: %v", err)
		}
		if a.Country != "RU" {
			t.Errorf("country not normalized: %q", a.Country)
		}
		return a.ID
	}
	a1 := newAddr("ул. Ленина 1")
	a2 := newAddr("ул. Ленина 2")

	defaults := func() (shipping, billing []uuid.UUID) {
		list, err := e.accounts.ListAddresses(ctx, u.ID)
		if err != nil {
			t.Fatalf("list addresses: %v", err)
		}
		for _, a := range list {
			if a.IsDefaultShipping {
				shipping = append(shipping, a.ID)
			}
			if a.IsDefaultBilling {
				billing = append(billing, a.ID)
			}
		}
		return
	}

	if err := e.accounts.SetDefaultShippingAddress(ctx, u.ID, a1); err != nil {
		t.Fatalf("set default shipping: %v", err)
	}
	// смена дефолта снимает старый флаг: дефолт всегда ровно один
	if err := e.accounts.SetDefaultShippingAddress(ctx, u.ID, a2); err != nil {
		t.Fatalf("switch default shipping: %v", err)
	}
	ship, bill := defaults()
	if len(ship) != 1 || ship[0] != a2 {
		t.Errorf("default shipping: %v want only %v", ship, a2)
	}
	if len(bill) != 0 {
		t.Errorf("billing defaults leaked: %v", bill)
	}

	if err := e.accounts.SetDefaultBillingAddress(ctx, u.ID, a1); err != nil {
		t.Fatalf("set default billing: %v", err)
	}
	ship, bill = defaults()
	if len(ship) != 1 || ship[0] != a2 || len(bill) != 1 || bill[0] != a1 {
		t.Errorf("defaults: shipping=%v billing=%v", ship, bill)
	}

	// чужой или несуществующий адрес дефолтом не становится
	if err := e.accounts.SetDefaultShippingAddress(ctx, u.ID, uuid.New()); !errors.Is(err, service.ErrAddressNotFound) {
		t.Errorf("missing address: got %v", err)
	}
}
