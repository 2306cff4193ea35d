package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/restaurante-api/internal/application/auth"
	"github.com/jhoicas/restaurante-api/internal/application/dto"
	"github.com/jhoicas/restaurante-api/internal/application/usecase"
	"github.com/jhoicas/restaurante-api/internal/domain"
	"github.com/jhoicas/restaurante-api/internal/domain/entity"
	"github.com/jhoicas/restaurante-api/internal/testutil"
)

type revoker struct{ revoked []string }

func (r *revoker) RevokeSessions(_ context.Context, ownerID string) error {
	r.revoked = append(r.revoked, ownerID)
	return nil
}

func ptr[T any](v T) *T { return &v }

func TestStaff_CreateYRol(t *testing.T) {
	users := testutil.NewUsers()
	rv := &revoker{}
	uc := usecase.NewStaffUseCase(users, rv, bcrypt.MinCost)
	ctx := context.Background()

	u, err := uc.Create(ctx, dto.CreateStaffRequest{Name: "Eva", Surname: "Ruiz", Email: " EVA@resto.com ", Password: "secreto1", Role: entity.RoleMember})
	require.NoError(t, err)
	assert.Equal(t, "eva@resto.com", u.Email)

	_, err = uc.Create(ctx, dto.CreateStaffRequest{Name: "Eva", Surname: "Ruiz", Email: "eva@resto.com", Password: "secreto1", Role: entity.RoleMember})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	_, err = uc.Create(ctx, dto.CreateStaffRequest{Name: "Otro", Surname: "X", Email: "o@resto.com", Password: "secreto1", Role: "chef"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Create(ctx, dto.CreateStaffRequest{Name: "Otro", Surname: "X", Email: "o@resto.com", Password: "123", Role: entity.RoleMember})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err := uc.Update(ctx, u.ID, dto.UpdateStaffRequest{Role: ptr(entity.RoleModerator)})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleModerator, out.Role)
	assert.Empty(t, rv.revoked)

	_, err = uc.Update(ctx, u.ID, dto.UpdateStaffRequest{Password: ptr("nuevaclave")})
	require.NoError(t, err)
	assert.Equal(t, []string{u.ID}, rv.revoked)
	stored, _ := users.GetByEmail(ctx, "eva@resto.com")
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "nuevaclave"))
}

func TestStaff_AdminNoSeEliminaASiMismo(t *testing.T) {
	users := testutil.NewUsers()
	uc := usecase.NewStaffUseCase(users, nil, bcrypt.MinCost)
	ctx := context.Background()
	admin, err := uc.Create(ctx, dto.CreateStaffRequest{Name: "Ada", Surname: "L", Email: "ada@resto.com", Password: "secreto1", Role: entity.RoleAdmin})
	require.NoError(t, err)
	member, err := uc.Create(ctx, dto.CreateStaffRequest{Name: "Bo", Surname: "M", Email: "bo@resto.com", Password: "secreto1", Role: entity.RoleMember})
	require.NoError(t, err)

	assert.ErrorIs(t, uc.Delete(ctx, admin.ID, admin.ID), domain.ErrConflict)
	require.NoError(t, uc.Delete(ctx, admin.ID, member.ID))
	_, err = uc.Get(ctx, member.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCustomer_UpdateProfile(t *testing.T) {
	customers := testutil.NewCustomers()
	hash, err := auth.HashPassword("actual123", bcrypt.MinCost)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, customers.Create(ctx, &entity.Customer{ID: "c-1", Name: "Ana", Surname: "P", Email: "ana@example.com", PasswordHash: hash}))
	require.NoError(t, customers.Create(ctx, &entity.Customer{ID: "c-2", Name: "Oauth", Surname: "Only",
		ExternalIDs: map[string]string{entity.ProviderGoogle: "g-1"}}))
	uc := usecase.NewCustomerUseCase(customers, nil, bcrypt.MinCost)

	out, err := uc.UpdateProfile(ctx, "c-1", dto.UpdateProfileRequest{Phone: ptr(" 600 ")})
	require.NoError(t, err)
	assert.Equal(t, "600", out.Phone)

	_, err = uc.UpdateProfile(ctx, "c-1", dto.UpdateProfileRequest{CurrentPassword: "mala", NewPassword: "nueva123"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = uc.UpdateProfile(ctx, "c-1", dto.UpdateProfileRequest{CurrentPassword: "actual123", NewPassword: "nueva123"})
	require.NoError(t, err)

	// identidad solo OAuth: puede fijar contraseña sin la actual
	out, err = uc.UpdateProfile(ctx, "c-2", dto.UpdateProfileRequest{NewPassword: "primera1"})
	require.NoError(t, err)
	assert.True(t, out.HasPassword)
	assert.Equal(t, []string{entity.ProviderGoogle}, out.Providers)

	_, err = uc.UpdateProfile(ctx, "c-1", dto.UpdateProfileRequest{Name: ptr("")})
	assert.ErrorIs(t, err, domain.ErrMissingFields)
}

func TestCustomer_UpdateEmailOcupado(t *testing.T) {
	customers := testutil.NewCustomers()
	ctx := context.Background()
	require.NoError(t, customers.Create(ctx, &entity.Customer{ID: "c-1", Name: "Ana", Surname: "P", Email: "ana@example.com"}))
	require.NoError(t, customers.Create(ctx, &entity.Customer{ID: "c-2", Name: "Luis", Surname: "G", Email: "luis@example.com"}))
	rv := &revoker{}
	uc := usecase.NewCustomerUseCase(customers, rv, bcrypt.MinCost)

	_, err := uc.Update(ctx, "c-2", dto.UpdateCustomerRequest{Email: ptr("ANA@example.com")})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	require.NoError(t, uc.Delete(ctx, "c-2"))
	assert.Equal(t, []string{"c-2"}, rv.revoked)
	assert.Equal(t, 1, customers.Count())
}
