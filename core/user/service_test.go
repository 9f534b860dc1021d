package user_test

import (
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/user"
	dummydb "github.com/smpn3kaledupa/presensi-nilai/storage/database/dummy"
	testutil "github.com/smpn3kaledupa/presensi-nilai/tests"
)

func setup() (*user.Service, user.Repository) {
	repo := dummydb.NewUserRepository(dummydb.Open())
	return user.NewService(repo), repo
}

func TestService_Create(t *testing.T) {
	svc, repo := setup()
	ctx := context.Background()
	testutil.CreateUser(t, repo, "Admin", "admin@school.id", "", user.RoleAdmin)

	_, err := svc.Create(ctx, user.NewUser{Email: "admin@school.id", Password: "s3cretPass", Name: "Other", Role: user.RoleTeacher})
	require.Error(t, err)
	assert.Equal(t, &core.ValidationError{
		Err:    user.ErrEmailExists,
		Fields: []core.FieldError{{Field: "email", Error: "a user with this email already exists"}},
	}, err)

	usr, err := svc.Create(ctx, user.NewUser{Email: "guru@school.id", Password: "s3cretPass", Name: "Guru", Role: user.RoleTeacher})
	require.NoError(t, err)
	assert.NotZero(t, usr.ID)
	assert.NotEmpty(t, usr.PasswordHash)
	assert.NotEqual(t, []byte("s3cretPass"), usr.PasswordHash)
	assert.False(t, usr.CreatedAt.IsZero())
}

func TestService_Authenticate(t *testing.T) {
	svc, repo := setup()
	ctx := context.Background()
	usr := testutil.CreateUser(t, repo, "Guru", "guru@school.id", "s3cretPass", user.RoleTeacher)

	tests := []struct {
		name    string
		email   string
		pwd     string
		wantErr error
	}{
		{name: "unknown email", email: "nobody@school.id", pwd: "s3cretPass", wantErr: user.ErrAuthenticationFailed},
		{name: "wrong password", email: "guru@school.id", pwd: "s3cret", wantErr: user.ErrAuthenticationFailed},
		{name: "success", email: " GURU@school.id", pwd: "s3cretPass"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Authenticate(ctx, tt.email, tt.pwd)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, usr.ID, got.ID)
		})
	}
}

func TestService_SetPassword(t *testing.T) {
	svc, repo := setup()
	ctx := context.Background()
	usr := testutil.CreateUser(t, repo, "Guru", "guru@school.id", "s3cretPass", user.RoleTeacher)

	_, err := svc.SetPassword(ctx, "nobody@school.id", "n3wPass")
	assert.Equal(t, user.ErrNotFound, err)

	updated, err := svc.SetPassword(ctx, usr.Email, "n3wPass")
	require.NoError(t, err)
	assert.True(t, !updated.UpdatedAt.Before(usr.UpdatedAt))

	_, err = svc.Authenticate(ctx, usr.Email, "s3cretPass")
	assert.Equal(t, user.ErrAuthenticationFailed, err)
	_, err = svc.Authenticate(ctx, usr.Email, "n3wPass")
	assert.NoError(t, err)
}

func TestService_Query(t *testing.T) {
	svc, repo := setup()
	ctx := context.Background()
	admin := testutil.CreateUser(t, repo, "Admin", "admin@school.id", "", user.RoleAdmin)
	guru := testutil.CreateUser(t, repo, "Guru Budi", "budi@school.id", "", user.RoleTeacher)
	siti := testutil.CreateUser(t, repo, "Siti", "siti@school.id", "", user.RoleStudent)

	tests := []struct {
		name     string
		filter   user.QueryFilter
		ordering []core.DBOrdering
		want     []user.User
	}{
		{name: "all", want: []user.User{admin, guru, siti}},
		{name: "search name", filter: user.QueryFilter{Search: "budi"}, want: []user.User{guru}},
		{name: "search email", filter: user.QueryFilter{Search: "SITI@"}, want: []user.User{siti}},
		{name: "roles", filter: user.QueryFilter{Roles: []string{user.RoleAdmin, user.RoleStudent}}, want: []user.User{admin, siti}},
		{name: "ordering", ordering: []core.DBOrdering{{Field: "name", Ascending: false}}, want: []user.User{siti, guru, admin}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Query(ctx, tt.filter, tt.ordering)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewUser_Validate(t *testing.T) {
	validate := validator.New()
	_en := en.New()
	translator, _ := ut.New(_en, _en).GetTranslator("en")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	tests := []struct {
		name    string
		nu      user.NewUser
		wantErr map[string]string
	}{
		{
			name:    "required",
			nu:      user.NewUser{},
			wantErr: map[string]string{"email": "this field is required", "password": "this field is required", "name": "this field is required", "role": "this field is required"},
		},
		{
			name:    "invalid role",
			nu:      user.NewUser{Email: "a@school.id", Password: "s3cretPass", Name: "Ani", Role: "janitor"},
			wantErr: map[string]string{"role": "role must be one of: admin, teacher, student, parent"},
		},
		{
			name:    "short password",
			nu:      user.NewUser{Email: "a@school.id", Password: "ab1", Name: "Ani", Role: user.RoleTeacher},
			wantErr: map[string]string{"password": "password must contain at least 6 characters"},
		},
		{
			name:    "whitespace",
			nu:      user.NewUser{Email: "a@school.id", Password: "s3cret Pass", Name: "Ani", Role: user.RoleTeacher},
			wantErr: map[string]string{"password": "password must not contain whitespace"},
		},
		{
			name:    "numeric",
			nu:      user.NewUser{Email: "a@school.id", Password: "20240812", Name: "Ani", Role: user.RoleTeacher},
			wantErr: map[string]string{"password": "password cannot be entirely numeric"},
		},
		{
			name:    "similar to name",
			nu:      user.NewUser{Email: "a@school.id", Password: "kartika1", Name: "Kartika", Role: user.RoleTeacher},
			wantErr: map[string]string{"password": "password cannot be similar to user attributes"},
		},
		{
			name: "valid",
			nu:   user.NewUser{Email: " Ani@School.ID ", Password: "s3cretPass", Name: " Ani ", Role: " Teacher "},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.nu.Validate(validate)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.Equal(t, user.NewUser{Email: "ani@school.id", Password: "s3cretPass", Name: "Ani", Role: user.RoleTeacher}, tt.nu)
				return
			}

			vErrs, ok := err.(validator.ValidationErrors)
			require.True(t, ok, "unexpected error: %v", err)
			got := make(map[string]string, len(vErrs))
			for _, vErr := range vErrs {
				got[vErr.Field()] = vErr.Translate(translator)
			}
			assert.Equal(t, tt.wantErr, got)
		})
	}
}
