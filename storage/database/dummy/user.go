package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/smpn3kaledupa/presensi-nilai/core"
	"github.com/smpn3kaledupa/presensi-nilai/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) emailTaken(email string, exclID int) bool {
	for _, u := range repo.db.users {
		if u.Email == email && u.ID != exclID {
			return true
		}
	}
	return false
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if repo.emailTaken(usr.Email, 0) {
		return user.User{}, core.NewConstraintError("users_email_key", user.ErrEmailExists.Error())
	}
	usr.ID = repo.db.nextID("users")
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.users[usr.ID]; !ok {
		return user.User{}, core.NewNotFoundError("user", usr.ID)
	}
	if repo.emailTaken(usr.Email, usr.ID) {
		return user.User{}, core.NewConstraintError("users_email_key", user.ErrEmailExists.Error())
	}
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id int) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return *usr, nil
	}
	return user.User{}, core.NewNotFoundError("user", id)
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Email == email {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUsersByID(_ context.Context, ids ...int) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := make([]user.User, 0, len(ids))
	for _, id := range core.UniqueInts(ids) {
		if usr, ok := repo.db.users[id]; ok {
			users = append(users, *usr)
		}
	}
	return users, nil
}

func (repo *userRepository) QueryUsers(_ context.Context, filter user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	search := strings.ToLower(filter.Search)
	users := make([]user.User, 0, len(repo.db.users))
	for _, id := range sortedIDs(repo.db.users) {
		u := repo.db.users[id]
		// users with search keyword matching any Name or Email ?
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		// users with any of the specified roles
		if len(filter.Roles) > 0 && !u.HasRole(filter.Roles...) {
			continue
		}
		users = append(users, *u)
	}

	for i := len(ordering) - 1; i >= 0; i-- {
		ord := ordering[i]
		less := userLess(ord.Field)
		if less == nil {
			continue
		}
		sort.SliceStable(users, func(a, b int) bool {
			if ord.Ascending {
				return less(users[a], users[b])
			}
			return less(users[b], users[a])
		})
	}
	return users, nil
}

func userLess(field string) func(a, b user.User) bool {
	switch field {
	case "id":
		return func(a, b user.User) bool { return a.ID < b.ID }
	case "name":
		return func(a, b user.User) bool { return a.Name < b.Name }
	case "email":
		return func(a, b user.User) bool { return a.Email < b.Email }
	case "role":
		return func(a, b user.User) bool { return a.Role < b.Role }
	case "created_at":
		return func(a, b user.User) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}
	return nil
}
