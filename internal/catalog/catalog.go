package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"inspectline/internal/domain"
)

var (
	ErrAssetNotFound = errors.New("asset not found")
	ErrUserNotFound  = errors.New("user not found")
)

type AssetSource interface {
	ListBASets(ctx context.Context) ([]domain.Asset, error)
	ListSafetyKits(ctx context.Context) ([]domain.Asset, error)
}

type UserSource interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// Assets is a read-only cache of both asset collections, fetched on first use.
type Assets struct {
	src AssetSource

	mu     sync.RWMutex
	baSets []domain.Asset
	kits   []domain.Asset
	loaded bool
}

func NewAssets(src AssetSource) *Assets {
	return &Assets{src: src}
}

// Refresh refetches both collections. Nothing is replaced unless both fetches succeed.
func (a *Assets) Refresh(ctx context.Context) error {
	baSets, err := a.src.ListBASets(ctx)
	if err != nil {
		return fmt.Errorf("fetch ba sets: %w", err)
	}
	kits, err := a.src.ListSafetyKits(ctx)
	if err != nil {
		return fmt.Errorf("fetch safety kits: %w", err)
	}
	a.mu.Lock()
	a.baSets = baSets
	a.kits = kits
	a.loaded = true
	a.mu.Unlock()
	return nil
}

// List returns the collection that serves tasks of type tt.
func (a *Assets) List(ctx context.Context, tt domain.TaskType) ([]domain.Asset, error) {
	if err := a.ensure(ctx); err != nil {
		return nil, err
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	var src []domain.Asset
	switch tt {
	case domain.TaskTypeBASet:
		src = a.baSets
	case domain.TaskTypeSafetyKit:
		src = a.kits
	default:
		return nil, fmt.Errorf("unknown task type %q", tt)
	}
	return append([]domain.Asset(nil), src...), nil
}

// Resolve returns the catalog snapshot of assetID within the collection of tt.
func (a *Assets) Resolve(ctx context.Context, tt domain.TaskType, assetID string) (domain.Asset, error) {
	items, err := a.List(ctx, tt)
	if err != nil {
		return domain.Asset{}, err
	}
	for _, it := range items {
		if it.ID == assetID {
			return it, nil
		}
	}
	return domain.Asset{}, fmt.Errorf("%s %s: %w", tt, assetID, ErrAssetNotFound)
}

func (a *Assets) ensure(ctx context.Context) error {
	a.mu.RLock()
	loaded := a.loaded
	a.mu.RUnlock()
	if loaded {
		return nil
	}
	return a.Refresh(ctx)
}

// Users is a read-only cache of the user directory. Accounts whose role
// matches EligibleRole may receive assignments.
type Users struct {
	src          UserSource
	EligibleRole string

	mu     sync.RWMutex
	users  []domain.User
	loaded bool
}

func NewUsers(src UserSource, eligibleRole string) *Users {
	if eligibleRole == "" {
		eligibleRole = "inspector"
	}
	return &Users{src: src, EligibleRole: eligibleRole}
}

func (u *Users) Refresh(ctx context.Context) error {
	users, err := u.src.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("fetch users: %w", err)
	}
	u.mu.Lock()
	u.users = users
	u.loaded = true
	u.mu.Unlock()
	return nil
}

func (u *Users) List(ctx context.Context) ([]domain.User, error) {
	u.mu.RLock()
	loaded := u.loaded
	u.mu.RUnlock()
	if !loaded {
		if err := u.Refresh(ctx); err != nil {
			return nil, err
		}
	}
	u.mu.RLock()
	defer u.mu.RUnlock()
	return append([]domain.User(nil), u.users...), nil
}

// Eligible returns the accounts that can be assigned inspection work.
func (u *Users) Eligible(ctx context.Context) ([]domain.User, error) {
	all, err := u.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []domain.User
	for _, usr := range all {
		if strings.EqualFold(usr.Role, u.EligibleRole) {
			out = append(out, usr)
		}
	}
	return out, nil
}

// Lookup finds an account by id, falling back to a case-insensitive name match.
func (u *Users) Lookup(ctx context.Context, idOrName string) (domain.User, error) {
	all, err := u.List(ctx)
	if err != nil {
		return domain.User{}, err
	}
	for _, usr := range all {
		if usr.ID == idOrName {
			return usr, nil
		}
	}
	for _, usr := range all {
		if strings.EqualFold(usr.Name, idOrName) {
			return usr, nil
		}
	}
	return domain.User{}, fmt.Errorf("user %s: %w", idOrName, ErrUserNotFound)
}
