package usecase

import (
	"context"
	"errors"
	"fmt"

	"herald/internal/domain"
	"herald/internal/logging"
	"herald/internal/metrics"
)

// RoleSynchronizer keeps the persisted admin role tag consistent with
// the configured allow-list. Reconcile runs on every authenticated
// request, so the no-write branch when state is already consistent is
// part of the contract, not an optimization.
type RoleSynchronizer struct {
	Users     domain.UserRepository
	Allowlist Allowlist

	// Policy is an optional second allow-list source, ORed with the
	// static set.
	Policy  domain.AdminPolicy
	Metrics *metrics.Metrics
	Logger  logging.Logger
}

// Allowlist is the static, process-wide set of identities granted the
// admin role. It is built at startup and read-only afterwards.
type Allowlist map[string]struct{}

func NewAllowlist(identities []string) Allowlist {
	a := make(Allowlist, len(identities))
	for _, id := range identities {
		if id != "" {
			a[id] = struct{}{}
		}
	}
	return a
}

func (a Allowlist) Contains(identity string) bool {
	_, ok := a[identity]
	return ok
}

// Reconcile reports whether user is an admin, granting the tag first
// when the allow-list says so. Concurrent reconciliations of the same
// user are idempotent: once the tag is persisted every later call
// takes the read-only branch.
func (s *RoleSynchronizer) Reconcile(ctx context.Context, user *domain.User) (bool, error) {
	if user == nil {
		return false, errors.New("user is required")
	}
	if user.Roles.Has(domain.RoleAdmin) {
		return true, nil
	}

	allowed := s.Allowlist.Contains(user.Identity)
	if !allowed && s.Policy != nil {
		policyAllowed, err := s.Policy.Allow(ctx, user.Identity)
		if err != nil {
			return false, fmt.Errorf("admin policy: %w", err)
		}
		allowed = policyAllowed
	}
	if !allowed {
		return false, nil
	}

	if user.Roles == nil {
		user.Roles = domain.NewRoleSet()
	}
	user.Roles.Add(domain.RoleAdmin)
	if err := s.Users.Save(ctx, user); err != nil {
		return false, err
	}
	s.Metrics.RoleAutoGranted()
	s.logger().Info(ctx, "role auto-granted", "user_id", user.ID, "role", domain.RoleAdmin)
	return true, nil
}

// SyncIdentity reconciles a user looked up by identity.
func (s *RoleSynchronizer) SyncIdentity(ctx context.Context, identity string) (bool, error) {
	user, err := s.Users.FindByIdentity(ctx, identity)
	if err != nil {
		return false, err
	}
	return s.Reconcile(ctx, user)
}

// Grant adds the admin tag to target. Already-admin targets are a
// no-op without a write.
func (s *RoleSynchronizer) Grant(ctx context.Context, actorID, targetID string) error {
	user, err := s.Users.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if user.Roles == nil {
		user.Roles = domain.NewRoleSet()
	}
	if !user.Roles.Add(domain.RoleAdmin) {
		return nil
	}
	if err := s.Users.Save(ctx, user); err != nil {
		return err
	}
	s.logger().Info(ctx, "role granted", "actor_id", actorID, "user_id", user.ID, "role", domain.RoleAdmin)
	return nil
}

// Revoke removes the admin tag from target. An admin may not revoke
// their own tag through this path.
func (s *RoleSynchronizer) Revoke(ctx context.Context, actorID, targetID string) error {
	if actorID == targetID {
		return domain.ErrSelfRevocation
	}
	user, err := s.Users.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if !user.Roles.Remove(domain.RoleAdmin) {
		return nil
	}
	if err := s.Users.Save(ctx, user); err != nil {
		return err
	}
	s.logger().Info(ctx, "role revoked", "actor_id", actorID, "user_id", user.ID, "role", domain.RoleAdmin)
	return nil
}

func (s *RoleSynchronizer) logger() logging.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return logging.Nop{}
}
