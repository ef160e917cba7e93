package auth

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// MaxBatchItems is the hard ceiling on a single batch update request.
const MaxBatchItems = 100

const (
	BatchActionGrant  = "grant"
	BatchActionRevoke = "revoke"
)

// Service layers per-organization role-permission overrides over the static
// catalog and carries the administrative operations that maintain them.
type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Catalog() []PermissionEntry {
	entries := make([]PermissionEntry, len(DefaultPermissions))
	copy(entries, DefaultPermissions)
	return entries
}

// RolePermissionSet returns the role's effective permission codes for the
// organization: the stored override when one exists, the built-in set
// otherwise.
func (s *Service) RolePermissionSet(ctx context.Context, orgID string, role Role) ([]string, error) {
	codes, overridden, err := s.store.RolePermissionSet(ctx, orgID, role.String())
	if err != nil {
		return nil, err
	}
	if !overridden {
		codes = slices.Clone(RolePermissions[role])
	}
	slices.Sort(codes)
	return codes, nil
}

// EffectivePermissions resolves the union of the given roles' permission
// sets with organization overrides applied.
func (s *Service) EffectivePermissions(ctx context.Context, orgID string, roles []Role) (PermissionSet, error) {
	stored, err := s.store.OrgRolePermissions(ctx, orgID)
	if err != nil {
		return nil, err
	}
	overrides := map[Role][]string{}
	for name, codes := range stored {
		if role, ok := LookupRole(name); ok {
			overrides[role] = codes
		}
	}
	return ResolvePermissions(roles, overrides), nil
}

// ReplaceRolePermissions replaces the role's assignment set wholesale. The
// stored set is always fully materialized; there is no partial state.
func (s *Service) ReplaceRolePermissions(ctx context.Context, orgID string, role Role, codes []string) error {
	cleaned, err := normalizeCodes(codes)
	if err != nil {
		return err
	}
	return s.store.ReplaceRolePermissions(ctx, orgID, role.String(), cleaned)
}

// PatchRolePermissions grants and revokes codes against the role's current
// effective set, then persists the resulting full set.
func (s *Service) PatchRolePermissions(ctx context.Context, orgID string, role Role, grant, revoke []string) error {
	grants, err := normalizeCodes(grant)
	if err != nil {
		return err
	}
	revokes, err := normalizeCodes(revoke)
	if err != nil {
		return err
	}

	current, err := s.RolePermissionSet(ctx, orgID, role)
	if err != nil {
		return err
	}

	set := map[string]struct{}{}
	for _, code := range current {
		set[code] = struct{}{}
	}
	for _, code := range grants {
		set[code] = struct{}{}
	}
	for _, code := range revokes {
		delete(set, code)
	}

	merged := make([]string, 0, len(set))
	for code := range set {
		merged = append(merged, code)
	}
	slices.Sort(merged)
	return s.store.ReplaceRolePermissions(ctx, orgID, role.String(), merged)
}

// CloneRolePermissions copies the source role's effective set onto the
// target role as an override.
func (s *Service) CloneRolePermissions(ctx context.Context, orgID string, from, to Role) error {
	codes, err := s.RolePermissionSet(ctx, orgID, from)
	if err != nil {
		return err
	}
	return s.store.ReplaceRolePermissions(ctx, orgID, to.String(), codes)
}

type BatchItem struct {
	Role       string `json:"role"`
	Permission string `json:"permission"`
	Action     string `json:"action"`
}

type BatchItemResult struct {
	Index  int    `json:"index"`
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

type BatchResult struct {
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Items     []BatchItemResult `json:"items"`
}

// BatchUpdate applies up to MaxBatchItems grant/revoke items with
// partial-success semantics: each item passes or fails independently and
// duplicates within the batch fail with an explicit reason instead of being
// collapsed. An oversized batch is rejected before any item is processed.
func (s *Service) BatchUpdate(ctx context.Context, orgID string, items []BatchItem) (BatchResult, error) {
	if len(items) > MaxBatchItems {
		return BatchResult{}, fmt.Errorf("%w: %d items, maximum %d", ErrBatchTooLarge, len(items), MaxBatchItems)
	}

	result := BatchResult{Items: make([]BatchItemResult, 0, len(items))}
	working := map[Role]map[string]struct{}{}
	seen := map[BatchItem]bool{}

	fail := func(index int, reason string) {
		result.Failed++
		result.Items = append(result.Items, BatchItemResult{Index: index, Reason: reason})
	}

	for index, item := range items {
		item.Role = strings.ToLower(strings.TrimSpace(item.Role))
		item.Permission = strings.TrimSpace(item.Permission)
		item.Action = strings.ToLower(strings.TrimSpace(item.Action))

		if seen[item] {
			fail(index, "duplicate")
			continue
		}
		seen[item] = true

		role, ok := LookupRole(item.Role)
		if !ok {
			fail(index, "unknown role")
			continue
		}
		if !KnownPermission(item.Permission) {
			fail(index, "unknown permission")
			continue
		}
		if item.Action != BatchActionGrant && item.Action != BatchActionRevoke {
			fail(index, "unknown action")
			continue
		}

		if _, loaded := working[role]; !loaded {
			current, err := s.RolePermissionSet(ctx, orgID, role)
			if err != nil {
				return BatchResult{}, err
			}
			set := map[string]struct{}{}
			for _, code := range current {
				set[code] = struct{}{}
			}
			working[role] = set
		}

		if item.Action == BatchActionGrant {
			working[role][item.Permission] = struct{}{}
		} else {
			delete(working[role], item.Permission)
		}
		result.Succeeded++
		result.Items = append(result.Items, BatchItemResult{Index: index, OK: true})
	}

	for role, set := range working {
		codes := make([]string, 0, len(set))
		for code := range set {
			codes = append(codes, code)
		}
		slices.Sort(codes)
		if err := s.store.ReplaceRolePermissions(ctx, orgID, role.String(), codes); err != nil {
			return BatchResult{}, err
		}
	}
	return result, nil
}

func normalizeCodes(codes []string) ([]string, error) {
	out := make([]string, 0, len(codes))
	seen := map[string]struct{}{}
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if !KnownPermission(code) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPermission, code)
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	slices.Sort(out)
	return out, nil
}
