package rbac

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// GraphCacheKey is the cache key holding the materialized role/permission graph.
const GraphCacheKey = "rbac.permission-graph"

type graphRow struct {
	RoleName       string
	PermissionName string
}

// graph returns the role name to permission names mapping, read through the
// cache: a hit is decoded and returned, a miss recomputes from the database
// and repopulates the cache. Cache store failures are logged and swallowed;
// the database remains the source of truth.
func (s *Service) graph() (map[string][]string, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(GraphCacheKey)

		switch {
		case err != nil:
			log.Warn().Err(err).Msg("failed to read permission graph from cache")
		case len(raw) > 0:
			var g map[string][]string
			if err := json.Unmarshal(raw, &g); err == nil {
				return g, nil
			}

			log.Warn().Err(err).Msg("discarding unreadable permission graph cache entry")
		}
	}

	g, err := s.buildGraph()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		raw, err := json.Marshal(g)
		if err == nil {
			// no TTL, invalidation is purely write-triggered
			err = s.cache.Set(GraphCacheKey, raw, 0)
		}

		if err != nil {
			log.Warn().Err(err).Msg("failed to store permission graph in cache")
		}
	}

	return g, nil
}

// buildGraph materializes the role name to permission names mapping from the
// entity store. Roles without grants are present with an empty slice so the
// super-admin role resolves to no permissions rather than a missing key.
func (s *Service) buildGraph() (map[string][]string, error) {
	var roleNames []string
	if err := s.db.Table("roles").Pluck("roles.name", &roleNames).Error; err != nil {
		return nil, fmt.Errorf("failed to load roles for permission graph: %w", err)
	}

	g := make(map[string][]string, len(roleNames))
	for _, name := range roleNames {
		g[name] = []string{}
	}

	var rows []graphRow

	err := s.db.Table("role_permissions").
		Select("roles.name AS role_name, permissions.name AS permission_name").
		Joins("JOIN roles ON roles.id = role_permissions.role_id").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Order("roles.name ASC, permissions.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load role permission mappings: %w", err)
	}

	for _, row := range rows {
		g[row.RoleName] = append(g[row.RoleName], row.PermissionName)
	}

	return g, nil
}

// InvalidateGraph evicts the cached permission graph. It must be called
// after a write transaction commits, never before. A failing cache store is
// logged but never fails the data mutation that triggered the invalidation.
func (s *Service) InvalidateGraph() {
	if s.cache == nil {
		return
	}

	if err := s.cache.Delete(GraphCacheKey); err != nil {
		log.Error().Err(err).Msg("failed to invalidate permission graph cache")
	}
}
