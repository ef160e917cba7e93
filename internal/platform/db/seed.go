package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"perfeval/internal/domain/auth"
	"perfeval/internal/platform/config"
)

// Seed provisions one organization with the default stages, scoring
// configuration and an admin account. Built-in role grants live in code
// (auth.RolePermissions); the role_permissions table only ever holds
// organization overrides, so no rows are seeded there.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	orgID, err := ensureOrganization(ctx, pool, cfg.SeedOrgName)
	if err != nil {
		return err
	}
	if err := ensureStages(ctx, pool, orgID); err != nil {
		return err
	}
	if err := ensureScoreMappings(ctx, pool, orgID); err != nil {
		return err
	}
	if err := ensureRatingThresholds(ctx, pool, orgID); err != nil {
		return err
	}
	if err := ensurePolicyFlags(ctx, pool, orgID); err != nil {
		return err
	}
	return ensureAdminUser(ctx, pool, orgID, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
}

func ensureOrganization(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM organizations WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}

	err = pool.QueryRow(ctx, "INSERT INTO organizations (name) VALUES ($1) RETURNING id", name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureStages(ctx context.Context, pool *pgxpool.Pool, orgID string) error {
	stages := []struct {
		name         string
		quantitative string
		qualitative  string
		competency   string
	}{
		{"junior", "40", "30", "30"},
		{"senior", "50", "30", "20"},
		{"lead", "60", "30", "10"},
	}
	for _, stage := range stages {
		_, err := pool.Exec(ctx, `
      INSERT INTO stages (org_id, name, quantitative_budget, qualitative_budget, competency_budget)
      VALUES ($1, $2, $3, $4, $5)
      ON CONFLICT (org_id, name) DO NOTHING
    `, orgID, stage.name, stage.quantitative, stage.qualitative, stage.competency)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureScoreMappings(ctx context.Context, pool *pgxpool.Pool, orgID string) error {
	mappings := []struct {
		code  string
		score string
	}{
		{"S", "6.0"}, {"A", "5.0"}, {"A-", "4.5"}, {"B", "4.0"}, {"C", "2.0"}, {"D", "0.0"},
	}
	for _, m := range mappings {
		_, err := pool.Exec(ctx, `
      INSERT INTO evaluation_score_mappings (org_id, rating_code, score)
      VALUES ($1, $2, $3)
      ON CONFLICT (org_id, rating_code) DO NOTHING
    `, orgID, m.code, m.score)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureRatingThresholds(ctx context.Context, pool *pgxpool.Pool, orgID string) error {
	thresholds := []struct {
		code     string
		minScore string
	}{
		{"S", "5.70"}, {"A", "4.70"}, {"A-", "2.70"}, {"B", "1.70"}, {"C", "0.70"}, {"D", "0.00"},
	}
	for _, t := range thresholds {
		_, err := pool.Exec(ctx, `
      INSERT INTO rating_thresholds (org_id, rating_code, min_score)
      VALUES ($1, $2, $3)
      ON CONFLICT (org_id, rating_code) DO NOTHING
    `, orgID, t.code, t.minScore)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensurePolicyFlags(ctx context.Context, pool *pgxpool.Pool, orgID string) error {
	_, err := pool.Exec(ctx, `
    INSERT INTO evaluation_policy_flags (org_id, flag_key, enabled)
    VALUES ($1, $2, false)
    ON CONFLICT (org_id, flag_key) DO NOTHING
  `, orgID, "mbo_d_is_fail")
	return err
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, orgID, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE org_id = $1 AND email = $2", orgID, email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	return pool.QueryRow(ctx, `
    INSERT INTO users (org_id, email, password_hash, first_name, last_name, status, roles)
    VALUES ($1, $2, $3, 'System', 'Admin', 'active', $4)
    RETURNING id
  `, orgID, email, hash, []string{auth.RoleAdmin.String()}).Scan(&id)
}
