package database

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/camden-git/electoralbackend/config"
	"github.com/camden-git/electoralbackend/models"
)

// NewStatementBuilder returns a squirrel builder using the placeholder style of the driver.
func NewStatementBuilder(driver string) sq.StatementBuilderType {
	if driver == config.DriverPostgres {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// GetFrontTotals sums the votes of every front, optionally restricted to one
// office. Fronts without votes are reported with zero.
func GetFrontTotals(ctx context.Context, db *sql.DB, psql sq.StatementBuilderType, office string) ([]models.FrontResult, error) {
	joinClause := "voto v ON v.id_frente = f.id_frente"
	var joinArgs []interface{}
	if office != "" {
		joinClause += " AND v.tipo_cargo = ?"
		joinArgs = append(joinArgs, office)
	}

	queryBuilder := psql.Select("f.id_frente", "f.nombre", "f.siglas", "f.color", "COALESCE(SUM(v.cantidad), 0) AS total_votos").
		From("frente f").
		LeftJoin(joinClause, joinArgs...).
		GroupBy("f.id_frente", "f.nombre", "f.siglas", "f.color").
		OrderBy("total_votos DESC", "f.nombre ASC")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL query for GetFrontTotals: %w", err)
	}

	rows, err := db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query front totals: %w", err)
	}
	defer rows.Close()

	results := []models.FrontResult{}
	for rows.Next() {
		var r models.FrontResult
		if err := rows.Scan(&r.FrontID, &r.Name, &r.Acronym, &r.Color, &r.TotalVotes); err != nil {
			return nil, fmt.Errorf("failed to scan front total row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating front totals: %w", err)
	}
	return results, nil
}

// GetResultsSummary aggregates the header counters of every registered acta.
func GetResultsSummary(ctx context.Context, db *sql.DB, psql sq.StatementBuilderType) (models.ResultsSummary, error) {
	queryBuilder := psql.Select(
		"COUNT(*)",
		"COALESCE(SUM(votos_totales), 0)",
		"COALESCE(SUM(CASE WHEN validada THEN 1 ELSE 0 END), 0)",
		"COALESCE(SUM(votos_nulos), 0)",
		"COALESCE(SUM(votos_blancos), 0)",
	).From("acta")

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return models.ResultsSummary{}, fmt.Errorf("failed to build SQL query for GetResultsSummary: %w", err)
	}

	var s models.ResultsSummary
	err = db.QueryRowContext(ctx, sqlStr, args...).Scan(&s.TotalActas, &s.TotalVotes, &s.ValidatedActas, &s.NullVotes, &s.BlankVotes)
	if err != nil {
		return models.ResultsSummary{}, fmt.Errorf("failed to query results summary: %w", err)
	}
	return s, nil
}

// GetLiveResults combines the per-front totals with the acta summary.
func GetLiveResults(ctx context.Context, db *sql.DB, psql sq.StatementBuilderType, office string) (*models.LiveResults, error) {
	totals, err := GetFrontTotals(ctx, db, psql, office)
	if err != nil {
		return nil, err
	}
	summary, err := GetResultsSummary(ctx, db, psql)
	if err != nil {
		return nil, err
	}
	return &models.LiveResults{Results: totals, Summary: summary}, nil
}
