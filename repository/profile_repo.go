package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"milo_career/logger"
	"milo_career/models"
)

// errProfileTableMissing yale_profiles 表不存在，需要先运行迁移
var errProfileTableMissing = errors.New("yale_profiles table not found, run the migration first")

const profileColumns = `person_id, name, position, company, location, city, country_code,
	about, connections, followers, recommendations_count, educations_details,
	current_company_name, current_title, %s, %s,
	company_industry, company_size, employee_count, yale_alumni_count`

const profileFilter = `WHERE name IS NOT NULL
	AND position IS NOT NULL
	AND ((current_company_name IS NOT NULL AND current_company_name != '') OR (company IS NOT NULL AND company != ''))
	ORDER BY connections DESC`

// rowScanner database/sql 与 pgx 的行都满足
type rowScanner interface {
	Scan(dest ...any) error
}

// scanProfile 解析一行档案，JSON 列在此处完成校验
func scanProfile(row rowScanner) (models.Profile, error) {
	var (
		personID, name, position, company, location, city, country sql.NullString
		about, eduRaw, curCompany, curTitle, expJSON, eduJSON     sql.NullString
		industry, size                                            sql.NullString
		connections, followers, recs, employees, alumniCount      sql.NullInt64
	)
	if err := row.Scan(&personID, &name, &position, &company, &location, &city, &country,
		&about, &connections, &followers, &recs, &eduRaw,
		&curCompany, &curTitle, &expJSON, &eduJSON,
		&industry, &size, &employees, &alumniCount); err != nil {
		return models.Profile{}, err
	}

	p := models.Profile{
		PersonID:             personID.String,
		Name:                 name.String,
		Position:             position.String,
		Company:              company.String,
		Location:             location.String,
		City:                 city.String,
		CountryCode:          country.String,
		About:                about.String,
		Connections:          nonNegative(connections),
		Followers:            nonNegative(followers),
		RecommendationsCount: nonNegative(recs),
		EducationsDetails:    eduRaw.String,
		CurrentCompanyName:   curCompany.String,
		CurrentTitle:         curTitle.String,
		CompanyIndustry:      industry.String,
		CompanySize:          size.String,
		EmployeeCount:        nonNegative(employees),
		YaleAlumniCount:      nonNegative(alumniCount),
	}
	p.ExperienceHistory = decodeList[models.ExperienceEntry](p.PersonID, "experience_history", expJSON)
	p.EducationDetails = decodeList[models.EducationEntry](p.PersonID, "education_details", eduJSON)
	return p, nil
}

func nonNegative(v sql.NullInt64) int {
	if !v.Valid || v.Int64 < 0 {
		return 0
	}
	return int(v.Int64)
}

// decodeList 解析失败只记录日志并返回空列表
func decodeList[T any](personID, column string, raw sql.NullString) []T {
	out := []T{}
	s := strings.TrimSpace(raw.String)
	if !raw.Valid || s == "" || s == "null" {
		return out
	}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		logger.Warn("档案 JSON 字段解析失败", "person_id", personID, "column", column, "error", err)
		return []T{}
	}
	return out
}

// =====================
// MySQL
// =====================

// SQLProfileSource 从 MySQL yale_profiles 表加载
type SQLProfileSource struct {
	db    *sql.DB
	limit int
}

func NewSQLProfileSource(db *sql.DB, limit int) *SQLProfileSource {
	return &SQLProfileSource{db: db, limit: limit}
}

func (s *SQLProfileSource) Name() string { return SourceMySQL }

func (s *SQLProfileSource) LoadAll(ctx context.Context) ([]models.Profile, error) {
	ok, err := exists(ctx, s.db,
		`SELECT COUNT(1) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = 'yale_profiles'`)
	if err != nil {
		return nil, fmt.Errorf("check yale_profiles: %w", err)
	}
	if !ok {
		return nil, errProfileTableMissing
	}

	query := fmt.Sprintf("SELECT "+profileColumns+" FROM yale_profiles "+profileFilter+" LIMIT ?",
		"experience_history", "education_details")
	rows, err := s.db.QueryContext(ctx, query, s.limit)
	if err != nil {
		return nil, fmt.Errorf("query yale_profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]models.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan yale_profiles: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// exists 执行 COUNT(1) 查询并返回是否存在数据
func exists(ctx context.Context, db *sql.DB, query string, args ...interface{}) (bool, error) {
	var count int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// =====================
// PostgreSQL
// =====================

// PostgresProfileSource 从 Postgres yale_profiles 表加载，JSONB 列以文本读取
type PostgresProfileSource struct {
	pool  *pgxpool.Pool
	limit int
}

func NewPostgresProfileSource(pool *pgxpool.Pool, limit int) *PostgresProfileSource {
	return &PostgresProfileSource{pool: pool, limit: limit}
}

func (s *PostgresProfileSource) Name() string { return SourcePostgres }

func (s *PostgresProfileSource) LoadAll(ctx context.Context) ([]models.Profile, error) {
	var ok bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = 'yale_profiles')`).Scan(&ok)
	if err != nil {
		return nil, fmt.Errorf("check yale_profiles: %w", err)
	}
	if !ok {
		return nil, errProfileTableMissing
	}

	query := fmt.Sprintf("SELECT "+profileColumns+" FROM yale_profiles "+profileFilter+" LIMIT $1",
		"experience_history::text", "education_details::text")
	rows, err := s.pool.Query(ctx, query, s.limit)
	if err != nil {
		return nil, fmt.Errorf("query yale_profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]models.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan yale_profiles: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
