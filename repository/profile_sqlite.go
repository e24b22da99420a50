package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"milo_career/models"
)

// 字段与记录分隔符，避免与正文中的 '|' 冲突
const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

const sqliteProfileQuery = `
SELECT
	p.person_id,
	p.name,
	p.position,
	p.company,
	p.location,
	p.city,
	p.country_code,
	p.about,
	p.connections,
	p.followers,
	p.recommendations_count,
	p.educations_details,
	cc.name,
	cc.title,
	GROUP_CONCAT(COALESCE(e.company, '') || char(31) || COALESCE(e.title, '') || char(31) ||
		COALESCE(e.start_date, '') || char(31) || COALESCE(e.end_date, '') || char(31) ||
		COALESCE(e.description, ''), char(30)),
	GROUP_CONCAT(COALESCE(ed.title, '') || char(31) || COALESCE(ed.degree, '') || char(31) ||
		COALESCE(ed.field, '') || char(31) || COALESCE(ed.start_year, '') || char(31) ||
		COALESCE(ed.end_year, ''), char(30)),
	ec.industry,
	ec.size,
	ec.employee_count,
	ec.yale_alumni_count
FROM clean_yale_profiles p
LEFT JOIN current_companies cc ON p.person_id = cc.person_id
LEFT JOIN clean_experiences e ON p.person_id = e.person_id
LEFT JOIN clean_educations ed ON p.person_id = ed.person_id
LEFT JOIN enhanced_companies ec ON (cc.name = ec.name OR p.company = ec.name)
WHERE p.name IS NOT NULL
	AND p.position IS NOT NULL
	AND p.company IS NOT NULL
	AND p.company != ''
GROUP BY p.person_id
ORDER BY p.connections DESC
LIMIT ?`

// SQLiteProfileSource 本地开发用的 yale.db
type SQLiteProfileSource struct {
	db    *sql.DB
	limit int
}

func NewSQLiteProfileSource(db *sql.DB, limit int) *SQLiteProfileSource {
	return &SQLiteProfileSource{db: db, limit: limit}
}

func (s *SQLiteProfileSource) Name() string { return SourceSQLite }

func (s *SQLiteProfileSource) LoadAll(ctx context.Context) ([]models.Profile, error) {
	rows, err := s.db.QueryContext(ctx, sqliteProfileQuery, s.limit)
	if err != nil {
		return nil, fmt.Errorf("query sqlite profiles: %w", err)
	}
	defer rows.Close()

	profiles := make([]models.Profile, 0)
	for rows.Next() {
		var (
			personID, name, position, company, location, city, country sql.NullString
			about, eduRaw, curCompany, curTitle, expRaw, eduRows      sql.NullString
			industry, size                                            sql.NullString
			connections, followers, recs, employees, alumniCount      sql.NullInt64
		)
		if err := rows.Scan(&personID, &name, &position, &company, &location, &city, &country,
			&about, &connections, &followers, &recs, &eduRaw,
			&curCompany, &curTitle, &expRaw, &eduRows,
			&industry, &size, &employees, &alumniCount); err != nil {
			return nil, fmt.Errorf("scan sqlite profile: %w", err)
		}

		profiles = append(profiles, models.Profile{
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
			ExperienceHistory:    parseExperienceRecords(expRaw.String),
			EducationDetails:     parseEducationRecords(eduRows.String),
			CompanyIndustry:      industry.String,
			CompanySize:          size.String,
			EmployeeCount:        nonNegative(employees),
			YaleAlumniCount:      nonNegative(alumniCount),
		})
	}
	return profiles, rows.Err()
}

// splitRecords 多表 JOIN 会产生重复记录，按原文去重并保持顺序
func splitRecords(raw string, fields int) [][]string {
	out := [][]string{}
	seen := make(map[string]struct{})
	for _, rec := range strings.Split(raw, recordSep) {
		if rec == "" {
			continue
		}
		if _, dup := seen[rec]; dup {
			continue
		}
		seen[rec] = struct{}{}

		parts := strings.Split(rec, fieldSep)
		if len(parts) < fields {
			continue
		}
		out = append(out, parts)
	}
	return out
}

func parseExperienceRecords(raw string) []models.ExperienceEntry {
	entries := []models.ExperienceEntry{}
	for _, parts := range splitRecords(raw, 5) {
		if parts[0] == "" && parts[1] == "" {
			continue
		}
		entries = append(entries, models.ExperienceEntry{
			Company:     parts[0],
			Title:       parts[1],
			StartDate:   models.FlexString(parts[2]),
			EndDate:     models.FlexString(parts[3]),
			Description: parts[4],
		})
	}
	return entries
}

func parseEducationRecords(raw string) []models.EducationEntry {
	entries := []models.EducationEntry{}
	for _, parts := range splitRecords(raw, 5) {
		if parts[0] == "" && parts[2] == "" {
			continue
		}
		entries = append(entries, models.EducationEntry{
			Institution: parts[0],
			Degree:      parts[1],
			Field:       parts[2],
			StartYear:   models.FlexString(parts[3]),
			EndYear:     models.FlexString(parts[4]),
		})
	}
	return entries
}
