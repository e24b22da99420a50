package repository

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"milo_career/logger"
	"milo_career/models"
)

//go:embed schema/*.sql
var schemaFS embed.FS

const upsertProfileSQL = `
INSERT INTO yale_profiles (
	person_id, name, position, company, location, city, country_code,
	about, connections, followers, recommendations_count, educations_details,
	current_company_name, current_title, experience_history, education_details,
	company_industry, company_size, employee_count, yale_alumni_count
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
	$15::jsonb, $16::jsonb, $17, $18, $19, $20
) ON CONFLICT (person_id) DO UPDATE SET
	name = EXCLUDED.name,
	position = EXCLUDED.position,
	company = EXCLUDED.company,
	location = EXCLUDED.location,
	city = EXCLUDED.city,
	country_code = EXCLUDED.country_code,
	about = EXCLUDED.about,
	connections = EXCLUDED.connections,
	followers = EXCLUDED.followers,
	recommendations_count = EXCLUDED.recommendations_count,
	educations_details = EXCLUDED.educations_details,
	current_company_name = EXCLUDED.current_company_name,
	current_title = EXCLUDED.current_title,
	experience_history = EXCLUDED.experience_history,
	education_details = EXCLUDED.education_details,
	company_industry = EXCLUDED.company_industry,
	company_size = EXCLUDED.company_size,
	employee_count = EXCLUDED.employee_count,
	yale_alumni_count = EXCLUDED.yale_alumni_count`

// PostgresProfileWriter 迁移工具使用的写入端
type PostgresProfileWriter struct {
	pool *pgxpool.Pool
}

func NewPostgresProfileWriter(pool *pgxpool.Pool) *PostgresProfileWriter {
	return &PostgresProfileWriter{pool: pool}
}

// EnsureSchema 按文件名顺序执行内嵌的建表脚本，可重复执行
func (w *PostgresProfileWriter) EnsureSchema(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := w.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("apply %s: %w", entry.Name(), err)
		}
		logger.Info("schema applied", "file", entry.Name())
	}
	return nil
}

// Upsert 分批写入，返回成功写入的条数
func (w *PostgresProfileWriter) Upsert(ctx context.Context, profiles []models.Profile, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	written := 0
	for start := 0; start < len(profiles); start += batchSize {
		end := min(start+batchSize, len(profiles))

		batch := &pgx.Batch{}
		for i := start; i < end; i++ {
			args, err := upsertArgs(&profiles[i])
			if err != nil {
				return written, err
			}
			batch.Queue(upsertProfileSQL, args...)
		}

		br := w.pool.SendBatch(ctx, batch)
		for i := start; i < end; i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return written, fmt.Errorf("upsert %s: %w", profiles[i].PersonID, err)
			}
			written++
		}
		if err := br.Close(); err != nil {
			return written, fmt.Errorf("close batch: %w", err)
		}
		logger.Info("batch migrated", "written", written, "total", len(profiles))
	}
	return written, nil
}

func upsertArgs(p *models.Profile) ([]any, error) {
	exp, err := json.Marshal(nonNilSlice(p.ExperienceHistory))
	if err != nil {
		return nil, fmt.Errorf("encode experience for %s: %w", p.PersonID, err)
	}
	edu, err := json.Marshal(nonNilSlice(p.EducationDetails))
	if err != nil {
		return nil, fmt.Errorf("encode education for %s: %w", p.PersonID, err)
	}
	return []any{
		p.PersonID, p.Name, p.Position, p.Company, p.Location, p.City, p.CountryCode,
		p.About, p.Connections, p.Followers, p.RecommendationsCount, p.EducationsDetails,
		p.CurrentCompanyName, p.CurrentTitle, string(exp), string(edu),
		p.CompanyIndustry, p.CompanySize, p.EmployeeCount, p.YaleAlumniCount,
	}, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
