package repository

import (
	"context"
	"errors"
	"fmt"
	"os"

	"milo_career/config"
	"milo_career/db"
	"milo_career/logger"
	"milo_career/models"
)

const (
	SourcePostgres = "postgres"
	SourceMySQL    = "mysql"
	SourceSample   = "sample_file"
	SourceSQLite   = "sqlite"
	SourceFallback = "fallback"
)

// ErrNoProfileSource 没有任何可用的数据源
var ErrNoProfileSource = errors.New("no profile source configured")

// ProfileSource 校友档案数据源，启动时一次性加载
type ProfileSource interface {
	Name() string
	LoadAll(ctx context.Context) ([]models.Profile, error)
}

// ProfileStore 只读的校友档案集合
type ProfileStore struct {
	source   string
	profiles []models.Profile
}

func NewProfileStore(source string, profiles []models.Profile) *ProfileStore {
	if profiles == nil {
		profiles = []models.Profile{}
	}
	return &ProfileStore{source: source, profiles: profiles}
}

// All 返回底层切片，调用方不得修改
func (s *ProfileStore) All() []models.Profile {
	if s == nil {
		return nil
	}
	return s.profiles
}

func (s *ProfileStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.profiles)
}

func (s *ProfileStore) Source() string {
	if s == nil {
		return ""
	}
	return s.source
}

// FallbackProfiles 所有数据源都不可用时的占位数据
func FallbackProfiles() []models.Profile {
	return []models.Profile{
		{
			PersonID:           "fallback_1",
			Name:               "Sample Yale Alumnus",
			Position:           "Software Engineer",
			Company:            "Tech Company",
			Location:           "San Francisco, CA",
			About:              "Yale graduate working in technology",
			EducationsDetails:  "Yale University - Computer Science",
			CurrentCompanyName: "Tech Company",
			CompanyIndustry:    "Technology",
			CompanySize:        "1000+",
		},
	}
}

// LoadProfiles 按优先级选择唯一的数据源加载，失败时使用占位数据，不返回错误
func LoadProfiles(ctx context.Context, cfg *config.Config) *ProfileStore {
	src, closeFn, err := OpenProfileSource(ctx, cfg)
	if err != nil {
		if errors.Is(err, ErrNoProfileSource) {
			logger.Warn("未找到校友数据源，使用占位数据")
		} else {
			logger.Error("打开校友数据源失败，使用占位数据", "error", err)
		}
		return NewProfileStore(SourceFallback, FallbackProfiles())
	}
	defer closeFn()

	logger.Info("开始加载校友数据", "source", src.Name())
	profiles, err := src.LoadAll(ctx)
	if err != nil {
		logger.Error("加载校友数据失败，使用占位数据", "source", src.Name(), "error", err)
		return NewProfileStore(SourceFallback, FallbackProfiles())
	}

	logger.Info("校友数据加载完成", "source", src.Name(), "count", len(profiles))
	return NewProfileStore(src.Name(), profiles)
}

// OpenProfileSource 优先级：Postgres > MySQL > 样例文件 > SQLite
func OpenProfileSource(ctx context.Context, cfg *config.Config) (ProfileSource, func(), error) {
	limit := cfg.Data.MaxProfiles

	switch {
	case cfg.DB.PostgresURL != "":
		pool, err := db.OpenPostgres(ctx, cfg.DB.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgresProfileSource(pool, limit), pool.Close, nil

	case cfg.DB.DSN != "":
		conn, err := db.OpenMySQL(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLProfileSource(conn, limit), func() { conn.Close() }, nil

	case fileExists(cfg.Data.SampleFile):
		return NewJSONFileSource(cfg.Data.SampleFile), func() {}, nil

	case fileExists(cfg.Data.SQLitePath):
		conn, err := db.OpenSQLite(ctx, cfg.Data.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLiteProfileSource(conn, limit), func() { conn.Close() }, nil
	}

	return nil, nil, fmt.Errorf("%w (checked %s, %s)", ErrNoProfileSource, cfg.Data.SampleFile, cfg.Data.SQLitePath)
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
