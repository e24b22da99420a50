package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"milo_career/models"
)

// JSONFileSource 随部署打包的样例数据文件
type JSONFileSource struct {
	path string
}

func NewJSONFileSource(path string) *JSONFileSource {
	return &JSONFileSource{path: path}
}

func (s *JSONFileSource) Name() string { return SourceSample }

func (s *JSONFileSource) LoadAll(ctx context.Context) ([]models.Profile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	var profiles []models.Profile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return profiles, nil
}
