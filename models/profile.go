package models

import (
	"bytes"
	"encoding/json"
	"strings"
)

// FlexString 兼容 JSON 字符串与数字（年份、日期字段在不同数据源中类型不一）
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	*f = FlexString(string(data))
	return nil
}

func (f FlexString) String() string { return string(f) }

// ExperienceEntry 一段工作经历，按惯例最近的在前
type ExperienceEntry struct {
	Company     string     `json:"company"`
	Title       string     `json:"title"`
	StartDate   FlexString `json:"start_date"`
	EndDate     FlexString `json:"end_date"`
	Description string     `json:"description"`
}

// EducationEntry 结构化教育经历
type EducationEntry struct {
	Institution string     `json:"institution"`
	Degree      string     `json:"degree"`
	Field       string     `json:"field"`
	StartYear   FlexString `json:"start_year"`
	EndYear     FlexString `json:"end_year"`
}

// Profile 校友档案，加载后只读
type Profile struct {
	PersonID             string            `json:"person_id" db:"person_id"`
	Name                 string            `json:"name" db:"name"`
	Position             string            `json:"position" db:"position"`
	Company              string            `json:"company" db:"company"`
	Location             string            `json:"location" db:"location"`
	City                 string            `json:"city" db:"city"`
	CountryCode          string            `json:"country_code" db:"country_code"`
	About                string            `json:"about" db:"about"`
	Connections          int               `json:"connections" db:"connections"`
	Followers            int               `json:"followers" db:"followers"`
	RecommendationsCount int               `json:"recommendations_count" db:"recommendations_count"`
	EducationsDetails    string            `json:"educations_details" db:"educations_details"`
	CurrentCompanyName   string            `json:"current_company_name" db:"current_company_name"`
	CurrentTitle         string            `json:"current_title" db:"current_title"`
	ExperienceHistory    []ExperienceEntry `json:"experience_history" db:"experience_history"`
	EducationDetails     []EducationEntry  `json:"education_details" db:"education_details"`
	CompanyIndustry      string            `json:"company_industry" db:"company_industry"`
	CompanySize          string            `json:"company_size" db:"company_size"`
	EmployeeCount        int               `json:"employee_count" db:"employee_count"`
	YaleAlumniCount      int               `json:"yale_alumni_count" db:"yale_alumni_count"`
}

// CurrentCompany current_company_name，其次 company
func (p *Profile) CurrentCompany() string {
	return FirstNonEmpty(p.CurrentCompanyName, p.Company)
}

// CurrentRole current_title，其次 position
func (p *Profile) CurrentRole() string {
	return FirstNonEmpty(p.CurrentTitle, p.Position)
}

// DisplayLocation city，其次 location
func (p *Profile) DisplayLocation() string {
	return FirstNonEmpty(p.City, p.Location)
}

// DisplayName 缺失姓名时使用占位名
func (p *Profile) DisplayName() string {
	return FirstNonEmpty(p.Name, "Yale Alumni")
}

// EducationText 原始教育描述；为空时拼接结构化记录
func (p *Profile) EducationText() string {
	if strings.TrimSpace(p.EducationsDetails) != "" {
		return p.EducationsDetails
	}
	parts := make([]string, 0, len(p.EducationDetails))
	for _, e := range p.EducationDetails {
		s := strings.TrimSpace(strings.Join([]string{e.Institution, e.Degree, e.Field}, " "))
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "; ")
}

// FirstNonEmpty 返回第一个非空（去除空白后）的值
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
