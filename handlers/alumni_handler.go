package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"milo_career/logger"
	"milo_career/models"
	"milo_career/services"
	"milo_career/utils"
)

const serviceName = "yale-alumni-api"

// Handler 持有各接口依赖的服务
type Handler struct {
	alumni   services.AlumniDirectory
	career   services.CareerAnalyzer
	chat     services.ChatStreamer
	sessions services.SessionManager
}

func NewHandler(alumni services.AlumniDirectory, career services.CareerAnalyzer, chat services.ChatStreamer, sessions services.SessionManager) *Handler {
	return &Handler{alumni: alumni, career: career, chat: chat, sessions: sessions}
}

// pathParam 路径参数解码，如 "Goldman%20Sachs"
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return strings.TrimSpace(decoded)
	}
	return strings.TrimSpace(raw)
}

// CompanyAlumniHandler godoc
// @Summary 查询公司校友
// @Description 按当前公司查找校友，可按专业和毕业年份二次过滤
// @Tags 校友
// @Produce json
// @Param company path string true "公司名称"
// @Param limit query int false "返回数量上限 (1-500，默认50)"
// @Param major query string false "专业过滤"
// @Param graduation_year query string false "毕业年份过滤，如 2019 或 19"
// @Success 200 {object} models.AlumniListAPIResponse "成功"
// @Failure 400 {object} models.APIResponse "参数错误"
// @Router /api/companies/{company}/alumni [get]
func (h *Handler) CompanyAlumniHandler(w http.ResponseWriter, r *http.Request) {
	company := pathParam(r, "company")
	if !utils.RequireParam(w, "company", company) {
		return
	}
	limit := utils.ParseLimit(r)
	q := r.URL.Query()

	found := h.alumni.FindByCompany(company, limit)
	if major := strings.TrimSpace(q.Get("major")); major != "" {
		found = h.alumni.FilterByMajor(found, major)
	}
	if year := strings.TrimSpace(q.Get("graduation_year")); year != "" {
		found = h.alumni.FilterByGraduationYear(found, year)
	}

	logger.Debug("company alumni lookup", "company", company, "limit", limit, "found", len(found))
	utils.WriteSuccessResponse(w, models.AlumniListResponse{
		Company:     company,
		TotalAlumni: len(found),
		Alumni:      h.alumni.EnrichAll(found),
	})
}

// PositionAlumniHandler godoc
// @Summary 查询职位校友
// @Description 按当前职位查找校友，可按公司二次过滤
// @Tags 校友
// @Produce json
// @Param position path string true "职位名称"
// @Param limit query int false "返回数量上限 (1-500，默认50)"
// @Param company query string false "公司过滤"
// @Success 200 {object} models.AlumniListAPIResponse "成功"
// @Router /api/positions/{position}/alumni [get]
func (h *Handler) PositionAlumniHandler(w http.ResponseWriter, r *http.Request) {
	position := pathParam(r, "position")
	if !utils.RequireParam(w, "position", position) {
		return
	}

	found := h.alumni.FindByRole(position, utils.ParseLimit(r))
	if company := strings.TrimSpace(r.URL.Query().Get("company")); company != "" {
		found = h.alumni.FilterByCompany(found, company)
	}

	utils.WriteSuccessResponse(w, models.AlumniListResponse{
		Position:    position,
		TotalAlumni: len(found),
		Alumni:      h.alumni.EnrichAll(found),
	})
}

// MajorAlumniHandler godoc
// @Summary 查询专业校友
// @Description 按教育背景中的专业查找校友，可按公司二次过滤
// @Tags 校友
// @Produce json
// @Param major path string true "专业名称"
// @Param limit query int false "返回数量上限 (1-500，默认50)"
// @Param company query string false "公司过滤"
// @Success 200 {object} models.AlumniListAPIResponse "成功"
// @Router /api/majors/{major}/alumni [get]
func (h *Handler) MajorAlumniHandler(w http.ResponseWriter, r *http.Request) {
	major := pathParam(r, "major")
	if !utils.RequireParam(w, "major", major) {
		return
	}

	found := h.alumni.FindByMajor(major, utils.ParseLimit(r))
	if company := strings.TrimSpace(r.URL.Query().Get("company")); company != "" {
		found = h.alumni.FilterByCompany(found, company)
	}

	utils.WriteSuccessResponse(w, models.AlumniListResponse{
		Major:       major,
		TotalAlumni: len(found),
		Alumni:      h.alumni.EnrichAll(found),
	})
}

// CompanyInsightsHandler godoc
// @Summary 公司招聘画像
// @Description 统计公司校友的专业、职位、地点与毕业年份分布
// @Tags 校友
// @Produce json
// @Param company path string true "公司名称"
// @Success 200 {object} models.InsightsAPIResponse "成功"
// @Router /api/companies/{company}/insights [get]
func (h *Handler) CompanyInsightsHandler(w http.ResponseWriter, r *http.Request) {
	company := pathParam(r, "company")
	if !utils.RequireParam(w, "company", company) {
		return
	}
	utils.WriteSuccessResponse(w, h.alumni.CompanyInsights(company))
}

// SearchHandler godoc
// @Summary 自由文本搜索
// @Description 在姓名、职位、公司、简介与教育背景中搜索，支持公司/职位/专业过滤
// @Tags 校友
// @Produce json
// @Param q query string true "搜索关键词"
// @Param company query string false "公司过滤"
// @Param position query string false "职位过滤"
// @Param major query string false "专业过滤"
// @Param limit query int false "返回数量上限 (1-500，默认50)"
// @Success 200 {object} models.APIResponse{data=models.SearchResponse} "成功"
// @Failure 400 {object} models.APIResponse "缺少参数"
// @Router /api/search [get]
func (h *Handler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := strings.TrimSpace(query.Get("q"))
	if !utils.RequireParam(w, "q", q) {
		return
	}

	results := h.alumni.Search(q, services.SearchFilter{
		Company:  strings.TrimSpace(query.Get("company")),
		Position: strings.TrimSpace(query.Get("position")),
		Major:    strings.TrimSpace(query.Get("major")),
	}, utils.ParseLimit(r))
	if results == nil {
		results = []models.Profile{}
	}

	utils.WriteSuccessResponse(w, models.SearchResponse{Results: results, Total: len(results)})
}

// HealthHandler godoc
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthResponse} "成功"
// @Router /api/health [get]
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccessResponse(w, models.HealthResponse{
		Status:     "healthy",
		Service:    serviceName,
		DataLoaded: h.alumni.DataLoaded(),
		Source:     h.alumni.Source(),
	})
}

// AnalyzeHandler godoc
// @Summary 职业分析
// @Description 解析职业目标，检索相关校友与职业路径并生成行动计划
// @Tags 职业分析
// @Accept json
// @Produce json
// @Param request body models.AnalyzeRequest true "职业目标"
// @Success 200 {object} models.AnalysisAPIResponse "成功"
// @Failure 400 {object} models.APIResponse "参数错误"
// @Router /api/analyze [post]
func (h *Handler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if !utils.DecodeJSONBody(w, r, &req) {
		return
	}
	if !utils.RequireParam(w, "user_input", req.UserInput) {
		return
	}

	result := h.career.Analyze(r.Context(), req.UserInput)
	if utils.IsCanceled(r.Context().Err()) {
		logger.Warn("analysis request cancelled by client")
		return
	}
	utils.WriteSuccessResponse(w, result)
}
