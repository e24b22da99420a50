package handlers

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "milo_career/docs" // 导入 swagger 文档
)

func RegisterRoutes(r chi.Router, h *Handler) {
	// Swagger 文档
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"), // Swagger JSON 的 URL
	))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HealthHandler)
		r.Get("/search", h.SearchHandler)
		r.Post("/analyze", h.AnalyzeHandler)

		r.Get("/companies/{company}/alumni", h.CompanyAlumniHandler)
		r.Get("/companies/{company}/insights", h.CompanyInsightsHandler)
		r.Get("/positions/{position}/alumni", h.PositionAlumniHandler)
		r.Get("/majors/{major}/alumni", h.MajorAlumniHandler)
	})

	r.Route("/chat", func(r chi.Router) {
		r.Post("/stream", h.ChatStreamHandler)
		r.Get("/history/{session_id}", h.ChatHistoryHandler)
		r.Get("/session/{session_id}", h.SessionInfoHandler)
		r.Delete("/session/{session_id}", h.ClearSessionHandler)
		r.Get("/sessions", h.ListSessionsHandler)
	})
}
