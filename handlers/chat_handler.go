package handlers

import (
	"net/http"
	"strings"

	"milo_career/logger"
	"milo_career/models"
	"milo_career/utils"
)

// ChatStreamHandler godoc
// @Summary 流式对话
// @Description 六步职业探索对话，以 SSE 返回 data: {"content":...}，最后一帧为 {"done":true} 或 {"error":...}
// @Tags 对话
// @Accept json
// @Produce text/event-stream
// @Param request body models.ChatRequest true "对话消息"
// @Success 200 {string} string "SSE 事件流"
// @Failure 400 {object} models.APIResponse "参数错误"
// @Router /chat/stream [post]
func (h *Handler) ChatStreamHandler(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !utils.DecodeJSONBody(w, r, &req) {
		return
	}
	if !utils.RequireParam(w, "message", req.Message) {
		return
	}

	flusher, ok := utils.PrepareSSE(w)
	if !ok {
		utils.WriteErrorResponse(w, models.CodeStreamNotSupported, map[string]interface{}{})
		return
	}

	frames := 0
	for chunk := range h.chat.StreamReply(r.Context(), req.SessionID, req.Message) {
		if err := utils.WriteSSEData(w, flusher, chunk); err != nil {
			// 客户端已断开，返回后请求 ctx 取消，上游随之停止
			logger.Warn("write sse frame failed", "session_id", req.SessionID, "error", err)
			return
		}
		frames++
	}
	logger.Debug("chat stream closed", "session_id", req.SessionID, "frames", frames)
}

// ChatHistoryHandler godoc
// @Summary 会话历史
// @Description 返回会话的全部消息，不存在的会话按需创建
// @Tags 对话
// @Produce json
// @Param session_id path string true "会话ID"
// @Success 200 {object} models.APIResponse{data=models.ChatHistoryResponse} "成功"
// @Router /chat/history/{session_id} [get]
func (h *Handler) ChatHistoryHandler(w http.ResponseWriter, r *http.Request) {
	id := sessionIDParam(r)
	messages, err := h.sessions.History(r.Context(), id)
	if err != nil {
		writeSessionError(w, id, err)
		return
	}
	utils.WriteSuccessResponse(w, models.ChatHistoryResponse{SessionID: id, Messages: messages})
}

// SessionInfoHandler godoc
// @Summary 会话信息
// @Description 返回当前步骤、已提取的兴趣与消息数量
// @Tags 对话
// @Produce json
// @Param session_id path string true "会话ID"
// @Success 200 {object} models.SessionInfoAPIResponse "成功"
// @Router /chat/session/{session_id} [get]
func (h *Handler) SessionInfoHandler(w http.ResponseWriter, r *http.Request) {
	id := sessionIDParam(r)
	info, err := h.sessions.Info(r.Context(), id)
	if err != nil {
		writeSessionError(w, id, err)
		return
	}
	utils.WriteSuccessResponse(w, info)
}

// ClearSessionHandler godoc
// @Summary 清除会话
// @Description 删除会话，之后同一ID得到全新会话
// @Tags 对话
// @Produce json
// @Param session_id path string true "会话ID"
// @Success 200 {object} models.APIResponse "成功"
// @Router /chat/session/{session_id} [delete]
func (h *Handler) ClearSessionHandler(w http.ResponseWriter, r *http.Request) {
	id := sessionIDParam(r)
	if err := h.sessions.Clear(r.Context(), id); err != nil {
		writeSessionError(w, id, err)
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"session_id": id,
		"cleared":    true,
	})
}

// ListSessionsHandler godoc
// @Summary 会话列表
// @Tags 对话
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]models.SessionInfo} "成功"
// @Router /chat/sessions [get]
func (h *Handler) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.List(r.Context())
	if err != nil {
		writeSessionError(w, "", err)
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"sessions": sessions,
		"total":    len(sessions),
	})
}

func sessionIDParam(r *http.Request) string {
	id := pathParam(r, "session_id")
	if strings.TrimSpace(id) == "" {
		return models.DefaultSessionID
	}
	return id
}

func writeSessionError(w http.ResponseWriter, id string, err error) {
	logger.Error("session store error", "session_id", id, "error", err)
	utils.WriteCustomErrorResponse(w, models.CodeSessionStoreError, err.Error(), map[string]interface{}{})
}
