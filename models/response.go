package models

// 响应码定义
const (
	// 成功
	CodeSuccess = 0

	// 客户端错误 (1000-1999)
	CodeInvalidParams   = 1000 // 无效的参数
	CodeMissingParams   = 1001 // 缺少必要参数
	CodeSessionNotFound = 1002 // 会话不存在
	CodeInvalidBody     = 1003 // 请求体无法解析

	// 服务端错误 (2000-2999)
	CodeServerError        = 2000 // 服务器内部错误
	CodeDatabaseError      = 2001 // 数据库错误
	CodeSessionStoreError  = 2002 // 会话存储错误
	CodeAnalysisError      = 2003 // 职业分析失败
	CodeStreamNotSupported = 2004 // 不支持流式输出
	CodeThirdPartyAPIError = 2005 // 第三方API错误
)

// 错误码对应的消息（面向前端，使用英文）
var CodeMessages = map[int]string{
	CodeSuccess:            "success",
	CodeInvalidParams:      "invalid parameters",
	CodeMissingParams:      "missing required parameter",
	CodeSessionNotFound:    "session not found",
	CodeInvalidBody:        "invalid request body",
	CodeServerError:        "internal server error",
	CodeDatabaseError:      "database error",
	CodeSessionStoreError:  "session store error",
	CodeAnalysisError:      "career analysis failed",
	CodeStreamNotSupported: "streaming not supported",
	CodeThirdPartyAPIError: "upstream API error",
}

// 注意：APIResponse结构体已在swagger_models.go中定义

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) APIResponse {
	return APIResponse{
		Code:    CodeSuccess,
		Message: CodeMessages[CodeSuccess],
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, data interface{}) APIResponse {
	message, exists := CodeMessages[code]
	if !exists {
		message = "unknown error"
	}
	return APIResponse{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// NewCustomErrorResponse 创建自定义错误消息的响应
func NewCustomErrorResponse(code int, message string, data interface{}) APIResponse {
	return APIResponse{
		Code:    code,
		Message: message,
		Data:    data,
	}
}
