package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/health": {
            "get": {"tags": ["系统"], "summary": "健康检查", "produces": ["application/json"],
                "responses": {"200": {"description": "成功", "schema": {"$ref": "#/definitions/models.APIResponse"}}}}
        },
        "/api/search": {
            "get": {"tags": ["校友"], "summary": "自由文本搜索", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "搜索关键词", "name": "q", "in": "query", "required": true},
                    {"type": "string", "description": "公司过滤", "name": "company", "in": "query"},
                    {"type": "string", "description": "职位过滤", "name": "position", "in": "query"},
                    {"type": "string", "description": "专业过滤", "name": "major", "in": "query"},
                    {"type": "integer", "description": "返回数量上限 (1-500，默认50)", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "成功", "schema": {"$ref": "#/definitions/models.APIResponse"}}}}
        },
        "/api/analyze": {
            "post": {"tags": ["职业分析"], "summary": "职业分析", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"description": "职业目标", "name": "request", "in": "body", "required": true,
                    "schema": {"$ref": "#/definitions/models.AnalyzeRequest"}}],
                "responses": {"200": {"description": "成功", "schema": {"$ref": "#/definitions/models.APIResponse"}}}}
        },
        "/api/companies/{company}/alumni": {
            "get": {"tags": ["校友"], "summary": "查询公司校友", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "公司名称", "name": "company", "in": "path", "required": true},
                    {"type": "integer", "description": "返回数量上限 (1-500，默认50)", "name": "limit", "in": "query"},
                    {"type": "string", "description": "专业过滤", "name": "major", "in": "query"},
                    {"type": "string", "description": "毕业年份过滤", "name": "graduation_year", "in": "query"}
                ],
                "responses": {"200": {"description": "成功", "schema": {"$ref": "#/definitions/models.APIResponse"}}}}
        },
        "/api/companies/{company}/insights": {
            "get": {"tags": ["校友"], "summary": "公司招聘画像", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "公司名称", "name": "company", "in": "path", "required": true}],
                "responses": {"200": {"description": "成功", "schema": {"$ref": "#/definitions/models.APIResponse"}}}}
        },
        "/api/positions/{position}/alumni": {
            "get": {"tags": ["校友"], "summary": "查询职位校友", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "职位名称", "name": "position", "in": "path", "required": true},
                    {"type": "integer", "description": "返回数量上限 (1-500，默认50)", "name": "limit", "in": "query"},
                    {"type": "string", "description": "公司过滤", "name": "company", "in": "query"}
                ],
                "responses": {"200": {"description": "成功", "schema": {"$ref": "#/definitions/models.APIResponse"}}}}
        },
        "/api/majors/{major}/alumni": {
            "get": {"tags": ["校友"], "summary": "查询专业校友", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "description": "专业名称", "name": "major", "in": "path", "required": true},
                    {"type": "integer", "description": "返回数量上限 (1-500，默认50)", "name": "limit", "in": "query"},
                    {"type": "string", "description": "公司过滤", "name": "company", "in": "query"}
                ],
                "responses": {"200": {"description": "成功", "schema": {"$ref": "#/definitions/models.APIResponse"}}}}
        },
        "/chat/stream": {
            "post": {"tags": ["对话"], "summary": "流式对话", "consumes": ["application/json"], "produces": ["text/event-stream"],
                "parameters": [{"description": "对话消息", "name": "request", "in": "body", "required": true,
                    "schema": {"$ref": "#/definitions/models.ChatRequest"}}],
                "responses": {"200": {"description": "SSE 事件流", "schema": {"type": "string"}}}}
        },
        "/chat/history/{session_id}": {
            "get": {"tags": ["对话"], "summary": "会话历史", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "会话ID", "name": "session_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "成功", "schema": {"$ref": "#/definitions/models.APIResponse"}}}}
        },
        "/chat/session/{session_id}": {
            "get": {"tags": ["对话"], "summary": "会话信息", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "会话ID", "name": "session_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "成功", "schema": {"$ref": "#/definitions/models.APIResponse"}}}},
            "delete": {"tags": ["对话"], "summary": "清除会话", "produces": ["application/json"],
                "parameters": [{"type": "string", "description": "会话ID", "name": "session_id", "in": "path", "required": true}],
                "responses": {"200": {"description": "成功", "schema": {"$ref": "#/definitions/models.APIResponse"}}}}
        },
        "/chat/sessions": {
            "get": {"tags": ["对话"], "summary": "会话列表", "produces": ["application/json"],
                "responses": {"200": {"description": "成功", "schema": {"$ref": "#/definitions/models.APIResponse"}}}}
        }
    },
    "definitions": {
        "models.APIResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "integer", "example": 0},
                "message": {"type": "string", "example": "success"},
                "data": {}
            }
        },
        "models.AnalyzeRequest": {
            "type": "object",
            "properties": {
                "user_input": {"type": "string", "example": "Hi, I'm Alex and I want to work at Goldman Sachs"}
            }
        },
        "models.ChatRequest": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "I love data science and writing"},
                "session_id": {"type": "string", "example": "default"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8000",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Milo Career Guide API",
	Description:      "耶鲁校友检索、职业分析与六步职业探索对话服务",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
