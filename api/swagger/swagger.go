package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Sugang API",
        "description": "Course registration service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Authentication", "description": "Student login and session tokens"},
        {"name": "Catalog", "description": "Departments and lecture search"},
        {"name": "Registrations", "description": "Register, drop, and export the weekly timetable"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/departments": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List departments",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/professors": {
            "get": {
                "tags": ["Catalog"],
                "summary": "List professors",
                "parameters": [
                    {"name": "dept", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lectures": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Search the lecture catalog",
                "parameters": [
                    {"name": "dept", "in": "query", "type": "string"},
                    {"name": "professor", "in": "query", "type": "string"},
                    {"name": "name", "in": "query", "type": "string"},
                    {"name": "year", "in": "query", "type": "string"},
                    {"name": "term", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/registrations": {
            "get": {
                "tags": ["Registrations"],
                "summary": "List my registrations",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Registrations"],
                "summary": "Register for a lecture",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Lecture not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Denied (window closed, duplicate, time conflict, credit cap, or full)", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/registrations/{lectureId}": {
            "delete": {
                "tags": ["Registrations"],
                "summary": "Drop a registration",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "lectureId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Not registered or window closed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/registrations/export": {
            "get": {
                "tags": ["Registrations"],
                "summary": "Export my timetable",
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf", "text/csv"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["pdf", "csv"], "default": "pdf"}
                ],
                "responses": {
                    "200": {"description": "Timetable file"},
                    "400": {"description": "Unknown format", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "student_no": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["student_no", "password"]
        },
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "lecture_id": {"type": "string"}
            },
            "required": ["lecture_id"]
        },
        "Lecture": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "department_code": {"type": "string"},
                "professor_id": {"type": "string"},
                "day": {"type": "string", "enum": ["MON", "TUE", "WED", "THU", "FRI"]},
                "start_period": {"type": "integer"},
                "end_period": {"type": "integer"},
                "credit": {"type": "integer"},
                "capacity": {"type": "integer"},
                "academic_year": {"type": "string"},
                "term": {"type": "string"}
            }
        },
        "LectureDetail": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "department_name": {"type": "string"},
                "professor_name": {"type": "string"},
                "day": {"type": "string"},
                "start_period": {"type": "integer"},
                "end_period": {"type": "integer"},
                "credit": {"type": "integer"},
                "capacity": {"type": "integer"},
                "occupied": {"type": "integer"},
                "full": {"type": "boolean"}
            }
        },
        "RegistrationSummary": {
            "type": "object",
            "properties": {
                "total_credits": {"type": "integer"},
                "registrations": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/RegistrationDetail"}
                }
            }
        },
        "RegistrationDetail": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "student_id": {"type": "string"},
                "lecture_id": {"type": "string"},
                "lecture_name": {"type": "string"},
                "professor_name": {"type": "string"},
                "department_name": {"type": "string"},
                "day": {"type": "string"},
                "start_period": {"type": "integer"},
                "end_period": {"type": "integer"},
                "credit": {"type": "integer"},
                "created_at": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
