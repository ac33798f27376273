package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Attendance Logger API",
        "description": "Student directory, daily attendance ledger and ID-card registry.",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Students", "description": "Student directory"},
        {"name": "Attendance", "description": "Daily attendance ledger and monthly aggregates"},
        {"name": "Student Cards", "description": "ID-card registry"},
        {"name": "Authentication", "description": "Staff login"}
    ],
    "paths": {
        "/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate staff user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/LoginResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/APIError"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/Student"}}}
                }
            }
        },
        "/students/register": {
            "post": {
                "tags": ["Students"],
                "summary": "Register a student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/StudentMessage"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/students/{studentId}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student by public identifier",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Student"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/APIError"}}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update student by internal id",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string", "description": "Internal id"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/StudentMessage"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/APIError"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/attendance/add": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Mark attendance",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkAttendanceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/Message"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/attendance/date/{date}": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Attendance for a day",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "date", "in": "path", "required": true, "type": "string", "format": "date"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/AttendanceRecord"}}}
                }
            }
        },
        "/attendance/monthly/{studentId}/{month}/{year}": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Monthly percentage for one student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "month", "in": "path", "required": true, "type": "integer"},
                    {"name": "year", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/MonthlyAttendance"}}
                }
            }
        },
        "/attendance/all-monthly/{month}/{year}": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Every record in a month",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "month", "in": "path", "required": true, "type": "integer"},
                    {"name": "year", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/AttendanceRecord"}}}
                }
            }
        },
        "/attendance/monthly-summary/{month}/{year}": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Per-student monthly totals",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "month", "in": "path", "required": true, "type": "integer"},
                    {"name": "year", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/MonthlySummary"}}
                }
            }
        },
        "/attendance/export/{month}/{year}": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Download monthly summary",
                "produces": ["text/csv", "application/pdf"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "month", "in": "path", "required": true, "type": "integer"},
                    {"name": "year", "in": "path", "required": true, "type": "integer"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File", "schema": {"type": "file"}}
                }
            }
        },
        "/student-cards/issue": {
            "post": {
                "tags": ["Student Cards"],
                "summary": "Issue a card",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/IssueCardRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/CardMessage"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/student-cards/{studentId}": {
            "get": {
                "tags": ["Student Cards"],
                "summary": "Get a student's card",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/StudentCard"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/student-cards/status/{studentId}": {
            "patch": {
                "tags": ["Student Cards"],
                "summary": "Change card status",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateCardStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/CardMessage"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        }
    },
    "definitions": {
        "Student": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "studentId": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "department": {"type": "string"},
                "year": {"type": "string"},
                "course": {"type": "string"},
                "createdAt": {"type": "string", "format": "date-time"},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "RegisterStudentRequest": {
            "type": "object",
            "required": ["name", "department", "year"],
            "properties": {
                "studentId": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "department": {"type": "string"},
                "year": {"type": "string"},
                "course": {"type": "string"}
            }
        },
        "UpdateStudentRequest": {
            "type": "object",
            "required": ["name", "department", "year"],
            "properties": {
                "name": {"type": "string"},
                "department": {"type": "string"},
                "year": {"type": "string"},
                "course": {"type": "string"},
                "email": {"type": "string"}
            }
        },
        "StudentMessage": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "student": {"$ref": "#/definitions/Student"}
            }
        },
        "MarkAttendanceRequest": {
            "type": "object",
            "required": ["studentId", "date", "status"],
            "properties": {
                "studentId": {"type": "string"},
                "date": {"type": "string", "format": "date"},
                "status": {"type": "string", "enum": ["Present", "Absent"]}
            }
        },
        "AttendanceRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "studentId": {"type": "string"},
                "date": {"type": "string", "format": "date-time"},
                "status": {"type": "string", "enum": ["Present", "Absent"]},
                "createdAt": {"type": "string", "format": "date-time"},
                "student": {"$ref": "#/definitions/Student"}
            }
        },
        "MonthlyAttendance": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string"},
                "month": {"type": "integer"},
                "year": {"type": "integer"},
                "totalDays": {"type": "integer"},
                "presentDays": {"type": "integer"},
                "percentage": {"type": "number"}
            }
        },
        "StudentMonthlySummary": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string"},
                "name": {"type": "string"},
                "department": {"type": "string"},
                "totalDays": {"type": "integer"},
                "presentDays": {"type": "integer"},
                "absentDays": {"type": "integer"},
                "percentage": {"type": "number"}
            }
        },
        "MonthlySummary": {
            "type": "object",
            "properties": {
                "month": {"type": "integer"},
                "year": {"type": "integer"},
                "students": {"type": "array", "items": {"$ref": "#/definitions/StudentMonthlySummary"}}
            }
        },
        "StudentCard": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "studentId": {"type": "string"},
                "cardId": {"type": "string"},
                "issueDate": {"type": "string", "format": "date-time"},
                "expiryDate": {"type": "string", "format": "date-time"},
                "status": {"type": "string", "enum": ["Active", "Inactive", "Lost"]},
                "updatedAt": {"type": "string", "format": "date-time"}
            }
        },
        "IssueCardRequest": {
            "type": "object",
            "required": ["studentId", "cardId", "expiryDate"],
            "properties": {
                "studentId": {"type": "string"},
                "cardId": {"type": "string"},
                "expiryDate": {"type": "string", "format": "date"}
            }
        },
        "UpdateCardStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {
                "status": {"type": "string", "enum": ["Active", "Inactive", "Lost"]}
            }
        },
        "CardMessage": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "card": {"$ref": "#/definitions/StudentCard"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "LoginResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "token": {"type": "string"},
                "expiresAt": {"type": "string", "format": "date-time"},
                "user": {
                    "type": "object",
                    "properties": {
                        "id": {"type": "string"},
                        "email": {"type": "string"},
                        "name": {"type": "string"}
                    }
                }
            }
        },
        "Message": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
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
