package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "School Roster API",
        "description": "Classes, class teachers, teacher workload and timetables for multi-school tenants.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {
            "name": "Classes",
            "description": "Class levels, class arms and standalone classes"
        },
        {
            "name": "ClassTeachers",
            "description": "Teacher assignments per class"
        },
        {
            "name": "Workload",
            "description": "Teacher workload ranking"
        },
        {
            "name": "Timetable",
            "description": "Weekly class timetables"
        },
        {
            "name": "Ops",
            "description": "Health and metrics"
        }
    ],
    "paths": {
        "/schools/{schoolId}/class-levels": {
            "get": {
                "tags": [
                    "Classes"
                ],
                "summary": "List class levels",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "schoolId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "School ID or subdomain"
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Classes"
                ],
                "summary": "Create a class level",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "schoolId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "School ID or subdomain"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateClassLevelRequest"
                        }
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid payload",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/schools/{schoolId}/classes": {
            "get": {
                "tags": [
                    "Classes"
                ],
                "summary": "List classes and class arms",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "schoolId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "School ID or subdomain"
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Classes"
                ],
                "summary": "Create a class arm (with classLevelId) or a standalone class",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "schoolId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "School ID or subdomain"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateClassRequest"
                        }
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid payload",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Name taken",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/schools/{schoolId}/classes/{classId}": {
            "get": {
                "tags": [
                    "Classes"
                ],
                "summary": "Get a class with its teachers",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "schoolId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "School ID or subdomain"
                    },
                    {
                        "name": "classId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Class or class arm ID"
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "patch": {
                "tags": [
                    "Classes"
                ],
                "summary": "Update a class",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "schoolId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "School ID or subdomain"
                    },
                    {
                        "name": "classId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Class or class arm ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateClassRequest"
                        }
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid payload",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "Classes"
                ],
                "summary": "Delete a class",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "schoolId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "School ID or subdomain"
                    },
                    {
                        "name": "classId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Class or class arm ID"
                    },
                    {
                        "name": "force",
                        "in": "query",
                        "type": "boolean",
                        "description": "Close active enrollments and delete"
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Class has active enrollments",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/schools/{schoolId}/classes/{classId}/teachers": {
            "get": {
                "tags": [
                    "ClassTeachers"
                ],
                "summary": "List teachers of a class",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "schoolId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "School ID or subdomain"
                    },
                    {
                        "name": "classId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Class or class arm ID"
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "ClassTeachers"
                ],
                "summary": "Assign a teacher to a class",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "schoolId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "School ID or subdomain"
                    },
                    {
                        "name": "classId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Class or class arm ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AssignTeacherRequest"
                        }
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Rule violated",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Class or teacher not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Already assigned",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/schools/{schoolId}/classes/{classId}/teachers/{teacherId}": {
            "delete": {
                "tags": [
                    "ClassTeachers"
                ],
                "summary": "Remove a teacher from a class",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "schoolId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "School ID or subdomain"
                    },
                    {
                        "name": "classId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Class or class arm ID"
                    },
                    {
                        "name": "teacherId",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "subject",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/schools/{schoolId}/teachers/workload": {
            "get": {
                "tags": [
                    "Workload"
                ],
                "summary": "Rank teachers by weekly periods",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "schoolId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "School ID or subdomain"
                    },
                    {
                        "name": "subject",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "termId",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/schools/{schoolId}/classes/{classId}/timetable": {
            "get": {
                "tags": [
                    "Timetable"
                ],
                "summary": "Get the timetable of a class",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "schoolId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "School ID or subdomain"
                    },
                    {
                        "name": "classId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Class or class arm ID"
                    },
                    {
                        "name": "termId",
                        "in": "query",
                        "type": "string"
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "put": {
                "tags": [
                    "Timetable"
                ],
                "summary": "Replace the timetable of a class",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "schoolId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "School ID or subdomain"
                    },
                    {
                        "name": "classId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Class or class arm ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/SaveTimetableRequest"
                        }
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid rows",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Teacher double-booked",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/schools/{schoolId}/classes/{classId}/timetable/autofill": {
            "post": {
                "tags": [
                    "Timetable"
                ],
                "summary": "Generate an unsaved timetable preview",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "schoolId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "School ID or subdomain"
                    },
                    {
                        "name": "classId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Class or class arm ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AutoFillRequest"
                        }
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Unauthorized",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Forbidden",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "Not found",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid pool or layout",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/schools/{schoolId}/classes/{classId}/timetable/rows": {
            "post": {
                "tags": [
                    "Timetable"
                ],
                "summary": "Insert a break, lunch or assembly row on every weekday",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "schoolId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "School ID or subdomain"
                    },
                    {
                        "name": "classId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Class or class arm ID"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/InsertSpecialRowRequest"
                        }
                    }
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Slot taken",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/schools/{schoolId}/classes/{classId}/timetable/export": {
            "get": {
                "tags": [
                    "Timetable"
                ],
                "summary": "Download the timetable of a class",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "produces": [
                    "text/csv",
                    "application/pdf"
                ],
                "parameters": [
                    {
                        "name": "schoolId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "School ID or subdomain"
                    },
                    {
                        "name": "classId",
                        "in": "path",
                        "required": true,
                        "type": "string",
                        "description": "Class or class arm ID"
                    },
                    {
                        "name": "termId",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "enum": [
                            "csv",
                            "pdf"
                        ],
                        "default": "csv"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "400": {
                        "description": "Unsupported format",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/health": {
            "get": {
                "tags": [
                    "Ops"
                ],
                "summary": "Liveness check",
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "tags": [
                    "Ops"
                ],
                "summary": "Readiness check",
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "A dependency is down"
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": [
                    "Ops"
                ],
                "summary": "Prometheus metrics",
                "produces": [
                    "text/plain"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        }
    },
    "definitions": {
        "CreateClassLevelRequest": {
            "type": "object",
            "required": [
                "name",
                "type"
            ],
            "properties": {
                "name": {
                    "type": "string"
                },
                "type": {
                    "type": "string",
                    "enum": [
                        "PRIMARY",
                        "SECONDARY",
                        "TERTIARY"
                    ]
                },
                "level": {
                    "type": "integer",
                    "minimum": 0,
                    "example": 1
                }
            }
        },
        "CreateClassRequest": {
            "type": "object",
            "required": [
                "name"
            ],
            "properties": {
                "name": {
                    "type": "string"
                },
                "classLevelId": {
                    "type": "string"
                },
                "type": {
                    "type": "string",
                    "enum": [
                        "PRIMARY",
                        "SECONDARY",
                        "TERTIARY"
                    ]
                },
                "academicYear": {
                    "type": "string"
                },
                "isActive": {
                    "type": "boolean"
                }
            }
        },
        "UpdateClassRequest": {
            "type": "object",
            "properties": {
                "name": {
                    "type": "string"
                },
                "classLevelId": {
                    "type": "string"
                },
                "academicYear": {
                    "type": "string"
                }
            }
        },
        "AssignTeacherRequest": {
            "type": "object",
            "required": [
                "teacherId"
            ],
            "properties": {
                "teacherId": {
                    "type": "string"
                },
                "subject": {
                    "type": "string"
                },
                "isPrimary": {
                    "type": "boolean"
                }
            }
        },
        "DaySlot": {
            "type": "object",
            "properties": {
                "startTime": {
                    "type": "string",
                    "example": "08:00"
                },
                "endTime": {
                    "type": "string",
                    "example": "08:40"
                },
                "type": {
                    "type": "string",
                    "enum": [
                        "LESSON",
                        "BREAK",
                        "LUNCH",
                        "ASSEMBLY"
                    ]
                }
            }
        },
        "PoolSubject": {
            "type": "object",
            "required": [
                "id"
            ],
            "properties": {
                "id": {
                    "type": "string"
                },
                "name": {
                    "type": "string"
                },
                "core": {
                    "type": "boolean"
                },
                "teacherId": {
                    "type": "string"
                }
            }
        },
        "PeriodPayload": {
            "type": "object",
            "properties": {
                "dayOfWeek": {
                    "type": "string",
                    "enum": [
                        "MONDAY",
                        "TUESDAY",
                        "WEDNESDAY",
                        "THURSDAY",
                        "FRIDAY",
                        "SATURDAY",
                        "SUNDAY"
                    ]
                },
                "startTime": {
                    "type": "string"
                },
                "endTime": {
                    "type": "string"
                },
                "type": {
                    "type": "string",
                    "enum": [
                        "LESSON",
                        "BREAK",
                        "LUNCH",
                        "ASSEMBLY"
                    ]
                },
                "subjectId": {
                    "type": "string"
                },
                "courseId": {
                    "type": "string"
                },
                "teacherId": {
                    "type": "string"
                }
            }
        },
        "AutoFillRequest": {
            "type": "object",
            "required": [
                "pool"
            ],
            "properties": {
                "termId": {
                    "type": "string"
                },
                "pool": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/PoolSubject"
                    }
                },
                "periods": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/PeriodPayload"
                    }
                },
                "layout": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/DaySlot"
                    }
                },
                "freePeriods": {
                    "type": "integer",
                    "minimum": 1,
                    "maximum": 2
                },
                "seed": {
                    "type": "integer",
                    "format": "int64"
                }
            }
        },
        "InsertSpecialRowRequest": {
            "type": "object",
            "required": [
                "type",
                "startTime",
                "endTime"
            ],
            "properties": {
                "termId": {
                    "type": "string"
                },
                "type": {
                    "type": "string",
                    "enum": [
                        "BREAK",
                        "LUNCH",
                        "ASSEMBLY"
                    ]
                },
                "startTime": {
                    "type": "string"
                },
                "endTime": {
                    "type": "string"
                }
            }
        },
        "SaveTimetableRequest": {
            "type": "object",
            "properties": {
                "termId": {
                    "type": "string"
                },
                "periods": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/PeriodPayload"
                    }
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "meta": {
                    "type": "object"
                }
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
