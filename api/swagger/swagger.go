package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ABS Dashboard API",
        "description": "Admin dashboard backend: lecture schedule, students, results, announcements and banners.",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BasicAuth": {
            "type": "basic"
        }
    },
    "security": [
        {
            "BasicAuth": []
        }
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": [
                    "System"
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
                    "System"
                ],
                "summary": "Readiness of store and cache",
                "responses": {
                    "200": {
                        "description": "Ready"
                    },
                    "503": {
                        "description": "Degraded"
                    }
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": [
                    "System"
                ],
                "summary": "Prometheus metrics",
                "produces": [
                    "text/plain"
                ],
                "responses": {
                    "200": {
                        "description": "Exposition"
                    }
                }
            }
        },
        "/ping": {
            "get": {
                "tags": [
                    "System"
                ],
                "summary": "Legacy liveness probe",
                "produces": [
                    "text/plain"
                ],
                "responses": {
                    "200": {
                        "description": "pong"
                    }
                }
            }
        },
        "/lectures": {
            "get": {
                "tags": [
                    "Lectures"
                ],
                "summary": "List lectures",
                "description": "Upcoming lectures first (today, tomorrow, later), then past lectures newest first.",
                "parameters": [
                    {
                        "name": "limit",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Page size (alias pageSize)"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Page"
                    },
                    {
                        "name": "course",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Course, 'all' for any"
                    },
                    {
                        "name": "faculty",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Faculty"
                    },
                    {
                        "name": "branch",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Branch"
                    },
                    {
                        "name": "mode",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Online or Offline, case-insensitive"
                    },
                    {
                        "name": "dateFilter",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "today|tomorrow|previous|upcoming|this_week|next_week"
                    },
                    {
                        "name": "startDate",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "YYYY-MM-DD"
                    },
                    {
                        "name": "endDate",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "YYYY-MM-DD"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/LecturePage"
                        }
                    },
                    "422": {
                        "description": "Failure",
                        "schema": {
                            "$ref": "#/definitions/Failure"
                        }
                    },
                    "500": {
                        "description": "Failure",
                        "schema": {
                            "$ref": "#/definitions/Failure"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Lectures"
                ],
                "summary": "Create lecture",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/Identifier"
                        }
                    },
                    "400": {
                        "description": "Failure",
                        "schema": {
                            "$ref": "#/definitions/Failure"
                        }
                    }
                }
            }
        },
        "/lectures/export": {
            "get": {
                "tags": [
                    "Lectures"
                ],
                "summary": "Export lectures",
                "produces": [
                    "text/csv",
                    "application/pdf"
                ],
                "parameters": [
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "csv (default) or pdf"
                    },
                    {
                        "name": "course",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": ""
                    },
                    {
                        "name": "dateFilter",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": ""
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File"
                    },
                    "400": {
                        "description": "Failure",
                        "schema": {
                            "$ref": "#/definitions/Failure"
                        }
                    }
                }
            }
        },
        "/students": {
            "get": {
                "tags": [
                    "Students"
                ],
                "summary": "List students",
                "description": "Newest first. totalStudents is only present on the first page.",
                "parameters": [
                    {
                        "name": "limit",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Page size"
                    },
                    {
                        "name": "startAfterId",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Last id of the previous page"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/StudentListing"
                        }
                    },
                    "404": {
                        "description": "Failure",
                        "schema": {
                            "$ref": "#/definitions/Failure"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Students"
                ],
                "summary": "Create student",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/Identifier"
                        }
                    }
                }
            }
        },
        "/results": {
            "get": {
                "tags": [
                    "Results"
                ],
                "summary": "Search results",
                "description": "Numeric queries match the start of studentId, anything else the start of the name.",
                "parameters": [
                    {
                        "name": "q",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Student id or name prefix"
                    },
                    {
                        "name": "limit",
                        "in": "query",
                        "type": "integer",
                        "required": false,
                        "description": "Page size"
                    },
                    {
                        "name": "startAfterId",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Last id of the previous page"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResultListing"
                        }
                    },
                    "404": {
                        "description": "Failure",
                        "schema": {
                            "$ref": "#/definitions/Failure"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Results"
                ],
                "summary": "Create result",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/Identifier"
                        }
                    },
                    "400": {
                        "description": "Failure",
                        "schema": {
                            "$ref": "#/definitions/Failure"
                        }
                    }
                }
            }
        },
        "/announcements": {
            "get": {
                "tags": [
                    "Announcements"
                ],
                "summary": "List announcements",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "type": "object"
                            }
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Announcements"
                ],
                "summary": "Create announcement",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/Identifier"
                        }
                    }
                }
            }
        },
        "/banners": {
            "get": {
                "tags": [
                    "Banners"
                ],
                "summary": "List banners by display order",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {
                                "type": "object"
                            }
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Banners"
                ],
                "summary": "Create banner",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/Identifier"
                        }
                    }
                }
            }
        },
        "/{collection}/{id}": {
            "parameters": [
                {
                    "name": "collection",
                    "in": "path",
                    "type": "string",
                    "required": true,
                    "description": "students|lectures|announcements|banners|results"
                },
                {
                    "name": "id",
                    "in": "path",
                    "type": "string",
                    "required": true,
                    "description": "Document ID"
                }
            ],
            "get": {
                "tags": [
                    "Documents"
                ],
                "summary": "Get document",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "object"
                        }
                    },
                    "404": {
                        "description": "Failure",
                        "schema": {
                            "$ref": "#/definitions/Failure"
                        }
                    }
                }
            },
            "put": {
                "tags": [
                    "Documents"
                ],
                "summary": "Merge document fields",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "type": "object"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/Identifier"
                        }
                    },
                    "400": {
                        "description": "Failure",
                        "schema": {
                            "$ref": "#/definitions/Failure"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "Documents"
                ],
                "summary": "Delete document",
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                }
            }
        }
    },
    "definitions": {
        "Failure": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string"
                },
                "details": {
                    "type": "string"
                },
                "code": {
                    "type": "string"
                }
            }
        },
        "Identifier": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                }
            }
        },
        "LecturePage": {
            "type": "object",
            "properties": {
                "records": {
                    "type": "array",
                    "items": {
                        "type": "object"
                    }
                },
                "currentPage": {
                    "type": "integer"
                },
                "totalCount": {
                    "type": "integer"
                },
                "totalPages": {
                    "type": "integer"
                },
                "hasMore": {
                    "type": "boolean"
                },
                "serverDate": {
                    "type": "string"
                }
            }
        },
        "StudentListing": {
            "type": "object",
            "properties": {
                "students": {
                    "type": "array",
                    "items": {
                        "type": "object"
                    }
                },
                "lastVisible": {
                    "type": "string"
                },
                "hasMore": {
                    "type": "boolean"
                },
                "totalStudents": {
                    "type": "integer"
                }
            }
        },
        "ResultListing": {
            "type": "object",
            "properties": {
                "results": {
                    "type": "array",
                    "items": {
                        "type": "object"
                    }
                },
                "lastVisible": {
                    "type": "string"
                },
                "hasMore": {
                    "type": "boolean"
                },
                "totalResults": {
                    "type": "integer"
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
