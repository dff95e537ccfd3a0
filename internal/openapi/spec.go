// Package openapi builds the OpenAPI 3.1 document describing the Keygate
// HTTP surface, served at /openapi.json.
package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// Spec returns the OpenAPI document for the public and admin endpoints.
func Spec(baseURL, version string) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "Keygate API",
			Description: "Issues single-use registration API keys, binds them to new users, and exposes an admin surface guarded by JWT bearer tokens.",
			Version:     version,
		},
		Servers: openapi3.Servers{
			{URL: baseURL},
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	components.SecuritySchemes = openapi3.SecuritySchemes{}
	doc.Components = &components

	doc.Components.SecuritySchemes["bearerAuth"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}

	doc.Components.Schemas["ErrorResponse"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"error": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type: &openapi3.Types{"object"},
						Properties: openapi3.Schemas{
							"code":    schemaOf("integer"),
							"message": schemaOf("string"),
						},
					},
				},
			},
		},
	}

	doc.Components.Schemas["User"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"id":        schemaOf("integer"),
				"firstname": schemaOf("string"),
				"lastname":  schemaOf("string"),
				"email":     schemaOf("string"),
			},
		},
	}

	doc.Paths = openapi3.NewPaths()

	doc.Paths.Set("/generate-apikey", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "generateApiKey",
			Summary:     "Issue a fresh single-use API key",
			Tags:        []string{"keys"},
			Responses:   responses(map[string]string{"200": "The issued key", "500": "Store failure"}),
		},
	})

	doc.Paths.Set("/api/register", &openapi3.PathItem{
		Post: &openapi3.Operation{
			OperationID: "registerUser",
			Summary:     "Register a user, claiming an issued API key",
			Tags:        []string{"registration"},
			RequestBody: jsonBody(objectSchema(map[string]string{
				"firstname": "string", "lastname": "string", "email": "string", "apiKey": "string",
			})),
			Responses: responses(map[string]string{
				"201": "User created",
				"400": "Missing required field",
				"404": "Invalid or already claimed API key",
				"409": "Email already registered",
				"500": "Store failure",
			}),
		},
	})

	doc.Paths.Set("/api/admin/register", &openapi3.PathItem{
		Post: &openapi3.Operation{
			OperationID: "registerAdmin",
			Summary:     "Create an admin account",
			Tags:        []string{"admin"},
			RequestBody: jsonBody(objectSchema(map[string]string{"email": "string", "password": "string"})),
			Responses: responses(map[string]string{
				"201": "Admin created",
				"400": "Missing required field",
				"409": "Email already registered",
				"500": "Store failure",
			}),
		},
	})

	doc.Paths.Set("/api/admin/login", &openapi3.PathItem{
		Post: &openapi3.Operation{
			OperationID: "adminLogin",
			Summary:     "Authenticate an admin and obtain a bearer token",
			Tags:        []string{"admin"},
			RequestBody: jsonBody(objectSchema(map[string]string{"email": "string", "password": "string"})),
			Responses: responses(map[string]string{
				"200": "Session token issued",
				"400": "Missing required field",
				"401": "Invalid credentials",
				"500": "Store failure",
			}),
		},
	})

	bearer := openapi3.SecurityRequirements{{"bearerAuth": {}}}

	doc.Paths.Set("/api/admin/users", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "listUsers",
			Summary:     "List registered users",
			Tags:        []string{"admin"},
			Security:    &bearer,
			Responses: responses(map[string]string{
				"200": "Registered users",
				"401": "No credentials presented",
				"403": "Invalid or expired token",
			}),
		},
	})

	doc.Paths.Set("/api/admin/keys", &openapi3.PathItem{
		Get: &openapi3.Operation{
			OperationID: "listKeys",
			Summary:     "List issued keys (values redacted)",
			Tags:        []string{"admin"},
			Security:    &bearer,
			Responses: responses(map[string]string{
				"200": "Issued keys",
				"401": "No credentials presented",
				"403": "Invalid or expired token",
			}),
		},
	})

	return doc
}

func schemaOf(typ string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{typ}}}
}

func objectSchema(props map[string]string) *openapi3.SchemaRef {
	schemas := openapi3.Schemas{}
	for name, typ := range props {
		schemas[name] = schemaOf(typ)
	}
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:       &openapi3.Types{"object"},
			Properties: schemas,
		},
	}
}

func jsonBody(schema *openapi3.SchemaRef) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Required: true,
			Content:  openapi3.NewContentWithJSONSchemaRef(schema),
		},
	}
}

func responses(byStatus map[string]string) *openapi3.Responses {
	resp := openapi3.NewResponses()
	for status, desc := range byStatus {
		d := desc
		resp.Set(status, &openapi3.ResponseRef{
			Value: &openapi3.Response{Description: &d},
		})
	}
	return resp
}
