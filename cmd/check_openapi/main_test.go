package main

import (
	"strings"
	"testing"
)

func TestBackendDocumentPasses(t *testing.T) {
	if err := checkFile("../../services/backend/openapi.yaml"); err != nil {
		t.Fatalf("backend openapi check failed: %v", err)
	}
}

const brokenDoc = `
paths:
  /healthz:
    get: {}
components:
  schemas:
    ErrorResponse:
      type: object
      required: [message]
      properties:
        message:
          type: string
    Settings:
      type: object
      properties:
        darkMode:
          type: string
    Face:
      $ref: "#/components/schemas/Missing"
`

func TestBrokenDocumentReportsEachProblem(t *testing.T) {
	err := check([]byte(brokenDoc))
	if err == nil {
		t.Fatalf("expected broken document to fail")
	}
	for _, want := range []string{
		"path /api/auth/login missing",
		`ErrorResponse.required must include "error"`,
		`Settings property "darkMode" mismatch`,
		`Settings missing property "narrationSpeed"`,
		`schema "Account" missing`,
		`unresolved $ref "#/components/schemas/Missing"`,
	} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in:\n%v", want, err)
		}
	}
}

func TestShapeFromModelSkipsHiddenFields(t *testing.T) {
	shape := shapeFromModel(models["Account"])
	if _, ok := shape["password"]; ok {
		t.Fatalf("password must not be documented")
	}
	if got := shape["settings"]; got.Ref != "#/components/schemas/Settings" {
		t.Fatalf("settings shape = %+v", got)
	}
	if got := shape["createdAt"]; got.Type != "string" {
		t.Fatalf("createdAt shape = %+v", got)
	}
}
