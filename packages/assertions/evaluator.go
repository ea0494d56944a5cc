package assertions

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/abdul-hamid-achik/thinhttp/packages/http"
	"github.com/xeipuuv/gojsonschema"
)

type Result struct {
	Passed   bool
	Message  string
	Expected any
	Actual   any
	Subject  string
}

func pass(subject string, expected, actual any) *Result {
	return &Result{Passed: true, Subject: subject, Expected: expected, Actual: actual}
}

func fail(subject string, expected, actual any, format string, args ...any) *Result {
	return &Result{
		Passed:   false,
		Subject:  subject,
		Expected: expected,
		Actual:   actual,
		Message:  fmt.Sprintf(format, args...),
	}
}

// ExpectStatus checks the status against an exact code ("404") or a class ("4xx").
func ExpectStatus(resp *http.Response, expected string) *Result {
	actual := resp.StatusCode()
	expected = strings.ToLower(strings.TrimSpace(expected))

	if len(expected) == 3 && strings.HasSuffix(expected, "xx") {
		class, err := strconv.Atoi(expected[:1])
		if err != nil {
			return fail("status", expected, actual, "invalid status class %q", expected)
		}
		if actual/100 == class {
			return pass("status", expected, actual)
		}
		return fail("status", expected, actual, "expected status %s, got %d", expected, actual)
	}

	code, err := strconv.Atoi(expected)
	if err != nil {
		return fail("status", expected, actual, "invalid status %q", expected)
	}
	if actual == code {
		return pass("status", code, actual)
	}
	return fail("status", code, actual, "expected status %d, got %d", code, actual)
}

// ValidateSchema validates the response body against a JSON Schema document.
func ValidateSchema(resp *http.Response, schema []byte) *Result {
	schemaLoader := gojsonschema.NewBytesLoader(schema)
	documentLoader := gojsonschema.NewBytesLoader(resp.Content())

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fail("schema", "valid", nil, "schema validation error: %v", err)
	}

	if result.Valid() {
		return pass("schema", "valid", "valid")
	}

	// Collect validation errors
	var errors []string
	for _, desc := range result.Errors() {
		errors = append(errors, desc.String())
	}
	return fail("schema", "valid", errors, "schema validation failed: %s", strings.Join(errors, "; "))
}

// ValidateSchemaFile reads the schema from path and validates the body against it.
func ValidateSchemaFile(resp *http.Response, path string) *Result {
	schemaData, err := os.ReadFile(path)
	if err != nil {
		return fail("schema", path, nil, "failed to read schema file: %v", err)
	}
	return ValidateSchema(resp, schemaData)
}

// AllPassed reports whether every result passed.
func AllPassed(results []*Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
