// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package schema validates request payloads and model output against
// JSON Schemas. Validation failures name the failing fields but never
// carry payload values, so errors are safe to log and return.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonschema"
)

// ValidationError lists the fields that failed validation. It carries no
// payload content.
type ValidationError struct {
	Subject string
	Fields  []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s failed schema validation", e.Subject)
	}
	return fmt.Sprintf("%s failed schema validation: %s", e.Subject, strings.Join(e.Fields, ", "))
}

// Validator holds one compiled JSON Schema. Compile once, validate per
// request; compiled validators are safe for concurrent use.
type Validator struct {
	subject string
	schema  *jsonschema.Schema
}

// Compile parses and compiles a JSON Schema document. The subject names
// what is being validated ("request payload", "model output") and
// appears in validation errors.
func Compile(subject string, schemaJSON []byte) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiled, err := compiler.Compile(schemaJSON)
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", subject, err)
	}
	return &Validator{
		subject: subject,
		schema:  compiled,
	}, nil
}

// MustCompile is Compile for schemas known at build time.
func MustCompile(subject string, schemaJSON []byte) *Validator {
	v, err := Compile(subject, schemaJSON)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks raw JSON against the schema. On failure it returns a
// ValidationError naming every failing field.
func (v *Validator) Validate(raw []byte) error {
	if !json.Valid(raw) {
		return &ValidationError{Subject: v.subject, Fields: []string{"(malformed json)"}}
	}

	result := v.schema.ValidateJSON(raw)
	if result.IsValid() {
		return nil
	}

	fields := make([]string, 0, len(result.Errors))
	for field := range result.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	return &ValidationError{
		Subject: v.subject,
		Fields:  fields,
	}
}
