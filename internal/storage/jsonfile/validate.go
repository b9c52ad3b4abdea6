package jsonfile

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/karen-go/internal/storage"
	"github.com/nibzard/karen-go/internal/task"
)

//go:embed tasks.schema.json
var embeddedSchema string

const embeddedSchemaURL = "tasks.schema.json"

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // JSON path to the error location
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationOptions controls validation behavior.
type ValidationOptions struct {
	// SchemaPath overrides the embedded JSON Schema.
	SchemaPath string
	// SkipSchema disables JSON Schema validation and uses only the
	// minimal checks.
	SkipSchema bool
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid      bool
	Errors     []error
	Warnings   []string
	UsedSchema bool // true if JSON Schema validation was performed
}

// Validate validates the file.
func (f *File) Validate(opts ValidationOptions) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}

	if !opts.SkipSchema {
		schemaResult := validateWithSchema(f, opts.SchemaPath)
		result.UsedSchema = schemaResult.UsedSchema
		result.Warnings = append(result.Warnings, schemaResult.Warnings...)
		if schemaResult.UsedSchema {
			if !schemaResult.Valid {
				result.Valid = false
				result.Errors = append(result.Errors, schemaResult.Errors...)
			}
			return result
		}
		result.Warnings = append(result.Warnings, "JSON Schema validation not available, using minimal checks")
	}

	f.validateMinimal(result)
	return result
}

// validateMinimal performs minimal validation without JSON Schema.
func (f *File) validateMinimal(result *ValidationResult) {
	if f.SchemaVersion != SchemaVersion {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Path: "schema_version",
			Err:  fmt.Errorf("expected %d, got %d", SchemaVersion, f.SchemaVersion),
		})
	}

	if f.Tasks == nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Path: "tasks",
			Err:  fmt.Errorf("missing required field"),
		})
		return
	}

	for i := range f.Tasks {
		path := fmt.Sprintf("tasks[%d]", i)
		if err := validateRecordMinimal(&f.Tasks[i], path); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, err)
		}
	}
}

func validateRecordMinimal(r *storage.Record, path string) *ValidationError {
	kind := task.Kind(r.Kind)
	if err := kind.Validate(); err != nil {
		return &ValidationError{
			Path: path + ".kind",
			Err:  fmt.Errorf("invalid kind %q, must be one of: T, D, E", r.Kind),
		}
	}

	if strings.TrimSpace(r.Description) == "" {
		return &ValidationError{
			Path: path + ".description",
			Err:  fmt.Errorf("missing required field"),
		}
	}

	if kind == task.KindDeadline || kind == task.KindEvent {
		if r.Date == "" {
			return &ValidationError{
				Path: path + ".date",
				Err:  fmt.Errorf("missing required field"),
			}
		}
		if _, err := time.Parse(storage.RecordDateLayout, r.Date); err != nil {
			return &ValidationError{
				Path: path + ".date",
				Err:  fmt.Errorf("invalid date %q, want yyyy-mm-dd", r.Date),
			}
		}
	}

	return nil
}

// compileSchema compiles the schema at schemaPath, or the embedded one when
// schemaPath is empty.
func compileSchema(schemaPath string) (*jsonschema.Schema, []string) {
	if schemaPath == "" {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		if err := compiler.AddResource(embeddedSchemaURL, strings.NewReader(embeddedSchema)); err != nil {
			return nil, []string{fmt.Sprintf("invalid embedded schema: %v", err)}
		}
		schema, err := compiler.Compile(embeddedSchemaURL)
		if err != nil {
			return nil, []string{fmt.Sprintf("invalid embedded schema: %v", err)}
		}
		return schema, nil
	}

	absPath, err := filepath.Abs(schemaPath)
	if err != nil {
		return nil, []string{fmt.Sprintf("invalid schema path: %v", err)}
	}

	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return nil, []string{fmt.Sprintf("schema file not found: %s", absPath)}
		}
		return nil, []string{fmt.Sprintf("failed to read schema file: %v", err)}
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	schema, err := compiler.Compile(absPath)
	if err != nil {
		return nil, []string{fmt.Sprintf("invalid schema file: %v", err)}
	}
	return schema, nil
}

// validateWithSchema attempts JSON Schema validation.
func validateWithSchema(f *File, schemaPath string) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}

	schema, warnings := compileSchema(schemaPath)
	result.Warnings = append(result.Warnings, warnings...)
	if schema == nil {
		return result
	}
	result.UsedSchema = true

	// The schema validates generic JSON values, not Go structs.
	fileData, err := json.Marshal(f)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Err: fmt.Errorf("failed to marshal file for validation: %w", err),
		})
		return result
	}

	var fileObj interface{}
	if err := json.Unmarshal(fileData, &fileObj); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Err: fmt.Errorf("failed to unmarshal file for validation: %w", err),
		})
		return result
	}

	if err := schema.Validate(fileObj); err != nil {
		result.Valid = false
		appendSchemaErrors(result, err)
	}

	return result
}

func appendSchemaErrors(result *ValidationResult, err error) {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		result.Errors = append(result.Errors, err)
		return
	}
	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: jsonPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

// jsonPointerToPath turns "/tasks/0/kind" into "tasks[0].kind".
func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return ""
	}

	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		if part == "" {
			continue
		}
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
