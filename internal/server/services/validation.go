package services

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

// ValidationError carries human-readable messages per input field.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateStruct runs the struct tags of in and converts failures to a
// *ValidationError. It returns nil (untyped) when in is valid.
func validateStruct(in any) *ValidationError {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Fields: map[string][]string{"input": {"The input is invalid."}}}
	}

	ve := &ValidationError{}
	for _, fe := range fieldErrs {
		field, msg := fieldMessage(fe)
		ve.add(field, msg)
	}
	return ve
}

func humanField(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

func fieldMessage(fe validator.FieldError) (string, string) {
	field := fe.Field()
	name := humanField(field)

	switch fe.Tag() {
	case "required":
		return field, fmt.Sprintf("The %s field is required.", name)
	case "email":
		return field, fmt.Sprintf("The %s field must be a valid email address.", name)
	case "max":
		return field, fmt.Sprintf("The %s field must not be greater than %s characters.", name, fe.Param())
	case "min":
		return field, fmt.Sprintf("The %s field must be at least %s characters.", name, fe.Param())
	case "eqfield":
		target := strings.ToLower(fe.Param())
		return target, fmt.Sprintf("The %s field confirmation does not match.", target)
	case "oneof":
		return field, fmt.Sprintf("The selected %s is invalid.", name)
	}
	return field, fmt.Sprintf("The %s field is invalid.", name)
}

// Accepted due time layouts, tried in order.
var dueTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseDueTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dueTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AttachmentRule says whether an operation needs a file and which
// extensions it accepts.
type AttachmentRule struct {
	Required bool
	Types    []string
}

// Attachment is an uploaded file. Body must be rewindable because the
// content is sniffed before it is stored.
type Attachment struct {
	Filename string
	Size     int64
	Body     io.ReadSeeker
}

// expected content types per extension; an extension missing here is
// accepted on its name alone.
var extensionMIME = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"pdf":  "application/pdf",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"txt":  "text/plain",
}

func extOf(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 || i == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}

// check validates a against the rule, adding messages to ve. It returns the
// sniffed content type of an accepted file.
func (r AttachmentRule) check(a *Attachment, ve *ValidationError) string {
	if a == nil || a.Body == nil {
		if r.Required {
			ve.add("attachment", "The attachment field is required.")
		}
		return ""
	}

	typeMsg := fmt.Sprintf("The attachment field must be a file of type: %s.", strings.Join(r.Types, ", "))

	ext := extOf(a.Filename)
	allowed := false
	for _, t := range r.Types {
		if strings.EqualFold(t, ext) {
			allowed = true
			break
		}
	}
	if !allowed {
		ve.add("attachment", typeMsg)
		return ""
	}

	detected, err := mimetype.DetectReader(a.Body)
	if _, seekErr := a.Body.Seek(0, io.SeekStart); err != nil || seekErr != nil {
		ve.add("attachment", "The attachment failed to upload.")
		return ""
	}

	want, known := extensionMIME[ext]
	if !known {
		return detected.String()
	}
	for m := detected; m != nil; m = m.Parent() {
		if m.Is(want) {
			return want
		}
	}
	ve.add("attachment", typeMsg)
	return ""
}
