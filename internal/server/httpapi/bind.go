package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

const (
	attachmentField  = "attachment"
	multipartMemory  = 8 << 20
	msgMalformedBody = "The request body must be valid JSON."
	msgBadForm       = "The request body could not be read."
)

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

func fieldError(field, msg string) *services.ValidationError {
	return &services.ValidationError{Fields: map[string][]string{field: {msg}}}
}

// bindForm fills dst from a JSON body, or from form fields named after its
// json tags when the body is url-encoded or multipart.
func bindForm(r *http.Request, dst any, fields map[string]*string) error {
	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			return fieldError("body", msgMalformedBody)
		}
		return nil
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return fieldError("body", msgBadForm)
	}
	for name, p := range fields {
		*p = r.PostFormValue(name)
	}
	return nil
}

// uploaded is a parsed task form; release frees the temporary files.
type uploaded struct {
	input   services.TaskInput
	release func()
}

func (s *Server) bindTask(w http.ResponseWriter, r *http.Request) (*uploaded, error) {
	u := &uploaded{release: func() {}}
	in := &u.input

	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(in); err != nil {
			return nil, fieldError("body", msgMalformedBody)
		}
		return u, nil
	}

	if s.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			return nil, fieldError(attachmentField,
				fmt.Sprintf("The attachment field must not be greater than %d kilobytes.", s.maxUpload/1024))
		case errors.Is(err, http.ErrNotMultipart):
			if err := r.ParseForm(); err != nil {
				return nil, fieldError("body", msgBadForm)
			}
		default:
			return nil, fieldError("body", msgBadForm)
		}
	}

	in.Title = strings.TrimSpace(r.PostFormValue("title"))
	in.Description = strings.TrimSpace(r.PostFormValue("description"))
	in.Time = strings.TrimSpace(r.PostFormValue("time"))
	in.Status = strings.TrimSpace(r.PostFormValue("status"))

	if r.MultipartForm == nil {
		return u, nil
	}

	file, header, err := r.FormFile(attachmentField)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		u.release = func() { _ = r.MultipartForm.RemoveAll() }
		return u, nil
	case err != nil:
		_ = r.MultipartForm.RemoveAll()
		return nil, fieldError(attachmentField, "The attachment failed to upload.")
	}

	in.Attachment = &services.Attachment{
		Filename: header.Filename,
		Size:     header.Size,
		Body:     file,
	}
	u.release = func() {
		_ = file.Close()
		_ = r.MultipartForm.RemoveAll()
	}
	return u, nil
}

