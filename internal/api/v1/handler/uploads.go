package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"classroom/internal/service"
)

const (
	uploadField     = "files"
	multipartMemory = 8 << 20
)

// form is a parsed write request: text fields plus any attached files.
type form struct {
	r       *http.Request
	Uploads []service.Upload
	opened  []multipart.File
}

// parseForm reads a multipart or urlencoded body capped at maxBytes. Close
// must be called once the uploads have been consumed.
func parseForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (*form, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	err := r.ParseMultipartForm(multipartMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Upload exceeds the maximum size", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		http.Error(w, "Invalid form payload: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}

	f := &form{r: r}
	if r.MultipartForm == nil {
		return f, true
	}
	for _, fh := range r.MultipartForm.File[uploadField] {
		file, err := fh.Open()
		if err != nil {
			f.Close()
			http.Error(w, "Failed to read upload: "+err.Error(), http.StatusBadRequest)
			return nil, false
		}
		f.opened = append(f.opened, file)
		f.Uploads = append(f.Uploads, service.Upload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        file,
		})
	}
	return f, true
}

func (f *form) Value(key string) string {
	return f.r.FormValue(key)
}

// Has reports whether the request carried the field at all, even empty.
func (f *form) Has(key string) bool {
	_, ok := f.r.Form[key]
	return ok
}

func (f *form) Bool(key string) bool {
	b, _ := strconv.ParseBool(f.r.FormValue(key))
	return b
}

func (f *form) Close() {
	for _, file := range f.opened {
		file.Close()
	}
	if f.r.MultipartForm != nil {
		f.r.MultipartForm.RemoveAll()
	}
}
