package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"dabwish/internal/adapters/s3"
	"dabwish/pkg/errors"
	"dabwish/pkg/pagination"
)

// multipartOverhead leaves room for the text fields next to the photo
const multipartOverhead = 1 << 20

var validate = validator.New()

// validateStruct runs the validate tags and reports the first failure as a ValidationError
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return err
	}
	fe := ve[0]
	return errors.NewValidationError(lowerFirst(fe.Field()), fmt.Sprintf("failed '%s'", fe.Tag()), fe.Value())
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// decodeJSON reads a JSON body into dst and validates it
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("request body is empty")
		}
		return badRequest("invalid request body: %v", err)
	}
	return validateStruct(dst)
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid %s %q", name, raw)
	}
	return id, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest("invalid %s %q", name, raw)
	}
	return v, nil
}

// pageParams reads zero-based page and size from the query string
func pageParams(r *http.Request) (pagination.Params, error) {
	page, err := queryInt(r, "page", 0)
	if err != nil {
		return pagination.Params{}, err
	}
	size, err := queryInt(r, "size", pagination.DefaultSize)
	if err != nil {
		return pagination.Params{}, err
	}
	p := pagination.Params{Page: page, Size: size}
	if err := p.Validate(); err != nil {
		return pagination.Params{}, err
	}
	return p.Normalize(), nil
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// wishForm is a wish as sent by either a JSON body or a multipart form
type wishForm struct {
	Title       *string          `json:"title" validate:"omitempty,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Price       *decimal.Decimal `json:"price"`
	PhotoURL    *string          `json:"photoUrl" validate:"omitempty,url"`
	photo       *s3.Photo
	closer      io.Closer
}

func (f *wishForm) Close() {
	if f.closer != nil {
		_ = f.closer.Close()
	}
}

// parseWishForm accepts JSON or multipart/form-data with an optional "photo" part
func parseWishForm(w http.ResponseWriter, r *http.Request) (*wishForm, error) {
	form := &wishForm{}
	if !isMultipart(r) {
		if err := decodeJSON(r, form); err != nil {
			return nil, err
		}
		return form, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, s3.MaxPhotoSize+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errors.Wrap(errors.ErrFileTooLarge, "request body too large")
		}
		return nil, badRequest("invalid multipart form: %v", err)
	}

	if v, ok := formValue(r, "title"); ok {
		form.Title = &v
	}
	if v, ok := formValue(r, "description"); ok {
		form.Description = &v
	}
	if v, ok := formValue(r, "price"); ok && v != "" {
		price, err := decimal.NewFromString(v)
		if err != nil {
			return nil, errors.NewValidationError("price", "must be a number", v)
		}
		form.Price = &price
	}

	file, header, err := r.FormFile("photo")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		return nil, badRequest("invalid photo part: %v", err)
	default:
		form.closer = file
		form.photo = &s3.Photo{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        file,
		}
	}

	if err := validateStruct(form); err != nil {
		form.Close()
		return nil, err
	}
	return form, nil
}

func formValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	vs, ok := r.MultipartForm.Value[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}
