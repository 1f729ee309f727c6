package openapi

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formstate/pkg/form"
	"github.com/goliatone/go-formstate/pkg/schema"
)

var (
	// ErrOperationNotFound is returned when no operation matches the id.
	ErrOperationNotFound = errors.New("openapi: operation not found")
	// ErrNoRequestBody is returned when the operation has no usable object
	// request body.
	ErrNoRequestBody = errors.New("openapi: operation has no object request body")
)

// requestMediaTypes lists the preferred request body media types.
var requestMediaTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

// Option configures LoadForm.
type Option func(*loader)

// WithLogger reports skipped properties at debug level.
func WithLogger(logger zerolog.Logger) Option {
	return func(l *loader) {
		l.logger = logger
	}
}

// WithExternalRefs allows $ref resolution against external documents.
func WithExternalRefs(allowed bool) Option {
	return func(l *loader) {
		l.externalRefs = allowed
	}
}

type loader struct {
	logger       zerolog.Logger
	externalRefs bool
	fs           fs.FS
	http         *http.Client
	timeout      time.Duration
}

func newLoader(options []Option) loader {
	l := loader{logger: zerolog.Nop()}
	for _, opt := range options {
		if opt != nil {
			opt(&l)
		}
	}
	return l
}

// Form is the result of converting an operation's request body.
type Form struct {
	OperationID string
	Method      string
	Path        string
	Schema      *schema.Object
	// Defaults holds the declared property defaults.
	Defaults map[string]any
	// Skipped lists nested object and array properties that have no flat
	// form representation.
	Skipped []string
}

// NewEngine builds an engine seeded with the declared defaults. extra
// options apply afterwards.
func (f *Form) NewEngine(extra ...form.Option) (*form.Engine, error) {
	opts := []form.Option{form.WithID(f.OperationID)}
	if len(f.Defaults) > 0 {
		opts = append(opts, form.WithDefaults(f.Defaults))
	}
	return form.New(f.Schema, append(opts, extra...)...)
}

// LoadSchema is LoadForm returning only the schema.
func LoadSchema(ctx context.Context, data []byte, operationID string, options ...Option) (*schema.Object, error) {
	f, err := LoadForm(ctx, data, operationID, options...)
	if err != nil {
		return nil, err
	}
	return f.Schema, nil
}

// LoadForm parses an OpenAPI document (JSON or YAML) and converts the request
// body of operationID. Operations without an id can be addressed as
// "post:/path".
func LoadForm(ctx context.Context, data []byte, operationID string, options ...Option) (*Form, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	l := newLoader(options)

	kin := openapi3.NewLoader()
	kin.Context = ctx
	kin.IsExternalRefsAllowed = l.externalRefs

	doc, err := kin.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}

	method, path, op, ok := findOperation(doc, operationID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}

	body := requestSchema(op.RequestBody)
	if body == nil || body.Value == nil || !isObject(body.Value) {
		return nil, fmt.Errorf("%w: %q", ErrNoRequestBody, operationID)
	}

	logger := l.logger.With().Str("operation", operationID).Logger()
	return convertObject(operationID, method, path, body.Value, logger)
}

// findOperation matches operationID against operation ids, falling back to
// the "method:path" form.
func findOperation(doc *openapi3.T, operationID string) (string, string, *openapi3.Operation, bool) {
	if doc.Paths == nil {
		return "", "", nil, false
	}
	paths := doc.Paths.Map()
	keys := make([]string, 0, len(paths))
	for path := range paths {
		keys = append(keys, path)
	}
	sort.Strings(keys)

	for _, path := range keys {
		item := paths[path]
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			if id == operationID {
				return strings.ToUpper(method), path, op, true
			}
		}
	}
	return "", "", nil, false
}

func requestSchema(requestBody *openapi3.RequestBodyRef) *openapi3.SchemaRef {
	if requestBody == nil || requestBody.Value == nil {
		return nil
	}
	content := requestBody.Value.Content
	for _, mediaType := range requestMediaTypes {
		if mt, ok := content[mediaType]; ok && mt != nil {
			return mt.Schema
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if mt := content[key]; mt != nil {
			return mt.Schema
		}
	}
	return nil
}

func isObject(s *openapi3.Schema) bool {
	if s.Type == nil {
		return len(s.Properties) > 0
	}
	return s.Type.Is(openapi3.TypeObject)
}
