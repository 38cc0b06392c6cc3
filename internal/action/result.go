package action

import (
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// GlobalKey is the Errors key for messages not tied to a single field.
const GlobalKey = "_global"

// UnexpectedMessage is shown when the remote call faults instead of answering.
const UnexpectedMessage = "Something went wrong. Please try again."

type Kind int

const (
	KindOK Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindUnexpected:
		return "unexpected"
	default:
		return "unknown"
	}
}

// Errors maps a field name (or GlobalKey) to one or more human-readable messages.
type Errors map[string][]string

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Field returns the first message for field, or "".
func (e Errors) Field(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (e Errors) Global() string { return e.Field(GlobalKey) }

// Fields returns the field names in stable order, GlobalKey last.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for k := range e {
		if k != GlobalKey {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	if _, ok := e[GlobalKey]; ok {
		out = append(out, GlobalKey)
	}
	return out
}

// Request is a mutation submitted to a remote action. Fields carries
// form-style values ("on" for booleans).
type Request struct {
	ID       string            `json:"id"`
	TargetID string            `json:"targetId,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

func NewRequest(targetID string, fields map[string]string) Request {
	return Request{
		ID:       uuid.NewString(),
		TargetID: strings.TrimSpace(targetID),
		Fields:   maps.Clone(fields),
	}
}

func (r Request) Field(name string) (string, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

func (r Request) clone() Request {
	r.Fields = maps.Clone(r.Fields)
	return r
}

// Result is the outcome of a Request: a success Value or an Errors report, never both.
type Result struct {
	Kind   Kind   `json:"kind"`
	Value  any    `json:"value,omitempty"`
	Errors Errors `json:"errors,omitempty"`
}

func Success(v any) Result { return Result{Kind: KindOK, Value: v} }

func Invalid(errs Errors) Result {
	if len(errs) == 0 {
		errs = Errors{GlobalKey: {"Invalid request."}}
	}
	return Result{Kind: KindValidation, Errors: errs}
}

func FieldError(field, msg string) Result {
	return Invalid(Errors{field: {msg}})
}

func NotFound(msg string) Result {
	return Result{Kind: KindNotFound, Errors: Errors{GlobalKey: {msg}}}
}

func Unauthorized(msg string) Result {
	return Result{Kind: KindUnauthorized, Errors: Errors{GlobalKey: {msg}}}
}

func Unexpected() Result {
	return Result{Kind: KindUnexpected, Errors: Errors{GlobalKey: {UnexpectedMessage}}}
}

func (r Result) OK() bool { return r.Kind == KindOK && len(r.Errors) == 0 }

// Messages flattens every message in field order, for one-line banners.
func (r Result) Messages() []string {
	var out []string
	for _, f := range r.Errors.Fields() {
		out = append(out, r.Errors[f]...)
	}
	return slices.Clip(out)
}
