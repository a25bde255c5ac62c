package bcl

import "fmt"

// Code classifies a verification result.
type Code int

const (
	CodeOK Code = iota
	CodeNotFound
	CodeEmptyNotFound
	CodeBadSize
	CodeEmpty
	CodeError
)

// Codes lists every code in reporting order.
var Codes = []Code{CodeOK, CodeNotFound, CodeEmptyNotFound, CodeBadSize, CodeEmpty, CodeError}

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeNotFound:
		return "NOTFOUND"
	case CodeEmptyNotFound:
		return "EMPTYNOTFOUND"
	case CodeBadSize:
		return "BADSIZE"
	case CodeEmpty:
		return "EMPTY"
	case CodeError:
		return "ERROR"
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Result is the outcome of checking one content. The set of results is
// closed: OK, NotFound, EmptyNotFound, SizeMismatch, Empty and AccessError.
type Result interface {
	Code() Code
	// ResolvedPath is the file the result is about; empty for OK.
	ResolvedPath() string
	// Describe is the human readable description written to reports.
	Describe() string

	isResult()
}

// OK means the file exists with the expected size.
type OK struct{}

// NotFound means no file was found for a content with a non-zero size.
type NotFound struct {
	Path string
}

// EmptyNotFound means no file was found for a content recorded as empty.
type EmptyNotFound struct {
	Path string
}

// SizeMismatch means the file exists but its non-zero size differs.
type SizeMismatch struct {
	Path     string
	Expected int64
	Actual   int64
}

// Empty means the file exists but is empty while content was expected.
type Empty struct {
	Path     string
	Expected int64
}

// AccessError means the file size could not be read.
type AccessError struct {
	Path string
	Err  error
}

func (OK) Code() Code            { return CodeOK }
func (NotFound) Code() Code      { return CodeNotFound }
func (EmptyNotFound) Code() Code { return CodeEmptyNotFound }
func (SizeMismatch) Code() Code  { return CodeBadSize }
func (Empty) Code() Code         { return CodeEmpty }
func (AccessError) Code() Code   { return CodeError }

func (OK) ResolvedPath() string              { return "" }
func (r NotFound) ResolvedPath() string      { return r.Path }
func (r EmptyNotFound) ResolvedPath() string { return r.Path }
func (r SizeMismatch) ResolvedPath() string  { return r.Path }
func (r Empty) ResolvedPath() string         { return r.Path }
func (r AccessError) ResolvedPath() string   { return r.Path }

func (OK) Describe() string            { return "" }
func (NotFound) Describe() string      { return "content not found" }
func (EmptyNotFound) Describe() string { return "content not found but was empty !" }

func (r SizeMismatch) Describe() string {
	return fmt.Sprintf("bad size (%d) when expecting %d bytes", r.Actual, r.Expected)
}

func (r Empty) Describe() string {
	return fmt.Sprintf("empty size when expecting %d bytes", r.Expected)
}

func (r AccessError) Describe() string {
	return "error accessing the content: " + r.Err.Error()
}

func (OK) isResult()            {}
func (NotFound) isResult()      {}
func (EmptyNotFound) isResult() {}
func (SizeMismatch) isResult()  {}
func (Empty) isResult()         {}
func (AccessError) isResult()   {}
