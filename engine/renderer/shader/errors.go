package shader

import (
	"errors"
	"fmt"
)

// Sentinel errors for the shader compilation pipeline. Every typed error in this
// module unwraps to exactly one of these so callers can branch with errors.Is.
var (
	// ErrMalformedAsset is returned when shader asset text cannot be parsed.
	ErrMalformedAsset = errors.New("malformed shader asset")

	// ErrDuplicateBinding is returned when two resources collide on one binding slot.
	ErrDuplicateBinding = errors.New("duplicate resource binding")

	// ErrUnknownPropertyKind is returned when an asset names a property type tag outside the closed set.
	ErrUnknownPropertyKind = errors.New("unknown property kind")

	// ErrUnsupportedPropertyKind is returned when a property kind cannot be placed in a uniform block.
	ErrUnsupportedPropertyKind = errors.New("unsupported property kind")

	// ErrEmissionFailed is returned when backend source cannot be produced for a pass.
	ErrEmissionFailed = errors.New("shader emission failed")
)

// MalformedAssetError describes a syntax or structure error in shader asset text.
// Offset is the 0-based byte offset, Line and Column are 1-based.
type MalformedAssetError struct {
	Offset int
	Line   int
	Column int
	Msg    string
}

func (e *MalformedAssetError) Error() string {
	return fmt.Sprintf("%s: line %d, column %d (offset %d): %s", ErrMalformedAsset, e.Line, e.Column, e.Offset, e.Msg)
}

func (e *MalformedAssetError) Unwrap() error {
	return ErrMalformedAsset
}

// DuplicateBindingError reports two resources sharing a binding index within one set.
type DuplicateBindingError struct {
	Shader  string
	Set     int
	Binding int
	First   string
	Second  string
}

func (e *DuplicateBindingError) Error() string {
	return fmt.Sprintf("%s: shader %q: resources %q and %q both use set %d binding %d", ErrDuplicateBinding, e.Shader, e.First, e.Second, e.Set, e.Binding)
}

func (e *DuplicateBindingError) Unwrap() error {
	return ErrDuplicateBinding
}

// UnknownPropertyKindError reports an unrecognised property type tag in asset text.
type UnknownPropertyKindError struct {
	Property string
	Tag      string
	Line     int
}

func (e *UnknownPropertyKindError) Error() string {
	return fmt.Sprintf("%s: line %d: property %q has unknown kind %q", ErrUnknownPropertyKind, e.Line, e.Property, e.Tag)
}

func (e *UnknownPropertyKindError) Unwrap() error {
	return ErrUnknownPropertyKind
}

// UnsupportedPropertyKindError reports a property that cannot be laid out in a uniform block.
type UnsupportedPropertyKindError struct {
	Property string
	Kind     PropertyKind
}

func (e *UnsupportedPropertyKindError) Error() string {
	return fmt.Sprintf("%s: property %q of kind %s cannot be stored in a uniform block", ErrUnsupportedPropertyKind, e.Property, e.Kind)
}

func (e *UnsupportedPropertyKindError) Unwrap() error {
	return ErrUnsupportedPropertyKind
}

// EmissionFailedError reports why backend source could not be produced for one pass.
// No partial output accompanies this error.
type EmissionFailedError struct {
	Shader string
	Pass   string
	Stage  ShaderType
	Reason string
}

func (e *EmissionFailedError) Error() string {
	return fmt.Sprintf("%s: shader %q pass %q (%s): %s", ErrEmissionFailed, e.Shader, e.Pass, e.Stage, e.Reason)
}

func (e *EmissionFailedError) Unwrap() error {
	return ErrEmissionFailed
}
