package layout

import (
	"encoding/binary"
	"fmt"
	"image/color"
	"math"
	"reflect"

	"github.com/Carmen-Shannon/oxy-shader/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// matrixColumnStride is the distance between matrix columns inside a block.
const matrixColumnStride = 16

// Marshal serializes property values into a buffer of l.Size bytes suitable for GPU upload.
// Values are keyed by property name and must have the Go type PropertyDeclaration documents
// for the field's kind. Properties without a value are left zeroed; array values shorter than
// the field's element count zero the remaining elements.
//
// Parameters:
//   - values: property values keyed by name
//
// Returns:
//   - []byte: little-endian block contents
//   - error: an error naming the first property whose value has the wrong type or length
func (l ResolvedLayout) Marshal(values map[string]any) ([]byte, error) {
	buf := make([]byte, l.Size)
	for _, f := range l.Fields {
		v, ok := values[f.Name]
		if !ok || v == nil {
			continue
		}
		if err := putField(buf[f.Offset:f.Offset+f.Size], f, v); err != nil {
			return nil, fmt.Errorf("property %q: %w", f.Name, err)
		}
	}
	return buf, nil
}

func putField(dst []byte, f Field, v any) error {
	if want := shader.DefaultValue(f.Kind); reflect.TypeOf(v) != reflect.TypeOf(want) {
		return fmt.Errorf("%s expects %T, got %T", f.Kind, want, v)
	}
	if f.Count == 0 {
		return putValue(dst, v)
	}
	elems, err := elements(v)
	if err != nil {
		return err
	}
	if len(elems) > f.Count {
		return fmt.Errorf("%d values exceed array length %d", len(elems), f.Count)
	}
	for i, e := range elems {
		start := uint64(i) * f.Stride
		if err := putValue(dst[start:start+f.Stride], e); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

// elements flattens a typed property slice into its elements.
func elements(v any) ([]any, error) {
	var out []any
	switch s := v.(type) {
	case []float32:
		for _, e := range s {
			out = append(out, e)
		}
	case []int32:
		for _, e := range s {
			out = append(out, e)
		}
	case []uint32:
		for _, e := range s {
			out = append(out, e)
		}
	case []mgl32.Vec2:
		for _, e := range s {
			out = append(out, e)
		}
	case []mgl32.Vec3:
		for _, e := range s {
			out = append(out, e)
		}
	case []mgl32.Vec4:
		for _, e := range s {
			out = append(out, e)
		}
	case []mgl32.Mat2:
		for _, e := range s {
			out = append(out, e)
		}
	case []mgl32.Mat3:
		for _, e := range s {
			out = append(out, e)
		}
	case []mgl32.Mat4:
		for _, e := range s {
			out = append(out, e)
		}
	default:
		return nil, fmt.Errorf("unsupported array value type %T", v)
	}
	return out, nil
}

func putValue(dst []byte, v any) error {
	switch x := v.(type) {
	case float32:
		putFloats(dst, x)
	case int32:
		binary.LittleEndian.PutUint32(dst[0:4], uint32(x))
	case uint32:
		binary.LittleEndian.PutUint32(dst[0:4], x)
	case bool:
		var b uint32
		if x {
			b = 1
		}
		binary.LittleEndian.PutUint32(dst[0:4], b)
	case mgl32.Vec2:
		putFloats(dst, x[:]...)
	case mgl32.Vec3:
		putFloats(dst, x[:]...)
	case mgl32.Vec4:
		putFloats(dst, x[:]...)
	case color.RGBA:
		putFloats(dst, float32(x.R)/255, float32(x.G)/255, float32(x.B)/255, float32(x.A)/255)
	case mgl32.Mat2:
		putColumns(dst, 2, x[:])
	case mgl32.Mat3:
		putColumns(dst, 3, x[:])
	case mgl32.Mat4:
		putColumns(dst, 4, x[:])
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
	return nil
}

func putFloats(dst []byte, fs ...float32) {
	for i, f := range fs {
		binary.LittleEndian.PutUint32(dst[i*4:i*4+4], math.Float32bits(f))
	}
}

// putColumns writes a column-major matrix with each column starting on a 16-byte boundary.
func putColumns(dst []byte, rows int, m []float32) {
	for c := 0; c*rows < len(m); c++ {
		putFloats(dst[c*matrixColumnStride:], m[c*rows:(c+1)*rows]...)
	}
}
