package scene

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// ValueKind names a Value variant.
type ValueKind string

const (
	KindBool        ValueKind = "bool"
	KindInt         ValueKind = "int"
	KindFloat       ValueKind = "float"
	KindString      ValueKind = "string"
	KindVector      ValueKind = "vector"
	KindMatrix      ValueKind = "matrix"
	KindIntArray    ValueKind = "int_array"
	KindFloatArray  ValueKind = "float_array"
	KindStringArray ValueKind = "string_array"
)

// Value is a plug value. The set of implementations is closed.
type Value interface {
	Kind() ValueKind
	String() string
}

type (
	Bool        bool
	Int         int64
	Float       float64
	String      string
	Vector      mgl32.Vec3
	Matrix      mgl32.Mat4
	IntArray    []int
	FloatArray  []float64
	StringArray []string
)

func (Bool) Kind() ValueKind        { return KindBool }
func (Int) Kind() ValueKind         { return KindInt }
func (Float) Kind() ValueKind       { return KindFloat }
func (String) Kind() ValueKind      { return KindString }
func (Vector) Kind() ValueKind      { return KindVector }
func (Matrix) Kind() ValueKind      { return KindMatrix }
func (IntArray) Kind() ValueKind    { return KindIntArray }
func (FloatArray) Kind() ValueKind  { return KindFloatArray }
func (StringArray) Kind() ValueKind { return KindStringArray }

func (v Bool) String() string   { return strconv.FormatBool(bool(v)) }
func (v Int) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v Float) String() string  { return formatFloat(float64(v), 64) }
func (v String) String() string { return strconv.Quote(string(v)) }

func (v Vector) String() string {
	return fmt.Sprintf("(%s %s %s)", formatFloat(float64(v[0]), 32), formatFloat(float64(v[1]), 32), formatFloat(float64(v[2]), 32))
}

func (v Matrix) String() string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = formatFloat(float64(f), 32)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (v IntArray) String() string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.Itoa(n)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (v FloatArray) String() string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = formatFloat(f, 64)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (v StringArray) String() string {
	parts := make([]string, len(v))
	for i, s := range v {
		parts[i] = strconv.Quote(s)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func formatFloat(f float64, bits int) string {
	return strconv.FormatFloat(f, 'g', -1, bits)
}
