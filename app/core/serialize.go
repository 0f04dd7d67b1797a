package core

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/bvisness/blockflow/trace"
	"github.com/bvisness/blockflow/util"
)

// Serializer runs the same visitor code in both directions: when Encode is
// set the S* functions write, otherwise they read. Errors accumulate in
// Errs and short-circuit everything after them.
type Serializer struct {
	Buf     *bytes.Buffer
	Encode  bool
	Version int
	Errs    []error
}

type Serializable interface {
	Serialize(s *Serializer) bool
}

func NewEncoder(version int) *Serializer {
	s := Serializer{
		Buf:     &bytes.Buffer{},
		Encode:  true,
		Version: version,
	}
	SInt(&s, &s.Version)
	return &s
}

func NewDecoder(buf []byte) *Serializer {
	s := Serializer{
		Buf:    bytes.NewBuffer(buf),
		Encode: false,
	}
	SInt(&s, &s.Version)
	return &s
}

func (s *Serializer) Bytes() []byte {
	util.Assert(s.Encode, "cannot take bytes from a decoding Serializer")
	return s.Buf.Bytes()
}

func (s *Serializer) Ok() bool {
	return len(s.Errs) == 0
}

func (s *Serializer) Error(err error) bool {
	s.Errs = append(s.Errs, SerializeError{
		Err:   err,
		Stack: trace.Trace()[1:],
	})
	return false
}

func SBool(s *Serializer, b *bool) bool {
	if !s.Ok() {
		return false
	}

	if s.Encode {
		err := s.Buf.WriteByte(util.Tern[byte](*b, 0x01, 0x00))
		util.Assert(err == nil, "bytes.Buffer writes cannot fail")
	} else {
		x, err := s.Buf.ReadByte()
		if err != nil {
			return s.Error(err)
		}
		*b = x > 0
	}
	return true
}

func SInt[T ~int | ~int32 | ~int64](s *Serializer, n *T) bool {
	if !s.Ok() {
		return false
	}

	if s.Encode {
		var b [binary.MaxVarintLen64]byte
		nBytes := binary.PutVarint(b[:], int64(*n))
		if _, err := s.Buf.Write(b[:nBytes]); err != nil {
			return s.Error(err)
		}
	} else {
		x, err := binary.ReadVarint(s.Buf)
		if err != nil {
			return s.Error(err)
		}
		*n = T(x)
	}
	return true
}

func SFloat[T ~float32 | ~float64](s *Serializer, n *T) bool {
	if !s.Ok() {
		return false
	}

	if s.Encode {
		if err := binary.Write(s.Buf, binary.LittleEndian, *n); err != nil {
			return s.Error(err)
		}
	} else {
		if err := binary.Read(s.Buf, binary.LittleEndian, n); err != nil {
			return s.Error(err)
		}
	}
	return true
}

func SStr[T ~string](s *Serializer, str *T) bool {
	if !s.Ok() {
		return false
	}

	strlen := len(*str)
	if ok := SInt(s, &strlen); !ok {
		return false
	}

	if s.Encode {
		if _, err := s.Buf.Write([]byte(*str)); err != nil {
			return s.Error(err)
		}
	} else {
		res := make([]byte, strlen)
		if nRead, err := s.Buf.Read(res[:]); err != nil {
			return s.Error(err)
		} else if nRead < strlen {
			return s.Error(io.EOF)
		}
		*str = T(res)
	}
	return true
}

func SStrSlice(s *Serializer, strs *[]string) bool {
	if !s.Ok() {
		return false
	}

	n := len(*strs)
	if ok := SInt(s, &n); !ok {
		return false
	}

	if !s.Encode {
		if n == 0 {
			*strs = nil
		} else {
			*strs = make([]string, n)
		}
	}
	for i := range n {
		if ok := SStr(s, &(*strs)[i]); !ok {
			return false
		}
	}
	return true
}

func SV2(s *Serializer, v *V2) bool {
	return SFloat(s, &v.X) && SFloat(s, &v.Y)
}

func SThing[T any, PT PSerializable[T]](s *Serializer, v PT) bool {
	if !s.Ok() {
		return false
	}
	return v.Serialize(s)
}

func SMaybeThing[T any, PT PSerializable[T]](s *Serializer, v **T) bool {
	if !s.Ok() {
		return false
	}

	exists := *v != nil
	if ok := SBool(s, &exists); !ok {
		return false
	}
	if exists {
		if s.Encode {
			return SThing(s, PT(*v))
		}
		var newThing T
		if ok := SThing(s, PT(&newThing)); !ok {
			return false
		}
		*v = &newThing
	}
	return true
}

func SSlice[T any, PT PSerializable[T]](s *Serializer, slice *[]T) bool {
	if !s.Ok() {
		return false
	}

	n := len(*slice)
	if ok := SInt(s, &n); !ok {
		return false
	}

	if !s.Encode {
		if n == 0 {
			*slice = nil
		} else {
			*slice = make([]T, n)
		}
	}
	for i := range n {
		if ok := SThing(s, PT(&(*slice)[i])); !ok {
			return false
		}
	}
	return true
}

// ------------------------------------
// Errors

type SerializeError struct {
	Err   error
	Stack trace.CallStack
}

func (e SerializeError) Error() string {
	return e.Err.Error()
}

func (e SerializeError) Unwrap() error {
	return e.Err
}

// --------------------------------------
// Type utilities

type PSerializable[T any] interface {
	*T
	Serializable
}
