package analyze

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const classMagic = 0xCAFEBABE

// Constant pool tags.
const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

var errTruncated = errors.New("truncated class file")

// ClassFormatError reports a class file that could not be parsed.
type ClassFormatError struct {
	Source string
	Reason string
}

func (e *ClassFormatError) Error() string {
	if e.Source == "" {
		return "invalid class file: " + e.Reason
	}

	return fmt.Sprintf("invalid class file %s: %s", e.Source, e.Reason)
}

type classReader struct {
	data []byte
	pos  int
	err  error
}

func (r *classReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}

	if n < 0 || r.pos+n > len(r.data) {
		r.err = errTruncated
		return nil
	}

	b := r.data[r.pos : r.pos+n]
	r.pos += n

	return b
}

func (r *classReader) u2() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}

	return binary.BigEndian.Uint16(b)
}

func (r *classReader) u4() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}

	return binary.BigEndian.Uint32(b)
}

type constantPool struct {
	utf8    map[uint16]string
	classes map[uint16]uint16 // class index -> name index
}

func (p *constantPool) text(i uint16) (string, error) {
	s, ok := p.utf8[i]
	if !ok {
		return "", fmt.Errorf("constant %d is not utf8", i)
	}

	return s, nil
}

func (p *constantPool) className(i uint16) (string, error) {
	nameIdx, ok := p.classes[i]
	if !ok {
		return "", fmt.Errorf("constant %d is not a class", i)
	}

	return p.text(nameIdx)
}

// ParseClass decodes the structural parts of a class file: names, access
// flags, supertypes and member declarations. Code and attributes are skipped.
func ParseClass(data []byte) (*ClassInfo, error) {
	c, err := parseClass(&classReader{data: data})
	if err != nil {
		return nil, &ClassFormatError{Reason: err.Error()}
	}

	return c, nil
}

func parseClass(r *classReader) (*ClassInfo, error) {
	if magic := r.u4(); r.err == nil && magic != classMagic {
		return nil, fmt.Errorf("bad magic %#x", magic)
	}

	r.take(4) // minor and major version

	pool, err := readConstantPool(r)
	if err != nil {
		return nil, err
	}

	c := &ClassInfo{Access: Access(r.u2())}
	thisIdx, superIdx := r.u2(), r.u2()

	if r.err != nil {
		return nil, r.err
	}

	if c.Name, err = pool.className(thisIdx); err != nil {
		return nil, fmt.Errorf("this class: %w", err)
	}

	if superIdx != 0 {
		if c.Super, err = pool.className(superIdx); err != nil {
			return nil, fmt.Errorf("super class: %w", err)
		}
	}

	count := int(r.u2())
	for i := 0; i < count && r.err == nil; i++ {
		name, err := pool.className(r.u2())
		if r.err == nil && err != nil {
			return nil, fmt.Errorf("interface %d: %w", i, err)
		}

		c.Interfaces = append(c.Interfaces, name)
	}

	if c.Fields, err = readMembers(r, pool, c.Name, MemberField); err != nil {
		return nil, err
	}

	if c.Methods, err = readMembers(r, pool, c.Name, MemberMethod); err != nil {
		return nil, err
	}

	return c, r.err
}

func readConstantPool(r *classReader) (*constantPool, error) {
	pool := &constantPool{
		utf8:    make(map[uint16]string),
		classes: make(map[uint16]uint16),
	}

	count := r.u2()
	for i := uint16(1); i < count && r.err == nil; i++ {
		tag := r.take(1)
		if tag == nil {
			break
		}

		switch tag[0] {
		case tagUtf8:
			n := int(r.u2())
			pool.utf8[i] = string(r.take(n))
		case tagClass:
			pool.classes[i] = r.u2()
		case tagString, tagMethodType, tagModule, tagPackage:
			r.take(2)
		case tagMethodHandle:
			r.take(3)
		case tagInteger, tagFloat, tagFieldref, tagMethodref, tagInterfaceMethodref,
			tagNameAndType, tagDynamic, tagInvokeDynamic:
			r.take(4)
		case tagLong, tagDouble:
			r.take(8)
			i++ // eight-byte constants occupy two slots
		default:
			return nil, fmt.Errorf("constant %d: unknown tag %d", i, tag[0])
		}
	}

	return pool, r.err
}

func readMembers(r *classReader, pool *constantPool, owner string, kind MemberKind) ([]Member, error) {
	count := int(r.u2())
	members := make([]Member, 0, count)

	for i := 0; i < count && r.err == nil; i++ {
		access, nameIdx, descIdx := r.u2(), r.u2(), r.u2()
		skipAttributes(r)

		if r.err != nil {
			break
		}

		name, err := pool.text(nameIdx)
		if err != nil {
			return nil, fmt.Errorf("%s %d name: %w", kind, i, err)
		}

		desc, err := pool.text(descIdx)
		if err != nil {
			return nil, fmt.Errorf("%s %s descriptor: %w", kind, name, err)
		}

		members = append(members, Member{
			Kind:   kind,
			Owner:  owner,
			Name:   name,
			Desc:   desc,
			Access: Access(access),
		})
	}

	return members, r.err
}

func skipAttributes(r *classReader) {
	count := int(r.u2())
	for i := 0; i < count && r.err == nil; i++ {
		r.u2()
		r.take(int(r.u4()))
	}
}
