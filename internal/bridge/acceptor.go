package bridge

import "fmt"

// Recorder records every call as a line. It is meant for tests and the
// command line bridge output.
type Recorder struct {
	Lines []string
}

var _ Acceptor = (*Recorder)(nil)

func (r *Recorder) AcceptClass(src, dst string) error {
	r.Lines = append(r.Lines, fmt.Sprintf("class %s -> %s", src, dst))
	return nil
}

func (r *Recorder) AcceptMethod(m Member, dst string) error {
	r.Lines = append(r.Lines, fmt.Sprintf("method %s -> %s", m, dst))
	return nil
}

func (r *Recorder) AcceptField(m Member, dst string) error {
	r.Lines = append(r.Lines, fmt.Sprintf("field %s -> %s", m, dst))
	return nil
}

func (r *Recorder) AcceptParam(method Member, lvIndex int, dst string) error {
	r.Lines = append(r.Lines, fmt.Sprintf("param %s %d -> %s", method, lvIndex, dst))
	return nil
}

func (r *Recorder) AcceptLocal(method Member, lvIndex, startOp int, dst string) error {
	r.Lines = append(r.Lines, fmt.Sprintf("local %s %d/%d -> %s", method, lvIndex, startOp, dst))
	return nil
}

// Slot identifies a parameter or local variable of a method. StartOp is
// UnknownStart for parameters.
type Slot struct {
	Method  Member
	LVIndex int
	StartOp int
}

// Mapping collects renames into lookup maps, the shape remappers consume.
type Mapping struct {
	Classes map[string]string
	Methods map[Member]string
	Fields  map[Member]string
	Params  map[Slot]string
	Locals  map[Slot]string
}

var _ Acceptor = (*Mapping)(nil)

// NewMapping creates an empty Mapping.
func NewMapping() *Mapping {
	return &Mapping{
		Classes: make(map[string]string),
		Methods: make(map[Member]string),
		Fields:  make(map[Member]string),
		Params:  make(map[Slot]string),
		Locals:  make(map[Slot]string),
	}
}

// Class returns the destination name of a class, or the name itself when
// the class is not renamed.
func (m *Mapping) Class(name string) string {
	if dst, ok := m.Classes[name]; ok {
		return dst
	}

	return name
}

func (m *Mapping) AcceptClass(src, dst string) error {
	m.Classes[src] = dst
	return nil
}

func (m *Mapping) AcceptMethod(member Member, dst string) error {
	m.Methods[member] = dst
	return nil
}

func (m *Mapping) AcceptField(member Member, dst string) error {
	m.Fields[member] = dst
	return nil
}

func (m *Mapping) AcceptParam(method Member, lvIndex int, dst string) error {
	m.Params[Slot{Method: method, LVIndex: lvIndex, StartOp: UnknownStart}] = dst
	return nil
}

func (m *Mapping) AcceptLocal(method Member, lvIndex, startOp int, dst string) error {
	m.Locals[Slot{Method: method, LVIndex: lvIndex, StartOp: startOp}] = dst
	return nil
}
