package format

import (
	"strconv"
	"strings"

	"mapping-resolver/internal/naming"
	"mapping-resolver/internal/table"
	"mapping-resolver/internal/visitor"
)

// TSRGReader reads tsrg v1 files: class lines followed by tab indented
// member lines, two namespaces "source" and "target".
type TSRGReader struct{}

func (TSRGReader) Format() Format { return TSRG }

func (TSRGReader) CanRead(f File) bool {
	first := firstLine(f.Data, "#")
	if first == "" || first[0] == '\t' || strings.HasPrefix(first, "tsrg2 ") {
		return false
	}

	cols := strings.Fields(first)

	return len(cols) == 2 && !strings.HasSuffix(cols[0], ":") && !strings.HasPrefix(cols[0], ".")
}

func (TSRGReader) Read(f File) (*table.Table, error) {
	frag, err := newFragment(TSRG, f, sourceTarget)
	if err != nil {
		return nil, err
	}

	var class visitor.ClassVisitor

	for i, line := range lines(f.Data) {
		frag.line = i + 1
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cols := strings.Fields(line)

		if line[0] != '\t' {
			if len(cols) != 2 {
				return nil, frag.fail("bad class line")
			}

			if strings.HasSuffix(cols[0], "/") {
				// Package rename, not tracked.
				class = nil
				continue
			}

			if class, err = frag.class(pairNames(sourceTarget, cols...)); err != nil {
				return nil, err
			}

			continue
		}

		if class == nil {
			return nil, frag.fail("member outside of a class")
		}

		switch len(cols) {
		case 2:
			_, err = frag.field(class, memberNames(sourceTarget, "", cols...))
		case 3:
			_, err = frag.method(class, memberNames(sourceTarget, cols[1], cols[0], cols[2]))
		default:
			return nil, frag.fail("bad member line")
		}

		if err != nil {
			return nil, err
		}
	}

	return frag.build()
}

// TSRGV2Reader reads tsrg v2 files ("tsrg2 <namespaces>").
type TSRGV2Reader struct{}

func (TSRGV2Reader) Format() Format { return TSRGV2 }

func (TSRGV2Reader) CanRead(f File) bool {
	return strings.HasPrefix(firstLine(f.Data, ""), "tsrg2 ")
}

func (TSRGV2Reader) Read(f File) (*table.Table, error) {
	all := lines(f.Data)
	if len(all) == 0 {
		return nil, &ParseError{Format: TSRGV2, File: f.Name, Line: 1, Reason: "missing header"}
	}

	header := strings.Fields(all[0])
	if len(header) < 3 || header[0] != "tsrg2" {
		return nil, &ParseError{Format: TSRGV2, File: f.Name, Line: 1, Reason: "bad header"}
	}

	namespaces := naming.NewNamespaces(header[1:]...)
	if len(namespaces) != len(header)-1 {
		return nil, &ParseError{Format: TSRGV2, File: f.Name, Line: 1, Reason: "duplicate namespace"}
	}

	frag, err := newFragment(TSRGV2, f, namespaces)
	if err != nil {
		return nil, err
	}

	n := len(namespaces)

	var (
		class  visitor.ClassVisitor
		method visitor.MethodVisitor
	)

	for i, line := range all[1:] {
		frag.line = i + 2
		if strings.TrimSpace(line) == "" {
			continue
		}

		depth := 0
		for depth < len(line) && line[depth] == '\t' {
			depth++
		}

		cols := strings.Fields(line)

		switch depth {
		case 0:
			if len(cols) != n {
				return nil, frag.fail("bad class line")
			}

			if class, err = frag.class(pairNames(namespaces, cols...)); err != nil {
				return nil, err
			}

			method = nil
		case 1:
			if class == nil {
				return nil, frag.fail("member outside of a class")
			}

			method = nil

			switch {
			case len(cols) == n:
				_, err = frag.field(class, memberNames(namespaces, "", cols...))
			case len(cols) == n+1 && strings.HasPrefix(cols[1], "("):
				method, err = frag.method(class, memberNames(namespaces, cols[1], append([]string{cols[0]}, cols[2:]...)...))
			case len(cols) == n+1:
				_, err = frag.field(class, memberNames(namespaces, cols[1], append([]string{cols[0]}, cols[2:]...)...))
			default:
				return nil, frag.fail("bad member line")
			}

			if err != nil {
				return nil, err
			}
		case 2:
			if method == nil {
				return nil, frag.fail("parameter outside of a method")
			}

			if len(cols) == 1 && cols[0] == "static" {
				continue
			}

			if len(cols) != n+1 {
				return nil, frag.fail("bad parameter line")
			}

			lv, err := strconv.Atoi(cols[0])
			if err != nil {
				return nil, frag.fail("bad parameter index " + strconv.Quote(cols[0]))
			}

			param := visitor.Param{LVIndex: lv, Ordinal: visitor.Unknown}
			if _, err := method.VisitParam(param, naming.LocalNames(pairNames(namespaces, cols[1:]...))); err != nil {
				return nil, frag.wrap(err)
			}
		default:
			return nil, frag.fail("unexpected indentation")
		}
	}

	return frag.build()
}

// SRGReader reads srg files (PK:, CL:, FD: and MD: lines).
type SRGReader struct{}

func (SRGReader) Format() Format { return SRG }

func (SRGReader) CanRead(f File) bool {
	first := firstLine(f.Data, "#")
	for _, prefix := range []string{"PK: ", "CL: ", "FD: ", "MD: "} {
		if strings.HasPrefix(first, prefix) {
			return true
		}
	}

	return false
}

func (SRGReader) Read(f File) (*table.Table, error) {
	frag, err := newFragment(SRG, f, sourceTarget)
	if err != nil {
		return nil, err
	}

	for i, line := range lines(f.Data) {
		frag.line = i + 1
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		cols := strings.Fields(line)

		switch cols[0] {
		case "PK:":
			continue
		case "CL:":
			if len(cols) != 3 {
				return nil, frag.fail("bad CL line")
			}

			if _, err := frag.class(pairNames(sourceTarget, cols[1], cols[2])); err != nil {
				return nil, err
			}
		case "FD:":
			var srcDesc string

			switch len(cols) {
			case 3:
			case 5:
				srcDesc = cols[2]
				cols = []string{cols[0], cols[1], cols[3]}
			default:
				return nil, frag.fail("bad FD line")
			}

			if err := srgMember(frag, cols[1], cols[2], srcDesc, false); err != nil {
				return nil, err
			}
		case "MD:":
			if len(cols) != 5 {
				return nil, frag.fail("bad MD line")
			}

			if err := srgMember(frag, cols[1], cols[3], cols[2], true); err != nil {
				return nil, err
			}
		default:
			return nil, frag.fail("unknown line kind " + strconv.Quote(cols[0]))
		}
	}

	return frag.build()
}

func srgMember(frag *fragment, src, dst, desc string, method bool) error {
	srcOwner, srcName, ok := splitOwner(src)
	if !ok {
		return frag.fail("bad member reference " + strconv.Quote(src))
	}

	dstOwner, dstName, ok := splitOwner(dst)
	if !ok {
		return frag.fail("bad member reference " + strconv.Quote(dst))
	}

	cv, err := frag.owner(pairNames(sourceTarget, srcOwner, dstOwner))
	if err != nil {
		return err
	}

	ids := memberNames(sourceTarget, desc, srcName, dstName)
	if method {
		_, err = frag.method(cv, ids)
	} else {
		_, err = frag.field(cv, ids)
	}

	return err
}

// RGSReader reads retroguard scripts (.class_map, .field_map, .method_map).
type RGSReader struct{}

func (RGSReader) Format() Format { return RGS }

func (RGSReader) CanRead(f File) bool {
	return strings.HasPrefix(firstLine(f.Data, "#"), ".")
}

func (RGSReader) Read(f File) (*table.Table, error) {
	frag, err := newFragment(RGS, f, sourceTarget)
	if err != nil {
		return nil, err
	}

	for i, line := range lines(f.Data) {
		frag.line = i + 1

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		cols := strings.Fields(trimmed)

		switch cols[0] {
		case ".class_map":
			if len(cols) != 3 {
				return nil, frag.fail("bad .class_map line")
			}

			if _, err := frag.class(pairNames(sourceTarget, cols[1], cols[2])); err != nil {
				return nil, err
			}
		case ".field_map":
			if len(cols) != 3 {
				return nil, frag.fail("bad .field_map line")
			}

			if err := rgsMember(frag, cols[1], cols[2], "", false); err != nil {
				return nil, err
			}
		case ".method_map":
			if len(cols) != 4 {
				return nil, frag.fail("bad .method_map line")
			}

			if err := rgsMember(frag, cols[1], cols[3], cols[2], true); err != nil {
				return nil, err
			}
		case ".class", ".field", ".method", ".package_map", ".repackage_map", ".option", ".attribute", ".nowarn":
			// Retroguard directives without renames.
			continue
		default:
			return nil, frag.fail("unknown directive " + strconv.Quote(cols[0]))
		}
	}

	return frag.build()
}

func rgsMember(frag *fragment, src, dstName, desc string, method bool) error {
	owner, name, ok := splitOwner(src)
	if !ok {
		return frag.fail("bad member reference " + strconv.Quote(src))
	}

	cv, err := frag.owner(naming.ClassNames{"source": owner})
	if err != nil {
		return err
	}

	ids := memberNames(sourceTarget, desc, name, dstName)
	if method {
		_, err = frag.method(cv, ids)
	} else {
		_, err = frag.field(cv, ids)
	}

	return err
}
