package format

import (
	"regexp"
	"strings"

	"mapping-resolver/internal/naming"
	"mapping-resolver/internal/table"
	"mapping-resolver/internal/visitor"
)

var (
	proguardClass  = regexp.MustCompile(`^(\S+) -> (\S+):$`)
	proguardField  = regexp.MustCompile(`^(\S+) (\S+) -> (\S+)$`)
	proguardMethod = regexp.MustCompile(`^(?:\d+:\d+:)?(\S+) ([^\s(]+)\(([^)]*)\)(?::\d+(?::\d+)?)? -> (\S+)$`)
)

// ProguardReader reads proguard mapping files as published for the official
// client and server jars. The left side becomes "source", the right side
// "target"; descriptors are recorded in "source".
type ProguardReader struct{}

func (ProguardReader) Format() Format { return Proguard }

func (ProguardReader) CanRead(f File) bool {
	return proguardClass.MatchString(firstLine(f.Data, "#"))
}

func (ProguardReader) Read(f File) (*table.Table, error) {
	frag, err := newFragment(Proguard, f, sourceTarget)
	if err != nil {
		return nil, err
	}

	var (
		class visitor.ClassVisitor
		owner string
		seen  map[string]bool
	)

	for i, line := range lines(f.Data) {
		frag.line = i + 1

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if line[0] != ' ' && line[0] != '\t' {
			m := proguardClass.FindStringSubmatch(trimmed)
			if m == nil {
				return nil, frag.fail("bad class line")
			}

			owner = naming.InternalName(m[1])
			seen = make(map[string]bool)

			if class, err = frag.class(pairNames(sourceTarget, owner, naming.InternalName(m[2]))); err != nil {
				return nil, err
			}

			continue
		}

		if class == nil {
			return nil, frag.fail("member outside of a class")
		}

		if m := proguardMethod.FindStringSubmatch(trimmed); m != nil {
			name := m[2]
			if strings.Contains(name, ".") || name == "<init>" || name == "<clinit>" {
				// Inlined foreign methods and initializers carry no renames.
				continue
			}

			var params []string
			if m[3] != "" {
				params = strings.Split(m[3], ",")
			}

			desc, err := naming.MethodDescriptor(m[1], params)
			if err != nil {
				return nil, frag.fail(err.Error())
			}

			if key := "m " + name + desc; !seen[key] {
				seen[key] = true
				if _, err := frag.method(class, memberNames(sourceTarget, desc, name, m[4])); err != nil {
					return nil, err
				}
			}

			continue
		}

		if m := proguardField.FindStringSubmatch(trimmed); m != nil {
			desc, err := naming.JavaTypeToDescriptor(m[1])
			if err != nil {
				return nil, frag.fail(err.Error())
			}

			if key := "f " + m[2] + ":" + desc; !seen[key] {
				seen[key] = true
				if _, err := frag.field(class, memberNames(sourceTarget, desc, m[2], m[3])); err != nil {
					return nil, err
				}
			}

			continue
		}

		return nil, frag.fail("bad member line in " + owner)
	}

	return frag.build()
}
