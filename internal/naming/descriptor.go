package naming

import (
	"fmt"
	"strings"
)

var primitiveDescriptors = map[string]string{
	"void":    "V",
	"boolean": "Z",
	"byte":    "B",
	"char":    "C",
	"short":   "S",
	"int":     "I",
	"long":    "J",
	"float":   "F",
	"double":  "D",
}

// IsMethodDescriptor reports whether desc looks like a method descriptor.
func IsMethodDescriptor(desc string) bool {
	return strings.HasPrefix(desc, "(")
}

// RemapDescriptor rewrites every class reference of a field or method
// descriptor through lookup. Classes lookup does not know are kept as-is.
func RemapDescriptor(desc string, lookup func(internalName string) (string, bool)) string {
	if desc == "" || !strings.Contains(desc, "L") {
		return desc
	}

	var sb strings.Builder

	sb.Grow(len(desc))

	for i := 0; i < len(desc); i++ {
		c := desc[i]
		if c != 'L' {
			sb.WriteByte(c)
			continue
		}

		end := strings.IndexByte(desc[i:], ';')
		if end < 0 {
			// Malformed tail, keep it untouched.
			sb.WriteString(desc[i:])
			break
		}

		name := desc[i+1 : i+end]
		if mapped, ok := lookup(name); ok {
			name = mapped
		}

		sb.WriteByte('L')
		sb.WriteString(name)
		sb.WriteByte(';')

		i += end
	}

	return sb.String()
}

// JavaTypeToDescriptor converts a source-level type ("int", "java.lang.String[]")
// to its descriptor form ("I", "[Ljava/lang/String;").
func JavaTypeToDescriptor(javaType string) (string, error) {
	t := strings.TrimSpace(javaType)
	if t == "" {
		return "", fmt.Errorf("empty type")
	}

	dims := 0
	for strings.HasSuffix(t, "[]") {
		dims++
		t = strings.TrimSpace(t[:len(t)-2])
	}

	base, ok := primitiveDescriptors[t]
	if !ok {
		if strings.ContainsAny(t, " ()<>;") {
			return "", fmt.Errorf("invalid type %q", javaType)
		}

		base = "L" + strings.ReplaceAll(t, ".", "/") + ";"
	}

	return strings.Repeat("[", dims) + base, nil
}

// MethodDescriptor assembles a method descriptor from source-level types.
func MethodDescriptor(returnType string, params []string) (string, error) {
	var sb strings.Builder

	sb.WriteByte('(')

	for _, p := range params {
		d, err := JavaTypeToDescriptor(p)
		if err != nil {
			return "", err
		}

		sb.WriteString(d)
	}

	sb.WriteByte(')')

	ret, err := JavaTypeToDescriptor(returnType)
	if err != nil {
		return "", err
	}

	sb.WriteString(ret)

	return sb.String(), nil
}

// InternalName converts a dotted binary name to the internal slash form.
func InternalName(binaryName string) string {
	return strings.ReplaceAll(binaryName, ".", "/")
}

// SimpleName returns the part of an internal class name after the last
// package separator or nesting marker ("a/b/Outer$Inner" -> "Inner").
func SimpleName(internalName string) string {
	if i := strings.LastIndexAny(internalName, "/$"); i >= 0 {
		return internalName[i+1:]
	}

	return internalName
}

// OuterName returns the enclosing class of a nested class name and true, or
// "" and false for top level classes.
func OuterName(internalName string) (string, bool) {
	pkgEnd := strings.LastIndexByte(internalName, '/')

	i := strings.LastIndexByte(internalName, '$')
	if i <= pkgEnd+1 || i == len(internalName)-1 {
		return "", false
	}

	return internalName[:i], true
}
