package format

import (
	"bytes"
	"strings"

	"github.com/goccy/go-json"

	"mapping-resolver/internal/naming"
	"mapping-resolver/internal/table"
	"mapping-resolver/internal/visitor"
)

type parchmentData struct {
	Version string           `json:"version"`
	Classes []parchmentClass `json:"classes"`
}

type parchmentClass struct {
	Name    string            `json:"name"`
	Javadoc []string          `json:"javadoc"`
	Fields  []parchmentMember `json:"fields"`
	Methods []parchmentMethod `json:"methods"`
}

type parchmentMember struct {
	Name       string   `json:"name"`
	Descriptor string   `json:"descriptor"`
	Javadoc    []string `json:"javadoc"`
}

type parchmentMethod struct {
	parchmentMember
	Parameters []parchmentParam `json:"parameters"`
}

type parchmentParam struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Javadoc string `json:"javadoc"`
}

// ParchmentReader reads parchment JSON exports. Classes and members are keyed
// on their "source" names, which "target" repeats; parameter names and
// javadoc exist in "target" only.
type ParchmentReader struct{}

func (ParchmentReader) Format() Format { return Parchment }

func (ParchmentReader) CanRead(f File) bool {
	data := bytes.TrimSpace(head(f.Data))
	return bytes.HasPrefix(data, []byte("{")) && bytes.Contains(data, []byte(`"version"`))
}

func (ParchmentReader) Read(f File) (*table.Table, error) {
	var data parchmentData
	if err := json.Unmarshal(f.Data, &data); err != nil {
		return nil, &ParseError{Format: Parchment, File: f.Name, Err: err}
	}

	if data.Version == "" {
		return nil, &ParseError{Format: Parchment, File: f.Name, Reason: "missing version"}
	}

	frag, err := newFragment(Parchment, f, sourceTarget)
	if err != nil {
		return nil, err
	}

	for _, c := range data.Classes {
		if c.Name == "" {
			return nil, frag.fail("class without a name")
		}

		cv, err := frag.class(pairNames(sourceTarget, c.Name, c.Name))
		if err != nil {
			return nil, err
		}

		if err := parchmentComment(cv, c.Javadoc); err != nil {
			return nil, frag.wrap(err)
		}

		for _, m := range c.Methods {
			mv, err := frag.method(cv, memberNames(sourceTarget, m.Descriptor, m.Name, m.Name))
			if err != nil {
				return nil, err
			}

			if err := parchmentComment(mv, m.Javadoc); err != nil {
				return nil, frag.wrap(err)
			}

			for _, p := range m.Parameters {
				param := visitor.Param{LVIndex: p.Index, Ordinal: visitor.Unknown}

				pv, err := mv.VisitParam(param, naming.LocalNames{"target": p.Name})
				if err != nil {
					return nil, frag.wrap(err)
				}

				if p.Javadoc != "" {
					if err := pv.VisitComment(p.Javadoc); err != nil {
						return nil, frag.wrap(err)
					}
				}
			}
		}

		for _, fd := range c.Fields {
			fv, err := frag.field(cv, memberNames(sourceTarget, fd.Descriptor, fd.Name, fd.Name))
			if err != nil {
				return nil, err
			}

			if err := parchmentComment(fv, fd.Javadoc); err != nil {
				return nil, frag.wrap(err)
			}
		}
	}

	return frag.build()
}

func parchmentComment(v visitor.CommentVisitor, javadoc []string) error {
	if len(javadoc) == 0 {
		return nil
	}

	return v.VisitComment(strings.Join(javadoc, "\n"))
}
