package plan

import (
	"fmt"
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"

	"mapping-resolver/internal/visitor"
)

// Fingerprint hashes everything that shapes the resolved table: entries in
// declaration order, the stub and the propagation units.
func Fingerprint(batch Batch) string {
	h := xxhash.New()

	field := func(parts ...string) {
		for _, p := range parts {
			_, _ = io.WriteString(h, p)
			_, _ = h.Write([]byte{0})
		}
	}

	field("batch", batch.Key)

	for _, e := range batch.Entries {
		field("entry", e.ID, e.Source, string(e.Format), fmt.Sprint(e.Overwrite))

		for _, r := range e.Renames {
			field("rename", string(r.From), string(r.To))
		}

		for _, p := range e.Provides {
			field("provides", string(p.Namespace), fmt.Sprint(p.Authoritative))
		}

		field("requires", e.Requires.String())

		for _, t := range e.Transforms {
			field("transform", visitor.Key(t))
		}

		for _, hook := range e.Hooks {
			field("hook", hook.Name(), fmt.Sprintf("%+v", hook))
		}
	}

	field("stub")
	_, _ = h.Write(batch.Stub)

	for _, u := range batch.Units {
		field("unit", u.Name, string(u.Anchor), strings.Join(u.Sources, ","), u.Exclude.String())
	}

	return fmt.Sprintf("%016x", h.Sum64())
}
