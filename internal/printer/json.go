package printer

import (
	"encoding/json"
	"fmt"

	"github.com/joshuapare/slabkit/slab"
)

// jsonStats is the JSON document for a stats dump.
type jsonStats struct {
	Caches []slab.Stats `json:"caches"`
	Pages  int          `json:"pages"`
	Bytes  int          `json:"bytes"`
}

func (p *Printer) printStatsJSON(stats []slab.Stats) error {
	doc := jsonStats{Caches: stats}
	if doc.Caches == nil {
		doc.Caches = []slab.Stats{}
	}
	for _, st := range stats {
		doc.Pages += st.Pages
		doc.Bytes += st.Bytes
	}
	return p.printJSON(doc)
}

func (p *Printer) printJSON(v any) error {
	var (
		data []byte
		err  error
	)
	if p.opts.Indent != "" {
		data, err = json.MarshalIndent(v, "", p.opts.Indent)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(p.writer, "%s\n", data)
	return err
}
