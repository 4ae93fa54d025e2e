package printer

import (
	"fmt"

	"github.com/joshuapare/slabkit/selftest"
	"github.com/joshuapare/slabkit/slab"
)

func (p *Printer) printStatsText(stats []slab.Stats) error {
	if _, err := fmt.Fprintln(p.writer, "[slab] stats:"); err != nil {
		return err
	}

	var pages, objects, used, bytes int
	for _, st := range stats {
		_, err := fmt.Fprintf(p.writer, "  %-8s obj=%4d  pages=%2d  objs=%4d  used=%4d  free=%4d  util=%3d%%\n",
			st.Name, st.ObjSize, st.Pages, st.Objects, st.Used, st.Free, st.Utilization)
		if err != nil {
			return err
		}
		pages += st.Pages
		objects += st.Objects
		used += st.Used
		bytes += st.Bytes
	}

	if !p.opts.Totals {
		return nil
	}
	_, err := p.num.Fprintf(p.writer, "  %-8s pages=%d  objs=%d  used=%d  bytes=%d\n",
		"total", pages, objects, used, bytes)
	return err
}

func (p *Printer) printReportText(rep selftest.Report) error {
	_, err := p.num.Fprintf(p.writer,
		"[eval] sizes=%d  ops=%d  allocs=%d  frees=%d  peak=%d  oob=%d  dfree=%d\n",
		rep.Deterministic, rep.Ops, rep.Allocs, rep.Frees, rep.Peak, rep.InjectedOOB, rep.InjectedDFree)
	return err
}
