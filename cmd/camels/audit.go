package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/camels-de1h/internal/domain"
)

// phase tracks pass/fail for an audit phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// errAuditFailed is returned when at least one phase found a problem.
var errAuditFailed = errors.New("dataset audit failed")

func newAuditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "audit",
		Short: "Check the output directory for consistency",
		Long: "Audit checks that the mapping mirror matches the mapping CSV, that every\n" +
			"saved series still passes validation, and that the global metadata index\n" +
			"is sorted and agrees with the per-station metadata files.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.audit(cmd.OutOrStdout())
		},
	}
}

func (a *app) audit(out io.Writer) error {
	fmt.Fprintln(out, "=== CAMELS-DE hourly dataset audit ===")
	fmt.Fprintln(out)

	phases := []*phase{
		a.auditMapping(),
		a.auditSeries(),
		a.auditMetadata(),
	}

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-40s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll checks passed.")
		return nil
	}
	return errAuditFailed
}

// ── Phase 1: Mapping ──
// The JSON mirror must hold exactly the CSV entries.

func (a *app) auditMapping() *phase {
	p := &phase{name: "Phase 1: Mapping (CSV vs JSON)"}

	entries := a.maps.Entries()
	mirror, err := a.maps.ReadMirror()
	switch {
	case errors.Is(err, domain.ErrNotFound) && len(entries) == 0:
		return p
	case err != nil:
		p.errorf("read mirror: %v", err)
		return p
	}
	if diff := cmp.Diff(entries, mirror, cmpopts.EquateEmpty()); diff != "" {
		p.errorf("mirror differs from CSV (-csv +json):\n%s", diff)
	}
	return p
}

// ── Phase 2: Series ──
// Every saved series must load and pass validation.

func (a *app) auditSeries() *phase {
	p := &phase{name: "Phase 2: Series (validation)"}

	for _, e := range a.maps.Entries() {
		st, err := a.stations.Open(string(e.NutsID))
		if err != nil {
			p.errorf("%s: %v", e.NutsID, err)
			continue
		}
		if _, err := st.LoadSeries(); err != nil && !errors.Is(err, domain.ErrNotFound) {
			p.errorf("%s: %v", e.NutsID, err)
		}
	}

	a.auditStrayStations(p)
	return p
}

// auditStrayStations reports station folders whose NUTS ID is not mapped.
func (a *app) auditStrayStations(p *phase) {
	for _, r := range domain.Regions() {
		dir, err := a.layout.OutputPath(string(r))
		if err != nil {
			p.errorf("%s: %v", r, err)
			continue
		}
		des, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, de := range des {
			if !de.IsDir() {
				continue
			}
			id, err := domain.ParseNutsID(de.Name())
			if err != nil {
				continue
			}
			if _, err := a.maps.Resolve(string(id)); err != nil {
				p.errorf("%s/%s: station folder is not in the mapping", r, id)
			}
		}
	}
}

// ── Phase 3: Metadata ──
// The index must be sorted, unique, and match the station files.

func (a *app) auditMetadata() *phase {
	p := &phase{name: "Phase 3: Metadata (index vs stations)"}

	rows, err := a.stations.Index().All()
	if errors.Is(err, domain.ErrNotFound) {
		return p
	}
	if err != nil {
		p.errorf("read index: %v", err)
		return p
	}

	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.Key()
	}
	if !slices.IsSorted(keys) {
		p.errorf("index is not sorted by gauge_id")
	}
	seen := map[string]bool{}
	for i, k := range keys {
		if k == "" {
			p.errorf("index row %d: empty gauge_id", i+1)
			continue
		}
		if seen[k] {
			p.errorf("index row %d: duplicate gauge_id %s", i+1, k)
		}
		seen[k] = true
	}

	for _, row := range rows {
		id := row.Key()
		if id == "" {
			continue
		}
		st, err := a.stations.Open(id)
		if err != nil {
			p.errorf("%s: %v", id, err)
			continue
		}
		md, err := st.LoadMetadata()
		if err != nil {
			p.errorf("%s: %v", id, err)
			continue
		}
		if diff := cmp.Diff(md, row); diff != "" {
			p.errorf("%s: station file differs from index (-station +index):\n%s", id, diff)
		}
	}
	return p
}
