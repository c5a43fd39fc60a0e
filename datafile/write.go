package datafile

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bnstruct/pebl/data"
)

// Write serializes a Dataset back into the tab-separated text format Parse
// reads, the inverse of Parse (SPEC_FULL.md §9.4), grounded on the teacher's
// utils.DataFrame.SaveCSV but writing the decorated cell format instead of a
// plain CSV so the output round-trips through Parse exactly.
func Write(w io.Writer, ds *data.Dataset) error {
	headerCells := make([]string, ds.NumVariables())
	for v, variable := range ds.Variables {
		headerCells[v] = formatHeader(variable)
	}
	if _, err := fmt.Fprintln(w, strings.Join(headerCells, "\t")); err != nil {
		return err
	}

	for s := 0; s < ds.NumSamples(); s++ {
		row := make([]string, 0, ds.NumVariables()+1)
		if len(ds.Samples) == ds.NumSamples() {
			row = append(row, ds.Samples[s].Name)
		}
		for v := 0; v < ds.NumVariables(); v++ {
			row = append(row, formatCell(ds, s, v))
		}
		if _, err := fmt.Fprintln(w, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return nil
}

func formatHeader(variable data.Variable) string {
	switch variable.Kind {
	case data.Continuous:
		return variable.Name + ",continuous"
	case data.Class:
		return variable.Name + ",class(" + strings.Join(variable.Labels, ",") + ")"
	default:
		return fmt.Sprintf("%s,discrete(%d)", variable.Name, variable.Arity)
	}
}

func formatCell(ds *data.Dataset, sample, variable int) string {
	v := ds.Variables[variable]
	var text string
	switch v.Kind {
	case data.Continuous:
		text = strconv.FormatFloat(ds.Continuous(sample, variable), 'g', -1, 64)
	case data.Class:
		text = v.Labels[ds.Get(sample, variable)]
	default:
		text = strconv.Itoa(ds.Get(sample, variable))
	}

	if ds.Missing[sample][variable] {
		text = "X"
	}
	if ds.Interventions[sample][variable] {
		text = "!" + text
	}
	return text
}
