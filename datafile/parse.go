// Package datafile implements the dataset text format of spec.md §6:
// tab-separated, `#`-comment lines, a header line of variable annotations,
// and data rows whose cells may carry missing/intervention decorations.
package datafile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/bnstruct/pebl/data"
)

// ErrParse is spec.md §7's "Parse error": malformed input file or config
// value. Always fatal to the driver, never raised inside the core.
var ErrParse = errors.New("datafile: parse error")

var dtypeRe = regexp.MustCompile(`([\w\d_-]+)[\(]*([\w\d\s,]*)[\)]*`)

// header describes one column's declared kind before any data row is read.
type header struct {
	name     string
	kind     data.Kind
	declared int      // arity for discrete(k); label count for class
	labels   []string // class labels, in encoding order
	explicit bool     // false means "no kind given — infer from data"
}

// Parse reads the dataset text format of spec.md §6 and returns a *data.Dataset.
func Parse(r io.Reader) (*data.Dataset, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty dataset", ErrParse)
	}

	headers, err := parseHeader(lines[0])
	if err != nil {
		return nil, err
	}
	rows := lines[1:]

	sampleNamed := len(rows) > 0 && len(splitRow(rows[0])) == len(headers)+1
	var samples []data.Sample
	if sampleNamed {
		samples = make([]data.Sample, len(rows))
		for i, row := range rows {
			cells := splitRow(row)
			samples[i] = data.Sample{Name: cells[0]}
			rows[i] = strings.Join(cells[1:], "\t")
		}
	}

	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = splitRow(row)
		if len(cells[i]) != len(headers) {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d", ErrParse, i, len(cells[i]), len(headers))
		}
	}

	inferKinds(headers, cells)

	obs := make([][]int, len(rows))
	missing := make([][]bool, len(rows))
	interventions := make([][]bool, len(rows))

	vars := make([]data.Variable, len(headers))
	for v, h := range headers {
		vars[v] = data.Variable{Name: h.name, Kind: h.kind, Arity: h.declared, Labels: h.labels}
	}

	for i := range rows {
		obs[i] = make([]int, len(headers))
		missing[i] = make([]bool, len(headers))
		interventions[i] = make([]bool, len(headers))
		for v, h := range headers {
			val, isMissing, isIntervention, _, err := parseCell(cells[i][v], h)
			if err != nil {
				return nil, err
			}
			obs[i][v] = val
			missing[i][v] = isMissing
			interventions[i][v] = isIntervention
		}
	}

	ds, err := data.New(vars, samples, obs, missing, interventions)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		for v, h := range headers {
			if h.kind != data.Continuous {
				continue
			}
			_, _, _, floatVal, err := parseCell(cells[i][v], h)
			if err != nil {
				return nil, err
			}
			ds.SetContinuous(i, v, floatVal)
		}
	}

	return ds, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func splitRow(row string) []string {
	return strings.Split(row, "\t")
}

func parseHeader(line string) ([]header, error) {
	cells := splitRow(line)
	headers := make([]header, len(cells))
	for i, c := range cells {
		c = strings.Trim(c, "\"")
		parts := strings.SplitN(c, ",", 2)
		name := parts[0]
		if len(parts) == 1 {
			headers[i] = header{name: name}
			continue
		}

		match := dtypeRe.FindStringSubmatch(parts[1])
		if match == nil {
			return nil, fmt.Errorf("%w: malformed variable header %q", ErrParse, c)
		}
		kindName, param := strings.ToLower(match[1]), match[2]

		switch kindName {
		case "continuous":
			headers[i] = header{name: name, kind: data.Continuous, explicit: true}
		case "discrete":
			arity, err := strconv.Atoi(strings.TrimSpace(param))
			if err != nil {
				return nil, fmt.Errorf("%w: discrete arity for %q: %v", ErrParse, name, err)
			}
			headers[i] = header{name: name, kind: data.Discrete, declared: arity, explicit: true}
		case "class":
			labels := splitLabels(param)
			headers[i] = header{name: name, kind: data.Class, declared: len(labels), labels: labels, explicit: true}
		default:
			return nil, fmt.Errorf("%w: unknown variable kind %q", ErrParse, kindName)
		}
	}
	return headers, nil
}

func splitLabels(param string) []string {
	parts := strings.Split(param, ",")
	labels := make([]string, len(parts))
	for i, p := range parts {
		labels[i] = strings.TrimSpace(p)
	}
	return labels
}

// inferKinds fills in arity for every header with no explicit kind, by
// counting distinct non-missing cell values (original_source's
// Dataset._guess_arities), and detects continuous columns by the presence
// of a decimal point in any cell.
func inferKinds(headers []header, cells [][]string) {
	for v, h := range headers {
		if h.explicit {
			continue
		}

		isFloat := false
		seen := map[string]bool{}
		for _, row := range cells {
			item := stripDecoration(row[v])
			if item == "" {
				continue
			}
			if strings.Contains(item, ".") {
				isFloat = true
			}
			seen[item] = true
		}

		if isFloat {
			headers[v] = header{name: h.name, kind: data.Continuous}
			continue
		}
		headers[v] = header{name: h.name, kind: data.Discrete, declared: len(seen)}
	}
}

// stripDecoration removes the missing/intervention markers from a raw cell,
// leaving only the underlying value text (or "" for a missing cell).
func stripDecoration(item string) string {
	item = strings.TrimSpace(item)
	if item == "" {
		return ""
	}
	if item[0] == '!' {
		item = item[1:]
	} else if item[len(item)-1] == '!' {
		item = item[:len(item)-1]
	}
	if item == "" {
		return ""
	}
	if item[0] == 'x' || item[0] == 'X' || item[len(item)-1] == 'x' || item[len(item)-1] == 'X' {
		return ""
	}
	return item
}

// parseCell parses one decorated data cell (spec.md §6): optional leading
// or trailing '!' for intervention, 'x'/'X' for missing, otherwise an
// integer, a class label, or a float depending on h.kind.
func parseCell(raw string, h header) (val int, missing, intervention bool, floatVal float64, err error) {
	item := strings.TrimSpace(raw)
	if item == "" {
		return 0, false, false, 0, fmt.Errorf("%w: empty cell for variable %q", ErrParse, h.name)
	}

	if item[0] == '!' {
		intervention = true
		item = item[1:]
	} else if item[len(item)-1] == '!' {
		intervention = true
		item = item[:len(item)-1]
	}

	if len(item) > 0 && (item[0] == 'x' || item[0] == 'X' || item[len(item)-1] == 'x' || item[len(item)-1] == 'X') {
		missing = true
		if h.kind == data.Class {
			item = h.labels[0]
		} else {
			item = "0"
		}
	}

	switch h.kind {
	case data.Class:
		for i, l := range h.labels {
			if l == item {
				return i, missing, intervention, float64(i), nil
			}
		}
		return 0, false, false, 0, fmt.Errorf("%w: %q is not a declared label for class variable %q", ErrParse, item, h.name)
	case data.Continuous:
		f, parseErr := strconv.ParseFloat(item, 64)
		if parseErr != nil {
			return 0, false, false, 0, fmt.Errorf("%w: invalid continuous value %q for %q: %v", ErrParse, item, h.name, parseErr)
		}
		return int(f), missing, intervention, f, nil
	default: // Discrete
		n, parseErr := strconv.Atoi(item)
		if parseErr != nil {
			return 0, false, false, 0, fmt.Errorf("%w: invalid discrete value %q for %q: %v", ErrParse, item, h.name, parseErr)
		}
		return n, missing, intervention, float64(n), nil
	}
}
